package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/qbank/internal/entities"
)

// TaxonomyBrowser reads the curriculum.
type TaxonomyBrowser interface {
	ListSubjectsWithLectures(ctx context.Context) ([]entities.Subject, error)
	GetLectureByID(ctx context.Context, id uint) (*entities.Lecture, error)
}

// QuestionReader reads imported questions.
type QuestionReader interface {
	ListByLecture(ctx context.Context, lectureID uint) ([]entities.Question, error)
	CountByLecture(ctx context.Context) (map[uint]int64, error)
}

type SubjectsController struct {
	taxonomy  TaxonomyBrowser
	questions QuestionReader
}

func NewSubjectsController(taxonomy TaxonomyBrowser, questions QuestionReader) *SubjectsController {
	return &SubjectsController{taxonomy: taxonomy, questions: questions}
}

type LectureSummary struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	QuestionCount int64  `json:"question_count"`
}

type SubjectSummary struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Lectures    []LectureSummary `json:"lectures"`
}

// List handles GET /api/subjects
func (sc *SubjectsController) List(c *gin.Context) {
	ctx := c.Request.Context()

	subjects, err := sc.taxonomy.ListSubjectsWithLectures(ctx)
	if err != nil {
		respondInternalError(c, err, "list subjects")
		return
	}
	counts := map[uint]int64{}
	if sc.questions != nil {
		if counts, err = sc.questions.CountByLecture(ctx); err != nil {
			respondInternalError(c, err, "count questions")
			return
		}
	}

	out := make([]SubjectSummary, 0, len(subjects))
	for _, s := range subjects {
		summary := SubjectSummary{ID: s.ID, Name: s.Name, Description: s.Description, Lectures: []LectureSummary{}}
		for _, l := range s.Lectures {
			summary.Lectures = append(summary.Lectures, LectureSummary{ID: l.ID, Title: l.Title, QuestionCount: counts[l.ID]})
		}
		out = append(out, summary)
	}

	c.JSON(http.StatusOK, gin.H{"subjects": out})
}

// LectureQuestions handles GET /api/lectures/:id/questions
func (sc *SubjectsController) LectureQuestions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	lecture, err := sc.taxonomy.GetLectureByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "lecture")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get lecture")
		return
	}

	questions, err := sc.questions.ListByLecture(ctx, id)
	if err != nil {
		respondInternalError(c, err, "list questions")
		return
	}
	if questions == nil {
		questions = []entities.Question{}
	}

	c.JSON(http.StatusOK, gin.H{"lecture": lecture, "questions": questions})
}
