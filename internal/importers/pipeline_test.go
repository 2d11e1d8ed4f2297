package importers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/entities"
	"github.com/mrlokans/qbank/internal/importsession"
	"github.com/mrlokans/qbank/internal/sheets"
)

var qrocHeader = []string{"Subject", "Lecture", "Question Number", "Source", "Question Text", "Answer"}

type fakeTaxonomy struct {
	subjects  []entities.Subject
	lectures  []entities.Lecture
	nextID    uint
	listCalls int
	creates   int

	failLecture error
}

func newFakeTaxonomy() *fakeTaxonomy {
	return &fakeTaxonomy{
		subjects: []entities.Subject{{ID: 1, Name: "Cardiology"}},
		lectures: []entities.Lecture{{ID: 10, SubjectID: 1, Title: "Heart Failure"}},
		nextID:   100,
	}
}

func (f *fakeTaxonomy) ListSubjects(context.Context) ([]entities.Subject, error) {
	f.listCalls++
	return f.subjects, nil
}

func (f *fakeTaxonomy) ListLectures(context.Context) ([]entities.Lecture, error) {
	return f.lectures, nil
}

func (f *fakeTaxonomy) CreateSubject(_ context.Context, s *entities.Subject) error {
	f.nextID++
	f.creates++
	s.ID = f.nextID
	f.subjects = append(f.subjects, *s)
	return nil
}

func (f *fakeTaxonomy) CreateLecture(_ context.Context, l *entities.Lecture) error {
	if f.failLecture != nil {
		return f.failLecture
	}
	f.nextID++
	f.creates++
	l.ID = f.nextID
	f.lectures = append(f.lectures, *l)
	return nil
}

type fakeRuns struct {
	started  []string
	statuses map[string]entities.ImportRunStatus
}

func (f *fakeRuns) StartRun(_ context.Context, sessionID, _ string) error {
	f.started = append(f.started, sessionID)
	return nil
}

func (f *fakeRuns) CompleteRun(_ context.Context, sessionID string, status entities.ImportRunStatus, _ entities.ImportStats, _ string) error {
	if f.statuses == nil {
		f.statuses = map[string]entities.ImportRunStatus{}
	}
	f.statuses[sessionID] = status
	return nil
}

type fakeAuditor struct {
	imports  []entities.ImportRunStatus
	taxonomy []string
}

func (f *fakeAuditor) LogImport(_, _ string, status entities.ImportRunStatus, _ entities.ImportStats, _ string) {
	f.imports = append(f.imports, status)
}

func (f *fakeAuditor) LogTaxonomyCreate(_, entityType string, _ uint, name string) {
	f.taxonomy = append(f.taxonomy, entityType+":"+name)
}

// recordingStore keeps a snapshot of the session after every update.
type recordingStore struct {
	*importsession.MemoryStore
	mu        sync.Mutex
	snapshots []entities.ImportSession
}

func (s *recordingStore) Update(ctx context.Context, id string, fn func(*entities.ImportSession) error) error {
	if err := s.MemoryStore.Update(ctx, id, fn); err != nil {
		return err
	}
	snap, err := s.MemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshots = append(s.snapshots, *snap)
	s.mu.Unlock()
	return nil
}

type testEnv struct {
	taxonomy *fakeTaxonomy
	writer   *fakeWriter
	runs     *fakeRuns
	auditor  *fakeAuditor
	store    *recordingStore
	pipeline *Pipeline
}

func newTestEnv() *testEnv {
	env := &testEnv{
		taxonomy: newFakeTaxonomy(),
		writer:   &fakeWriter{},
		runs:     &fakeRuns{},
		auditor:  &fakeAuditor{},
		store:    &recordingStore{MemoryStore: importsession.NewMemoryStore()},
	}
	env.pipeline = NewPipeline(PipelineConfig{
		Taxonomy:  env.taxonomy,
		Questions: env.writer,
		Publisher: importsession.NewPublisher(env.store, importsession.DefaultMaxLogs, zap.NewNop()),
		Runs:      env.runs,
		Auditor:   env.auditor,
		BatchSize: 50,
		Logger:    zap.NewNop(),
	})
	return env
}

func (e *testEnv) session(t *testing.T, id string) *entities.ImportSession {
	t.Helper()
	s, err := e.store.Get(context.Background(), id)
	require.NoError(t, err)
	return s
}

func workbook(t *testing.T, sheet string, rows ...[]string) Upload {
	t.Helper()
	var buf bytes.Buffer
	grid := append([][]string{qrocHeader}, rows...)
	require.NoError(t, sheets.BuildWorkbook(&buf, []string{sheet}, map[string][][]string{sheet: grid}))
	return Upload{
		Filename:    "questions.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}
}

func TestPipeline_Run_ImportsAndCreatesTaxonomyOnce(t *testing.T) {
	env := newTestEnv()
	upload := workbook(t, "QROC",
		[]string{"Cardiology", "Heart Failure", "1", "S2022", "Q1", "A1"},
		[]string{"cardiology", "heart failure", "2", "S2022", "Q2 https://img.test/x.png", "A2"},
		[]string{"Dermatology", "Acne", "1", "S2022", "Q3", "A3"},
		[]string{"Dermatology", "Acne", "2", "S2022", "Q4", "A4"},
		[]string{"Dermatology", "Acne", "3", "S2022", "Q5", "A5"},
		[]string{"Dermatology", "", "4", "S2022", "Q6", ""},
	)

	result, err := env.pipeline.Run(context.Background(), "s1", upload)
	require.NoError(t, err)

	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, entities.ImportRunStatusPartial, result.Status)
	stats := result.Stats
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 5, stats.Imported)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, stats.Total, stats.Imported+stats.Failed)
	assert.Equal(t, 1, stats.CreatedSpecialties)
	assert.Equal(t, 1, stats.CreatedLectures)
	assert.Equal(t, 1, stats.QuestionsWithImages)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "QROC row 7")

	assert.Equal(t, 2, env.taxonomy.creates)
	assert.Equal(t, []string{"subject:Dermatology", "lecture:Acne"}, env.auditor.taxonomy)
	require.Len(t, env.writer.written, 5)
	assert.Equal(t, uint(10), env.writer.written[0].LectureID)
	assert.Equal(t, "Q2", env.writer.written[1].Text)
	assert.Equal(t, "image/png", env.writer.written[1].MediaType)

	session := env.session(t, "s1")
	assert.True(t, session.IsComplete())
	assert.Equal(t, float64(100), session.Progress)
	require.NotNil(t, session.Stats)
	assert.Equal(t, 5, session.Stats.Imported)

	created := 0
	for _, line := range session.Logs {
		if strings.Contains(line, `Created lecture "Acne"`) {
			created++
		}
	}
	assert.Equal(t, 1, created, "a reused pair is logged once")

	assert.Equal(t, []string{"s1"}, env.runs.started)
	assert.Equal(t, entities.ImportRunStatusPartial, env.runs.statuses["s1"])
	assert.Equal(t, []entities.ImportRunStatus{entities.ImportRunStatusPartial}, env.auditor.imports)
}

func TestPipeline_Run_MatchedPairsCreateNothing(t *testing.T) {
	env := newTestEnv()
	upload := workbook(t, "QROC",
		[]string{"Cardio", "heart", "1", "S", "Q1", "A1"},
		[]string{"CARDIOLOGY", "Heart Failure", "2", "S", "Q2", "A2"},
	)

	result, err := env.pipeline.Run(context.Background(), "", upload)
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, entities.ImportRunStatusCompleted, result.Status)
	assert.Equal(t, 2, result.Stats.Imported)
	assert.Zero(t, result.Stats.CreatedSpecialties)
	assert.Zero(t, result.Stats.CreatedLectures)
	assert.Nil(t, result.Stats.Errors)
	assert.Zero(t, env.taxonomy.creates)
}

func TestPipeline_Run_RejectsTextFileBeforeTaxonomyLookup(t *testing.T) {
	env := newTestEnv()
	upload := Upload{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("not a workbook")}

	result, err := env.pipeline.Run(context.Background(), "s1", upload)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, entities.ImportRunStatusRejected, result.Status)
	assert.Zero(t, env.taxonomy.listCalls)
	assert.Zero(t, env.writer.calls)

	session := env.session(t, "s1")
	assert.True(t, session.IsComplete())
	assert.Zero(t, session.Progress)
	assert.Contains(t, session.Message, "Unsupported file type")
	assert.Equal(t, entities.ImportRunStatusRejected, env.runs.statuses["s1"])
}

func TestPipeline_Run_TerminalWorkbookFailures(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.pipeline.Run(context.Background(), "s1", workbook(t, "QROC"))
		assert.ErrorIs(t, err, sheets.ErrNoDataRows)
		assert.Zero(t, env.session(t, "s1").Progress)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.pipeline.Run(context.Background(), "s1", workbook(t, "Sheet1", []string{"a", "b", "1", "s", "q", "r"}))
		assert.ErrorIs(t, err, sheets.ErrNoKnownSheets)
	})

	t.Run("unreadable workbook", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.pipeline.Run(context.Background(), "s1", Upload{Filename: "broken.xlsx", Data: []byte("garbage")})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.ErrorIs(t, err, sheets.ErrUnreadableFile)
		assert.Zero(t, env.taxonomy.listCalls)
	})
}

func TestPipeline_Run_SubjectCreatedBeforeLectureFailure(t *testing.T) {
	env := newTestEnv()
	env.taxonomy.failLecture = errors.New("constraint failed")
	upload := workbook(t, "QROC",
		[]string{"Neurology", "Stroke", "1", "S", "Q1", "A1"},
		[]string{"Neurology", "Stroke", "2", "S", "Q2", "A2"},
	)

	result, err := env.pipeline.Run(context.Background(), "s1", upload)
	require.NoError(t, err)

	assert.Equal(t, entities.ImportRunStatusPartial, result.Status)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Failed)
	assert.Equal(t, 1, result.Stats.CreatedSpecialties)
	assert.Zero(t, result.Stats.CreatedLectures)
	assert.Len(t, env.taxonomy.subjects, 2)
	assert.Equal(t, []string{"subject:Neurology"}, env.auditor.taxonomy)

	logged := 0
	for _, line := range env.session(t, "s1").Logs {
		if strings.Contains(line, `Created subject "Neurology"`) {
			logged++
		}
	}
	assert.Equal(t, 1, logged)
}

func TestPipeline_Run_FailingBatch(t *testing.T) {
	env := newTestEnv()
	env.writer.failOn = map[int]error{2: errors.New("database is locked")}

	rows := make([][]string, 120)
	for i := range rows {
		rows[i] = []string{"Cardiology", "Heart Failure", fmt.Sprint(i + 1), "S", fmt.Sprintf("Question %d", i+1), "A"}
	}
	result, err := env.pipeline.Run(context.Background(), "s1", workbook(t, "QROC", rows...))
	require.NoError(t, err)

	assert.Equal(t, 120, result.Stats.Total)
	assert.Equal(t, 70, result.Stats.Imported)
	assert.Equal(t, 50, result.Stats.Failed)
	require.Len(t, result.Stats.Errors, 1)
	assert.Contains(t, result.Stats.Errors[0], "database is locked")
	assert.Equal(t, 3, env.writer.calls)
}

func TestPipeline_Run_ProgressIsMonotonicAndLogsAreCapped(t *testing.T) {
	env := newTestEnv()

	// Every row names a new lecture, producing more log lines than the cap.
	// Titles share a length so none contains another.
	rows := make([][]string, 80)
	for i := range rows {
		rows[i] = []string{"Neurology", fmt.Sprintf("Topic %c%c", 'a'+i/26, 'a'+i%26), "1", "S", "Q", "A"}
	}
	_, err := env.pipeline.Run(context.Background(), "s1", workbook(t, "QROC", rows...))
	require.NoError(t, err)

	require.NotEmpty(t, env.store.snapshots)
	prev := env.store.snapshots[0]
	for _, snap := range env.store.snapshots[1:] {
		assert.GreaterOrEqual(t, snap.Progress, prev.Progress)
		assert.False(t, snap.Phase.Before(prev.Phase))
		assert.LessOrEqual(t, len(snap.Logs), importsession.DefaultMaxLogs)
		prev = snap
	}
	assert.Equal(t, float64(100), prev.Progress)
	assert.Len(t, prev.Logs, importsession.DefaultMaxLogs)
}

func TestPipeline_Run_BusySession(t *testing.T) {
	env := newTestEnv()
	publisher := importsession.NewPublisher(env.store, 0, nil)
	require.NoError(t, publisher.Start(context.Background(), "busy", "running elsewhere"))

	_, err := env.pipeline.Run(context.Background(), "busy", workbook(t, "QROC", []string{"Cardiology", "Heart Failure", "1", "S", "Q", "A"}))
	assert.ErrorIs(t, err, importsession.ErrExists)
	assert.Empty(t, env.runs.started)
}
