package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/qbank/internal/entities"
	"github.com/mrlokans/qbank/internal/importers"
	"github.com/mrlokans/qbank/internal/importsession"
)

// ImportRunner runs an import to completion. *importers.Pipeline implements it.
type ImportRunner interface {
	Run(ctx context.Context, sessionID string, upload importers.Upload) (importers.Result, error)
}

type QuestionImportController struct {
	runner   ImportRunner
	maxBytes int64
}

func NewQuestionImportController(runner ImportRunner, maxBytes int64) *QuestionImportController {
	return &QuestionImportController{
		runner:   runner,
		maxBytes: maxBytes,
	}
}

// ImportResponse is returned once an import finished.
type ImportResponse struct {
	SessionID string                   `json:"sessionId"`
	Status    entities.ImportRunStatus `json:"status"`
	Stats     entities.ImportStats     `json:"stats"`
}

// Import handles POST /api/admin/questions/import
//
// The request blocks until the import is complete. Clients follow progress
// by opening the progress stream with the same session_id.
func (ic *QuestionImportController) Import(c *gin.Context) {
	upload, err := ic.readUpload(c)
	if err != nil {
		respondInternalError(c, err, "read upload")
		return
	}

	// A client disconnect must not abort a half-written import.
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := ic.runner.Run(ctx, sessionIDParam(c), upload)

	var verr *importers.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ImportResponse{SessionID: result.SessionID, Status: result.Status, Stats: result.Stats})
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, ErrorResponse{
			Error:   verr.Reason,
			Code:    CodeValidationFailed,
			Details: gin.H{"sessionId": result.SessionID},
		})
	case errors.Is(err, importsession.ErrExists):
		respondError(c, http.StatusConflict, ErrorResponse{
			Error:   "an import is already running for this session",
			Code:    CodeSessionActive,
			Details: gin.H{"sessionId": result.SessionID},
		})
	default:
		respondInternalError(c, err, "import workbook")
	}
}

// readUpload reads the multipart file. A missing file yields an empty upload
// so the pipeline rejects it like any other invalid file.
func (ic *QuestionImportController) readUpload(c *gin.Context) (importers.Upload, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return importers.Upload{}, nil
	}
	defer file.Close()

	var r io.Reader = file
	if ic.maxBytes > 0 {
		// One byte over the limit is enough for the size check to fail.
		r = io.LimitReader(file, ic.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return importers.Upload{}, err
	}
	return importers.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
