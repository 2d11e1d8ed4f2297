package importers

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/entities"
	"github.com/mrlokans/qbank/internal/importsession"
	"github.com/mrlokans/qbank/internal/sheets"
	"github.com/mrlokans/qbank/internal/taxonomy"
)

// Progress checkpoints. Row processing fills the range between
// progressTaxonomyLoaded and progressRowsDone, persistence the range up to
// progressBatchesDone.
const (
	progressValidated      = 10
	progressTaxonomyLoaded = 20
	progressRowsDone       = 65
	progressBatchesDone    = 95
	progressComplete       = 100
)

// TaxonomyStore reads the existing curriculum and creates missing entries.
type TaxonomyStore interface {
	ListSubjects(ctx context.Context) ([]entities.Subject, error)
	ListLectures(ctx context.Context) ([]entities.Lecture, error)
	taxonomy.Store
}

// RunRecorder keeps the persisted history of import runs.
type RunRecorder interface {
	StartRun(ctx context.Context, sessionID, filename string) error
	CompleteRun(ctx context.Context, sessionID string, status entities.ImportRunStatus, stats entities.ImportStats, message string) error
}

// Auditor records import and taxonomy events.
type Auditor interface {
	LogImport(sessionID, filename string, status entities.ImportRunStatus, stats entities.ImportStats, message string)
	LogTaxonomyCreate(sessionID, entityType string, entityID uint, name string)
}

// Archiver keeps a copy of uploaded files.
type Archiver interface {
	SaveUpload(sessionID, filename string, data []byte) (string, error)
}

// ValidationError is a terminal failure detected before any row is
// processed. The caller has to fix the file and upload it again.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Result is returned by Pipeline.Run once the session is complete.
type Result struct {
	SessionID string
	Status    entities.ImportRunStatus
	Stats     entities.ImportStats
}

// PipelineConfig holds the dependencies of a Pipeline. Runs, Auditor and
// Archiver are optional.
type PipelineConfig struct {
	Taxonomy       TaxonomyStore
	Questions      QuestionWriter
	Publisher      *importsession.Publisher
	Runs           RunRecorder
	Auditor        Auditor
	Archiver       Archiver
	BatchSize      int
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// Pipeline imports one spreadsheet per call:
// validate → load taxonomy → resolve rows → write batches → summarize.
//
// Every step is reported through the session publisher so a progress stream
// can follow the run. Rows are processed in order and batches are written
// one at a time.
type Pipeline struct {
	taxonomy  TaxonomyStore
	batches   *BatchImporter
	publisher *importsession.Publisher
	runs      RunRecorder
	auditor   Auditor
	archiver  Archiver
	maxBytes  int64
	log       *zap.Logger
}

// NewPipeline creates a pipeline from cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		taxonomy:  cfg.Taxonomy,
		batches:   NewBatchImporter(cfg.Questions, cfg.BatchSize),
		publisher: cfg.Publisher,
		runs:      cfg.Runs,
		auditor:   cfg.Auditor,
		archiver:  cfg.Archiver,
		maxBytes:  cfg.MaxUploadBytes,
		log:       log.Named("import"),
	}
}

// run carries the state of a single Run call.
type run struct {
	p        *Pipeline
	ctx      context.Context
	id       string
	filename string
	log      *zap.Logger

	stats     entities.ImportStats
	rowErrors []string
	progress  float64
}

// Run imports upload under sessionID, generating an id when it is empty.
//
// It returns importsession.ErrExists when the id belongs to a running
// import, and a *ValidationError for terminal validation failures; in the
// latter case the session is already complete with zero progress. Any other
// error means the run could not finish and the session was completed with
// the failure message.
func (p *Pipeline) Run(ctx context.Context, sessionID string, upload Upload) (Result, error) {
	if sessionID == "" {
		sessionID = importsession.NewID()
	}
	r := &run{
		p:        p,
		ctx:      ctx,
		id:       sessionID,
		filename: upload.Filename,
		log:      p.log.With(zap.String("session_id", sessionID), zap.String("filename", upload.Filename)),
	}

	if err := p.publisher.Start(ctx, sessionID, "Validating file"); err != nil {
		return Result{SessionID: sessionID}, err
	}
	r.log.Info("import started", zap.Int("bytes", len(upload.Data)))
	p.startRun(r)

	if p.archiver != nil && len(upload.Data) > 0 {
		if name, err := p.archiver.SaveUpload(sessionID, upload.Filename, upload.Data); err != nil {
			r.log.Warn("failed to archive upload", zap.Error(err))
		} else {
			r.log.Debug("archived upload", zap.String("archive", name))
		}
	}

	parsed, verr := p.validate(r, upload)
	if verr != nil {
		return r.reject(verr)
	}
	return r.importRows(parsed)
}

func (p *Pipeline) validate(r *run, upload Upload) (*sheets.ParseResult, *ValidationError) {
	if err := ValidateUpload(upload, p.maxBytes); err != nil {
		reason := err.Error()
		if errors.Is(err, ErrUnsupportedType) {
			reason = fmt.Sprintf("Unsupported file type for %q (detected %s), expected .xlsx or .xls", upload.Filename, upload.SniffedType())
		}
		return nil, &ValidationError{Reason: reason, Err: err}
	}

	wb, err := sheets.OpenWorkbook(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, &ValidationError{Reason: "The file could not be read as an Excel workbook", Err: err}
	}
	defer wb.Close()

	parsed, err := sheets.ParseWorkbook(wb)
	if err != nil {
		return nil, &ValidationError{Reason: validationReason(err), Err: err}
	}

	for _, skipped := range parsed.SkippedSheets {
		r.logLine(fmt.Sprintf("Skipped sheet %q: missing headers %v", skipped.Sheet, skipped.Missing))
	}
	for _, s := range parsed.Sheets {
		if !s.Skipped && s.DataRows > 0 {
			r.logLine(fmt.Sprintf("Sheet %q: %d rows, %d valid", s.Sheet, s.DataRows, s.Valid))
		}
	}
	r.update(progressValidated, entities.ImportPhaseValidating,
		fmt.Sprintf("Validated %d rows (%d with errors)", parsed.Considered(), len(parsed.RowErrors)), "")
	return parsed, nil
}

func validationReason(err error) string {
	switch {
	case errors.Is(err, sheets.ErrNoKnownSheets):
		return "The workbook has none of the expected sheets (QCM, QROC, CAS QCM, CAS QROC)"
	case errors.Is(err, sheets.ErrNoDataRows):
		return "The workbook needs a header row and at least one data row"
	case errors.Is(err, sheets.ErrNoValidSheets):
		return "Missing required headers: " + err.Error()
	case errors.Is(err, sheets.ErrUnreadableFile):
		return "The file could not be read as an Excel workbook"
	default:
		return err.Error()
	}
}

func (r *run) importRows(parsed *sheets.ParseResult) (Result, error) {
	r.stats.Total = parsed.Considered()
	for _, re := range parsed.RowErrors {
		r.rowErrors = append(r.rowErrors, re.Error())
	}
	r.stats.Failed = len(parsed.RowErrors)

	subjects, err := r.p.taxonomy.ListSubjects(r.ctx)
	if err != nil {
		return r.fail(fmt.Errorf("load subjects: %w", err))
	}
	lectures, err := r.p.taxonomy.ListLectures(r.ctx)
	if err != nil {
		return r.fail(fmt.Errorf("load lectures: %w", err))
	}
	resolver := taxonomy.NewResolver(r.p.taxonomy, taxonomy.NewSnapshot(subjects, lectures))
	r.update(progressTaxonomyLoaded, entities.ImportPhaseImporting,
		fmt.Sprintf("Loaded %d subjects and %d lectures", len(subjects), len(lectures)), "")

	questions := make([]entities.Question, 0, len(parsed.Rows))
	for i, row := range parsed.Rows {
		res, err := resolver.Resolve(r.ctx, row.Subject, row.Lecture)
		if err != nil {
			r.recordCreation(res)
			r.stats.Failed++
			r.rowErrors = append(r.rowErrors, sheets.RowError{Sheet: row.Sheet, Line: row.Line, Reason: err.Error()}.Error())
			r.log.Warn("taxonomy resolution failed", zap.String("sheet", row.Sheet), zap.Int("line", row.Line), zap.Error(err))
		} else {
			r.recordCreation(res)
			questions = append(questions, BuildQuestion(row, res.Lecture.ID))
		}

		done := float64(i+1) / float64(len(parsed.Rows))
		r.update(progressTaxonomyLoaded+done*(progressRowsDone-progressTaxonomyLoaded), entities.ImportPhaseImporting,
			fmt.Sprintf("Processed %d/%d rows", i+1, len(parsed.Rows)), "")
	}
	r.stats.CreatedSpecialties = resolver.CreatedSubjects()
	r.stats.CreatedLectures = resolver.CreatedLectures()

	r.update(progressRowsDone, entities.ImportPhaseImporting,
		fmt.Sprintf("Saving %d questions", len(questions)), "")

	summary := r.p.batches.Import(r.ctx, questions, func(b BatchResult) {
		if b.Err != nil {
			r.log.Warn("batch failed", zap.Int("batch", b.Index+1), zap.Int("size", b.Size), zap.Error(b.Err))
		} else {
			r.stats.QuestionsWithImages += countWithMedia(questions[b.Start : b.Start+b.Size])
		}
		line := fmt.Sprintf("Batch %d/%d saved (%d questions)", b.Index+1, b.Batches, b.Size)
		if b.Err != nil {
			line = fmt.Sprintf("Batch %d/%d failed (%d questions): %v", b.Index+1, b.Batches, b.Size, b.Err)
		}
		done := float64(b.Index+1) / float64(b.Batches)
		r.update(progressRowsDone+done*(progressBatchesDone-progressRowsDone), entities.ImportPhaseImporting, line, line)
	})
	r.stats.Imported = summary.Imported
	r.stats.Failed += summary.Failed

	if errs := append(r.rowErrors, summary.Errors...); len(errs) > 0 {
		r.stats.Errors = errs
	}

	status := entities.ImportRunStatusCompleted
	if r.stats.Failed > 0 {
		status = entities.ImportRunStatusPartial
	}
	message := fmt.Sprintf("Import complete: %d imported, %d failed", r.stats.Imported, r.stats.Failed)
	r.complete(status, message)
	return Result{SessionID: r.id, Status: status, Stats: r.stats}, nil
}

func (r *run) recordCreation(res taxonomy.Resolution) {
	if res.CreatedSubject {
		r.logLine(fmt.Sprintf("Created subject %q", res.Subject.Name))
		if r.p.auditor != nil {
			r.p.auditor.LogTaxonomyCreate(r.id, "subject", res.Subject.ID, res.Subject.Name)
		}
	}
	if res.CreatedLecture {
		r.logLine(fmt.Sprintf("Created lecture %q under %q", res.Lecture.Title, res.Subject.Name))
		if r.p.auditor != nil {
			r.p.auditor.LogTaxonomyCreate(r.id, "lecture", res.Lecture.ID, res.Lecture.Title)
		}
	}
}

func countWithMedia(questions []entities.Question) int {
	n := 0
	for _, q := range questions {
		if q.MediaURL != "" {
			n++
		}
	}
	return n
}

func (r *run) reject(verr *ValidationError) (Result, error) {
	r.log.Info("import rejected", zap.String("reason", verr.Reason), zap.Error(verr.Err))
	if err := r.p.publisher.Reject(r.ctx, r.id, verr.Reason); err != nil {
		r.log.Warn("failed to publish rejection", zap.Error(err))
	}
	stats := entities.ImportStats{Errors: []string{verr.Reason}}
	r.p.finishRun(r, entities.ImportRunStatusRejected, stats, verr.Reason)
	return Result{SessionID: r.id, Status: entities.ImportRunStatusRejected, Stats: stats}, verr
}

// fail ends a run that could not continue. Rows not yet written count as
// failed.
func (r *run) fail(err error) (Result, error) {
	r.log.Error("import failed", zap.Error(err))
	r.stats.Failed = r.stats.Total
	r.stats.Imported = 0
	r.stats.Errors = append(r.rowErrors, err.Error())
	r.complete(entities.ImportRunStatusPartial, "Import failed: "+err.Error())
	return Result{SessionID: r.id, Status: entities.ImportRunStatusPartial, Stats: r.stats}, err
}

func (r *run) complete(status entities.ImportRunStatus, message string) {
	if err := r.p.publisher.Complete(r.ctx, r.id, message, r.stats); err != nil {
		r.log.Warn("failed to publish completion", zap.Error(err))
	}
	r.p.finishRun(r, status, r.stats, message)
	r.log.Info("import finished",
		zap.String("status", string(status)),
		zap.Int("total", r.stats.Total),
		zap.Int("imported", r.stats.Imported),
		zap.Int("failed", r.stats.Failed),
		zap.Int("created_subjects", r.stats.CreatedSpecialties),
		zap.Int("created_lectures", r.stats.CreatedLectures),
	)
}

func (r *run) update(progress float64, phase entities.ImportPhase, message, logLine string) {
	if progress < r.progress {
		progress = r.progress
	}
	r.progress = progress
	if err := r.p.publisher.Update(r.ctx, r.id, progress, phase, message, logLine); err != nil {
		r.log.Warn("failed to publish progress", zap.Error(err))
	}
}

func (r *run) logLine(line string) {
	if err := r.p.publisher.Log(r.ctx, r.id, line); err != nil {
		r.log.Warn("failed to publish log line", zap.Error(err))
	}
}

func (p *Pipeline) startRun(r *run) {
	if p.runs == nil {
		return
	}
	if err := p.runs.StartRun(r.ctx, r.id, r.filename); err != nil {
		r.log.Warn("failed to record import run", zap.Error(err))
	}
}

func (p *Pipeline) finishRun(r *run, status entities.ImportRunStatus, stats entities.ImportStats, message string) {
	if p.runs != nil {
		if err := p.runs.CompleteRun(r.ctx, r.id, status, stats, message); err != nil {
			r.log.Warn("failed to record import run result", zap.Error(err))
		}
	}
	if p.auditor != nil {
		p.auditor.LogImport(r.id, r.filename, status, stats, message)
	}
}
