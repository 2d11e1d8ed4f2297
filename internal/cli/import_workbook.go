package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/config"
	"github.com/mrlokans/qbank/internal/database"
	"github.com/mrlokans/qbank/internal/database/questions"
	"github.com/mrlokans/qbank/internal/database/runs"
	"github.com/mrlokans/qbank/internal/database/taxonomy"
	"github.com/mrlokans/qbank/internal/entities"
	"github.com/mrlokans/qbank/internal/importers"
	"github.com/mrlokans/qbank/internal/importsession"
	"github.com/mrlokans/qbank/internal/sheets"
)

// ImportWorkbookCommand imports a question workbook into a local database
type ImportWorkbookCommand struct {
	FilePath     string
	DatabasePath string
	BatchSize    int
	Verbose      bool
	DryRun       bool

	Out io.Writer
}

func NewImportWorkbookCommand() *ImportWorkbookCommand {
	return &ImportWorkbookCommand{Out: os.Stdout}
}

func (cmd *ImportWorkbookCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-workbook", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the .xlsx workbook (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.IntVar(&cmd.BatchSize, "batch-size", config.DefaultBatchSize, "Number of questions written per batch")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every progress log line")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the workbook without importing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-workbook -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import questions from a spreadsheet with QCM, QROC, CAS QCM and CAS QROC sheets.\n")
		fmt.Fprintf(os.Stderr, "Missing subjects and lectures are created on the fly.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Check a workbook before uploading it:\n")
		fmt.Fprintf(os.Stderr, "  %s import-workbook -file questions.xlsx -dry-run\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Import into a specific database:\n")
		fmt.Fprintf(os.Stderr, "  %s import-workbook -file questions.xlsx -db ./qbank.db -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *ImportWorkbookCommand) Run() error {
	if cmd.Out == nil {
		cmd.Out = os.Stdout
	}

	fmt.Fprintln(cmd.Out, "Workbook Import")
	fmt.Fprintln(cmd.Out, "===============")

	data, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}
	fmt.Fprintf(cmd.Out, "File: %s (%d bytes)\n", cmd.FilePath, len(data))

	if cmd.DryRun {
		return cmd.validate(data)
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	fmt.Fprintf(cmd.Out, "Database: %s\n\n", absDBPath)

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	store := &printingStore{MemoryStore: importsession.NewMemoryStore(), out: cmd.Out, verbose: cmd.Verbose}
	pipeline := importers.NewPipeline(importers.PipelineConfig{
		Taxonomy:  taxonomy.NewRepository(db.DB),
		Questions: questions.NewRepository(db.DB),
		Publisher: importsession.NewPublisher(store, config.DefaultMaxLogs, zap.NewNop()),
		Runs:      runs.NewRepository(db.DB),
		BatchSize: cmd.BatchSize,
	})

	result, err := pipeline.Run(context.Background(), "", importers.Upload{
		Filename: filepath.Base(cmd.FilePath),
		Data:     data,
	})
	var verr *importers.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("workbook rejected: %s", verr.Reason)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.printSummary(result)
	return nil
}

// validate parses the workbook and prints what would be imported.
func (cmd *ImportWorkbookCommand) validate(data []byte) error {
	upload := importers.Upload{Filename: filepath.Base(cmd.FilePath), Data: data}
	if err := importers.ValidateUpload(upload, 0); err != nil {
		return err
	}

	wb, err := sheets.OpenWorkbook(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer wb.Close()

	parsed, err := sheets.ParseWorkbook(wb)
	if err != nil {
		return fmt.Errorf("workbook rejected: %w", err)
	}

	fmt.Fprintln(cmd.Out, "\n=== Sheets ===")
	for _, s := range parsed.Sheets {
		if s.Skipped {
			fmt.Fprintf(cmd.Out, "  %-10s skipped\n", s.Sheet)
			continue
		}
		fmt.Fprintf(cmd.Out, "  %-10s %d rows, %d valid, %d invalid\n", s.Sheet, s.DataRows, s.Valid, s.Invalid)
	}
	for _, skipped := range parsed.SkippedSheets {
		fmt.Fprintf(cmd.Out, "  [WARN] %s\n", skipped)
	}
	for _, rowErr := range parsed.RowErrors {
		fmt.Fprintf(cmd.Out, "  [ERROR] %s\n", rowErr.Error())
	}

	fmt.Fprintf(cmd.Out, "\n%d of %d rows would be imported.\n", len(parsed.Rows), parsed.Considered())
	fmt.Fprintln(cmd.Out, "Dry run complete. Use without -dry-run to import.")
	return nil
}

func (cmd *ImportWorkbookCommand) printSummary(result importers.Result) {
	stats := result.Stats
	fmt.Fprintln(cmd.Out, "\n=== Import Summary ===")
	fmt.Fprintf(cmd.Out, "Session: %s\n", result.SessionID)
	fmt.Fprintf(cmd.Out, "Status: %s\n", result.Status)
	fmt.Fprintf(cmd.Out, "Imported: %d/%d\n", stats.Imported, stats.Total)
	fmt.Fprintf(cmd.Out, "Failed: %d\n", stats.Failed)
	fmt.Fprintf(cmd.Out, "Subjects created: %d\n", stats.CreatedSpecialties)
	fmt.Fprintf(cmd.Out, "Lectures created: %d\n", stats.CreatedLectures)
	fmt.Fprintf(cmd.Out, "Questions with images: %d\n", stats.QuestionsWithImages)

	if len(stats.Errors) > 0 {
		fmt.Fprintf(cmd.Out, "\n%d errors occurred:\n", len(stats.Errors))
		for _, msg := range stats.Errors {
			fmt.Fprintf(cmd.Out, "  [ERROR] %s\n", msg)
		}
	}
}

// printingStore echoes session updates to the terminal.
type printingStore struct {
	*importsession.MemoryStore
	out      io.Writer
	verbose  bool
	lastLine string
	lastMsg  string
}

func (s *printingStore) Update(ctx context.Context, id string, fn func(*entities.ImportSession) error) error {
	if err := s.MemoryStore.Update(ctx, id, fn); err != nil {
		return err
	}
	session, err := s.MemoryStore.Get(ctx, id)
	if err != nil {
		return nil
	}

	if s.verbose && len(session.Logs) > 0 {
		if line := session.Logs[len(session.Logs)-1]; line != s.lastLine {
			s.lastLine = line
			fmt.Fprintf(s.out, "    %s\n", line)
		}
	}
	if session.Message != s.lastMsg {
		s.lastMsg = session.Message
		fmt.Fprintf(s.out, "[%3.0f%%] %s\n", session.Progress, session.Message)
	}
	return nil
}
