package importers

import (
	"context"
	"fmt"

	"github.com/mrlokans/qbank/internal/entities"
)

// DefaultBatchSize is the number of questions written per bulk insert.
const DefaultBatchSize = 50

// QuestionWriter bulk-inserts questions, skipping duplicates.
type QuestionWriter interface {
	BulkInsert(ctx context.Context, questions []entities.Question) (int64, error)
}

// BatchResult is the outcome of writing one chunk.
type BatchResult struct {
	Index    int // 0-based
	Batches  int
	Start    int // offset of the chunk in the input
	Size     int
	Inserted int64 // rows actually written; duplicates are skipped
	Err      error
}

// BatchSummary totals a BatchImporter run.
type BatchSummary struct {
	Imported int
	Failed   int
	Errors   []string
}

// BatchImporter writes questions in fixed-size chunks, one chunk at a time.
type BatchImporter struct {
	writer QuestionWriter
	size   int
}

// NewBatchImporter creates an importer. A size below one falls back to
// DefaultBatchSize.
func NewBatchImporter(writer QuestionWriter, size int) *BatchImporter {
	if size < 1 {
		size = DefaultBatchSize
	}
	return &BatchImporter{writer: writer, size: size}
}

// Batches returns the number of chunks n questions split into.
func (b *BatchImporter) Batches(n int) int {
	return (n + b.size - 1) / b.size
}

// Import writes every chunk in order. A failed chunk counts all of its rows
// as failed and the run moves on to the next chunk. onBatch, when not nil, is
// called after each chunk.
func (b *BatchImporter) Import(ctx context.Context, questions []entities.Question, onBatch func(BatchResult)) BatchSummary {
	var summary BatchSummary
	batches := b.Batches(len(questions))

	for i := 0; i < batches; i++ {
		start := i * b.size
		end := min(start+b.size, len(questions))
		chunk := questions[start:end]

		inserted, err := b.writer.BulkInsert(ctx, chunk)
		result := BatchResult{Index: i, Batches: batches, Start: start, Size: len(chunk), Inserted: inserted, Err: err}
		if err != nil {
			summary.Failed += len(chunk)
			summary.Errors = append(summary.Errors, fmt.Sprintf("Batch %d/%d (rows %d-%d) failed: %v", i+1, batches, start+1, end, err))
		} else {
			summary.Imported += len(chunk)
		}

		if onBatch != nil {
			onBatch(result)
		}
	}
	return summary
}
