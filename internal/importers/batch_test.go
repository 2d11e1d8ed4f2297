package importers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/qbank/internal/entities"
)

type fakeWriter struct {
	calls   int
	failOn  map[int]error // 1-based call number
	written []entities.Question
	sizes   []int
}

func (w *fakeWriter) BulkInsert(_ context.Context, questions []entities.Question) (int64, error) {
	w.calls++
	w.sizes = append(w.sizes, len(questions))
	if err := w.failOn[w.calls]; err != nil {
		return 0, err
	}
	w.written = append(w.written, questions...)
	return int64(len(questions)), nil
}

func makeQuestions(n int) []entities.Question {
	out := make([]entities.Question, n)
	for i := range out {
		out[i] = entities.Question{LectureID: 1, Type: entities.QuestionTypeOpenResponse, Text: fmt.Sprintf("Q%d", i)}
	}
	return out
}

func TestBatchImporter_FailingChunkDoesNotAbort(t *testing.T) {
	writer := &fakeWriter{failOn: map[int]error{2: errors.New("constraint violation")}}
	importer := NewBatchImporter(writer, 50)

	var results []BatchResult
	summary := importer.Import(context.Background(), makeQuestions(120), func(r BatchResult) {
		results = append(results, r)
	})

	assert.Equal(t, []int{50, 50, 20}, writer.sizes)
	assert.Equal(t, 70, summary.Imported)
	assert.Equal(t, 50, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "Batch 2/3")
	assert.Contains(t, summary.Errors[0], "constraint violation")

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 50, results[1].Start)
	assert.Equal(t, 100, results[2].Start)
	assert.Equal(t, 20, results[2].Size)
}

func TestBatchImporter_Empty(t *testing.T) {
	writer := &fakeWriter{}
	summary := NewBatchImporter(writer, 0).Import(context.Background(), nil, nil)

	assert.Zero(t, writer.calls)
	assert.Equal(t, BatchSummary{}, summary)
}

func TestBatchImporter_Batches(t *testing.T) {
	b := NewBatchImporter(&fakeWriter{}, 50)
	assert.Equal(t, 0, b.Batches(0))
	assert.Equal(t, 1, b.Batches(50))
	assert.Equal(t, 2, b.Batches(51))
}
