package sheets

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelWorkbook adapts an excelize file to the Workbook interface.
type ExcelWorkbook struct {
	file *excelize.File
}

// OpenWorkbook decodes an .xlsx stream. Legacy binary .xls files are not
// readable by excelize and fail with ErrUnreadableFile.
func OpenWorkbook(r io.Reader) (*ExcelWorkbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return &ExcelWorkbook{file: f}, nil
}

func (w *ExcelWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *ExcelWorkbook) Rows(sheet string) ([][]string, error) {
	return w.file.GetRows(sheet)
}

func (w *ExcelWorkbook) Close() error {
	return w.file.Close()
}

// GridWorkbook is an in-memory Workbook, used by tests and by callers that
// decode spreadsheets themselves.
type GridWorkbook struct {
	names []string
	grids map[string][][]string
}

// NewGridWorkbook creates an empty in-memory workbook.
func NewGridWorkbook() *GridWorkbook {
	return &GridWorkbook{grids: make(map[string][][]string)}
}

// AddSheet appends a sheet with the given rows.
func (g *GridWorkbook) AddSheet(name string, rows [][]string) *GridWorkbook {
	if _, ok := g.grids[name]; !ok {
		g.names = append(g.names, name)
	}
	g.grids[name] = rows
	return g
}

func (g *GridWorkbook) SheetNames() []string {
	return append([]string(nil), g.names...)
}

func (g *GridWorkbook) Rows(sheet string) ([][]string, error) {
	rows, ok := g.grids[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q does not exist", sheet)
	}
	return rows, nil
}
