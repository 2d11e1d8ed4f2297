package sheets

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// headerTitles are the column titles written into generated workbooks.
var headerTitles = map[string]string{
	HeaderSubject:        "Subject",
	HeaderLecture:        "Lecture",
	HeaderQuestionNumber: "Question Number",
	HeaderSource:         "Source",
	HeaderQuestionText:   "Question Text",
	HeaderOptionA:        "Option A",
	HeaderOptionB:        "Option B",
	HeaderOptionC:        "Option C",
	HeaderOptionD:        "Option D",
	HeaderOptionE:        "Option E",
	HeaderAnswer:         "Answer",
	HeaderCaseNumber:     "Case Number",
	HeaderCaseText:       "Case Text",
	HeaderExplanation:    "Explanation",
}

// TemplateHeaders returns the header row written for a known sheet: its
// required headers followed by the optional explanation column.
func TemplateHeaders(s Sheet) []string {
	row := make([]string, 0, len(s.Required)+1)
	for _, h := range s.Required {
		row = append(row, headerTitles[h])
	}
	return append(row, headerTitles[HeaderExplanation])
}

// BuildWorkbook writes an .xlsx file with one sheet per entry of grids.
// Sheet order follows names.
func BuildWorkbook(w io.Writer, names []string, grids map[string][][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range names {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		for r, row := range grids[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]any, len(row))
			for j, v := range row {
				values[j] = v
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("write sheet %q row %d: %w", name, r+1, err)
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// WriteTemplate writes an empty import template containing every known sheet
// with its header row.
func WriteTemplate(w io.Writer) error {
	names := make([]string, 0, len(KnownSheets))
	grids := make(map[string][][]string, len(KnownSheets))
	for _, s := range KnownSheets {
		names = append(names, s.Name)
		grids[s.Name] = [][]string{TemplateHeaders(s)}
	}
	return BuildWorkbook(w, names, grids)
}
