package sheets

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Workbook is the decoded spreadsheet: an ordered grid of string cells per
// named sheet.
type Workbook interface {
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
}

// Terminal validation failures. The whole workbook is unusable when any of
// these is returned.
var (
	ErrNoKnownSheets  = errors.New("workbook contains none of the expected sheets")
	ErrNoDataRows     = errors.New("workbook contains fewer than two rows in every expected sheet")
	ErrNoValidSheets  = errors.New("no sheet has all required headers")
	ErrUnreadableFile = errors.New("workbook could not be read")
)

// RawRow is one spreadsheet row keyed by normalized header name.
type RawRow struct {
	Kind  Kind
	Sheet string
	Line  int // 1-based spreadsheet row; the header is line 1
	Cells map[string]string
}

// Get returns the trimmed cell value for a header, or "".
func (r RawRow) Get(header string) string {
	return r.Cells[header]
}

// Row is a validated question row.
type Row struct {
	Kind           Kind
	Sheet          string
	Line           int
	Subject        string
	Lecture        string
	Number         *int
	Source         string
	Text           string
	Options        []string
	Answer         string
	CorrectAnswers []string
	Explanation    string
	CaseNumber     *int
	CaseText       string
}

// RowError describes a data row excluded from the import.
type RowError struct {
	Sheet  string
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %s", e.Sheet, e.Line, e.Reason)
}

// SkippedSheet is a known sheet ignored because of its header row.
type SkippedSheet struct {
	Sheet   string
	Kind    Kind
	Missing []string
}

func (s SkippedSheet) String() string {
	return fmt.Sprintf("sheet %q skipped: missing headers %s", s.Sheet, strings.Join(s.Missing, ", "))
}

// SheetSummary reports what was read from one known sheet.
type SheetSummary struct {
	Sheet    string
	Kind     Kind
	DataRows int // non-blank rows below the header
	Valid    int
	Invalid  int
	Skipped  bool
}

// ParseResult is the outcome of parsing every known sheet of a workbook.
type ParseResult struct {
	Rows          []Row
	RowErrors     []RowError
	SkippedSheets []SkippedSheet
	Sheets        []SheetSummary
}

// Considered is the number of non-blank data rows of accepted sheets, valid
// or not.
func (r *ParseResult) Considered() int {
	return len(r.Rows) + len(r.RowErrors)
}

// ParseWorkbook reads every known sheet present in wb.
//
// A sheet missing required headers is skipped and recorded in SkippedSheets.
// The returned error is non-nil only for terminal failures: no known sheet,
// no known sheet with at least a header and one row, or every sheet with data
// missing required headers.
func ParseWorkbook(wb Workbook) (*ParseResult, error) {
	type found struct {
		name  string
		sheet Sheet
		rows  [][]string
	}

	var present []found
	for _, name := range wb.SheetNames() {
		sheet, ok := lookupSheet(name)
		if !ok {
			continue
		}
		rows, err := wb.Rows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrUnreadableFile, name, err)
		}
		present = append(present, found{name: name, sheet: sheet, rows: rows})
	}
	if len(present) == 0 {
		return nil, ErrNoKnownSheets
	}

	withData := 0
	for _, f := range present {
		if len(f.rows) >= 2 {
			withData++
		}
	}
	if withData == 0 {
		return nil, ErrNoDataRows
	}

	result := &ParseResult{}
	accepted := 0
	for _, f := range present {
		summary := SheetSummary{Sheet: f.name, Kind: f.sheet.Kind}
		if len(f.rows) < 2 {
			result.Sheets = append(result.Sheets, summary)
			continue
		}

		headers := normalizeHeaderRow(f.rows[0])
		if missing := missingHeaders(headers, f.sheet.Required); len(missing) > 0 {
			summary.Skipped = true
			result.SkippedSheets = append(result.SkippedSheets, SkippedSheet{Sheet: f.name, Kind: f.sheet.Kind, Missing: missing})
			result.Sheets = append(result.Sheets, summary)
			continue
		}
		accepted++

		for i, cells := range f.rows[1:] {
			if isBlank(cells) {
				continue
			}
			summary.DataRows++
			raw := RawRow{Kind: f.sheet.Kind, Sheet: f.name, Line: i + 2, Cells: mapCells(headers, cells)}
			row, err := buildRow(raw)
			if err != nil {
				summary.Invalid++
				result.RowErrors = append(result.RowErrors, *err)
				continue
			}
			summary.Valid++
			result.Rows = append(result.Rows, row)
		}
		result.Sheets = append(result.Sheets, summary)
	}

	if accepted == 0 {
		details := make([]string, 0, len(result.SkippedSheets))
		for _, s := range result.SkippedSheets {
			details = append(details, s.String())
		}
		return result, fmt.Errorf("%w: %s", ErrNoValidSheets, strings.Join(details, "; "))
	}

	return result, nil
}

func normalizeHeaderRow(cells []string) []string {
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = NormalizeHeader(c)
	}
	return headers
}

func missingHeaders(headers, required []string) []string {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[h] = true
	}
	var missing []string
	for _, r := range required {
		if !have[r] {
			missing = append(missing, r)
		}
	}
	return missing
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// mapCells keys cells by header. The first column wins when a header repeats.
func mapCells(headers, cells []string) map[string]string {
	m := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if _, seen := m[h]; seen {
			continue
		}
		if i < len(cells) {
			m[h] = strings.TrimSpace(cells[i])
		} else {
			m[h] = ""
		}
	}
	return m
}

func buildRow(raw RawRow) (Row, *RowError) {
	var missing []string
	for _, h := range []string{HeaderSubject, HeaderLecture, HeaderQuestionText, HeaderAnswer} {
		if raw.Get(h) == "" {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return Row{}, &RowError{Sheet: raw.Sheet, Line: raw.Line, Reason: "missing " + strings.Join(missing, ", ")}
	}

	row := Row{
		Kind:        raw.Kind,
		Sheet:       raw.Sheet,
		Line:        raw.Line,
		Subject:     raw.Get(HeaderSubject),
		Lecture:     raw.Get(HeaderLecture),
		Number:      ParseOrdinal(raw.Get(HeaderQuestionNumber)),
		Source:      raw.Get(HeaderSource),
		Text:        raw.Get(HeaderQuestionText),
		Answer:      raw.Get(HeaderAnswer),
		Explanation: raw.Get(HeaderExplanation),
	}

	if raw.Kind.HasOptions() {
		row.Options = collectOptions(raw)
		row.CorrectAnswers = ParseChoiceAnswer(row.Answer)
	} else {
		row.CorrectAnswers = []string{row.Answer}
	}

	if raw.Kind.IsClinical() {
		row.CaseNumber = ParseOrdinal(raw.Get(HeaderCaseNumber))
		row.CaseText = raw.Get(HeaderCaseText)
	}

	return row, nil
}

// collectOptions keeps option positions so letters still line up; trailing
// empty options are dropped.
func collectOptions(raw RawRow) []string {
	opts := make([]string, len(optionHeaders))
	last := -1
	for i, h := range optionHeaders {
		opts[i] = raw.Get(h)
		if opts[i] != "" {
			last = i
		}
	}
	return opts[:last+1]
}

// ParseChoiceAnswer splits a multiple-choice answer such as "A", "a, c" or
// "ACD" into upper-case letters. Tokens that are not option letters are kept
// verbatim.
func ParseChoiceAnswer(answer string) []string {
	tokens := strings.FieldsFunc(answer, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, tok := range tokens {
		upper := strings.ToUpper(tok)
		if isOptionLetters(upper) {
			for _, r := range upper {
				out = append(out, string(r))
			}
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isOptionLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'E' {
			return false
		}
	}
	return true
}

// ParseOrdinal parses a row, question or case number leniently. Spreadsheet
// floats such as "3.0" are accepted; anything else yields nil.
func ParseOrdinal(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		n := int(f)
		return &n
	}
	return nil
}
