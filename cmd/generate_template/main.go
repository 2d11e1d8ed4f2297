// Command generate_template writes an import workbook with the four question
// sheets and their header rows.
// Usage: go run cmd/generate_template/main.go [-out questions.xlsx] [-sample]
package main

import (
	"bytes"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/logger"
	"github.com/mrlokans/qbank/internal/sheets"
)

// sampleRows holds one example question per sheet, keyed by header.
var sampleRows = map[string]map[string]string{
	"QCM": {
		sheets.HeaderSubject:        "Cardiology",
		sheets.HeaderLecture:        "Heart Failure",
		sheets.HeaderQuestionNumber: "1",
		sheets.HeaderSource:         "2023",
		sheets.HeaderQuestionText:   "Which drug class reduces mortality in HFrEF?",
		sheets.HeaderOptionA:        "Loop diuretics",
		sheets.HeaderOptionB:        "ACE inhibitors",
		sheets.HeaderOptionC:        "Digoxin",
		sheets.HeaderOptionD:        "Nitrates",
		sheets.HeaderAnswer:         "B",
		sheets.HeaderExplanation:    "ACE inhibitors improve survival.",
	},
	"QROC": {
		sheets.HeaderSubject:        "Nephrology",
		sheets.HeaderLecture:        "Glomerulonephritis",
		sheets.HeaderQuestionNumber: "1",
		sheets.HeaderSource:         "2022",
		sheets.HeaderQuestionText:   "Name the typical biopsy finding https://example.com/images/biopsy.png",
		sheets.HeaderAnswer:         "Crescents",
	},
	"CAS QCM": {
		sheets.HeaderSubject:        "Cardiology",
		sheets.HeaderLecture:        "Acute Coronary Syndrome",
		sheets.HeaderCaseNumber:     "1",
		sheets.HeaderSource:         "2023",
		sheets.HeaderCaseText:       "A 58-year-old man presents with chest pain for two hours.",
		sheets.HeaderQuestionNumber: "1",
		sheets.HeaderQuestionText:   "Which tests do you order first?",
		sheets.HeaderOptionA:        "ECG",
		sheets.HeaderOptionB:        "Troponin",
		sheets.HeaderOptionC:        "Chest CT",
		sheets.HeaderAnswer:         "A, B",
	},
	"CAS QROC": {
		sheets.HeaderSubject:        "Cardiology",
		sheets.HeaderLecture:        "Acute Coronary Syndrome",
		sheets.HeaderCaseNumber:     "1",
		sheets.HeaderSource:         "2023",
		sheets.HeaderCaseText:       "A 58-year-old man presents with chest pain for two hours.",
		sheets.HeaderQuestionNumber: "2",
		sheets.HeaderQuestionText:   "What is the most likely diagnosis?",
		sheets.HeaderAnswer:         "STEMI",
	},
}

func main() {
	out := flag.String("out", "questions_template.xlsx", "path of the workbook to write")
	sample := flag.Bool("sample", false, "add one example row to every sheet")
	flag.Parse()

	log := logger.Must("development")
	defer func() { _ = log.Sync() }()

	var buf bytes.Buffer
	var err error
	if *sample {
		err = writeSample(&buf)
	} else {
		err = sheets.WriteTemplate(&buf)
	}
	if err != nil {
		log.Fatal("failed to build workbook", zap.Error(err))
	}

	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		log.Fatal("failed to write workbook", zap.String("path", *out), zap.Error(err))
	}
	log.Info("workbook written", zap.String("path", *out), zap.Bool("sample", *sample))
}

func writeSample(buf *bytes.Buffer) error {
	names := make([]string, 0, len(sheets.KnownSheets))
	grids := make(map[string][][]string, len(sheets.KnownSheets))
	for _, s := range sheets.KnownSheets {
		names = append(names, s.Name)

		values := sampleRows[s.Name]
		row := make([]string, 0, len(s.Required)+1)
		for _, h := range s.Required {
			row = append(row, values[h])
		}
		row = append(row, values[sheets.HeaderExplanation])

		grids[s.Name] = [][]string{sheets.TemplateHeaders(s), row}
	}
	return sheets.BuildWorkbook(buf, names, grids)
}
