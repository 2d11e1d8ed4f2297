// Package sheets turns decoded workbook grids into typed question rows.
//
// A workbook may carry up to four known sheets, one per question kind. Each
// kind has a fixed set of required headers; a sheet missing any of them is
// skipped as a whole, while a row missing a mandatory value is reported as a
// row error and excluded.
package sheets

import (
	"strings"

	"github.com/mrlokans/qbank/internal/entities"
)

// Kind identifies which question layout a sheet follows.
type Kind string

const (
	KindSingleChoice         Kind = "single_choice"
	KindOpenResponse         Kind = "open_response"
	KindClinicalSingleChoice Kind = "clinical_single_choice"
	KindClinicalOpenResponse Kind = "clinical_open_response"
)

// QuestionType maps the sheet kind onto the stored question type.
func (k Kind) QuestionType() entities.QuestionType {
	return entities.QuestionType(k)
}

// IsClinical reports whether rows of this kind carry a clinical case.
func (k Kind) IsClinical() bool {
	return k == KindClinicalSingleChoice || k == KindClinicalOpenResponse
}

// HasOptions reports whether rows of this kind carry answer options.
func (k Kind) HasOptions() bool {
	return k == KindSingleChoice || k == KindClinicalSingleChoice
}

// Canonical header names.
const (
	HeaderSubject        = "subject"
	HeaderLecture        = "lecture"
	HeaderQuestionNumber = "question-number"
	HeaderSource         = "source"
	HeaderQuestionText   = "question-text"
	HeaderOptionA        = "option-a"
	HeaderOptionB        = "option-b"
	HeaderOptionC        = "option-c"
	HeaderOptionD        = "option-d"
	HeaderOptionE        = "option-e"
	HeaderAnswer         = "answer"
	HeaderCaseNumber     = "case-number"
	HeaderCaseText       = "case-text"
	HeaderExplanation    = "explanation"
)

var optionHeaders = []string{HeaderOptionA, HeaderOptionB, HeaderOptionC, HeaderOptionD, HeaderOptionE}

// Sheet describes one known sheet: its fixed name and header contract.
type Sheet struct {
	Name     string
	Kind     Kind
	Required []string
}

// KnownSheets lists the sheets read from a workbook. ParseWorkbook visits
// them in the order the workbook stores its sheets.
var KnownSheets = []Sheet{
	{
		Name: "QCM",
		Kind: KindSingleChoice,
		Required: append([]string{HeaderSubject, HeaderLecture, HeaderQuestionNumber, HeaderSource, HeaderQuestionText},
			append(optionHeaders, HeaderAnswer)...),
	},
	{
		Name:     "QROC",
		Kind:     KindOpenResponse,
		Required: []string{HeaderSubject, HeaderLecture, HeaderQuestionNumber, HeaderSource, HeaderQuestionText, HeaderAnswer},
	},
	{
		Name: "CAS QCM",
		Kind: KindClinicalSingleChoice,
		Required: append([]string{HeaderSubject, HeaderLecture, HeaderCaseNumber, HeaderSource, HeaderCaseText, HeaderQuestionNumber, HeaderQuestionText},
			append(optionHeaders, HeaderAnswer)...),
	},
	{
		Name:     "CAS QROC",
		Kind:     KindClinicalOpenResponse,
		Required: []string{HeaderSubject, HeaderLecture, HeaderCaseNumber, HeaderSource, HeaderCaseText, HeaderQuestionNumber, HeaderQuestionText, HeaderAnswer},
	},
}

// sheetAliases maps normalized sheet names onto KnownSheets names.
var sheetAliases = map[string]string{
	"qcm":                    "QCM",
	"single choice":          "QCM",
	"qroc":                   "QROC",
	"open response":          "QROC",
	"cas qcm":                "CAS QCM",
	"cas_qcm":                "CAS QCM",
	"clinical single choice": "CAS QCM",
	"cas qroc":               "CAS QROC",
	"cas_qroc":               "CAS QROC",
	"clinical open response": "CAS QROC",
}

// lookupSheet finds the known sheet a workbook sheet name refers to.
func lookupSheet(name string) (Sheet, bool) {
	canonical, ok := sheetAliases[collapse(name)]
	if !ok {
		return Sheet{}, false
	}
	for _, s := range KnownSheets {
		if s.Name == canonical {
			return s, true
		}
	}
	return Sheet{}, false
}

var canonicalHeaders = map[string]bool{
	HeaderSubject: true, HeaderLecture: true, HeaderQuestionNumber: true, HeaderSource: true,
	HeaderQuestionText: true, HeaderOptionA: true, HeaderOptionB: true, HeaderOptionC: true,
	HeaderOptionD: true, HeaderOptionE: true, HeaderAnswer: true, HeaderCaseNumber: true,
	HeaderCaseText: true, HeaderExplanation: true,
}

// headerAliases covers the French column titles used by existing workbooks.
var headerAliases = map[string]string{
	"matiere":              HeaderSubject,
	"matière":              HeaderSubject,
	"specialite":           HeaderSubject,
	"spécialité":           HeaderSubject,
	"specialty":            HeaderSubject,
	"cours":                HeaderLecture,
	"course":               HeaderLecture,
	"numero":               HeaderQuestionNumber,
	"numéro":               HeaderQuestionNumber,
	"n° question":          HeaderQuestionNumber,
	"numero question":      HeaderQuestionNumber,
	"numéro question":      HeaderQuestionNumber,
	"question":             HeaderQuestionText,
	"texte de la question": HeaderQuestionText,
	"enonce":               HeaderQuestionText,
	"énoncé":               HeaderQuestionText,
	"reponse":              HeaderAnswer,
	"réponse":              HeaderAnswer,
	"reponses":             HeaderAnswer,
	"réponses":             HeaderAnswer,
	"correct answer":       HeaderAnswer,
	"cas":                  HeaderCaseNumber,
	"numero cas":           HeaderCaseNumber,
	"numéro cas":           HeaderCaseNumber,
	"texte du cas":         HeaderCaseText,
	"enonce du cas":        HeaderCaseText,
	"énoncé du cas":        HeaderCaseText,
	"explication":          HeaderExplanation,
	"commentaire":          HeaderExplanation,
}

var dashReplacer = strings.NewReplacer(" ", "-", "_", "-")

// NormalizeHeader trims and lower-cases a header cell and maps known
// spellings ("Question Number", "question_number", "Réponse") onto the
// canonical header name. Unknown headers are returned trimmed and lower-cased.
func NormalizeHeader(raw string) string {
	n := collapse(raw)
	if alias, ok := headerAliases[n]; ok {
		return alias
	}
	if dashed := dashReplacer.Replace(n); canonicalHeaders[dashed] {
		return dashed
	}
	return n
}

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
