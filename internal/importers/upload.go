package importers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrMissingFile     = errors.New("no file uploaded")
	ErrUnsupportedType = errors.New("unsupported file type, expected .xlsx or .xls")
	ErrFileTooLarge    = errors.New("uploaded file is too large")
)

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

var allowedMIMETypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true,
}

// Upload is one uploaded spreadsheet.
type Upload struct {
	Filename    string
	ContentType string // as declared by the client
	Data        []byte
}

// SniffedType returns the MIME type detected from the file content.
func (u Upload) SniffedType() string {
	return mimetype.Detect(u.Data).String()
}

// ValidateUpload checks that a spreadsheet was uploaded. The file is accepted
// when its extension, declared MIME type or sniffed content type names an
// Excel workbook. A maxBytes of zero disables the size check.
func ValidateUpload(u Upload, maxBytes int64) error {
	if len(u.Data) == 0 {
		return ErrMissingFile
	}
	if maxBytes > 0 && int64(len(u.Data)) > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, len(u.Data), maxBytes)
	}

	if allowedExtensions[strings.ToLower(filepath.Ext(u.Filename))] {
		return nil
	}
	if allowedMIMETypes[baseMIME(u.ContentType)] {
		return nil
	}
	if isSpreadsheet(mimetype.Detect(u.Data)) {
		return nil
	}
	return ErrUnsupportedType
}

func isSpreadsheet(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if allowedMIMETypes[m.String()] {
			return true
		}
	}
	return false
}

func baseMIME(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
