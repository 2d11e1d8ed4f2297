package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		upload  Upload
		max     int64
		wantErr error
	}{
		{"xlsx extension", Upload{Filename: "QCM.XLSX", Data: []byte("anything")}, 0, nil},
		{"xls extension", Upload{Filename: "legacy.xls", Data: []byte("anything")}, 0, nil},
		{"declared mime", Upload{Filename: "blob", ContentType: "application/vnd.ms-excel; charset=binary", Data: []byte("x")}, 0, nil},
		{"text file", Upload{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello")}, 0, ErrUnsupportedType},
		{"csv renamed", Upload{Filename: "questions.csv", Data: []byte("a,b\n1,2\n")}, 0, ErrUnsupportedType},
		{"empty", Upload{Filename: "qcm.xlsx"}, 0, ErrMissingFile},
		{"too large", Upload{Filename: "qcm.xlsx", Data: make([]byte, 11)}, 10, ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.upload, tt.max)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
