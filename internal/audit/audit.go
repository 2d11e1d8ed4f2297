package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Archiver keeps a copy of every uploaded workbook so a failed import can be
// inspected later.
type Archiver struct {
	Dir string
}

func NewArchiver(dir string) *Archiver {
	return &Archiver{Dir: dir}
}

// SaveUpload writes data under a UUID4 file name that keeps the upload's
// extension. It returns the archived file name.
func (a *Archiver) SaveUpload(sessionID, filename string, data []byte) (string, error) {
	if err := a.ensureDir(); err != nil {
		return "", fmt.Errorf("failed to ensure archive directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	if sessionID != "" {
		name = fmt.Sprintf("%s_%s", sanitize(sessionID), name)
	}

	if err := os.WriteFile(filepath.Join(a.Dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write archived upload: %w", err)
	}
	return name, nil
}

// ensureDir creates the archive directory if it doesn't exist
func (a *Archiver) ensureDir() error {
	if _, err := os.Stat(a.Dir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	return nil
}

// sanitize keeps session ids usable as file name prefixes.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
