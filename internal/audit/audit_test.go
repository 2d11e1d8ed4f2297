package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	archiver := NewArchiver(dir)

	t.Run("SaveUpload creates directory and keeps extension", func(t *testing.T) {
		name, err := archiver.SaveUpload("s1", "Questions.XLSX", []byte("payload"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(name, "s1_"))
		assert.True(t, strings.HasSuffix(name, ".xlsx"))

		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "payload", string(content))
	})

	t.Run("SaveUpload generates unique filenames", func(t *testing.T) {
		first, err := archiver.SaveUpload("s1", "a.xlsx", []byte("x"))
		require.NoError(t, err)
		second, err := archiver.SaveUpload("s1", "a.xlsx", []byte("x"))
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("unsafe session ids are sanitized", func(t *testing.T) {
		name, err := archiver.SaveUpload("../../etc", "", []byte("x"))
		require.NoError(t, err)
		assert.NotContains(t, name, "/")
		assert.True(t, strings.HasSuffix(name, ".bin"))
		_, err = os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	})
}
