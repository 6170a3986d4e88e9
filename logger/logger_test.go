package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("writes json to file", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "log.txt")

		log, err := New("debug", path)
		req.NoError(err)
		log.Debug("transfer submitted")
		_ = log.Sync()

		content, err := os.ReadFile(path)
		req.NoError(err)
		req.Contains(string(content), `"msg":"transfer submitted"`)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New("chatty")
		require.Error(t, err)
	})
}
