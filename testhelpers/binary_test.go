package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLazyBinary(t *testing.T) {
	t.Run("lazily built binary is removed on cleanup", func(t *testing.T) {
		dir := t.TempDir()
		tmp := filepath.Join(dir, "build")
		builds := 0
		b := &lazyBinary{build: func() (string, func(), error) {
			builds++
			require.NoError(t, os.MkdirAll(tmp, 0o755))
			return filepath.Join(tmp, "git-rewrite"), func() { _ = os.RemoveAll(tmp) }, nil
		}}

		require.Equal(t, filepath.Join(tmp, "git-rewrite"), b.get())
		require.Equal(t, filepath.Join(tmp, "git-rewrite"), b.get())
		require.Equal(t, 1, builds)
		require.DirExists(t, tmp)

		b.remove()
		require.NoDirExists(t, tmp)
		b.remove()
	})

	t.Run("a preset path is never built or removed", func(t *testing.T) {
		b := &lazyBinary{build: func() (string, func(), error) {
			t.Fatal("unexpected build")
			return "", nil, nil
		}}
		b.set("/usr/local/bin/git-rewrite", nil)

		require.Equal(t, "/usr/local/bin/git-rewrite", b.get())
		b.remove()
	})
}
