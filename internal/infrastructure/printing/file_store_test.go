package printing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_CommitAndAbort(t *testing.T) {
	root := filepath.Join(t.TempDir(), "invoices")
	store, err := NewFileStore(root)
	require.NoError(t, err)
	assert.DirExists(t, store.Root())

	target := filepath.Join(root, "invoice_1.pdf")
	f, err := store.Create(target)
	require.NoError(t, err)
	_, err = f.Write([]byte("%PDF"))
	require.NoError(t, err)
	assert.NoFileExists(t, target)
	require.NoError(t, f.Commit())
	f.Abort()

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	aborted := filepath.Join(root, "invoice_2.pdf")
	f, err = store.Create(aborted)
	require.NoError(t, err)
	_, err = f.Write([]byte("partial"))
	require.NoError(t, err)
	f.Abort()
	assert.NoFileExists(t, aborted)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_RejectsPathsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(filepath.Join(root, "invoices"))
	require.NoError(t, err)

	for _, p := range []string{
		filepath.Join(root, "elsewhere.pdf"),
		filepath.Join(root, "invoices", "..", "x.pdf"),
		filepath.Join(root, "invoices"),
		filepath.Join(root, "invoices-other", "x.pdf"),
	} {
		_, err := store.Create(p)
		assert.ErrorIs(t, err, ErrOutsideRoot, p)
	}
}
