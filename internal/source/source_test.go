package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iish/treemap-go/internal/snapshot"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

func writeSnapshot(t *testing.T, dir, name string, rows int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	table := tabular.NewTable(map[string]int{"a": 0}, make([][]string, rows))
	require.NoError(t, snapshot.WriteFile(path, table))
	return path
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0644))
	require.NoError(t, os.WriteFile(c, []byte("other"), 0644))

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	fc, err := Fingerprint(c)
	require.NoError(t, err)

	assert.Len(t, fa, 32)
	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc)
}

func TestResolver_Snapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, "data.snap", 4)

	r := NewResolver(nil, path, nil)

	src, err := r.Resolve(StandardID)
	require.NoError(t, err)
	assert.Equal(t, KindSnapshot, src.Kind)
	assert.Equal(t, path, src.Path)
	assert.Contains(t, src.Key, "snapshot:")

	table, err := r.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 4, table.Size())
}

func TestResolver_Errors(t *testing.T) {
	r := NewResolver(nil, "", nil)

	_, err := r.Resolve(StandardID)
	assert.ErrorIs(t, err, ErrNoStandardDataset)

	_, err = r.Resolve(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolver_Spreadsheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("PK not really"), 0644))

	src, err := NewResolver(nil, "", nil).Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, KindSpreadsheet, src.Kind)
	assert.Contains(t, src.Key, "xlsx:")
}
