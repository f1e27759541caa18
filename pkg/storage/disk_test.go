package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemDisk(t *testing.T) *Disk {
	t.Helper()
	return NewDiskFs(afero.NewMemMapFs())
}

func TestMkdirAllIsIdempotent(t *testing.T) {
	d := newMemDisk(t)

	require.NoError(t, d.MkdirAll("2024-2025/first/PROF77/MATH101 - Calculus/Exams"))
	require.NoError(t, d.MkdirAll("2024-2025/first/PROF77/MATH101 - Calculus/Exams"))

	ok, err := d.DirExists("2024-2025/first/PROF77")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteAtomicAndFreeName(t *testing.T) {
	d := newMemDisk(t)
	require.NoError(t, d.MkdirAll("a/b"))

	name, err := d.FreeName("a/b", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", name)

	n, err := d.WriteAtomic("a/b", name, strings.NewReader("first"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	name, err = d.FreeName("a/b", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report(1).pdf", name)

	_, err = d.WriteAtomic("a/b", name, strings.NewReader("second"))
	require.NoError(t, err)

	name, err = d.FreeName("a/b", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report(2).pdf", name)

	f, err := d.Open("a/b/report(1).pdf")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := afero.ReadDir(d.Fs(), "/a/b")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files left behind")
}

func TestFreeNameWithoutExtension(t *testing.T) {
	d := newMemDisk(t)
	require.NoError(t, d.MkdirAll("x"))
	_, err := d.WriteAtomic("x", "README", strings.NewReader("r"))
	require.NoError(t, err)

	name, err := d.FreeName("x", "README")
	require.NoError(t, err)
	assert.Equal(t, "README(1)", name)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestWriteAtomicFailureLeavesNothing(t *testing.T) {
	d := newMemDisk(t)
	require.NoError(t, d.MkdirAll("x"))

	_, err := d.WriteAtomic("x", "broken.pdf", failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrStorage)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	entries, err := afero.ReadDir(d.Fs(), "/x")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemoveAndOpenMissing(t *testing.T) {
	d := newMemDisk(t)
	require.NoError(t, d.MkdirAll("x"))
	_, err := d.WriteAtomic("x", "a.txt", strings.NewReader("a"))
	require.NoError(t, err)

	require.NoError(t, d.Remove("x/a.txt"))
	require.NoError(t, d.Remove("x/a.txt"))

	_, err = d.Open("x/a.txt")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRejectsEscapes(t *testing.T) {
	d := newMemDisk(t)

	assert.ErrorIs(t, d.MkdirAll("../etc"), apperror.ErrValidation)
	_, err := d.Open("a/../../secret")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestNewDiskCreatesRoot(t *testing.T) {
	root := t.TempDir() + "/uploads"
	d, err := NewDisk(root)
	require.NoError(t, err)
	assert.Equal(t, root, d.Root())

	_, err = d.WriteAtomic("2024-2025/first", "x.txt", strings.NewReader("x"))
	require.Error(t, err, "parent directory must exist")

	require.NoError(t, d.MkdirAll("2024-2025/first"))
	_, err = d.WriteAtomic("2024-2025/first", "x.txt", strings.NewReader("x"))
	require.NoError(t, err)
}
