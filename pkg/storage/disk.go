// Package storage is the physical side of the archive: the directory tree
// below the upload root. All paths are relative to that root and use
// forward slashes, matching models.Folder.Path.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/spf13/afero"
)

const maxCollisionAttempts = 10000

type Disk struct {
	fs   afero.Fs
	root string
}

// NewDisk jails an OS filesystem below root, creating root if missing.
func NewDisk(root string) (*Disk, error) {
	if root == "" {
		return nil, fmt.Errorf("upload root is required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, apperror.Storage("mkdir", abs, err)
	}

	return &Disk{
		fs:   afero.NewBasePathFs(afero.NewOsFs(), abs),
		root: abs,
	}, nil
}

// NewDiskFs wraps an arbitrary filesystem, e.g. afero.NewMemMapFs in tests.
func NewDiskFs(fs afero.Fs) *Disk {
	return &Disk{fs: fs, root: "/"}
}

// Root returns the configured upload root.
func (d *Disk) Root() string {
	return d.root
}

// Fs exposes the underlying filesystem.
func (d *Disk) Fs() afero.Fs {
	return d.fs
}

// MkdirAll creates dir and all missing ancestors.
func (d *Disk) MkdirAll(dir string) error {
	p, err := clean(dir)
	if err != nil {
		return err
	}
	if err := d.fs.MkdirAll(p, 0o755); err != nil {
		return apperror.Storage("mkdir", dir, err)
	}
	return nil
}

// DirExists reports whether dir exists and is a directory.
func (d *Disk) DirExists(dir string) (bool, error) {
	p, err := clean(dir)
	if err != nil {
		return false, err
	}
	ok, err := afero.DirExists(d.fs, p)
	if err != nil {
		return false, apperror.Storage("stat", dir, err)
	}
	return ok, nil
}

// Exists reports whether name exists.
func (d *Disk) Exists(name string) (bool, error) {
	p, err := clean(name)
	if err != nil {
		return false, err
	}
	ok, err := afero.Exists(d.fs, p)
	if err != nil {
		return false, apperror.Storage("stat", name, err)
	}
	return ok, nil
}

// FreeName returns filename, or the first of "base(1).ext", "base(2).ext",
// ... that does not exist in dir. The check is not atomic against
// concurrent writers to the same directory.
func (d *Disk) FreeName(dir, filename string) (string, error) {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	candidate := filename
	for i := 1; i <= maxCollisionAttempts; i++ {
		exists, err := d.Exists(path.Join(dir, candidate))
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s(%d)%s", base, i, ext)
	}

	return "", apperror.Storage("name", path.Join(dir, filename), errors.New("too many name collisions"))
}

// WriteAtomic streams r into dir/filename through a temporary file that is
// renamed into place once fully written.
func (d *Disk) WriteAtomic(dir, filename string, r io.Reader) (int64, error) {
	target, err := clean(path.Join(dir, filename))
	if err != nil {
		return 0, err
	}
	tmp, err := clean(path.Join(dir, ".upload-"+uuid.NewString()+".tmp"))
	if err != nil {
		return 0, err
	}

	f, err := d.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, apperror.Storage("create", tmp, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		d.fs.Remove(tmp)
		return n, apperror.Storage("write", target, err)
	}
	if err := f.Close(); err != nil {
		d.fs.Remove(tmp)
		return n, apperror.Storage("close", target, err)
	}

	if err := d.fs.Rename(tmp, target); err != nil {
		d.fs.Remove(tmp)
		return n, apperror.Storage("rename", target, err)
	}

	return n, nil
}

// Open opens name for reading.
func (d *Disk) Open(name string) (afero.File, error) {
	p, err := clean(name)
	if err != nil {
		return nil, err
	}
	f, err := d.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperror.NotFound("stored file", name)
		}
		return nil, apperror.Storage("open", name, err)
	}
	return f, nil
}

// Remove deletes a single file. A missing file is not an error.
func (d *Disk) Remove(name string) error {
	p, err := clean(name)
	if err != nil {
		return err
	}
	if err := d.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperror.Storage("remove", name, err)
	}
	return nil
}

// clean normalizes a root relative path and rejects escapes.
func clean(name string) (string, error) {
	p := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	if strings.Contains(name, "\x00") {
		return "", apperror.Validation("path %q contains a NUL byte", name)
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return "", apperror.Validation("path %q escapes the upload root", name)
		}
	}
	return p, nil
}
