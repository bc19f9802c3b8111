package vfs

import (
	"unicode/utf8"

	"github.com/martinribelotta/chibios-vfs/errors"
)

// Dir is an open directory cursor returned by OpenDir. It must not be used
// after CloseDir, and the mountpoint it was opened on must stay mounted
// while it is in use.
type Dir struct {
	path   string
	raw    any
	mount  *MountPoint
	closed bool
}

// Path returns the backend-relative path the cursor was opened with.
func (d *Dir) Path() string {
	return d.path
}

// MountPoint returns the mountpoint that owns the cursor.
func (d *Dir) MountPoint() *MountPoint {
	return d.mount
}

// OpenDir resolves path and opens the directory on the owning backend.
func (v *VFS) OpenDir(path string) (*Dir, error) {
	mp, rest, err := v.mounts.resolve(path)
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "cannot open directory"), "path", path)
	}

	raw, err := mp.Backend.OpenDir(rest)
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "cannot open directory"), "path", path)
	}
	return &Dir{path: rest, raw: raw, mount: mp}, nil
}

// ReadDir fills info with the next entry of d. It returns nil when info
// holds a valid entry, io.EOF at the end of the directory, and any other
// error on a backend fault.
func (v *VFS) ReadDir(d *Dir, info *InodeInfo) error {
	if d == nil || d.closed {
		return errors.New(errors.CodeNotOpen, "directory not open")
	}
	if info == nil {
		return errors.New(errors.CodeInvalidInput, "nil inode info")
	}

	if err := d.mount.Backend.ReadDir(d.raw, info); err != nil {
		return err
	}
	info.Name = truncateName(info.Name, v.maxPath)
	return nil
}

// CloseDir releases d on its backend.
func (v *VFS) CloseDir(d *Dir) error {
	if d == nil || d.closed {
		return errors.New(errors.CodeNotOpen, "directory not open")
	}
	d.closed = true
	return d.mount.Backend.CloseDir(d.raw)
}

// truncateName cuts name to at most max bytes without splitting a rune.
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}
