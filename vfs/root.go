package vfs

import (
	"io"
	"io/fs"
	"strings"

	"github.com/martinribelotta/chibios-vfs/errors"
)

// rootBackend serves the synthetic "/" mountpoint. It holds no files; its
// only directory lists the other mountpoints.
type rootBackend struct {
	reg *registry
}

// rootCursor holds the mountpoints listed when the directory was opened,
// newest first, without the root itself.
type rootCursor struct {
	mounts []*MountPoint
	pos    int
	done   bool
}

func (b *rootBackend) Open(path string, _ Flag) (Stream, error) {
	return nil, errors.WithContext(
		errors.Wrap(fs.ErrNotExist, errors.CodeBackendOpenFailed, "the root directory holds no files"),
		"path", path,
	)
}

// OpenDir only accepts the root itself: "/" resolves here with an empty
// remainder, anything longer is a path under no mountpoint.
func (b *rootBackend) OpenDir(path string) (any, error) {
	if path != "" {
		return nil, errors.WithContext(errors.Wrap(fs.ErrNotExist, errors.CodeNotFound, "no such directory"), "path", path)
	}

	b.reg.mu.RLock()
	defer b.reg.mu.RUnlock()

	c := &rootCursor{}
	for mp := b.reg.head; mp != nil && mp.next != nil; mp = mp.next {
		c.mounts = append(c.mounts, mp)
	}
	return c, nil
}

// ReadDir reports one directory entry per mountpoint listed at OpenDir.
// Later mounts and unmounts do not change the listing.
func (b *rootBackend) ReadDir(cursor any, info *InodeInfo) error {
	c, ok := cursor.(*rootCursor)
	if !ok || c == nil {
		return errors.New(errors.CodeInvalidInput, "not a root directory cursor")
	}
	if c.done {
		return errors.New(errors.CodeInvalidInput, "root directory cursor exhausted")
	}

	if c.pos >= len(c.mounts) {
		c.done = true
		return io.EOF
	}

	mp := c.mounts[c.pos]
	c.pos++
	info.Reset()
	info.Name = strings.TrimPrefix(mp.Path, "/")
	info.Flags = AttrDirectory
	info.Raw = mp
	return nil
}

func (b *rootBackend) CloseDir(cursor any) error {
	if c, ok := cursor.(*rootCursor); ok && c != nil {
		c.mounts = nil
		c.done = true
	}
	return nil
}
