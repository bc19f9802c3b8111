package blockfs

import (
	"io"
	"io/fs"
	"strings"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

// dirCursor is one pooled directory handle. Entries are read when the
// directory is opened.
type dirCursor struct {
	name     string
	slot     int
	entries  []fs.FileInfo
	pos      int
	released bool
}

// OpenDir lists the directory at name into a pooled cursor.
func (f *FS) OpenDir(name string) (any, error) {
	p := normalize(name)

	f.mu.Lock()
	defer f.mu.Unlock()

	slot := freeSlot(f.dirs)
	if slot < 0 {
		return nil, errors.WithContext(
			errors.Newf(errors.CodeResourceExhausted, "all %d directory handles in use", len(f.dirs)),
			"path", p,
		)
	}

	entries, err := f.bfs.ReadDir(p)
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "cannot read directory"), "path", p)
	}

	c := &dirCursor{name: p, slot: slot, entries: entries}
	f.dirs[slot] = c
	return c, nil
}

// ReadDir fills info with the next entry. info is cleared first, so a
// stale name never survives the call.
func (f *FS) ReadDir(cursor any, info *vfs.InodeInfo) error {
	c, err := f.cursor(cursor)
	if err != nil {
		return err
	}

	info.Reset()
	if c.pos >= len(c.entries) {
		return io.EOF
	}
	fi := c.entries[c.pos]
	c.pos++

	info.Name = fi.Name()
	info.Flags = attributes(fi)
	info.Raw = fi
	if !fi.IsDir() {
		info.Size = fi.Size()
	}
	return nil
}

// CloseDir returns the cursor to the pool.
func (f *FS) CloseDir(cursor any) error {
	c, err := f.cursor(cursor)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	c.released = true
	if f.dirs[c.slot] == c {
		f.dirs[c.slot] = nil
	}
	return nil
}

func (f *FS) cursor(cursor any) (*dirCursor, error) {
	c, ok := cursor.(*dirCursor)
	if !ok || c == nil {
		return nil, errors.Newf(errors.CodeInvalidInput, "not a blockfs directory cursor: %T", cursor)
	}
	if c.released {
		return nil, errors.WithContext(errors.New(errors.CodeNotOpen, "directory cursor released"), "path", c.name)
	}
	return c, nil
}

// attributes maps file info onto FAT attribute bits.
func attributes(fi fs.FileInfo) vfs.Attr {
	var a vfs.Attr
	if fi.IsDir() {
		a |= vfs.AttrDirectory
	} else {
		a |= vfs.AttrArchive
	}
	if fi.Mode().Perm()&0o200 == 0 {
		a |= vfs.AttrReadOnly
	}
	if strings.HasPrefix(fi.Name(), ".") {
		a |= vfs.AttrHidden
	}
	return a
}
