package vfs

// MountBackend is the capability set of a filesystem that can be mounted at
// a path prefix. Every path it receives is the remainder after the prefix.
type MountBackend interface {
	// Open opens the file at path and returns a Stream owning the backend
	// handle.
	Open(path string, flags Flag) (Stream, error)

	// OpenDir starts iterating the directory at path and returns a
	// backend-private cursor.
	OpenDir(path string) (any, error)

	// ReadDir fills info with the next entry of cursor. It returns nil when
	// info holds an entry, io.EOF at the end of the directory and any other
	// error on an I/O fault.
	ReadDir(cursor any, info *InodeInfo) error

	// CloseDir releases cursor.
	CloseDir(cursor any) error
}

// Initializer is implemented by backends that need setup before they are
// reachable. Init runs during Mount; an error aborts the mount.
type Initializer interface {
	Init() error
}

// Finalizer is implemented by backends that need teardown. Done runs after
// the mountpoint has been unlinked by Unmount.
type Finalizer interface {
	Done() error
}

// MountPoint binds a backend to a path prefix. Path is compared literally:
// "/SD1" and "/SD1/" are different mountpoints.
type MountPoint struct {
	Path    string
	Backend MountBackend

	next *MountPoint
}

// NewMountPoint returns an unregistered mountpoint for backend at path.
func NewMountPoint(path string, backend MountBackend) *MountPoint {
	return &MountPoint{Path: path, Backend: backend}
}

// Attr is the set of FAT-style attribute bits reported for a directory entry.
type Attr uint8

const (
	AttrReadOnly  Attr = 0x01
	AttrHidden    Attr = 0x02
	AttrSystem    Attr = 0x04
	AttrVolume    Attr = 0x08
	AttrDirectory Attr = 0x10
	AttrArchive   Attr = 0x20
)

// IsDir reports whether the directory bit is set.
func (a Attr) IsDir() bool {
	return a&AttrDirectory != 0
}

// InodeInfo is one directory entry.
type InodeInfo struct {
	// Name is the entry name, at most the switch's MaxPath bytes.
	Name string
	// Flags holds the attribute bits.
	Flags Attr
	// Size is the entry size in bytes.
	Size int64
	// Raw is a backend-defined value, valid only until the next ReadDir
	// on the same cursor. The switch never owns it.
	Raw any
}

// Reset clears every field.
func (i *InodeInfo) Reset() {
	*i = InodeInfo{}
}
