package vfs

//go:generate go run github.com/matryer/moq@v0.5.3 -out mocks/vfs.go -pkg mocks . Stream MountBackend

import (
	"github.com/martinribelotta/chibios-vfs/errors"
)

const (
	// DefaultMaxFD is the default descriptor table capacity.
	DefaultMaxFD = 16

	// ReservedFDs is the number of low descriptors conventionally bound to
	// console streams (Stdin, Stdout, Stderr).
	ReservedFDs = 3

	// DefaultMaxPath bounds directory entry names.
	DefaultMaxPath = 256
)

// Option configures a VFS.
type Option func(*config)

type config struct {
	maxFD   int
	maxPath int
}

// WithMaxFD sets the descriptor table capacity. Values below 1 are ignored.
func WithMaxFD(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxFD = n
		}
	}
}

// WithMaxPath sets the maximum length of directory entry names.
// Values below 1 are ignored.
func WithMaxPath(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPath = n
		}
	}
}

// VFS is the filesystem switch: one descriptor table and one mount
// registry. Construct it once at startup and share it.
type VFS struct {
	table   *descriptorTable
	mounts  *registry
	maxPath int
}

// New creates a switch with an empty descriptor table and only the root
// mountpoint registered.
func New(opts ...Option) *VFS {
	cfg := config{maxFD: DefaultMaxFD, maxPath: DefaultMaxPath}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &VFS{
		table:   newDescriptorTable(cfg.maxFD),
		mounts:  newRegistry(),
		maxPath: cfg.maxPath,
	}
}

// MaxFD returns the descriptor table capacity.
func (v *VFS) MaxFD() int {
	return len(v.table.slots)
}

// InUse returns the number of bound descriptors.
func (v *VFS) InUse() int {
	return v.table.inUse()
}

// Open resolves path to a mountpoint, asks its backend to open the
// remainder and binds the resulting stream to the lowest free descriptor.
func (v *VFS) Open(path string, flags Flag) (int, error) {
	mp, rest, err := v.mounts.resolve(path)
	if err != nil {
		return -1, err
	}

	fd, err := v.table.allocate()
	if err != nil {
		return -1, errors.WithContext(err, "path", path)
	}

	s, err := mp.Backend.Open(rest, flags)
	if err == nil && s == nil {
		err = errors.New(errors.CodeInternal, "backend returned no stream")
	}
	if err != nil {
		v.table.cancel(fd)
		return -1, errors.WithContext(openError(err), "path", path)
	}

	if err := s.Init(flags); err != nil {
		_ = s.Close()
		v.table.cancel(fd)
		return -1, errors.WithContext(errors.Wrap(err, errors.CodeBackendOpenFailed, "stream init failed"), "path", path)
	}

	v.table.install(fd, s)
	return fd, nil
}

// openError keeps coded backend errors as they are and classifies bare
// ones as open failures.
func openError(err error) error {
	var platformErr errors.PlatformError
	if errors.As(err, &platformErr) {
		return err
	}
	return errors.Wrap(err, errors.CodeBackendOpenFailed, "backend open failed")
}

// Close closes the stream bound to fd and frees the descriptor. Closing an
// unbound descriptor fails with CodeNotOpen and does not reach any backend.
// The backend's Close error is returned, but the descriptor is freed
// either way.
func (v *VFS) Close(fd int) error {
	s, err := v.table.detach(fd)
	if err != nil {
		return err
	}
	defer v.table.cancel(fd)
	return s.Close()
}

// Read reads from the stream bound to fd. Backend errors, io.EOF included,
// are returned unchanged.
func (v *VFS) Read(fd int, p []byte) (int, error) {
	s, err := v.table.get(fd)
	if err != nil {
		return 0, err
	}
	return s.Read(p)
}

// Write writes to the stream bound to fd. Backend errors are returned
// unchanged.
func (v *VFS) Write(fd int, p []byte) (int, error) {
	s, err := v.table.get(fd)
	if err != nil {
		return 0, err
	}
	return s.Write(p)
}

// Ioctl sends an out-of-band command to the stream bound to fd. IoctlNop
// succeeds on any bound descriptor without reaching the backend. arg must
// be the argument type of cmd.
func (v *VFS) Ioctl(fd int, cmd IoctlCommand, arg Variant) (int64, error) {
	s, err := v.table.get(fd)
	if err != nil {
		return -1, err
	}
	if cmd == IoctlNop {
		return 0, nil
	}
	if !argMatches(cmd, arg) {
		return -1, errors.WithContext(errors.Newf(errors.CodeInvalidInput, "wrong argument %T for ioctl %s", arg, cmd), "fd", fd)
	}

	ioc, ok := s.(Ioctler)
	if !ok {
		return -1, errors.WithContext(errors.Newf(errors.CodeUnsupported, "ioctl %s not supported", cmd), "fd", fd)
	}
	return ioc.Ioctl(cmd, arg)
}

// Bind installs s into the unbound descriptor fd. Applications use it to
// place console streams at Stdin, Stdout and Stderr. Init is not called.
func (v *VFS) Bind(fd int, s Stream) error {
	return v.table.bind(fd, s)
}

// Release unbinds fd without calling the stream's Close; the caller keeps
// ownership of the stream.
func (v *VFS) Release(fd int) error {
	return v.table.release(fd)
}

// Mount registers mp at the head of the registry after running its
// backend's Init, if any. A mountpoint with the same path must not already
// be registered.
func (v *VFS) Mount(mp *MountPoint) error {
	return v.mounts.mount(mp)
}

// Unmount removes the mountpoint registered under mp.Path and then runs
// its backend's Done, if any. The root mountpoint cannot be unmounted.
// Streams and cursors already opened on the backend are not closed.
func (v *VFS) Unmount(mp *MountPoint) error {
	return v.mounts.unmount(mp)
}

// Resolve returns the mountpoint that owns path and the remainder the
// backend would receive.
func (v *VFS) Resolve(path string) (*MountPoint, string, error) {
	return v.mounts.resolve(path)
}

// Mounts returns the mounted paths in resolution order, most recently
// mounted first; the root is always last.
func (v *VFS) Mounts() []string {
	return v.mounts.paths()
}
