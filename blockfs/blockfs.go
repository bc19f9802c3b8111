package blockfs

import (
	"os"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hashicorp/go-multierror"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

const (
	// DefaultPoolSize is the number of file and of directory handles.
	DefaultPoolSize = vfs.DefaultMaxFD - vfs.ReservedFDs

	// DefaultBlockSize is the block size reported by IoctlStat.
	DefaultBlockSize = 512
)

// Option configures an FS.
type Option func(*config)

type config struct {
	poolSize  int
	device    uint64
	blockSize int64
}

// WithPoolSize sets the size of each handle pool. Values below 1 are ignored.
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithDevice sets the device id reported by IoctlStat.
func WithDevice(dev uint64) Option {
	return func(c *config) {
		c.device = dev
	}
}

// WithBlockSize sets the block size reported by IoctlStat. Values below 1
// are ignored.
func WithBlockSize(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.blockSize = n
		}
	}
}

// FS adapts a billy.Filesystem to vfs.MountBackend.
type FS struct {
	bfs       billy.Filesystem
	device    uint64
	blockSize int64

	mu     sync.Mutex
	mounts int
	files  []*fileStream
	dirs   []*dirCursor
}

// New wraps bfs. Paths handed to the backend are cleaned and made relative
// to the root of bfs.
func New(bfs billy.Filesystem, opts ...Option) *FS {
	cfg := config{poolSize: DefaultPoolSize, blockSize: DefaultBlockSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FS{
		bfs:       bfs,
		device:    cfg.device,
		blockSize: cfg.blockSize,
		files:     make([]*fileStream, cfg.poolSize),
		dirs:      make([]*dirCursor, cfg.poolSize),
	}
}

// NewMemory creates an empty in-memory filesystem.
func NewMemory(opts ...Option) *FS {
	return New(memfs.New(), opts...)
}

// NewLocal creates a filesystem rooted at the host directory root.
func NewLocal(root string, opts ...Option) *FS {
	return New(osfs.New(root), opts...)
}

// Unwrap returns the underlying billy.Filesystem.
func (f *FS) Unwrap() billy.Filesystem {
	return f.bfs
}

// OpenHandles returns the number of file and directory handles in use.
func (f *FS) OpenHandles() (files, dirs int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.files {
		if s != nil {
			files++
		}
	}
	for _, c := range f.dirs {
		if c != nil {
			dirs++
		}
	}
	return files, dirs
}

// Init checks that the root directory can be listed. An FS may be mounted
// at several paths at once; all of them share one pair of handle pools.
func (f *FS) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.bfs.ReadDir("."); err != nil {
		return errors.Wrap(err, errors.CodeBackendInitFailed, "root directory is not readable")
	}
	f.mounts++
	return nil
}

// Done releases one mount. When the last mount goes away it closes every
// file handle still in the pool; streams bound to them fail on later use.
func (f *FS) Done() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mounts > 1 {
		f.mounts--
		return nil
	}
	f.mounts = 0

	var result *multierror.Error
	for i, s := range f.files {
		if s == nil {
			continue
		}
		s.released = true
		if err := s.file.Close(); err != nil {
			result = multierror.Append(result, errors.WithContext(err, "path", s.name))
		}
		f.files[i] = nil
	}
	for i, c := range f.dirs {
		if c != nil {
			c.released = true
			f.dirs[i] = nil
		}
	}
	return result.ErrorOrNil()
}

// Open opens name with flags translated to os open flags.
func (f *FS) Open(name string, flags vfs.Flag) (vfs.Stream, error) {
	p := normalize(name)

	f.mu.Lock()
	defer f.mu.Unlock()

	slot := freeSlot(f.files)
	if slot < 0 {
		return nil, errors.WithContext(
			errors.Newf(errors.CodeResourceExhausted, "all %d file handles in use", len(f.files)),
			"path", p,
		)
	}

	file, err := f.bfs.OpenFile(p, openFlags(flags), 0o666)
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeBackendOpenFailed, "open failed"), "path", p)
	}

	s := &fileStream{
		owner:    f,
		file:     file,
		name:     p,
		slot:     slot,
		writable: flags.Has(vfs.FlagWrite),
	}
	f.files[slot] = s
	return s, nil
}

// openFlags maps portable flags onto os flags. Without FlagWrite the open
// is read-only and the creation flags are dropped.
func openFlags(flags vfs.Flag) int {
	if !flags.Has(vfs.FlagWrite) {
		return os.O_RDONLY
	}

	fl := os.O_RDWR
	switch {
	case flags.Has(vfs.FlagExcl):
		fl |= os.O_CREATE | os.O_EXCL
	case flags.Has(vfs.FlagTrunc):
		fl |= os.O_CREATE | os.O_TRUNC
	case flags.Has(vfs.FlagCreate):
		fl |= os.O_CREATE
	}
	return fl
}

// release returns s's slot to the pool. It reports false when Done already
// reclaimed it.
func (f *FS) release(s *fileStream) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s.released {
		return false
	}
	s.released = true
	if f.files[s.slot] == s {
		f.files[s.slot] = nil
	}
	return true
}

// freeSlot returns the first nil index of pool, or -1.
func freeSlot[T any](pool []*T) int {
	for i, v := range pool {
		if v == nil {
			return i
		}
	}
	return -1
}

// normalize cleans name and strips the leading slash, mapping the empty
// path and "/" to ".".
func normalize(name string) string {
	p := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	if p == "/" {
		return "."
	}
	return p[1:]
}

// Compile-time interface checks.
var (
	_ vfs.MountBackend = (*FS)(nil)
	_ vfs.Initializer  = (*FS)(nil)
	_ vfs.Finalizer    = (*FS)(nil)
)
