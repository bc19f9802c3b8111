package blockfs

import (
	"encoding/binary"
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"github.com/zeebo/blake3"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

// POSIX file type bits reported in StatInfo.Mode.
const (
	modeRegular = 0o100000
	modeDir     = 0o040000
)

// fileStream is one pooled file handle.
type fileStream struct {
	owner    *FS
	file     billy.File
	name     string
	slot     int
	writable bool
	released bool
}

// Init is a no-op; the handle is ready once OpenFile returns.
func (s *fileStream) Init(vfs.Flag) error {
	return nil
}

// Close closes the billy file and frees the pool slot. A handle already
// reclaimed by Done reports CodeNotOpen.
func (s *fileStream) Close() error {
	if !s.owner.release(s) {
		return errors.WithContext(errors.New(errors.CodeNotOpen, "file handle released by unmount"), "path", s.name)
	}
	return s.file.Close()
}

func (s *fileStream) Read(p []byte) (int, error) {
	return s.file.Read(p)
}

func (s *fileStream) Write(p []byte) (int, error) {
	if !s.writable {
		return 0, &fs.PathError{Op: "write", Path: s.name, Err: fs.ErrPermission}
	}
	return s.file.Write(p)
}

// Ioctl implements seek, stat and isatty.
func (s *fileStream) Ioctl(cmd vfs.IoctlCommand, arg vfs.Variant) (int64, error) {
	switch cmd {
	case vfs.IoctlNop:
		return 0, nil
	case vfs.IoctlSeek:
		req, ok := arg.(*vfs.SeekRequest)
		if !ok || req == nil {
			return -1, errors.New(errors.CodeInvalidInput, "seek requires a *SeekRequest")
		}
		return s.seek(req)
	case vfs.IoctlStat:
		st, ok := arg.(*vfs.StatInfo)
		if !ok || st == nil {
			return -1, errors.New(errors.CodeInvalidInput, "stat requires a *StatInfo")
		}
		return 0, s.stat(st)
	case vfs.IoctlIsatty:
		tty, ok := arg.(*vfs.TTYInfo)
		if !ok || tty == nil {
			return -1, errors.New(errors.CodeInvalidInput, "isatty requires a *TTYInfo")
		}
		tty.IsTTY = false
		return 0, nil
	default:
		return -1, errors.Newf(errors.CodeUnsupported, "ioctl %s not supported", cmd)
	}
}

// seek moves to an absolute offset computed from req. Offsets past the end
// are allowed; a later write fills the gap with zeros.
func (s *fileStream) seek(req *vfs.SeekRequest) (int64, error) {
	prev, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1, err
	}

	var base int64
	switch req.Whence {
	case vfs.SeekSet:
	case vfs.SeekCur:
		base = prev
	case vfs.SeekEnd:
		end, err := s.file.Seek(0, io.SeekEnd)
		if err != nil {
			return -1, err
		}
		base = end
	default:
		_, _ = s.file.Seek(prev, io.SeekStart)
		return -1, errors.Newf(errors.CodeInvalidInput, "unknown whence %d", req.Whence)
	}

	target := base + req.Offset
	if target < 0 {
		_, _ = s.file.Seek(prev, io.SeekStart)
		return -1, errors.WithContext(errors.New(errors.CodeInvalidInput, "negative seek position"), "offset", target)
	}

	pos, err := s.file.Seek(target, io.SeekStart)
	if err != nil {
		return -1, err
	}
	req.Previous = prev
	return pos, nil
}

func (s *fileStream) stat(st *vfs.StatInfo) error {
	info, err := s.owner.bfs.Stat(s.name)
	if err != nil {
		return err
	}
	s.owner.fillStat(s.name, info, st)
	return nil
}

// fillStat reports info the way a FAT volume would: fixed permissions, a
// single link and no timestamps.
func (f *FS) fillStat(name string, info fs.FileInfo, st *vfs.StatInfo) {
	*st = vfs.StatInfo{
		Dev:       f.device,
		Ino:       inode(name),
		Nlink:     1,
		Size:      info.Size(),
		BlockSize: f.blockSize,
	}
	if info.IsDir() {
		st.Mode = modeDir | 0o777
		st.Size = 0
	} else {
		st.Mode = modeRegular | 0o666
	}
	st.Blocks = (st.Size + f.blockSize - 1) / f.blockSize
}

// inode derives a stable inode number from the cleaned path.
func inode(name string) uint64 {
	sum := blake3.Sum256([]byte(name))
	return binary.LittleEndian.Uint64(sum[:8])
}

// Stat fills st for the file or directory at name without opening it.
func (f *FS) Stat(name string, st *vfs.StatInfo) error {
	p := normalize(name)
	info, err := f.bfs.Stat(p)
	if err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "stat failed"), "path", p)
	}
	f.fillStat(p, info, st)
	return nil
}

// Compile-time interface checks.
var (
	_ vfs.Stream  = (*fileStream)(nil)
	_ vfs.Ioctler = (*fileStream)(nil)
)
