package vfs

import (
	"strings"
	"time"
)

// Flag is the portable open-mode bit set accepted by Open.
type Flag int

const (
	// FlagRead opens for reading. It is the zero value and the default.
	FlagRead Flag = 0
	// FlagWrite requests write access.
	FlagWrite Flag = 1 << 0
	// FlagCreate creates the file if it does not exist.
	FlagCreate Flag = 1 << 1
	// FlagTrunc creates the file, truncating any existing content.
	FlagTrunc Flag = 1 << 2
	// FlagExcl creates the file and fails if it already exists.
	FlagExcl Flag = 1 << 3
)

// Has reports whether every bit of x is set in f.
func (f Flag) Has(x Flag) bool {
	return x != 0 && f&x == x
}

// String returns the flag set as "read", or "write|create|..." when bits are set.
func (f Flag) String() string {
	if f == FlagRead {
		return "read"
	}
	var parts []string
	for _, b := range []struct {
		flag Flag
		name string
	}{
		{FlagWrite, "write"},
		{FlagCreate, "create"},
		{FlagTrunc, "trunc"},
		{FlagExcl, "excl"},
	} {
		if f.Has(b.flag) {
			parts = append(parts, b.name)
		}
	}
	return strings.Join(parts, "|")
}

// Stream is the capability set of one open I/O channel.
//
// The Stream value carries its backend-private handle; binding it into a
// descriptor slot installs the whole capability set at once.
type Stream interface {
	// Init runs once after a backend opened the stream and before its
	// descriptor is returned to the caller.
	Init(flags Flag) error

	// Close releases the backend handle. It is called at most once per
	// successful Open.
	Close() error

	// Read reads up to len(p) bytes, blocking as the backend blocks.
	Read(p []byte) (int, error)

	// Write writes len(p) bytes, blocking as the backend blocks.
	Write(p []byte) (int, error)
}

// Ioctler is implemented by Streams that accept out-of-band commands.
// Streams without it answer every command except IoctlNop with CodeUnsupported.
type Ioctler interface {
	Ioctl(cmd IoctlCommand, arg Variant) (int64, error)
}

// IoctlCommand selects an out-of-band stream operation.
type IoctlCommand int

const (
	// IoctlNop does nothing and succeeds on any bound descriptor.
	IoctlNop IoctlCommand = iota
	// IoctlSeek repositions the stream; the argument is *SeekRequest.
	IoctlSeek
	// IoctlStat reports status; the argument is *StatInfo.
	IoctlStat
	// IoctlIsatty reports whether the stream is a terminal; the argument is *TTYInfo.
	IoctlIsatty
)

func (c IoctlCommand) String() string {
	switch c {
	case IoctlNop:
		return "nop"
	case IoctlSeek:
		return "seek"
	case IoctlStat:
		return "stat"
	case IoctlIsatty:
		return "isatty"
	default:
		return "unknown"
	}
}

// Variant is the argument of an ioctl command. The concrete types are
// *SeekRequest, *StatInfo and *TTYInfo.
type Variant interface {
	variant()
}

// Whence is the reference point of a seek.
type Whence int

// The values match io.SeekStart, io.SeekCurrent and io.SeekEnd.
const (
	SeekSet Whence = iota
	SeekCur
	SeekEnd
)

// SeekRequest is the IoctlSeek argument. On success Previous holds the
// offset before the seek and the ioctl result is the new absolute offset.
type SeekRequest struct {
	Whence   Whence
	Offset   int64
	Previous int64
}

// StatInfo is the IoctlStat argument, filled by the backend.
// Backends that do not track timestamps leave them zero.
type StatInfo struct {
	Dev       uint64
	Ino       uint64
	Mode      uint32
	Nlink     uint32
	Size      int64
	BlockSize int64
	Blocks    int64
	Atime     time.Time
	Mtime     time.Time
	Ctime     time.Time
}

// TTYInfo is the IoctlIsatty argument.
type TTYInfo struct {
	IsTTY bool
}

func (*SeekRequest) variant() {}
func (*StatInfo) variant()    {}
func (*TTYInfo) variant()     {}

// argMatches reports whether arg is the non-nil argument type cmd expects.
func argMatches(cmd IoctlCommand, arg Variant) bool {
	switch cmd {
	case IoctlSeek:
		a, ok := arg.(*SeekRequest)
		return ok && a != nil
	case IoctlStat:
		a, ok := arg.(*StatInfo)
		return ok && a != nil
	case IoctlIsatty:
		a, ok := arg.(*TTYInfo)
		return ok && a != nil
	default:
		return false
	}
}
