// Package console provides a vfs.Stream over a serial-style byte transport,
// such as the process's standard streams or a UART driver.
//
// Output translates bare line feeds into CRLF unless WithRawOutput is set.
// Input is passed through untouched.
package console

import (
	"io"
	"sync"

	"golang.org/x/term"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

// Option configures a Console.
type Option func(*Console)

// WithRawOutput disables LF to CRLF translation.
func WithRawOutput() Option {
	return func(c *Console) {
		c.raw = true
	}
}

// Console is a Stream over r and w. Either may be nil: reads then report
// io.EOF and writes fail with CodeUnsupported.
type Console struct {
	r   io.Reader
	w   io.Writer
	raw bool

	mu     sync.Mutex
	lastCR bool
}

// New returns a console reading from r and writing to w.
func New(r io.Reader, w io.Writer, opts ...Option) *Console {
	c := &Console{r: r, w: w}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init is a no-op.
func (c *Console) Init(vfs.Flag) error {
	return nil
}

// Close is a no-op; the transport belongs to the caller.
func (c *Console) Close() error {
	return nil
}

func (c *Console) Read(p []byte) (int, error) {
	if c.r == nil {
		return 0, io.EOF
	}
	return c.r.Read(p)
}

// Write sends p, inserting "\r" before every "\n" not already preceded by
// one. The line state carries over between calls. The count returned is
// in bytes of p, so a short write of the translated output reports how
// much of p was fully sent.
func (c *Console) Write(p []byte) (int, error) {
	if c.w == nil {
		return 0, errors.New(errors.CodeUnsupported, "console has no output")
	}
	if c.raw {
		return c.w.Write(p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]byte, 0, len(p)+len(p)/8)
	cr := c.lastCR
	for _, b := range p {
		if b == '\n' && !cr {
			out = append(out, '\r')
		}
		cr = b == '\r'
		out = append(out, b)
	}

	n, err := c.w.Write(out)
	if err == nil && n == len(out) {
		c.lastCR = cr
		return len(p), nil
	}
	if err == nil {
		err = io.ErrShortWrite
	}
	sent, cr := consumed(p, n, c.lastCR)
	c.lastCR = cr
	return sent, err
}

// consumed replays the translation of p and returns how many input bytes
// fit entirely in the first n output bytes, with the line state after them.
func consumed(p []byte, n int, cr bool) (int, bool) {
	outLen := 0
	for i, b := range p {
		size := 1
		if b == '\n' && !cr {
			size = 2
		}
		if outLen+size > n {
			return i, cr
		}
		outLen += size
		cr = b == '\r'
	}
	return len(p), cr
}

// Ioctl answers IoctlNop and IoctlIsatty. Every other command is
// unsupported.
func (c *Console) Ioctl(cmd vfs.IoctlCommand, arg vfs.Variant) (int64, error) {
	switch cmd {
	case vfs.IoctlNop:
		return 0, nil
	case vfs.IoctlIsatty:
		tty, ok := arg.(*vfs.TTYInfo)
		if !ok || tty == nil {
			return -1, errors.New(errors.CodeInvalidInput, "isatty requires a *TTYInfo")
		}
		tty.IsTTY = c.isTerminal()
		return 0, nil
	default:
		return -1, errors.Newf(errors.CodeUnsupported, "console does not support ioctl %s", cmd)
	}
}

type fder interface {
	Fd() uintptr
}

// isTerminal reports whether the writer, or failing that the reader, is
// backed by a terminal.
func (c *Console) isTerminal() bool {
	for _, v := range []any{c.w, c.r} {
		if f, ok := v.(fder); ok {
			return term.IsTerminal(int(f.Fd()))
		}
	}
	return false
}

// BindStandard binds consoles over in, out and errOut to vfs.Stdin,
// vfs.Stdout and vfs.Stderr. On failure nothing stays bound.
func BindStandard(v *vfs.VFS, in io.Reader, out, errOut io.Writer, opts ...Option) error {
	streams := []struct {
		fd int
		s  *Console
	}{
		{vfs.Stdin, New(in, nil, opts...)},
		{vfs.Stdout, New(nil, out, opts...)},
		{vfs.Stderr, New(nil, errOut, opts...)},
	}
	for i, e := range streams {
		if err := v.Bind(e.fd, e.s); err != nil {
			for _, prev := range streams[:i] {
				_ = v.Release(prev.fd)
			}
			return errors.WithContext(err, "fd", e.fd)
		}
	}
	return nil
}

// Compile-time interface checks.
var (
	_ vfs.Stream  = (*Console)(nil)
	_ vfs.Ioctler = (*Console)(nil)
)
