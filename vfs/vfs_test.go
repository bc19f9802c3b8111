package vfs_test

import (
	"bytes"
	"io"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
	"github.com/martinribelotta/chibios-vfs/vfs/mocks"
)

func newStream() *mocks.StreamMock {
	return &mocks.StreamMock{
		InitFunc:  func(vfs.Flag) error { return nil },
		CloseFunc: func() error { return nil },
		ReadFunc:  func(p []byte) (int, error) { return 0, io.EOF },
		WriteFunc: func(p []byte) (int, error) { return len(p), nil },
	}
}

func newBackend(s vfs.Stream) *mocks.MountBackendMock {
	return &mocks.MountBackendMock{
		OpenFunc:     func(string, vfs.Flag) (vfs.Stream, error) { return s, nil },
		OpenDirFunc:  func(string) (any, error) { return "cursor", nil },
		ReadDirFunc:  func(any, *vfs.InodeInfo) error { return io.EOF },
		CloseDirFunc: func(any) error { return nil },
	}
}

func TestNew(t *testing.T) {
	v := vfs.New()
	assert.Equal(t, vfs.DefaultMaxFD, v.MaxFD())
	assert.Equal(t, 0, v.InUse())
	assert.Equal(t, []string{vfs.RootPath}, v.Mounts())

	v = vfs.New(vfs.WithMaxFD(4), vfs.WithMaxFD(0))
	assert.Equal(t, 4, v.MaxFD())
}

func TestOpen_NoMount(t *testing.T) {
	v := vfs.New()

	fd, err := v.Open("relative/path", vfs.FlagRead)
	require.Error(t, err)
	assert.Equal(t, -1, fd)
	assert.True(t, errors.HasCode(err, errors.CodeNoMount))
	assert.Equal(t, 0, v.InUse())
}

func TestOpen_PassesRemainderAndFlags(t *testing.T) {
	v := vfs.New()
	s := newStream()
	b := newBackend(s)
	require.NoError(t, v.Mount(vfs.NewMountPoint("/SD1", b)))

	flags := vfs.FlagWrite | vfs.FlagCreate
	fd, err := v.Open("/SD1/log.txt", flags)
	require.NoError(t, err)
	assert.Equal(t, 0, fd)

	require.Len(t, b.OpenCalls(), 1)
	assert.Equal(t, "/log.txt", b.OpenCalls()[0].Path)
	assert.Equal(t, flags, b.OpenCalls()[0].Flags)
	require.Len(t, s.InitCalls(), 1)
	assert.Equal(t, flags, s.InitCalls()[0].Flags)
}

func TestOpen_LowestFreeDescriptor(t *testing.T) {
	v := vfs.New()
	require.NoError(t, v.Bind(vfs.Stdin, newStream()))
	require.NoError(t, v.Bind(vfs.Stdout, newStream()))
	require.NoError(t, v.Bind(vfs.Stderr, newStream()))
	require.NoError(t, v.Mount(vfs.NewMountPoint("/m", newBackend(newStream()))))

	fd, err := v.Open("/m/a", vfs.FlagRead)
	require.NoError(t, err)
	assert.Equal(t, vfs.ReservedFDs, fd)

	fd2, err := v.Open("/m/b", vfs.FlagRead)
	require.NoError(t, err)
	assert.Equal(t, vfs.ReservedFDs+1, fd2)

	require.NoError(t, v.Close(fd))
	fd3, err := v.Open("/m/c", vfs.FlagRead)
	require.NoError(t, err)
	assert.Equal(t, fd, fd3)
}

func TestOpen_BackendErrors(t *testing.T) {
	t.Run("bare error is classified", func(t *testing.T) {
		v := vfs.New()
		b := newBackend(nil)
		b.OpenFunc = func(string, vfs.Flag) (vfs.Stream, error) { return nil, fs.ErrNotExist }
		require.NoError(t, v.Mount(vfs.NewMountPoint("/m", b)))

		_, err := v.Open("/m/x", vfs.FlagRead)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeBackendOpenFailed))
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Equal(t, 0, v.InUse())
	})

	t.Run("coded error passes through", func(t *testing.T) {
		v := vfs.New()
		b := newBackend(nil)
		b.OpenFunc = func(string, vfs.Flag) (vfs.Stream, error) {
			return nil, errors.New(errors.CodeResourceExhausted, "no handles")
		}
		require.NoError(t, v.Mount(vfs.NewMountPoint("/m", b)))

		_, err := v.Open("/m/x", vfs.FlagRead)
		assert.True(t, errors.HasCode(err, errors.CodeResourceExhausted))
	})

	t.Run("nil stream", func(t *testing.T) {
		v := vfs.New()
		require.NoError(t, v.Mount(vfs.NewMountPoint("/m", newBackend(nil))))

		_, err := v.Open("/m/x", vfs.FlagRead)
		assert.True(t, errors.HasCode(err, errors.CodeInternal))
	})

	t.Run("init failure closes stream", func(t *testing.T) {
		v := vfs.New()
		s := newStream()
		s.InitFunc = func(vfs.Flag) error { return io.ErrUnexpectedEOF }
		require.NoError(t, v.Mount(vfs.NewMountPoint("/m", newBackend(s))))

		_, err := v.Open("/m/x", vfs.FlagRead)
		assert.True(t, errors.HasCode(err, errors.CodeBackendOpenFailed))
		assert.Len(t, s.CloseCalls(), 1)
		assert.Equal(t, 0, v.InUse())

		fd, err := v.Open("/", vfs.FlagRead)
		assert.Equal(t, -1, fd)
		assert.Error(t, err)
	})
}

func TestOpen_Exhaustion(t *testing.T) {
	v := vfs.New(vfs.WithMaxFD(3))
	b := newBackend(newStream())
	require.NoError(t, v.Mount(vfs.NewMountPoint("/m", b)))

	for i := 0; i < 3; i++ {
		fd, err := v.Open("/m/f", vfs.FlagRead)
		require.NoError(t, err)
		assert.Equal(t, i, fd)
	}

	fd, err := v.Open("/m/f", vfs.FlagRead)
	assert.Equal(t, -1, fd)
	assert.True(t, errors.HasCode(err, errors.CodeResourceExhausted))
	assert.Len(t, b.OpenCalls(), 3)
	assert.Equal(t, 3, v.InUse())

	// Existing descriptors are untouched.
	for i := 0; i < 3; i++ {
		n, err := v.Write(i, []byte("ok"))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
}

func TestOpen_ConcurrentNeverExceedsCapacity(t *testing.T) {
	const maxFD = 8
	v := vfs.New(vfs.WithMaxFD(maxFD))
	require.NoError(t, v.Mount(vfs.NewMountPoint("/m", newBackend(newStream()))))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		fds  = map[int]bool{}
		full int
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fd, err := v.Open("/m/f", vfs.FlagRead)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				full++
				return
			}
			assert.False(t, fds[fd], "descriptor %d handed out twice", fd)
			fds[fd] = true
		}()
	}
	wg.Wait()

	assert.Len(t, fds, maxFD)
	assert.Equal(t, 64-maxFD, full)
	assert.Equal(t, maxFD, v.InUse())
}

func TestClose(t *testing.T) {
	v := vfs.New()
	s := newStream()
	require.NoError(t, v.Mount(vfs.NewMountPoint("/m", newBackend(s))))

	fd, err := v.Open("/m/f", vfs.FlagRead)
	require.NoError(t, err)

	require.NoError(t, v.Close(fd))
	err = v.Close(fd)
	assert.True(t, errors.HasCode(err, errors.CodeNotOpen))
	assert.Len(t, s.CloseCalls(), 1)

	err = v.Close(vfs.DefaultMaxFD)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidDescriptor))
	err = v.Close(-1)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidDescriptor))
}

func TestClose_BackendErrorFreesDescriptor(t *testing.T) {
	v := vfs.New()
	s := newStream()
	s.CloseFunc = func() error { return io.ErrClosedPipe }
	require.NoError(t, v.Mount(vfs.NewMountPoint("/m", newBackend(s))))

	fd, err := v.Open("/m/f", vfs.FlagRead)
	require.NoError(t, err)

	assert.ErrorIs(t, v.Close(fd), io.ErrClosedPipe)
	assert.Equal(t, 0, v.InUse())
}

func TestReadWrite(t *testing.T) {
	v := vfs.New()
	var buf bytes.Buffer
	s := newStream()
	s.WriteFunc = buf.Write
	s.ReadFunc = buf.Read
	require.NoError(t, v.Mount(vfs.NewMountPoint("/m", newBackend(s))))

	fd, err := v.Open("/m/f", vfs.FlagWrite)
	require.NoError(t, err)

	payload := []byte{'a', 0, '\n', 0x7f, 'z'}
	n, err := v.Write(fd, payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	got := make([]byte, 16)
	n, err = v.Read(fd, got)
	require.NoError(t, err)
	assert.Equal(t, payload, got[:n])

	_, err = v.Read(fd, got)
	assert.Equal(t, io.EOF, err)

	_, err = v.Read(fd+1, got)
	assert.True(t, errors.HasCode(err, errors.CodeNotOpen))
	_, err = v.Write(99, payload)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidDescriptor))
}

type ioctlStream struct {
	*mocks.StreamMock
	cmds []vfs.IoctlCommand
}

func (s *ioctlStream) Ioctl(cmd vfs.IoctlCommand, arg vfs.Variant) (int64, error) {
	s.cmds = append(s.cmds, cmd)
	if req, ok := arg.(*vfs.SeekRequest); ok {
		req.Previous = 7
		return req.Offset, nil
	}
	return 0, nil
}

func TestIoctl(t *testing.T) {
	v := vfs.New()
	plain := newStream()
	withIoctl := &ioctlStream{StreamMock: newStream()}
	require.NoError(t, v.Bind(3, plain))
	require.NoError(t, v.Bind(4, withIoctl))

	t.Run("nop on any stream", func(t *testing.T) {
		r, err := v.Ioctl(3, vfs.IoctlNop, nil)
		require.NoError(t, err)
		assert.Zero(t, r)
	})

	t.Run("unsupported without ioctl", func(t *testing.T) {
		_, err := v.Ioctl(3, vfs.IoctlStat, &vfs.StatInfo{})
		assert.True(t, errors.HasCode(err, errors.CodeUnsupported))
	})

	t.Run("wrong argument", func(t *testing.T) {
		_, err := v.Ioctl(4, vfs.IoctlSeek, &vfs.TTYInfo{})
		assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
		assert.Empty(t, withIoctl.cmds)
	})

	t.Run("forwarded", func(t *testing.T) {
		req := &vfs.SeekRequest{Whence: vfs.SeekSet, Offset: 12}
		r, err := v.Ioctl(4, vfs.IoctlSeek, req)
		require.NoError(t, err)
		assert.Equal(t, int64(12), r)
		assert.Equal(t, int64(7), req.Previous)
		assert.Equal(t, []vfs.IoctlCommand{vfs.IoctlSeek}, withIoctl.cmds)
	})

	t.Run("unbound", func(t *testing.T) {
		_, err := v.Ioctl(5, vfs.IoctlNop, nil)
		assert.True(t, errors.HasCode(err, errors.CodeNotOpen))
	})
}

func TestBindRelease(t *testing.T) {
	v := vfs.New()
	s := newStream()

	require.NoError(t, v.Bind(vfs.Stdout, s))
	assert.True(t, errors.HasCode(v.Bind(vfs.Stdout, newStream()), errors.CodeConflict))
	assert.Empty(t, s.InitCalls())

	require.NoError(t, v.Release(vfs.Stdout))
	assert.Empty(t, s.CloseCalls())
	assert.True(t, errors.HasCode(v.Release(vfs.Stdout), errors.CodeNotOpen))
}

func TestMountUnmount(t *testing.T) {
	v := vfs.New()
	a := vfs.NewMountPoint("/A", newBackend(newStream()))
	b := vfs.NewMountPoint("/B", newBackend(newStream()))
	require.NoError(t, v.Mount(a))
	require.NoError(t, v.Mount(b))
	assert.Equal(t, []string{"/B", "/A", "/"}, v.Mounts())

	err := v.Mount(vfs.NewMountPoint("/A", newBackend(newStream())))
	assert.True(t, errors.HasCode(err, errors.CodeAlreadyMounted))
	assert.Equal(t, []string{"/B", "/A", "/"}, v.Mounts())

	require.NoError(t, v.Unmount(a))
	assert.Equal(t, []string{"/B", "/"}, v.Mounts())
	assert.True(t, errors.HasCode(v.Unmount(a), errors.CodeNotFound))

	_, err = v.Open("/A/f", vfs.FlagRead)
	assert.True(t, errors.HasCode(err, errors.CodeBackendOpenFailed))

	mp, rest, err := v.Resolve("/B/dir/f")
	require.NoError(t, err)
	assert.Same(t, b, mp)
	assert.Equal(t, "/dir/f", rest)
}

func TestDirectories(t *testing.T) {
	v := vfs.New(vfs.WithMaxPath(4))
	entries := []string{"short", "ab"}
	b := newBackend(newStream())
	b.ReadDirFunc = func(cursor any, info *vfs.InodeInfo) error {
		idx := cursor.(*int)
		if *idx >= len(entries) {
			return io.EOF
		}
		info.Reset()
		info.Name = entries[*idx]
		info.Size = int64(*idx)
		*idx++
		return nil
	}
	b.OpenDirFunc = func(string) (any, error) { return new(int), nil }
	require.NoError(t, v.Mount(vfs.NewMountPoint("/SD1", b)))

	d, err := v.OpenDir("/SD1/logs")
	require.NoError(t, err)
	assert.Equal(t, "/logs", d.Path())
	assert.Equal(t, "/SD1", d.MountPoint().Path)

	var info vfs.InodeInfo
	require.NoError(t, v.ReadDir(d, &info))
	assert.Equal(t, "shor", info.Name)
	require.NoError(t, v.ReadDir(d, &info))
	assert.Equal(t, "ab", info.Name)
	assert.Equal(t, io.EOF, v.ReadDir(d, &info))

	require.NoError(t, v.CloseDir(d))
	assert.Len(t, b.CloseDirCalls(), 1)
	assert.True(t, errors.HasCode(v.CloseDir(d), errors.CodeNotOpen))
	assert.True(t, errors.HasCode(v.ReadDir(d, &info), errors.CodeNotOpen))
}

func TestOpenDir_Errors(t *testing.T) {
	v := vfs.New()
	b := newBackend(newStream())
	b.OpenDirFunc = func(string) (any, error) { return nil, fs.ErrNotExist }
	require.NoError(t, v.Mount(vfs.NewMountPoint("/m", b)))

	_, err := v.OpenDir("/m/missing")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = v.OpenDir("nowhere")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestRootDirectory(t *testing.T) {
	v := vfs.New()
	for _, p := range []string{"/A", "/B", "/C"} {
		require.NoError(t, v.Mount(vfs.NewMountPoint(p, newBackend(newStream()))))
	}

	d, err := v.OpenDir("/")
	require.NoError(t, err)

	var names []string
	var info vfs.InodeInfo
	for {
		err := v.ReadDir(d, &info)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"C", "B", "A"}, names)
	assert.Error(t, v.ReadDir(d, &info))
	require.NoError(t, v.CloseDir(d))
}
