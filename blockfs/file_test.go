package blockfs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

func mountMemory(t *testing.T, opts ...Option) (*vfs.VFS, *FS) {
	t.Helper()
	v := vfs.New()
	b := NewMemory(opts...)
	require.NoError(t, v.Mount(vfs.NewMountPoint("/SD1", b)))
	return v, b
}

func writeFile(t *testing.T, v *vfs.VFS, path string, data []byte) {
	t.Helper()
	fd, err := v.Open(path, vfs.FlagWrite|vfs.FlagTrunc)
	require.NoError(t, err)
	n, err := v.Write(fd, data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, v.Close(fd))
}

func TestSeek(t *testing.T) {
	v, _ := mountMemory(t)
	writeFile(t, v, "/SD1/twenty", bytes.Repeat([]byte("x"), 20))

	fd, err := v.Open("/SD1/twenty", vfs.FlagRead)
	require.NoError(t, err)
	defer func() { _ = v.Close(fd) }()

	tests := []struct {
		name     string
		req      vfs.SeekRequest
		want     int64
		previous int64
	}{
		{name: "end minus five", req: vfs.SeekRequest{Whence: vfs.SeekEnd, Offset: -5}, want: 15, previous: 0},
		{name: "current back", req: vfs.SeekRequest{Whence: vfs.SeekCur, Offset: -10}, want: 5, previous: 15},
		{name: "set", req: vfs.SeekRequest{Whence: vfs.SeekSet, Offset: 12}, want: 12, previous: 5},
		{name: "past end", req: vfs.SeekRequest{Whence: vfs.SeekSet, Offset: 1000}, want: 1000, previous: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			pos, err := v.Ioctl(fd, vfs.IoctlSeek, &req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pos)
			assert.Equal(t, tt.previous, req.Previous)
		})
	}
}

func TestSeekInvalidKeepsPosition(t *testing.T) {
	v, _ := mountMemory(t)
	writeFile(t, v, "/SD1/f", []byte("0123456789"))

	fd, err := v.Open("/SD1/f", vfs.FlagRead)
	require.NoError(t, err)
	defer func() { _ = v.Close(fd) }()

	_, err = v.Ioctl(fd, vfs.IoctlSeek, &vfs.SeekRequest{Whence: vfs.SeekSet, Offset: 4})
	require.NoError(t, err)

	_, err = v.Ioctl(fd, vfs.IoctlSeek, &vfs.SeekRequest{Whence: vfs.SeekEnd, Offset: -11})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	buf := make([]byte, 2)
	n, err := v.Read(fd, buf)
	require.NoError(t, err)
	assert.Equal(t, "45", string(buf[:n]))
}

func TestStat(t *testing.T) {
	v, b := mountMemory(t, WithDevice(7), WithBlockSize(100))
	writeFile(t, v, "/SD1/data.bin", make([]byte, 250))

	fd, err := v.Open("/SD1/data.bin", vfs.FlagRead)
	require.NoError(t, err)
	defer func() { _ = v.Close(fd) }()

	var st vfs.StatInfo
	r, err := v.Ioctl(fd, vfs.IoctlStat, &st)
	require.NoError(t, err)
	assert.Zero(t, r)

	assert.Equal(t, uint64(7), st.Dev)
	assert.Equal(t, inode("data.bin"), st.Ino)
	assert.NotZero(t, st.Ino)
	assert.Equal(t, uint32(0o100666), st.Mode)
	assert.Equal(t, uint32(1), st.Nlink)
	assert.Equal(t, int64(250), st.Size)
	assert.Equal(t, int64(100), st.BlockSize)
	assert.Equal(t, int64(3), st.Blocks)
	assert.True(t, st.Mtime.IsZero())

	var byPath vfs.StatInfo
	require.NoError(t, b.Stat("/data.bin", &byPath))
	assert.Equal(t, st, byPath)

	var dir vfs.StatInfo
	require.NoError(t, b.Stat("/", &dir))
	assert.Equal(t, uint32(0o040777), dir.Mode)
	assert.Zero(t, dir.Blocks)

	err = b.Stat("/missing", &dir)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestInodeIsStable(t *testing.T) {
	assert.Equal(t, inode("a/b"), inode(normalize("/a//b")))
	assert.NotEqual(t, inode("a/b"), inode("a/c"))
}

func TestIsatty(t *testing.T) {
	v, _ := mountMemory(t)
	writeFile(t, v, "/SD1/f", []byte("x"))

	fd, err := v.Open("/SD1/f", vfs.FlagRead)
	require.NoError(t, err)
	defer func() { _ = v.Close(fd) }()

	tty := vfs.TTYInfo{IsTTY: true}
	r, err := v.Ioctl(fd, vfs.IoctlIsatty, &tty)
	require.NoError(t, err)
	assert.Zero(t, r)
	assert.False(t, tty.IsTTY)
}

func TestIoctlDirect(t *testing.T) {
	b := NewMemory()
	require.NoError(t, b.Init())
	s, err := b.Open("/f", vfs.FlagWrite|vfs.FlagCreate)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ioc := s.(vfs.Ioctler)

	_, err = ioc.Ioctl(vfs.IoctlSeek, &vfs.StatInfo{})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	_, err = ioc.Ioctl(vfs.IoctlCommand(99), nil)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupported))
	r, err := ioc.Ioctl(vfs.IoctlNop, nil)
	assert.NoError(t, err)
	assert.Zero(t, r)
}

func TestWriteReadOnly(t *testing.T) {
	v, _ := mountMemory(t)
	writeFile(t, v, "/SD1/ro", []byte("keep"))

	fd, err := v.Open("/SD1/ro", vfs.FlagRead)
	require.NoError(t, err)
	defer func() { _ = v.Close(fd) }()

	n, err := v.Write(fd, []byte("overwrite"))
	assert.Error(t, err)
	assert.Zero(t, n)
}
