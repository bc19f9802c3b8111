package vfstest

import (
	"bytes"
	"testing"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

var ioctlTests = map[string]func(*testing.T, *harness){
	"Nop":          testIoctlNop,
	"SeekFromEnd":  testSeekFromEnd,
	"SeekCurrent":  testSeekCurrent,
	"SeekNegative": testSeekNegative,
	"SeekPastEnd":  testSeekPastEnd,
	"Stat":         testStat,
	"WrongArg":     testIoctlWrongArg,
}

// ioctl issues cmd and skips the test when the backend's streams do not
// take out-of-band commands.
func ioctl(t *testing.T, h *harness, fd int, cmd vfs.IoctlCommand, arg vfs.Variant) (int64, error) {
	t.Helper()
	r, err := h.v.Ioctl(fd, cmd, arg)
	if errors.HasCode(err, errors.CodeUnsupported) {
		t.Skipf("backend streams do not support ioctl %s", cmd)
	}
	return r, err
}

func testIoctlNop(t *testing.T, h *harness) {
	h.writeFile(t, "nop.txt", []byte("x"))
	fd := h.open(t, "nop.txt", vfs.FlagRead)
	defer h.close(t, fd)

	if r, err := h.v.Ioctl(fd, vfs.IoctlNop, nil); err != nil || r != 0 {
		t.Errorf("Ioctl(nop): got (%d, %v), want (0, nil)", r, err)
	}
}

func testSeekFromEnd(t *testing.T, h *harness) {
	fd := h.open(t, "seek.txt", vfs.FlagWrite|vfs.FlagTrunc)
	defer h.close(t, fd)
	if _, err := h.v.Write(fd, []byte("0123456789abcdefghij")); err != nil {
		t.Fatalf("Write(): got error %v, want nil", err)
	}

	req := &vfs.SeekRequest{Whence: vfs.SeekEnd, Offset: -5}
	pos, err := ioctl(t, h, fd, vfs.IoctlSeek, req)
	if err != nil {
		t.Fatalf("Ioctl(seek END -5): got error %v, want nil", err)
	}
	if pos != 15 {
		t.Errorf("Ioctl(seek END -5): got offset %d, want 15", pos)
	}
	if req.Previous != 20 {
		t.Errorf("Ioctl(seek END -5): got previous %d, want 20", req.Previous)
	}

	buf := make([]byte, 8)
	n, _ := h.v.Read(fd, buf)
	if string(buf[:n]) != "fghij" {
		t.Errorf("Read() after seek: got %q, want %q", buf[:n], "fghij")
	}
}

func testSeekCurrent(t *testing.T, h *harness) {
	h.writeFile(t, "cur.txt", []byte("0123456789"))
	fd := h.open(t, "cur.txt", vfs.FlagRead)
	defer h.close(t, fd)

	buf := make([]byte, 3)
	if _, err := h.v.Read(fd, buf); err != nil {
		t.Fatalf("Read(): got error %v, want nil", err)
	}
	req := &vfs.SeekRequest{Whence: vfs.SeekCur, Offset: 2}
	pos, err := ioctl(t, h, fd, vfs.IoctlSeek, req)
	if err != nil || pos != 5 || req.Previous != 3 {
		t.Errorf("Ioctl(seek CUR 2): got (%d, previous %d, %v), want (5, previous 3, nil)", pos, req.Previous, err)
	}
}

func testSeekNegative(t *testing.T, h *harness) {
	h.writeFile(t, "neg.txt", []byte("0123"))
	fd := h.open(t, "neg.txt", vfs.FlagRead)
	defer h.close(t, fd)

	for _, req := range []*vfs.SeekRequest{
		{Whence: vfs.SeekSet, Offset: -1},
		{Whence: vfs.SeekEnd, Offset: -5},
		{Whence: vfs.Whence(9), Offset: 0},
	} {
		_, err := ioctl(t, h, fd, vfs.IoctlSeek, req)
		if !errors.HasCode(err, errors.CodeInvalidInput) {
			t.Errorf("Ioctl(seek %d %d): got %v, want %s", req.Whence, req.Offset, err, errors.CodeInvalidInput)
		}
	}
}

func testSeekPastEnd(t *testing.T, h *harness) {
	fd := h.open(t, "sparse.bin", vfs.FlagWrite|vfs.FlagTrunc)
	if _, err := h.v.Write(fd, []byte("head")); err != nil {
		t.Fatalf("Write(): got error %v, want nil", err)
	}
	pos, err := ioctl(t, h, fd, vfs.IoctlSeek, &vfs.SeekRequest{Whence: vfs.SeekSet, Offset: 1000})
	if err != nil || pos != 1000 {
		t.Fatalf("Ioctl(seek SET 1000): got (%d, %v), want (1000, nil)", pos, err)
	}
	if _, err := h.v.Write(fd, []byte("tail")); err != nil {
		t.Fatalf("Write() past end: got error %v, want nil", err)
	}
	h.close(t, fd)

	got := h.readFile(t, "sparse.bin")
	if len(got) != 1004 {
		t.Fatalf("read back %d bytes, want 1004", len(got))
	}
	if string(got[:4]) != "head" || string(got[1000:]) != "tail" {
		t.Errorf("read back %q...%q, want %q...%q", got[:4], got[1000:], "head", "tail")
	}
	if !bytes.Equal(got[4:1000], make([]byte, 996)) {
		t.Errorf("gap is not zero-filled")
	}
}

func testStat(t *testing.T, h *harness) {
	h.writeFile(t, "stat.txt", bytes.Repeat([]byte("z"), 1500))
	fd := h.open(t, "stat.txt", vfs.FlagRead)
	defer h.close(t, fd)

	var st vfs.StatInfo
	if _, err := ioctl(t, h, fd, vfs.IoctlStat, &st); err != nil {
		t.Fatalf("Ioctl(stat): got error %v, want nil", err)
	}
	if st.Size != 1500 {
		t.Errorf("Ioctl(stat): got size %d, want 1500", st.Size)
	}
	if st.Nlink < 1 {
		t.Errorf("Ioctl(stat): got nlink %d, want at least 1", st.Nlink)
	}
	if st.BlockSize > 0 && st.Blocks*st.BlockSize < st.Size {
		t.Errorf("Ioctl(stat): %d blocks of %d bytes cannot hold %d bytes", st.Blocks, st.BlockSize, st.Size)
	}
}

func testIoctlWrongArg(t *testing.T, h *harness) {
	h.writeFile(t, "arg.txt", []byte("x"))
	fd := h.open(t, "arg.txt", vfs.FlagRead)
	defer h.close(t, fd)

	_, err := h.v.Ioctl(fd, vfs.IoctlStat, &vfs.SeekRequest{})
	if !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Errorf("Ioctl(stat, *SeekRequest): got %v, want %s", err, errors.CodeInvalidInput)
	}
}
