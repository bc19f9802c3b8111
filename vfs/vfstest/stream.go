package vfstest

import (
	"bytes"
	"io"
	"testing"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

var streamTests = map[string]func(*testing.T, *harness){
	"CreateWriteRead":         testCreateWriteRead,
	"BinaryRoundTrip":         testBinaryRoundTrip,
	"ReadAtEOF":               testReadAtEOF,
	"OpenMissing":             testOpenMissing,
	"Truncate":                testTruncate,
	"Exclusive":               testExclusive,
	"CreateWithoutWrite":      testCreateWithoutWrite,
	"DoubleClose":             testDoubleClose,
	"IndependentDescriptors":  testIndependentDescriptors,
	"CreateKeepsExistingData": testCreateKeepsExistingData,
}

// testCreateWriteRead is the log file scenario: create, write, reopen, read.
func testCreateWriteRead(t *testing.T, h *harness) {
	fd := h.open(t, "log.txt", vfs.FlagWrite|vfs.FlagCreate)
	n, err := h.v.Write(fd, []byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write(): got (%d, %v), want (5, nil)", n, err)
	}
	h.close(t, fd)

	if got := h.readFile(t, "log.txt"); string(got) != "hello" {
		t.Errorf("read back %q, want %q", got, "hello")
	}
}

func testBinaryRoundTrip(t *testing.T, h *harness) {
	data := make([]byte, 512)
	for i := range data {
		data[i] = byte(i)
	}
	data = append(data, 0, 0, '\r', '\n', 0x1b)

	h.writeFile(t, "blob.bin", data)
	if got := h.readFile(t, "blob.bin"); !bytes.Equal(got, data) {
		t.Errorf("read back %d bytes, want %d identical bytes", len(got), len(data))
	}
}

func testReadAtEOF(t *testing.T, h *harness) {
	h.writeFile(t, "small.txt", []byte("ab"))

	fd := h.open(t, "small.txt", vfs.FlagRead)
	defer h.close(t, fd)

	buf := make([]byte, 8)
	n, err := h.v.Read(fd, buf)
	if err != nil && err != io.EOF {
		t.Fatalf("Read(): got error %v", err)
	}
	if n != 2 {
		t.Fatalf("Read(): got %d bytes, want 2", n)
	}
	n, err = h.v.Read(fd, buf)
	if n != 0 || err != io.EOF {
		t.Errorf("Read() at end: got (%d, %v), want (0, io.EOF)", n, err)
	}
}

func testOpenMissing(t *testing.T, h *harness) {
	before := h.v.InUse()
	fd, err := h.v.Open(h.path("missing.txt"), vfs.FlagRead)
	if err == nil {
		_ = h.v.Close(fd)
		t.Fatalf("Open(%q): got nil error, want failure", h.path("missing.txt"))
	}
	if fd != -1 {
		t.Errorf("Open(): got descriptor %d on failure, want -1", fd)
	}
	if after := h.v.InUse(); after != before {
		t.Errorf("InUse(): got %d after failed open, want %d", after, before)
	}
}

func testTruncate(t *testing.T, h *harness) {
	h.writeFile(t, "trunc.txt", []byte("a much longer original content"))
	h.writeFile(t, "trunc.txt", []byte("short"))

	if got := h.readFile(t, "trunc.txt"); string(got) != "short" {
		t.Errorf("read back %q, want %q", got, "short")
	}
}

func testExclusive(t *testing.T, h *harness) {
	fd := h.open(t, "excl.txt", vfs.FlagWrite|vfs.FlagExcl)
	h.close(t, fd)

	fd, err := h.v.Open(h.path("excl.txt"), vfs.FlagWrite|vfs.FlagExcl|vfs.FlagTrunc)
	if err == nil {
		_ = h.v.Close(fd)
		t.Errorf("Open(%q, excl) on existing file: got nil error, want failure", h.path("excl.txt"))
	}
}

func testCreateWithoutWrite(t *testing.T, h *harness) {
	fd, err := h.v.Open(h.path("ro.txt"), vfs.FlagCreate)
	if err == nil {
		_ = h.v.Close(fd)
		t.Errorf("Open(%q, create) without write: got nil error, want failure", h.path("ro.txt"))
	}

	h.writeFile(t, "ro.txt", []byte("data"))
	fd = h.open(t, "ro.txt", vfs.FlagCreate|vfs.FlagTrunc)
	defer h.close(t, fd)

	if n, err := h.v.Write(fd, []byte("x")); err == nil && n > 0 {
		t.Errorf("Write() on read-only descriptor: got (%d, nil), want failure", n)
	}
	buf := make([]byte, 8)
	n, err := h.v.Read(fd, buf)
	if err != nil && err != io.EOF {
		t.Fatalf("Read(): got error %v", err)
	}
	if string(buf[:n]) != "data" {
		t.Errorf("Read(): got %q, want %q", buf[:n], "data")
	}
}

func testDoubleClose(t *testing.T, h *harness) {
	h.writeFile(t, "f.txt", []byte("x"))
	fd := h.open(t, "f.txt", vfs.FlagRead)
	h.close(t, fd)

	err := h.v.Close(fd)
	if !errors.HasCode(err, errors.CodeNotOpen) {
		t.Errorf("second Close(%d): got %v, want %s", fd, err, errors.CodeNotOpen)
	}
}

func testIndependentDescriptors(t *testing.T, h *harness) {
	h.writeFile(t, "a.txt", []byte("aaaa"))
	h.writeFile(t, "b.txt", []byte("bbbb"))

	fa := h.open(t, "a.txt", vfs.FlagRead)
	defer h.close(t, fa)
	fb := h.open(t, "b.txt", vfs.FlagRead)
	defer h.close(t, fb)
	if fa == fb {
		t.Fatalf("Open(): got descriptor %d twice", fa)
	}

	buf := make([]byte, 2)
	for _, c := range []struct {
		fd   int
		want string
	}{{fa, "aa"}, {fb, "bb"}, {fa, "aa"}, {fb, "bb"}} {
		n, err := h.v.Read(c.fd, buf)
		if err != nil || string(buf[:n]) != c.want {
			t.Errorf("Read(%d): got (%q, %v), want (%q, nil)", c.fd, buf[:n], err, c.want)
		}
	}
}

func testCreateKeepsExistingData(t *testing.T, h *harness) {
	h.writeFile(t, "keep.txt", []byte("0123456789"))

	fd := h.open(t, "keep.txt", vfs.FlagWrite|vfs.FlagCreate)
	if _, err := h.v.Write(fd, []byte("ab")); err != nil {
		t.Fatalf("Write(): got error %v, want nil", err)
	}
	h.close(t, fd)

	if got := h.readFile(t, "keep.txt"); string(got) != "ab23456789" {
		t.Errorf("read back %q, want %q", got, "ab23456789")
	}
}
