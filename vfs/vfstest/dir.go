package vfstest

import (
	"io"
	"testing"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

var dirTests = map[string]func(*testing.T, *harness){
	"ListEntries":   testListEntries,
	"EmptyRoot":     testEmptyRoot,
	"OpenMissing":   testOpenDirMissing,
	"RootListing":   testRootListing,
	"CloseTwice":    testCloseDirTwice,
	"InfoIsCleared": testInfoIsCleared,
}

// readAll drains d, failing on any error other than io.EOF.
func readAll(t *testing.T, h *harness, d *vfs.Dir) map[string]vfs.InodeInfo {
	t.Helper()
	out := map[string]vfs.InodeInfo{}
	for i := 0; ; i++ {
		if i > 1024 {
			t.Fatalf("ReadDir(): no end of directory after %d entries", i)
		}
		var info vfs.InodeInfo
		err := h.v.ReadDir(d, &info)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadDir(): got error %v, want nil or io.EOF", err)
		}
		out[info.Name] = info
	}
}

func testListEntries(t *testing.T, h *harness) {
	h.writeFile(t, "a.txt", []byte("12345"))
	h.writeFile(t, "b.txt", nil)

	d, err := h.v.OpenDir(h.root)
	if err != nil {
		t.Fatalf("OpenDir(%q): got error %v, want nil", h.root, err)
	}
	defer func() { _ = h.v.CloseDir(d) }()

	got := readAll(t, h, d)
	if len(got) != 2 {
		t.Fatalf("ReadDir(): got %d entries, want 2", len(got))
	}
	a, ok := got["a.txt"]
	if !ok {
		t.Fatalf("ReadDir(): entry %q missing", "a.txt")
	}
	if a.Size != 5 || a.Flags.IsDir() {
		t.Errorf("entry %q: got size %d dir %v, want size 5 regular file", "a.txt", a.Size, a.Flags.IsDir())
	}
	if b, ok := got["b.txt"]; !ok || b.Size != 0 {
		t.Errorf("entry %q: got %+v, want an empty file", "b.txt", b)
	}
}

func testEmptyRoot(t *testing.T, h *harness) {
	d, err := h.v.OpenDir(h.root)
	if err != nil {
		t.Fatalf("OpenDir(%q): got error %v, want nil", h.root, err)
	}
	defer func() { _ = h.v.CloseDir(d) }()

	if got := readAll(t, h, d); len(got) != 0 {
		t.Errorf("ReadDir(): got %d entries in an empty filesystem, want 0", len(got))
	}
}

func testOpenDirMissing(t *testing.T, h *harness) {
	_, err := h.v.OpenDir(h.path("no/such/dir"))
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Errorf("OpenDir(missing): got %v, want %s", err, errors.CodeNotFound)
	}
}

// testRootListing checks the backend's mountpoint appears in "/".
func testRootListing(t *testing.T, h *harness) {
	d, err := h.v.OpenDir(vfs.RootPath)
	if err != nil {
		t.Fatalf("OpenDir(%q): got error %v, want nil", vfs.RootPath, err)
	}
	defer func() { _ = h.v.CloseDir(d) }()

	got := readAll(t, h, d)
	name := h.root[1:]
	if info, ok := got[name]; !ok || !info.Flags.IsDir() {
		t.Errorf("ReadDir(%q): got %v, want a directory entry %q", vfs.RootPath, got, name)
	}
}

func testCloseDirTwice(t *testing.T, h *harness) {
	d, err := h.v.OpenDir(h.root)
	if err != nil {
		t.Fatalf("OpenDir(%q): got error %v, want nil", h.root, err)
	}
	if err := h.v.CloseDir(d); err != nil {
		t.Fatalf("CloseDir(): got error %v, want nil", err)
	}
	if err := h.v.CloseDir(d); !errors.HasCode(err, errors.CodeNotOpen) {
		t.Errorf("second CloseDir(): got %v, want %s", err, errors.CodeNotOpen)
	}
}

func testInfoIsCleared(t *testing.T, h *harness) {
	h.writeFile(t, "x", []byte("1"))

	d, err := h.v.OpenDir(h.root)
	if err != nil {
		t.Fatalf("OpenDir(%q): got error %v, want nil", h.root, err)
	}
	defer func() { _ = h.v.CloseDir(d) }()

	info := vfs.InodeInfo{Name: "a stale and much longer name", Size: 99, Flags: vfs.AttrDirectory}
	if err := h.v.ReadDir(d, &info); err != nil {
		t.Fatalf("ReadDir(): got error %v, want nil", err)
	}
	if info.Name != "x" || info.Size != 1 || info.Flags.IsDir() {
		t.Errorf("ReadDir(): got %+v, want a fresh entry for %q", info, "x")
	}
}
