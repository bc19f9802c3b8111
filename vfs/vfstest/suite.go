// Package vfstest provides a conformance test suite for MountBackend
// implementations.
//
// Every test mounts a fresh backend into a fresh switch and drives it
// through the public descriptor API, so the suite checks what callers of
// vfs.Open, vfs.Read and vfs.ReadDir observe rather than backend internals.
//
// Example usage:
//
//	func TestMyBackend(t *testing.T) {
//	    vfstest.TestSuite(t, func() vfs.MountBackend {
//	        return mybackend.New()
//	    })
//	}
package vfstest

import (
	"bytes"
	"io"
	"maps"
	"slices"
	"testing"

	"github.com/martinribelotta/chibios-vfs/vfs"
)

// Config adapts the suite to a backend.
type Config struct {
	// MountPath is where the backend is mounted. Defaults to "/SD1".
	MountPath string

	// SkipTests lists test names to skip, in "Group/Test" form
	// (e.g. "Ioctl/SeekPastEnd").
	SkipTests []string
}

// DefaultConfig returns the configuration used by TestSuite.
func DefaultConfig() Config {
	return Config{MountPath: "/SD1"}
}

// TestSuite runs every conformance test. newBackend must return a fresh,
// empty backend on each call.
func TestSuite(t *testing.T, newBackend func() vfs.MountBackend) {
	TestSuiteWithConfig(t, newBackend, DefaultConfig())
}

// TestSuiteWithConfig runs every conformance test with cfg.
func TestSuiteWithConfig(t *testing.T, newBackend func() vfs.MountBackend, cfg Config) {
	if cfg.MountPath == "" {
		cfg.MountPath = DefaultConfig().MountPath
	}

	group := func(name string, tests map[string]func(*testing.T, *harness)) {
		t.Run(name, func(t *testing.T) {
			for _, sub := range slices.Sorted(maps.Keys(tests)) {
				fn := tests[sub]
				t.Run(sub, func(t *testing.T) {
					if cfg.skip(name + "/" + sub) {
						t.Skip("Skipped by backend configuration")
						return
					}
					fn(t, newHarness(t, newBackend(), cfg.MountPath))
				})
			}
		})
	}

	group("Stream", streamTests)
	group("Dir", dirTests)
	group("Ioctl", ioctlTests)
}

func (c Config) skip(name string) bool {
	for _, s := range c.SkipTests {
		if s == name {
			return true
		}
	}
	return false
}

// harness is one switch with the backend under test mounted.
type harness struct {
	v    *vfs.VFS
	root string
}

func newHarness(t *testing.T, backend vfs.MountBackend, mountPath string) *harness {
	t.Helper()

	v := vfs.New()
	mp := vfs.NewMountPoint(mountPath, backend)
	if err := v.Mount(mp); err != nil {
		t.Fatalf("Mount(%q): got error %v, want nil", mountPath, err)
	}
	t.Cleanup(func() {
		_ = v.Unmount(mp)
	})
	return &harness{v: v, root: mountPath}
}

func (h *harness) path(name string) string {
	return h.root + "/" + name
}

func (h *harness) open(t *testing.T, name string, flags vfs.Flag) int {
	t.Helper()
	fd, err := h.v.Open(h.path(name), flags)
	if err != nil {
		t.Fatalf("Open(%q, %s): got error %v, want nil", h.path(name), flags, err)
	}
	return fd
}

func (h *harness) close(t *testing.T, fd int) {
	t.Helper()
	if err := h.v.Close(fd); err != nil {
		t.Fatalf("Close(%d): got error %v, want nil", fd, err)
	}
}

func (h *harness) writeFile(t *testing.T, name string, data []byte) {
	t.Helper()
	fd := h.open(t, name, vfs.FlagWrite|vfs.FlagTrunc)
	n, err := h.v.Write(fd, data)
	if err != nil {
		_ = h.v.Close(fd)
		t.Fatalf("Write(%q): got error %v, want nil", name, err)
	}
	if n != len(data) {
		_ = h.v.Close(fd)
		t.Fatalf("Write(%q): wrote %d bytes, want %d", name, n, len(data))
	}
	h.close(t, fd)
}

func (h *harness) readFile(t *testing.T, name string) []byte {
	t.Helper()
	fd := h.open(t, name, vfs.FlagRead)
	defer h.close(t, fd)

	var out bytes.Buffer
	buf := make([]byte, 64)
	for {
		n, err := h.v.Read(fd, buf)
		out.Write(buf[:n])
		if err == io.EOF {
			return out.Bytes()
		}
		if err != nil {
			t.Fatalf("Read(%q): got error %v, want nil", name, err)
		}
		if n == 0 {
			return out.Bytes()
		}
	}
}
