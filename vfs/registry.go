package vfs

import (
	"sync"

	"github.com/martinribelotta/chibios-vfs/errors"
)

// RootPath is the path of the synthetic root mountpoint.
const RootPath = "/"

// registry is a singly linked list of mountpoints. New mountpoints are
// inserted at the head, so iteration order is most recently mounted first.
// The root mountpoint is installed first and therefore stays the tail.
type registry struct {
	mu   sync.RWMutex
	head *MountPoint
	root *MountPoint
}

func newRegistry() *registry {
	r := &registry{}
	r.root = NewMountPoint(RootPath, &rootBackend{reg: r})
	r.head = r.root
	return r
}

func (r *registry) mount(mp *MountPoint) error {
	if mp == nil || mp.Backend == nil {
		return errors.New(errors.CodeInvalidInput, "mountpoint requires a backend")
	}
	if mp.Path == "" {
		return errors.New(errors.CodeInvalidInput, "mountpoint path is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for p := r.head; p != nil; p = p.next {
		if p.Path == mp.Path {
			return errors.WithContext(errors.New(errors.CodeAlreadyMounted, "path already mounted"), "path", mp.Path)
		}
	}

	if initer, ok := mp.Backend.(Initializer); ok {
		if err := initer.Init(); err != nil {
			return errors.WithContext(errors.Wrap(err, errors.CodeBackendInitFailed, "backend init failed"), "path", mp.Path)
		}
	}

	mp.next = r.head
	r.head = mp
	return nil
}

// unmount unlinks the mountpoint registered under mp.Path and then runs
// its backend's Done. The unlinked mountpoint keeps its next link so a
// root directory cursor parked on it can still advance.
func (r *registry) unmount(mp *MountPoint) error {
	if mp == nil {
		return errors.New(errors.CodeInvalidInput, "nil mountpoint")
	}

	r.mu.Lock()
	var prev, found *MountPoint
	for p := r.head; p != nil; prev, p = p, p.next {
		if p.Path == mp.Path {
			found = p
			break
		}
	}
	if found == nil {
		r.mu.Unlock()
		return errors.WithContext(errors.New(errors.CodeNotFound, "path not mounted"), "path", mp.Path)
	}
	if found == r.root {
		r.mu.Unlock()
		return errors.New(errors.CodeInvalidInput, "the root mountpoint cannot be unmounted")
	}
	if prev == nil {
		r.head = found.next
	} else {
		prev.next = found.next
	}
	r.mu.Unlock()

	if fin, ok := found.Backend.(Finalizer); ok {
		if err := fin.Done(); err != nil {
			return errors.WithContext(errors.Wrap(err, errors.CodeBackendDoneFailed, "backend done failed"), "path", mp.Path)
		}
	}
	return nil
}

// paths returns the mounted paths in resolution order.
func (r *registry) paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for p := r.head; p != nil; p = p.next {
		out = append(out, p.Path)
	}
	return out
}
