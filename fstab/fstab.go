// Package fstab implements a static mount table: each entry pairs a
// mountpoint with optional device bring-up and tear-down hooks, and the
// table mounts and unmounts entries by path.
//
// Tables are usually built from a YAML file:
//
//	mounts:
//	  - path: /SD1
//	    type: local
//	    root: /srv/sdcard
//	  - path: /RAM
//	    type: memory
//
// See Load and LoadFile.
package fstab

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/internal/logging"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

// Entry is one mountable device.
type Entry struct {
	// MountPoint is registered with the switch on Mount.
	MountPoint *vfs.MountPoint

	// DevInit brings the device up before mounting. Optional.
	DevInit func() error

	// DevDone shuts the device down after unmounting, or after a failed
	// mount. Optional.
	DevDone func() error
}

// Path returns the entry's mount path.
func (e Entry) Path() string {
	return e.MountPoint.Path
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger for mount lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Table mounts and unmounts its entries on one switch.
type Table struct {
	v       *vfs.VFS
	entries []Entry
	logger  *slog.Logger

	mu      sync.Mutex
	mounted map[string]bool
}

// New creates a table over v. Entries without a MountPoint are ignored.
func New(v *vfs.VFS, entries []Entry, opts ...Option) *Table {
	t := &Table{
		v:       v,
		logger:  logging.Discard(),
		mounted: make(map[string]bool),
	}
	for _, e := range entries {
		if e.MountPoint != nil {
			t.entries = append(t.entries, e)
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Entries returns the table's entries in declaration order.
func (t *Table) Entries() []Entry {
	return slices.Clone(t.entries)
}

// Mounted reports whether the entry at path is currently mounted through
// this table.
func (t *Table) Mounted(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mounted[path]
}

func (t *Table) lookup(path string) (Entry, error) {
	for _, e := range t.entries {
		if e.Path() == path {
			return e, nil
		}
	}
	return Entry{}, errors.WithContext(errors.New(errors.CodeNotFound, "not in fstab"), "path", path)
}

// Mount brings up the device at path and mounts it. If the switch refuses
// the mountpoint, the device is shut down again. Mounting an entry the
// table already mounted fails with CodeAlreadyMounted without touching the
// device.
func (t *Table) Mount(path string) error {
	e, err := t.lookup(path)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mounted[path] {
		return errors.WithContext(errors.New(errors.CodeAlreadyMounted, "already mounted"), "path", path)
	}
	return t.mount(e)
}

func (t *Table) mount(e Entry) error {
	path := e.Path()
	log := t.logger.With("mount", path)
	log.Debug("mounting")

	if e.DevInit != nil {
		if err := e.DevInit(); err != nil {
			log.Error("device init failed", "error", err)
			return errors.WithContext(errors.Wrap(err, errors.CodeBackendInitFailed, "device init failed"), "path", path)
		}
	}

	if err := t.v.Mount(e.MountPoint); err != nil {
		log.Error("mount failed", "error", err)
		var result error = err
		if e.DevDone != nil {
			if derr := e.DevDone(); derr != nil {
				log.Error("device done failed", "error", derr)
				result = multierror.Append(result, errors.WithContext(
					errors.Wrap(derr, errors.CodeBackendDoneFailed, "device done failed"), "path", path))
			}
		}
		return result
	}

	t.mounted[path] = true
	log.Info("mounted")
	return nil
}

// Unmount removes the mountpoint at path and then shuts the device down,
// whether or not the unmount succeeded.
func (t *Table) Unmount(path string) error {
	e, err := t.lookup(path)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unmount(e)
}

func (t *Table) unmount(e Entry) error {
	path := e.Path()
	log := t.logger.With("mount", path)

	var result *multierror.Error
	if err := t.v.Unmount(e.MountPoint); err != nil {
		log.Error("unmount failed", "error", err)
		result = multierror.Append(result, err)
	} else {
		log.Info("unmounted")
	}
	delete(t.mounted, path)

	if e.DevDone != nil {
		if err := e.DevDone(); err != nil {
			log.Error("device done failed", "error", err)
			result = multierror.Append(result, errors.WithContext(
				errors.Wrap(err, errors.CodeBackendDoneFailed, "device done failed"), "path", path))
		}
	}
	return result.ErrorOrNil()
}

// MountAll mounts every entry in declaration order and reports every
// failure. Entries that fail stay unmounted; the rest stay mounted.
func (t *Table) MountAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var result *multierror.Error
	for _, e := range t.entries {
		if t.mounted[e.Path()] {
			continue
		}
		if err := t.mount(e); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// UnmountAll unmounts every entry mounted through the table, newest
// declaration first, and reports every failure.
func (t *Table) UnmountAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var result *multierror.Error
	for _, e := range slices.Backward(t.entries) {
		if !t.mounted[e.Path()] {
			continue
		}
		if err := t.unmount(e); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
