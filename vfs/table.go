package vfs

import (
	"sync"

	"github.com/martinribelotta/chibios-vfs/errors"
)

// Conventional console descriptors, bound by the application with Bind
// before any other code opens files.
const (
	Stdin  = 0
	Stdout = 1
	Stderr = 2
)

// slot is one descriptor. busy marks a slot that is being opened or closed:
// it is neither handed out by allocate nor visible as bound.
type slot struct {
	stream Stream
	busy   bool
}

// descriptorTable owns every descriptor slot. Allocation scans for the
// lowest free index.
type descriptorTable struct {
	mu    sync.Mutex
	slots []slot
}

func newDescriptorTable(size int) *descriptorTable {
	return &descriptorTable{slots: make([]slot, size)}
}

func (t *descriptorTable) inRange(fd int) bool {
	return fd >= 0 && fd < len(t.slots)
}

func (t *descriptorTable) invalid(fd int) error {
	return errors.WithContext(
		errors.Newf(errors.CodeInvalidDescriptor, "descriptor %d out of range [0,%d)", fd, len(t.slots)),
		"fd", fd,
	)
}

func notOpen(fd int) error {
	return errors.WithContext(errors.New(errors.CodeNotOpen, "descriptor not open"), "fd", fd)
}

// allocate reserves the lowest free slot. The caller must finish with
// install or cancel.
func (t *descriptorTable) allocate() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].stream == nil && !t.slots[i].busy {
			t.slots[i].busy = true
			return i, nil
		}
	}
	return -1, errors.Newf(errors.CodeResourceExhausted, "all %d descriptors in use", len(t.slots))
}

// install binds s into a slot reserved by allocate.
func (t *descriptorTable) install(fd int, s Stream) {
	t.mu.Lock()
	t.slots[fd] = slot{stream: s}
	t.mu.Unlock()
}

// cancel frees a slot reserved by allocate or taken by detach.
func (t *descriptorTable) cancel(fd int) {
	t.mu.Lock()
	t.slots[fd] = slot{}
	t.mu.Unlock()
}

func (t *descriptorTable) bind(fd int, s Stream) error {
	if s == nil {
		return errors.New(errors.CodeInvalidInput, "cannot bind a nil stream")
	}
	if !t.inRange(fd) {
		return t.invalid(fd)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.slots[fd].stream != nil || t.slots[fd].busy {
		return errors.WithContext(errors.New(errors.CodeConflict, "descriptor already bound"), "fd", fd)
	}
	t.slots[fd].stream = s
	return nil
}

func (t *descriptorTable) get(fd int) (Stream, error) {
	if !t.inRange(fd) {
		return nil, t.invalid(fd)
	}

	t.mu.Lock()
	s := t.slots[fd].stream
	t.mu.Unlock()

	if s == nil {
		return nil, notOpen(fd)
	}
	return s, nil
}

// detach takes the stream out of a bound slot and leaves the slot busy
// until cancel, so the index is not reused while the backend closes.
func (t *descriptorTable) detach(fd int) (Stream, error) {
	if !t.inRange(fd) {
		return nil, t.invalid(fd)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.slots[fd].stream
	if s == nil {
		return nil, notOpen(fd)
	}
	t.slots[fd] = slot{busy: true}
	return s, nil
}

// release unbinds a slot without calling Close.
func (t *descriptorTable) release(fd int) error {
	if !t.inRange(fd) {
		return t.invalid(fd)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.slots[fd].stream == nil {
		return notOpen(fd)
	}
	t.slots[fd] = slot{}
	return nil
}

func (t *descriptorTable) inUse() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, s := range t.slots {
		if s.stream != nil {
			n++
		}
	}
	return n
}
