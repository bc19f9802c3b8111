package vfs

import (
	"strings"

	"github.com/martinribelotta/chibios-vfs/errors"
)

// resolve returns the first mountpoint, in registry order, whose path is a
// literal prefix of path, and the remainder after that prefix.
func (r *registry) resolve(path string) (*MountPoint, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for p := r.head; p != nil; p = p.next {
		if len(p.Path) > 0 && strings.HasPrefix(path, p.Path) {
			return p, path[len(p.Path):], nil
		}
	}
	return nil, "", errors.WithContext(errors.New(errors.CodeNoMount, "no mountpoint for path"), "path", path)
}
