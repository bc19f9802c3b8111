// Package blockfs provides a go-billy-backed block filesystem that can be
// mounted into a vfs.VFS.
//
// It wraps go-billy's memfs (RAM disks, tests) and osfs (a host directory
// standing in for a card) behind the vfs.MountBackend contract. Open
// files and directory cursors come from two bounded handle pools, sized by
// default to the descriptors left after the console slots.
//
// Usage:
//
//	v := vfs.New()
//	sd := blockfs.NewLocal("/srv/sdcard")
//	if err := v.Mount(vfs.NewMountPoint("/SD1", sd)); err != nil {
//		return err
//	}
//	fd, err := v.Open("/SD1/log.txt", vfs.FlagWrite|vfs.FlagCreate)
//
// # Open flags
//
// FlagWrite opens read/write. FlagCreate opens or creates, FlagTrunc
// creates or truncates, and FlagExcl creates a new file and fails if one
// exists; FlagExcl wins over FlagTrunc. Creation flags without FlagWrite
// give a plain read-only open.
//
// # Thread Safety
//
// An FS is safe for concurrent use. A single open stream is not.
package blockfs
