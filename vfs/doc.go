// Package vfs implements a small virtual filesystem switch: a fixed-capacity
// descriptor table and a registry of mounted backends addressed through one
// backend-agnostic API.
//
// Two capability sets participate:
//
//   - Stream: an open I/O channel (console transport, open file). A Stream
//     is bound into a descriptor slot and read, written and controlled
//     through the descriptor number.
//   - MountBackend: a filesystem mounted at a path prefix. It opens Streams
//     and iterates directories for paths below its prefix.
//
// # Routing
//
// Paths are routed by literal prefix match against the registered
// mountpoints, most recently mounted first. This is not a longest-prefix
// match: if "/SD1" and "/SD" are both mounted, whichever was mounted last
// wins for "/SD1/a.txt". The backend receives only the remainder after the
// prefix, so it never learns its own mount path. A synthetic root
// mountpoint at "/" is always present; listing "/" enumerates the other
// mountpoints in reverse mount order.
//
// # Usage
//
//	v := vfs.New()
//	_ = v.Bind(vfs.Stdout, console.New(os.Stdin, os.Stdout))
//	_ = v.Mount(vfs.NewMountPoint("/SD1", blockfs.New(memfs.New())))
//
//	fd, err := v.Open("/SD1/a.txt", vfs.FlagWrite|vfs.FlagCreate)
//	if err != nil {
//	    return err
//	}
//	defer v.Close(fd)
//	_, err = v.Write(fd, []byte("hi"))
//
// # Concurrency
//
// Descriptor allocation and release are guarded by one mutex, registry
// mutation by another. Read, Write and Ioctl on an open descriptor do not
// lock: a descriptor has a single logical owner and must not be closed by
// one goroutine while another is inside a call on it. Unmount does not wait
// for in-flight backend calls. No call has a timeout; a stalled backend
// stalls its caller.
package vfs
