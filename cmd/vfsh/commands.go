package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

// exec runs one command. args[0] is the command name.
func (s *shell) exec(args []string) error {
	if len(args) == 0 {
		return nil
	}
	name, rest := args[0], args[1:]
	s.logger.Debug("running command", "command", name, "args", rest)

	switch name {
	case "mounts":
		return s.mounts()
	case "mount":
		switch len(rest) {
		case 0:
			return s.entries()
		case 1:
			return s.mount(rest[0])
		default:
			return usage("mount [PATH]")
		}
	case "umount":
		if len(rest) != 1 {
			return usage("umount PATH")
		}
		return s.umount(rest[0])
	case "ls":
		dir := vfs.RootPath
		if len(rest) > 0 {
			dir = rest[0]
		}
		return s.ls(dir)
	case "cat":
		if len(rest) == 0 {
			return usage("cat PATH...")
		}
		var last error
		for _, p := range rest {
			if err := s.cat(p); err != nil {
				fmt.Fprintf(s.stderr(), "cat %s: %v\n", p, err)
				last = err
			}
		}
		return last
	case "write":
		if len(rest) < 2 {
			return usage("write PATH TEXT")
		}
		return s.write(rest[0], strings.Join(rest[1:], " ")+"\n")
	case "stat":
		if len(rest) != 1 {
			return usage("stat PATH")
		}
		return s.stat(rest[0])
	default:
		return errors.WithContext(errors.New(errors.CodeInvalidInput, "unknown command"), "command", name)
	}
}

func usage(synopsis string) error {
	return errors.Newf(errors.CodeInvalidInput, "usage: %s", synopsis)
}

func (s *shell) stdout() io.Writer { return fdWriter{s.v, vfs.Stdout} }
func (s *shell) stderr() io.Writer { return fdWriter{s.v, vfs.Stderr} }

// mounts prints every fstab entry with its state, then any mountpoint the
// table does not own.
func (s *shell) mounts() error {
	out := s.stdout()
	owned := make(map[string]bool)
	for _, e := range s.table.Entries() {
		state := "unmounted"
		if s.table.Mounted(e.Path()) {
			state = "mounted"
		}
		owned[e.Path()] = true
		fmt.Fprintf(out, "%-12s %s\n", e.Path(), state)
	}
	for _, p := range s.v.Mounts() {
		if !owned[p] && p != vfs.RootPath {
			fmt.Fprintf(out, "%-12s %s\n", p, "mounted")
		}
	}
	return nil
}

// entries prints the paths the table can mount.
func (s *shell) entries() error {
	out := s.stdout()
	fmt.Fprintln(out, "Entries in fstab:")
	for _, e := range s.table.Entries() {
		fmt.Fprintf(out, "- %s\n", e.Path())
	}
	return nil
}

func (s *shell) mount(path string) error {
	if err := s.table.Mount(path); err != nil {
		return err
	}
	fmt.Fprintf(s.stdout(), "%s mounted\n", path)
	return nil
}

func (s *shell) umount(path string) error {
	if err := s.table.Unmount(path); err != nil {
		return err
	}
	fmt.Fprintf(s.stdout(), "%s unmounted\n", path)
	return nil
}

func (s *shell) ls(dir string) error {
	d, err := s.v.OpenDir(dir)
	if err != nil {
		return err
	}
	defer func() { _ = s.v.CloseDir(d) }()

	out := s.stdout()
	for {
		var info vfs.InodeInfo
		err := s.v.ReadDir(d, &info)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		kind, size := "-", humanize.IBytes(uint64(info.Size))
		if info.Flags.IsDir() {
			kind, size = "d", "-"
		}
		fmt.Fprintf(out, "%s %9s  %s\n", kind, size, info.Name)
	}
}

func (s *shell) cat(path string) error {
	fd, err := s.v.Open(path, vfs.FlagRead)
	if err != nil {
		return err
	}
	defer func() { _ = s.v.Close(fd) }()

	_, err = io.CopyBuffer(s.stdout(), fdReader{s.v, fd}, make([]byte, 512))
	return err
}

func (s *shell) write(path, text string) error {
	fd, err := s.v.Open(path, vfs.FlagWrite|vfs.FlagTrunc)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(fdWriter{s.v, fd}, text); err != nil {
		_ = s.v.Close(fd)
		return err
	}
	return s.v.Close(fd)
}

func (s *shell) stat(path string) error {
	fd, err := s.v.Open(path, vfs.FlagRead)
	if err != nil {
		return err
	}
	defer func() { _ = s.v.Close(fd) }()

	var st vfs.StatInfo
	if _, err := s.v.Ioctl(fd, vfs.IoctlStat, &st); err != nil {
		return err
	}
	fmt.Fprintf(s.stdout(), "  File: %s\n  Size: %s (%s bytes)\nBlocks: %s of %s\n Inode: %016x\nDevice: %d\n  Mode: %06o\n",
		path,
		humanize.IBytes(uint64(st.Size)), humanize.Comma(st.Size),
		humanize.Comma(st.Blocks), humanize.IBytes(uint64(st.BlockSize)),
		st.Ino, st.Dev, st.Mode,
	)
	return nil
}
