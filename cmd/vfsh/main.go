// vfsh is a small shell over the filesystem switch. It binds the process's
// standard streams to descriptors 0, 1 and 2, mounts every entry of an
// fstab file and runs one command, or one command per input line when no
// command is given.
//
// Usage:
//
//	vfsh [--fstab FILE] [--log-level LEVEL] [--max-fd N] [--crlf] [COMMAND [ARGS...]]
//
// Commands:
//
//	mounts            list the mount table
//	mount [PATH]      mount an fstab entry, or list the entries
//	umount PATH       unmount an fstab entry
//	ls [PATH]         list a directory (default "/")
//	cat PATH...       copy files to standard output
//	write PATH TEXT   replace a file's contents with TEXT
//	stat PATH         show file status
//
// Without --fstab a single RAM disk is mounted at /RAM.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"

	"github.com/martinribelotta/chibios-vfs/console"
	"github.com/martinribelotta/chibios-vfs/fstab"
	"github.com/martinribelotta/chibios-vfs/internal/logging"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "vfsh: %v\n", err)
		os.Exit(1)
	}
}

// defaultFstab is used when --fstab is not given.
var defaultFstab = &fstab.Config{Mounts: []fstab.MountConfig{
	{Path: "/RAM", Type: fstab.TypeMemory},
}}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	var (
		fstabPath string
		logLevel  string
		maxFD     int
		crlf      bool
	)

	flagSet := pflag.NewFlagSet("vfsh", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&fstabPath, "fstab", "", "YAML mount table to load")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flagSet.IntVar(&maxFD, "max-fd", vfs.DefaultMaxFD, "descriptor table capacity")
	flagSet.BoolVar(&crlf, "crlf", false, "translate LF to CRLF on standard output")
	flagSet.SetInterspersed(false)
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := logging.New(stderr, level)

	cfg := defaultFstab
	if fstabPath != "" {
		if cfg, err = fstab.LoadFile(fstabPath); err != nil {
			return err
		}
	}

	v := vfs.New(vfs.WithMaxFD(maxFD))
	var opts []console.Option
	if !crlf {
		opts = append(opts, console.WithRawOutput())
	}
	if err := console.BindStandard(v, stdin, stdout, stderr, opts...); err != nil {
		return err
	}

	table := fstab.New(v, cfg.Entries(), fstab.WithLogger(logger))
	if err := table.MountAll(); err != nil {
		logger.Warn("some mounts failed", "error", err)
	}
	defer func() {
		if uerr := table.UnmountAll(); uerr != nil {
			err = multierror.Append(err, uerr).ErrorOrNil()
		}
	}()

	sh := &shell{v: v, table: table, logger: logger}
	if rest := flagSet.Args(); len(rest) > 0 {
		return sh.exec(rest)
	}
	return sh.script()
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `vfsh runs commands against a filesystem switch.

Usage: vfsh [flags] [COMMAND [ARGS...]]

Commands:
  mounts            list the mount table
  mount [PATH]      mount an fstab entry, or list the entries
  umount PATH       unmount an fstab entry
  ls [PATH]         list a directory (default "/")
  cat PATH...       copy files to standard output
  write PATH TEXT   replace a file's contents with TEXT
  stat PATH         show file status

With no command, one command is read per line from standard input.

Flags:
`)
	flagSet.PrintDefaults()
}

// shell runs commands with standard output on descriptor 1.
type shell struct {
	v      *vfs.VFS
	table  *fstab.Table
	logger *slog.Logger
}

// script runs every non-empty line of descriptor 0 as a command. A
// failing command is reported on descriptor 2 and the script continues;
// the last failure is returned.
func (s *shell) script() error {
	var last error
	scanner := bufio.NewScanner(fdReader{s.v, vfs.Stdin})
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.exec(strings.Fields(line)); err != nil {
			fmt.Fprintf(fdWriter{s.v, vfs.Stderr}, "%s: %v\n", line, err)
			last = err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return last
}

// fdReader reads from a switch descriptor.
type fdReader struct {
	v  *vfs.VFS
	fd int
}

func (r fdReader) Read(p []byte) (int, error) {
	return r.v.Read(r.fd, p)
}

// fdWriter writes to a switch descriptor.
type fdWriter struct {
	v  *vfs.VFS
	fd int
}

func (w fdWriter) Write(p []byte) (int, error) {
	return w.v.Write(w.fd, p)
}
