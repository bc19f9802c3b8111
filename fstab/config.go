package fstab

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/martinribelotta/chibios-vfs/blockfs"
	"github.com/martinribelotta/chibios-vfs/errors"
	"github.com/martinribelotta/chibios-vfs/vfs"
)

// Backend types accepted in MountConfig.Type.
const (
	TypeMemory = "memory"
	TypeLocal  = "local"
)

// Config is the contents of an fstab file.
type Config struct {
	Mounts []MountConfig `yaml:"mounts"`
}

// MountConfig describes one block filesystem.
type MountConfig struct {
	// Path is the mount prefix, e.g. "/SD1".
	Path string `yaml:"path"`

	// Type is "memory" for a RAM disk or "local" for a host directory.
	Type string `yaml:"type"`

	// Root is the host directory of a "local" mount.
	Root string `yaml:"root,omitempty"`

	// Device is the device id reported by stat.
	Device uint64 `yaml:"device,omitempty"`

	// BlockSize is the block size reported by stat.
	BlockSize int64 `yaml:"block_size,omitempty"`

	// PoolSize bounds the open files and directories of the mount.
	PoolSize int `yaml:"pool_size,omitempty"`
}

// Load parses an fstab document from r and validates it.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "cannot parse fstab")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and validates the fstab file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeInvalidConfig, "cannot read fstab"), "file", path)
	}
	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeInvalidConfig, "invalid fstab"), "file", path)
	}
	return cfg, nil
}

// Validate reports every problem in the configuration.
func (c *Config) Validate() error {
	var errs *multierror.Error
	seen := make(map[string]bool)

	for i, m := range c.Mounts {
		invalid := func(format string, args ...any) {
			errs = multierror.Append(errs, errors.WithContext(
				errors.Newf(errors.CodeInvalidConfig, format, args...), "mount", i))
		}

		switch {
		case m.Path == "":
			invalid("mounts[%d].path is required", i)
		case !strings.HasPrefix(m.Path, "/") || m.Path == vfs.RootPath:
			invalid("mounts[%d].path %q must start with / and name a directory", i, m.Path)
		case seen[m.Path]:
			invalid("mounts[%d].path %q is listed twice", i, m.Path)
		}
		seen[m.Path] = true

		switch m.Type {
		case TypeMemory:
		case TypeLocal:
			if m.Root == "" {
				invalid("mounts[%d].root is required for type %q", i, TypeLocal)
			}
		default:
			invalid("mounts[%d].type %q must be %q or %q", i, m.Type, TypeMemory, TypeLocal)
		}

		if m.BlockSize < 0 || m.PoolSize < 0 {
			invalid("mounts[%d] block_size and pool_size must not be negative", i)
		}
	}
	return errs.ErrorOrNil()
}

// Entries builds one blockfs entry per mount. A local mount's DevInit
// checks that its root is an existing directory.
func (c *Config) Entries() []Entry {
	entries := make([]Entry, 0, len(c.Mounts))
	for _, m := range c.Mounts {
		opts := []blockfs.Option{
			blockfs.WithDevice(m.Device),
			blockfs.WithBlockSize(m.BlockSize),
			blockfs.WithPoolSize(m.PoolSize),
		}

		var e Entry
		switch m.Type {
		case TypeLocal:
			e.MountPoint = vfs.NewMountPoint(m.Path, blockfs.NewLocal(m.Root, opts...))
			e.DevInit = checkDir(m.Root)
		default:
			e.MountPoint = vfs.NewMountPoint(m.Path, blockfs.NewMemory(opts...))
		}
		entries = append(entries, e)
	}
	return entries
}

func checkDir(root string) func() error {
	return func() error {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", root)
		}
		return nil
	}
}
