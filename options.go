package diskvec

import (
	"fmt"

	"github.com/vekta-labs/diskvec/diskann"
	"github.com/vekta-labs/diskvec/vector"
	"github.com/vekta-labs/diskvec/vfs"
)

// IndexDescriptor declares a vector index: its name within the host database,
// its dimension and block size (pinned in the file header at creation), and
// the graph parameters R, L and Alpha, which are not stored in the file and
// apply to the cursor that is opened with them.
type IndexDescriptor struct {
	// Name identifies the index; it becomes part of the file name.
	Name string

	// Dims is the vector dimension, 1..16000.
	Dims int

	// R is the degree cap. Zero picks the default.
	R int

	// L is the search list size. Zero picks the default.
	L int

	// Alpha is the pruning coefficient (>= 1). Zero picks the default.
	Alpha float64

	// BlockSize overrides the on-disk block size. Zero picks the default.
	BlockSize int
}

func (d IndexDescriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("diskvec: index descriptor needs a name")
	}
	if d.Dims < 1 || d.Dims > vector.MaxDims {
		return fmt.Errorf("diskvec: index %q: invalid dimension %d", d.Name, d.Dims)
	}
	if d.Alpha != 0 && d.Alpha < 1 {
		return fmt.Errorf("diskvec: index %q: alpha %v must be >= 1", d.Name, d.Alpha)
	}
	return nil
}

func (d IndexDescriptor) options() *diskann.Options {
	opts := diskann.DefaultOptions()
	opts.Dims = d.Dims
	if d.R > 0 {
		opts.R = d.R
	}
	if d.L > 0 {
		opts.L = d.L
	}
	if d.Alpha > 0 {
		opts.Alpha = d.Alpha
	}
	if d.BlockSize > 0 {
		opts.BlockSize = d.BlockSize
	}
	return opts
}

// Config carries host-side wiring for a cursor. The zero value (or nil)
// means the OS filesystem and a stderr logger.
type Config struct {
	// FS is the VFS all block I/O goes through. Nil means the local
	// filesystem.
	FS vfs.FS

	// Logger receives structured operation logs. Nil means stderr at
	// info level.
	Logger *Logger

	// CacheBlocks overrides the block cache capacity. Zero keeps the
	// default; negative disables caching.
	CacheBlocks int
}

func (c *Config) withDefaults() *Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.FS == nil {
		out.FS = vfs.NewOSFS()
	}
	if out.Logger == nil {
		out.Logger = NewLogger(nil)
	}
	return &out
}
