package diskann

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vekta-labs/diskvec/vector"
	"github.com/vekta-labs/diskvec/vfs"
)

// Index is a disk-resident Vamana graph over a single block file. One Index
// owns one open file and must be driven by a single goroutine; the host
// serializes writers the way it serializes its write transactions.
type Index struct {
	file *File
	opts *Options
	log  *slog.Logger

	// corrupt latches after any structural validation failure; every
	// later operation fails fast without touching the file.
	corrupt bool
	closed  bool
}

// Match is one search result.
type Match struct {
	RowID    uint64
	Distance float64
}

// Open opens or creates the index file at path through fsys.
func Open(fsys vfs.FS, path string, opts *Options, log *slog.Logger) (*Index, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	opts = opts.withDefaults()
	if log == nil {
		log = slog.Default()
	}

	file, err := OpenFile(fsys, path, opts)
	if err != nil {
		return nil, err
	}
	return &Index{file: file, opts: opts, log: log}, nil
}

// Dims returns the vector dimension pinned at creation.
func (idx *Index) Dims() int { return idx.file.Header().Dims }

// Count returns the number of node blocks in the file.
func (idx *Index) Count() uint64 { return idx.file.NumBlocks() - 1 }

// degreeCap returns the effective out-degree limit: the configured R bounded
// by what the block geometry can hold.
func (idx *Index) degreeCap() int {
	rmax := MaxNeighbors(idx.file.Header().BlockSize, idx.file.Header().Dims)
	if idx.opts.R < rmax {
		return idx.opts.R
	}
	return rmax
}

// guard rejects operations on a closed or corrupt index.
func (idx *Index) guard() error {
	if idx.closed {
		return ErrClosed
	}
	if idx.corrupt {
		return ErrCorrupt
	}
	return nil
}

// fail latches the corrupt flag when err is structural.
func (idx *Index) fail(err error) error {
	if errors.Is(err, ErrCorrupt) {
		idx.corrupt = true
	}
	return err
}

// loadNode reads and decodes the node block at off.
func (idx *Index) loadNode(off uint64) (*Node, error) {
	buf, err := idx.file.ReadBlock(off)
	if err != nil {
		return nil, err
	}
	return UnmarshalNode(idx.file.Header(), buf, off, idx.file.Size())
}

// Stats describes the current shape of the index.
type Stats struct {
	Dims       int
	BlockSize  int
	Nodes      uint64
	Edges      uint64
	BlockReads uint64
	Writes     uint64
}

// Stats scans every node block and reports graph totals.
func (idx *Index) Stats(ctx context.Context) (Stats, error) {
	if err := idx.guard(); err != nil {
		return Stats{}, err
	}

	header := idx.file.Header()
	stats := Stats{
		Dims:       header.Dims,
		BlockSize:  header.BlockSize,
		Nodes:      idx.Count(),
		BlockReads: idx.file.reads,
		Writes:     idx.file.writes,
	}

	blockSize := uint64(header.BlockSize)
	for off := blockSize; off < idx.file.Size(); off += blockSize {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		node, err := idx.loadNode(off)
		if err != nil {
			return Stats{}, idx.fail(err)
		}
		stats.Edges += uint64(len(node.Neighbors))
	}
	return stats, nil
}

// Close releases the underlying file. The index is unusable afterwards.
func (idx *Index) Close() error {
	if idx.closed {
		return nil
	}
	idx.closed = true
	return idx.file.Close()
}

// checkQuery validates a query vector against the index dimension.
func (idx *Index) checkQuery(q []float32) error {
	if len(q) != idx.file.Header().Dims {
		return &vector.DimensionMismatchError{Expected: idx.file.Header().Dims, Actual: len(q)}
	}
	return nil
}
