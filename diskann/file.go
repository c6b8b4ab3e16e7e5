package diskann

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vekta-labs/diskvec/vector"
	"github.com/vekta-labs/diskvec/vfs"
)

// File owns an open index file: the decoded header, the append-only block
// allocator, and a read cache. All offsets are absolute file offsets and
// always multiples of the block size.
type File struct {
	file   vfs.File
	path   string
	header *Header
	size   uint64
	cache  *lru.Cache[uint64, []byte]

	// I/O counters, exposed through Stats.
	reads  uint64
	writes uint64
}

// OpenFile opens or creates the index file at path. An empty file is
// initialized with a fresh header from opts; an existing file must carry a
// valid header matching opts.Dims (when nonzero).
func OpenFile(fsys vfs.FS, path string, opts *Options) (*File, error) {
	opts = opts.withDefaults()
	if opts.BlockSize%(1<<blockSizeShift) != 0 {
		return nil, fmt.Errorf("diskann: block size %d is not a multiple of 512", opts.BlockSize)
	}

	fd, err := fsys.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Err: err}
	}

	f := &File{file: fd, path: path}
	if opts.CacheBlocks > 0 {
		f.cache, _ = lru.New[uint64, []byte](opts.CacheBlocks)
	}

	size, err := fd.Size()
	if err != nil {
		fd.Close()
		return nil, &IOError{Op: "size", Err: err}
	}
	f.size = uint64(size)

	if f.size == 0 {
		if err := f.init(opts); err != nil {
			fd.Close()
			return nil, err
		}
		return f, nil
	}

	if err := f.loadHeader(opts); err != nil {
		fd.Close()
		return nil, err
	}
	return f, nil
}

// init writes a fresh header block into an empty file.
func (f *File) init(opts *Options) error {
	if opts.Dims < 1 || opts.Dims > vector.MaxDims {
		return fmt.Errorf("diskann: cannot create %s: invalid dimension %d", f.path, opts.Dims)
	}
	if MaxNeighbors(opts.BlockSize, opts.Dims) < 1 {
		return fmt.Errorf("diskann: block size %d cannot hold a dimension-%d node", opts.BlockSize, opts.Dims)
	}

	f.header = &Header{
		BlockSize:  opts.BlockSize,
		VectorType: vector.TypeFloat32,
		Dims:       opts.Dims,
		Similarity: SimilarityCosine,
	}
	if err := f.writeAt(f.header.MarshalBlock(), 0); err != nil {
		return err
	}
	f.size = uint64(opts.BlockSize)
	return nil
}

// loadHeader reads and validates block 0 of an existing file.
func (f *File) loadHeader(opts *Options) error {
	if f.size < headerFieldSize {
		return &CorruptError{Offset: 0, Reason: "truncated header"}
	}

	// The block size is only known after decoding the header, so read the
	// fixed fields first.
	buf := make([]byte, headerFieldSize)
	if _, err := f.file.ReadAt(buf, 0); err != nil {
		return &IOError{Op: "read header", Err: err}
	}
	header, err := UnmarshalHeader(buf)
	if err != nil {
		return err
	}

	if f.size%uint64(header.BlockSize) != 0 {
		return &CorruptError{Offset: 0, Reason: fmt.Sprintf("file size %d is not a multiple of block size %d", f.size, header.BlockSize)}
	}
	if header.EntryOffset >= f.size {
		return &CorruptError{Offset: 0, Reason: "entry offset beyond end of file"}
	}
	if opts.Dims != 0 && opts.Dims != header.Dims {
		return &vector.DimensionMismatchError{Expected: opts.Dims, Actual: header.Dims}
	}

	f.header = header

	// A crash between appending the first node and persisting the header
	// leaves entry_offset zero in a file that already holds node blocks.
	// Adopt the lowest-offset block that still decodes cleanly.
	if header.EntryOffset == 0 && f.size > uint64(header.BlockSize) {
		return f.recoverEntry()
	}
	return nil
}

// recoverEntry scans node blocks from the lowest offset and rewrites the
// header to point at the first valid one.
func (f *File) recoverEntry() error {
	blockSize := uint64(f.header.BlockSize)
	for off := blockSize; off < f.size; off += blockSize {
		buf, err := f.ReadBlock(off)
		if err != nil {
			return err
		}
		if _, err := UnmarshalNode(f.header, buf, off, f.size); err == nil {
			f.header.EntryOffset = off
			return f.UpdateHeader()
		}
	}
	return &CorruptError{Offset: 0, Reason: "no valid node block found for entry recovery"}
}

// Header returns the decoded header. Mutations become durable only after
// UpdateHeader.
func (f *File) Header() *Header { return f.header }

// Size returns the current file size in bytes, always a multiple of the
// block size.
func (f *File) Size() uint64 { return f.size }

// NumBlocks returns the number of blocks in the file, the header included.
func (f *File) NumBlocks() uint64 { return f.size / uint64(f.header.BlockSize) }

// ReadBlock returns the block starting at off. The returned slice is shared
// with the cache and must be treated read-only.
func (f *File) ReadBlock(off uint64) ([]byte, error) {
	blockSize := uint64(f.header.BlockSize)
	if off%blockSize != 0 || off+blockSize > f.size {
		return nil, &CorruptError{Offset: off, Reason: "block offset out of range"}
	}

	if f.cache != nil {
		if buf, ok := f.cache.Get(off); ok {
			return buf, nil
		}
	}

	buf := make([]byte, blockSize)
	if _, err := f.file.ReadAt(buf, int64(off)); err != nil {
		return nil, &IOError{Op: "read block", Offset: off, Err: err}
	}
	f.reads++

	if f.cache != nil {
		f.cache.Add(off, buf)
	}
	return buf, nil
}

// AppendBlock writes buf as a new block at the end of the file and returns
// its offset. The file grows by exactly one block.
func (f *File) AppendBlock(buf []byte) (uint64, error) {
	if len(buf) != f.header.BlockSize {
		return 0, fmt.Errorf("diskann: append of %d bytes, block size is %d", len(buf), f.header.BlockSize)
	}
	off := f.size
	if err := f.writeAt(buf, off); err != nil {
		return 0, err
	}
	f.size += uint64(f.header.BlockSize)
	if f.cache != nil {
		f.cache.Add(off, buf)
	}
	return off, nil
}

// WriteBlock rewrites an existing block in place.
func (f *File) WriteBlock(off uint64, buf []byte) error {
	blockSize := uint64(f.header.BlockSize)
	if len(buf) != f.header.BlockSize {
		return fmt.Errorf("diskann: write of %d bytes, block size is %d", len(buf), f.header.BlockSize)
	}
	if off == 0 || off%blockSize != 0 || off+blockSize > f.size {
		return &CorruptError{Offset: off, Reason: "block offset out of range"}
	}
	if err := f.writeAt(buf, off); err != nil {
		return err
	}
	if f.cache != nil {
		f.cache.Add(off, buf)
	}
	return nil
}

// UpdateHeader persists the in-memory header to block 0.
func (f *File) UpdateHeader() error {
	return f.writeAt(f.header.MarshalBlock(), 0)
}

func (f *File) writeAt(buf []byte, off uint64) error {
	if _, err := f.file.WriteAt(buf, int64(off)); err != nil {
		return &IOError{Op: "write block", Offset: off, Err: err}
	}
	f.writes++
	return nil
}

// Close releases the file handle. The cache is dropped.
func (f *File) Close() error {
	if f.cache != nil {
		f.cache.Purge()
	}
	if err := f.file.Close(); err != nil {
		return &IOError{Op: "close", Err: err}
	}
	return nil
}
