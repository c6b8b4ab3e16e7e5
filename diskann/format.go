package diskann

import (
	"encoding/binary"

	"github.com/vekta-labs/diskvec/vector"
)

// File format constants.
const (
	// Magic identifies index files ("DiskANN" read little-endian).
	Magic uint64 = 0x4e4e416b736944

	// DefaultBlockSize is the block size used when none is configured.
	DefaultBlockSize = 4096

	// blockSizeShift converts between bytes and the 512-byte sector units
	// the header stores.
	blockSizeShift = 9

	// headerFieldSize is the number of meaningful header bytes; the rest
	// of block 0 is zero padding.
	headerFieldSize = 32

	// SimilarityCosine is the only implemented similarity function.
	SimilarityCosine uint16 = 0
)

// Header is the decoded form of block 0.
type Header struct {
	BlockSize   int
	VectorType  vector.Type
	Dims        int
	Similarity  uint16
	EntryOffset uint64

	// FirstFreeOffset heads an on-disk free list. Block reclamation is not
	// implemented; the field is always written as zero.
	FirstFreeOffset uint64
}

// MarshalBlock encodes h as a full header block of h.BlockSize bytes.
func (h *Header) MarshalBlock() []byte {
	buf := make([]byte, h.BlockSize)
	binary.LittleEndian.PutUint64(buf[0:], Magic)
	binary.LittleEndian.PutUint16(buf[8:], uint16(h.BlockSize>>blockSizeShift))
	binary.LittleEndian.PutUint16(buf[10:], uint16(h.VectorType))
	binary.LittleEndian.PutUint16(buf[12:], uint16(h.Dims))
	binary.LittleEndian.PutUint16(buf[14:], uint16(h.Similarity))
	binary.LittleEndian.PutUint64(buf[16:], h.EntryOffset)
	binary.LittleEndian.PutUint64(buf[24:], h.FirstFreeOffset)
	return buf
}

// UnmarshalHeader decodes and validates a header block.
func UnmarshalHeader(buf []byte) (*Header, error) {
	if len(buf) < headerFieldSize {
		return nil, &CorruptError{Offset: 0, Reason: "header block too short"}
	}
	if got := binary.LittleEndian.Uint64(buf[0:]); got != Magic {
		return nil, &CorruptError{Offset: 0, Reason: "bad magic number"}
	}

	h := &Header{
		BlockSize:       int(binary.LittleEndian.Uint16(buf[8:])) << blockSizeShift,
		VectorType:      vector.Type(binary.LittleEndian.Uint16(buf[10:])),
		Dims:            int(binary.LittleEndian.Uint16(buf[12:])),
		Similarity:      binary.LittleEndian.Uint16(buf[14:]),
		EntryOffset:     binary.LittleEndian.Uint64(buf[16:]),
		FirstFreeOffset: binary.LittleEndian.Uint64(buf[24:]),
	}

	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) validate() error {
	if h.BlockSize < headerFieldSize {
		return &CorruptError{Offset: 0, Reason: "block size too small"}
	}
	if h.VectorType != vector.TypeFloat32 {
		return &CorruptError{Offset: 0, Reason: "unsupported vector type"}
	}
	if h.Dims < 1 || h.Dims > vector.MaxDims {
		return &CorruptError{Offset: 0, Reason: "dimension out of range"}
	}
	if h.Similarity != SimilarityCosine {
		return &CorruptError{Offset: 0, Reason: "unsupported similarity function"}
	}
	if h.EntryOffset != 0 && h.EntryOffset%uint64(h.BlockSize) != 0 {
		return &CorruptError{Offset: 0, Reason: "entry offset not block aligned"}
	}
	if MaxNeighbors(h.BlockSize, h.Dims) < 1 {
		return &CorruptError{Offset: 0, Reason: "block size too small for dimension"}
	}
	return nil
}
