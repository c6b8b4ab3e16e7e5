package diskann

import (
	"encoding/binary"
	"fmt"

	"github.com/vekta-labs/diskvec/vector"
)

const (
	ownerIDSize       = 8
	neighborCountSize = 2
	neighborMetaSize  = 16 // u64 id + u64 block offset
)

// Neighbor is one out-edge of a graph node. The full neighbor vector is
// stored inline so the search frontier can be ranked without extra reads.
type Neighbor struct {
	ID     uint64
	Offset uint64
	Vec    []float32
}

// Node is the decoded form of one node block.
type Node struct {
	ID        uint64
	Vec       []float32
	Neighbors []Neighbor
}

// MaxNeighbors returns the neighbor capacity of a node block: how many
// inline vector slots plus metadata records fit after the owner vector and
// id. The capacity drops by one in the rare geometry where the remainder
// cannot hold the 2-byte neighbor count.
func MaxNeighbors(blockSize, dims int) int {
	ownerBlob := vector.BlobSize(dims)
	neighborSlot := vector.BlobSize(dims) + neighborMetaSize

	n := (blockSize - ownerBlob - ownerIDSize) / neighborSlot
	if ownerBlob+ownerIDSize+neighborCountSize+n*neighborSlot > blockSize {
		n--
	}
	if n < 0 {
		return 0
	}
	return n
}

// Block layout offsets, all derived from the header geometry.

func neighborVecBase(h *Header) int {
	return vector.BlobSize(h.Dims) + ownerIDSize + neighborCountSize
}

func neighborMetaBase(h *Header) int {
	return neighborVecBase(h) + MaxNeighbors(h.BlockSize, h.Dims)*vector.BlobSize(h.Dims)
}

// MarshalNode encodes n as a full node block. Unused neighbor slots stay
// zeroed.
func MarshalNode(h *Header, n *Node) ([]byte, error) {
	if len(n.Vec) != h.Dims {
		return nil, &vector.DimensionMismatchError{Expected: h.Dims, Actual: len(n.Vec)}
	}
	rmax := MaxNeighbors(h.BlockSize, h.Dims)
	if len(n.Neighbors) > rmax {
		return nil, fmt.Errorf("diskann: node %d has %d neighbors, block fits %d", n.ID, len(n.Neighbors), rmax)
	}

	seen := make(map[uint64]struct{}, len(n.Neighbors))
	for _, nb := range n.Neighbors {
		if nb.ID == 0 {
			return nil, fmt.Errorf("diskann: node %d has neighbor with zero id", n.ID)
		}
		if nb.ID == n.ID {
			return nil, fmt.Errorf("diskann: node %d has self-loop", n.ID)
		}
		if _, dup := seen[nb.ID]; dup {
			return nil, fmt.Errorf("diskann: node %d has duplicate neighbor %d", n.ID, nb.ID)
		}
		seen[nb.ID] = struct{}{}
		if len(nb.Vec) != h.Dims {
			return nil, &vector.DimensionMismatchError{Expected: h.Dims, Actual: len(nb.Vec)}
		}
	}

	buf := make([]byte, h.BlockSize)

	binary.LittleEndian.PutUint32(buf, uint32(h.Dims))
	vector.New(n.Vec).AppendElems(buf[vector.BlobHeaderSize:])

	ownerBlob := vector.BlobSize(h.Dims)
	binary.LittleEndian.PutUint64(buf[ownerBlob:], n.ID)
	binary.LittleEndian.PutUint16(buf[ownerBlob+ownerIDSize:], uint16(len(n.Neighbors)))

	vecBase := neighborVecBase(h)
	metaBase := neighborMetaBase(h)
	for i, nb := range n.Neighbors {
		slot := buf[vecBase+i*vector.BlobSize(h.Dims):]
		binary.LittleEndian.PutUint32(slot, uint32(h.Dims))
		vector.New(nb.Vec).AppendElems(slot[vector.BlobHeaderSize:])

		meta := buf[metaBase+i*neighborMetaSize:]
		binary.LittleEndian.PutUint64(meta, nb.ID)
		binary.LittleEndian.PutUint64(meta[8:], nb.Offset)
	}

	return buf, nil
}

// UnmarshalNode decodes a node block read from off, validating the neighbor
// invariants against the current file size.
func UnmarshalNode(h *Header, buf []byte, off uint64, fileSize uint64) (*Node, error) {
	if len(buf) < h.BlockSize {
		return nil, &CorruptError{Offset: off, Reason: "short block"}
	}

	dims := int(binary.LittleEndian.Uint32(buf))
	if dims != h.Dims {
		return nil, &CorruptError{Offset: off, Reason: fmt.Sprintf("owner vector has %d dims, index has %d", dims, h.Dims)}
	}

	ownerBlob := vector.BlobSize(h.Dims)
	node := &Node{
		ID:  binary.LittleEndian.Uint64(buf[ownerBlob:]),
		Vec: vector.DecodeElems(buf[vector.BlobHeaderSize:], h.Dims),
	}

	count := int(binary.LittleEndian.Uint16(buf[ownerBlob+ownerIDSize:]))
	rmax := MaxNeighbors(h.BlockSize, h.Dims)
	if count > rmax {
		return nil, &CorruptError{Offset: off, Reason: fmt.Sprintf("neighbor count %d exceeds capacity %d", count, rmax)}
	}

	blockSize := uint64(h.BlockSize)
	vecBase := neighborVecBase(h)
	metaBase := neighborMetaBase(h)
	seen := make(map[uint64]struct{}, count)

	node.Neighbors = make([]Neighbor, count)
	for i := 0; i < count; i++ {
		meta := buf[metaBase+i*neighborMetaSize:]
		nb := Neighbor{
			ID:     binary.LittleEndian.Uint64(meta),
			Offset: binary.LittleEndian.Uint64(meta[8:]),
		}
		if nb.ID == 0 {
			return nil, &CorruptError{Offset: off, Reason: "neighbor with zero id"}
		}
		if nb.ID == node.ID {
			return nil, &CorruptError{Offset: off, Reason: "self-loop"}
		}
		if _, dup := seen[nb.ID]; dup {
			return nil, &CorruptError{Offset: off, Reason: fmt.Sprintf("duplicate neighbor %d", nb.ID)}
		}
		seen[nb.ID] = struct{}{}
		if nb.Offset < blockSize || nb.Offset >= fileSize || nb.Offset%blockSize != 0 {
			return nil, &CorruptError{Offset: off, Reason: fmt.Sprintf("neighbor offset %d out of range", nb.Offset)}
		}

		slot := buf[vecBase+i*vector.BlobSize(h.Dims):]
		if got := int(binary.LittleEndian.Uint32(slot)); got != h.Dims {
			return nil, &CorruptError{Offset: off, Reason: fmt.Sprintf("neighbor vector has %d dims, index has %d", got, h.Dims)}
		}
		nb.Vec = vector.DecodeElems(slot[vector.BlobHeaderSize:], h.Dims)
		node.Neighbors[i] = nb
	}

	return node, nil
}
