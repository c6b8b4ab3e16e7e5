package diskann

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/vekta-labs/diskvec/vector"
)

func testHeader(dims int) *Header {
	return &Header{
		BlockSize:  4096,
		VectorType: vector.TypeFloat32,
		Dims:       dims,
		Similarity: SimilarityCosine,
	}
}

func TestMaxNeighbors(t *testing.T) {
	tests := []struct {
		blockSize, dims, want int
	}{
		// (4096 - 16 - 8) / (16 + 16) = 127, remainder holds the count
		{4096, 3, 127},
		// (4096 - 516 - 8) / (516 + 16) = 6
		{4096, 128, 6},
		{512, 3, 15},
	}
	for _, tt := range tests {
		if got := MaxNeighbors(tt.blockSize, tt.dims); got != tt.want {
			t.Errorf("MaxNeighbors(%d, %d) = %d, expected %d", tt.blockSize, tt.dims, got, tt.want)
		}
	}
}

func TestMaxNeighborsLayoutAlwaysFits(t *testing.T) {
	for dims := 1; dims <= 900; dims++ {
		rmax := MaxNeighbors(4096, dims)
		if rmax < 0 {
			t.Fatalf("dims %d: negative capacity %d", dims, rmax)
		}
		used := vector.BlobSize(dims) + ownerIDSize + neighborCountSize +
			rmax*(vector.BlobSize(dims)+neighborMetaSize)
		if used > 4096 {
			t.Errorf("dims %d: layout uses %d bytes, block is 4096", dims, used)
		}
	}
}

func randVec(rng *rand.Rand, dims int) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v
}

func TestNodeRoundTrip(t *testing.T) {
	h := testHeader(8)
	rng := rand.New(rand.NewSource(42))

	node := &Node{
		ID:  77,
		Vec: randVec(rng, 8),
		Neighbors: []Neighbor{
			{ID: 1, Offset: 4096, Vec: randVec(rng, 8)},
			{ID: 2, Offset: 8192, Vec: randVec(rng, 8)},
			{ID: 9, Offset: 20480, Vec: randVec(rng, 8)},
		},
	}

	buf, err := MarshalNode(h, node)
	if err != nil {
		t.Fatalf("MarshalNode: %v", err)
	}
	if len(buf) != h.BlockSize {
		t.Fatalf("block size: got %d, expected %d", len(buf), h.BlockSize)
	}

	loaded, err := UnmarshalNode(h, buf, 4096, 1<<20)
	if err != nil {
		t.Fatalf("UnmarshalNode: %v", err)
	}
	if !reflect.DeepEqual(node, loaded) {
		t.Errorf("node round trip mismatch:\n got %+v\nwant %+v", loaded, node)
	}
}

func TestNodeRoundTripEmptyNeighbors(t *testing.T) {
	h := testHeader(3)
	node := &Node{ID: 1, Vec: []float32{1, 0, 0}}

	buf, err := MarshalNode(h, node)
	if err != nil {
		t.Fatalf("MarshalNode: %v", err)
	}
	loaded, err := UnmarshalNode(h, buf, 4096, 8192)
	if err != nil {
		t.Fatalf("UnmarshalNode: %v", err)
	}
	if loaded.ID != 1 || len(loaded.Neighbors) != 0 {
		t.Errorf("unexpected node: %+v", loaded)
	}
}

func TestMarshalNodeRejects(t *testing.T) {
	h := testHeader(3)
	vec := []float32{1, 2, 3}

	tests := []struct {
		name string
		node *Node
	}{
		{"dimension mismatch", &Node{ID: 1, Vec: []float32{1, 2}}},
		{"self-loop", &Node{ID: 1, Vec: vec, Neighbors: []Neighbor{{ID: 1, Offset: 4096, Vec: vec}}}},
		{"zero neighbor id", &Node{ID: 1, Vec: vec, Neighbors: []Neighbor{{ID: 0, Offset: 4096, Vec: vec}}}},
		{"duplicate neighbor", &Node{ID: 1, Vec: vec, Neighbors: []Neighbor{
			{ID: 2, Offset: 4096, Vec: vec},
			{ID: 2, Offset: 8192, Vec: vec},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MarshalNode(h, tt.node); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUnmarshalNodeRejectsBadOffsets(t *testing.T) {
	h := testHeader(3)
	vec := []float32{1, 2, 3}

	tests := []struct {
		name   string
		offset uint64
		size   uint64
	}{
		{"offset zero points at header", 0, 1 << 20},
		{"offset beyond file", 1 << 21, 1 << 20},
		{"offset not block aligned", 6000, 1 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &Node{ID: 1, Vec: vec, Neighbors: []Neighbor{{ID: 2, Offset: tt.offset, Vec: vec}}}
			buf, err := MarshalNode(h, node)
			if err != nil {
				t.Fatalf("MarshalNode: %v", err)
			}
			if _, err := UnmarshalNode(h, buf, 4096, tt.size); err == nil {
				t.Error("expected corrupt error")
			}
		})
	}
}

func TestUnmarshalNodeRejectsOverflowCount(t *testing.T) {
	h := testHeader(3)
	buf, err := MarshalNode(h, &Node{ID: 1, Vec: []float32{1, 2, 3}})
	if err != nil {
		t.Fatalf("MarshalNode: %v", err)
	}

	// Corrupt the neighbor count past the block capacity.
	countOff := vector.BlobSize(3) + ownerIDSize
	buf[countOff] = 0xFF
	buf[countOff+1] = 0xFF

	if _, err := UnmarshalNode(h, buf, 4096, 8192); err == nil {
		t.Error("expected corrupt error for oversized neighbor count")
	}
}
