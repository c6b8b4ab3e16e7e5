package vector

import (
	"encoding/binary"
	"math"

	"github.com/viterin/vek/vek32"
)

// Type tags the element type of a vector. The on-disk format reserves two
// bytes for it; only float32 is currently defined.
type Type uint16

const (
	// TypeFloat32 is the only implemented element type.
	TypeFloat32 Type = 0
)

func (t Type) String() string {
	switch t {
	case TypeFloat32:
		return "float32"
	default:
		return "unknown"
	}
}

const (
	// MaxDims is the maximum number of elements in a vector.
	MaxDims = 16000

	// maxNumberLen bounds a single numeric token in textual form.
	maxNumberLen = 1024

	// BlobHeaderSize is the size of the length prefix in the blob form.
	BlobHeaderSize = 4

	// ElemSize is the encoded size of one float32 element.
	ElemSize = 4
)

// Vector is a dense array of float32 elements. The zero value is an empty
// float32 vector.
type Vector struct {
	typ  Type
	data []float32
}

// New wraps data in a float32 Vector. The slice is not copied.
func New(data []float32) *Vector {
	return &Vector{typ: TypeFloat32, data: data}
}

// Type returns the element type tag.
func (v *Vector) Type() Type { return v.typ }

// Dims returns the number of elements.
func (v *Vector) Dims() int { return len(v.data) }

// Data returns the underlying element slice.
func (v *Vector) Data() []float32 { return v.data }

// Clone returns a deep copy of v.
func (v *Vector) Clone() *Vector {
	data := make([]float32, len(v.data))
	copy(data, v.data)
	return &Vector{typ: v.typ, data: data}
}

// BlobSize returns the encoded size of a vector with dims elements.
func BlobSize(dims int) int {
	return BlobHeaderSize + ElemSize*dims
}

// Cosine returns the cosine distance 1 - (u·v)/(‖u‖·‖v‖) between v and
// other. When either norm is zero the result is NaN; callers rank NaN after
// every finite distance.
func (v *Vector) Cosine(other *Vector) (float64, error) {
	if len(v.data) != len(other.data) {
		return 0, &DimensionMismatchError{Expected: len(v.data), Actual: len(other.data)}
	}
	return Cosine(v.data, other.data), nil
}

// Cosine computes cosine distance over two equally sized element slices.
// Products accumulate in float32, matching the stored element precision; the
// final division happens in float64.
func Cosine(a, b []float32) float64 {
	dot := vek32.Dot(a, b)
	norm1 := vek32.Dot(a, a)
	norm2 := vek32.Dot(b, b)
	return 1.0 - float64(dot)/math.Sqrt(float64(norm1)*float64(norm2))
}

// Less orders two distances ascending with NaN after every finite value.
// Equal distances tie-break on the caller's side.
func Less(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

// Serialize encodes v in blob form: u32 element count followed by the
// elements, all little-endian.
func (v *Vector) Serialize() []byte {
	buf := make([]byte, BlobSize(len(v.data)))
	binary.LittleEndian.PutUint32(buf, uint32(len(v.data)))
	for i, f := range v.data {
		binary.LittleEndian.PutUint32(buf[BlobHeaderSize+i*ElemSize:], math.Float32bits(f))
	}
	return buf
}

// AppendElems encodes the elements of v into dst without the length prefix.
// dst must hold at least ElemSize*Dims() bytes.
func (v *Vector) AppendElems(dst []byte) {
	for i, f := range v.data {
		binary.LittleEndian.PutUint32(dst[i*ElemSize:], math.Float32bits(f))
	}
}

// ParseBlob decodes a vector from blob form. It rejects blobs whose declared
// element count exceeds MaxDims or whose payload is shorter than the count
// declares; trailing bytes are ignored.
func ParseBlob(blob []byte) (*Vector, error) {
	if len(blob) < BlobHeaderSize {
		return nil, &BlobError{Actual: len(blob), Reason: "missing length prefix"}
	}
	n := int(binary.LittleEndian.Uint32(blob))
	if n > MaxDims {
		return nil, &BlobError{Declared: n, Actual: len(blob), Reason: "too many elements"}
	}
	if len(blob) < BlobSize(n) {
		return nil, &BlobError{Declared: n, Actual: len(blob), Reason: "truncated payload"}
	}
	data := make([]float32, n)
	for i := range data {
		bits := binary.LittleEndian.Uint32(blob[BlobHeaderSize+i*ElemSize:])
		data[i] = math.Float32frombits(bits)
	}
	return New(data), nil
}

// DecodeElems decodes dims little-endian float32 elements from buf.
func DecodeElems(buf []byte, dims int) []float32 {
	data := make([]float32, dims)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*ElemSize:]))
	}
	return data
}
