package vector

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestSerializeKnownBytes(t *testing.T) {
	v := New([]float32{1, 2, 3})
	blob := v.Serialize()

	want := []byte{
		0x03, 0x00, 0x00, 0x00, // count
		0x00, 0x00, 0x80, 0x3F, // 1.0
		0x00, 0x00, 0x00, 0x40, // 2.0
		0x00, 0x00, 0x40, 0x40, // 3.0
	}
	assert.Equal(t, want, blob)
}

func TestBlobRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		dims := 1 + rng.Intn(256)
		data := make([]float32, dims)
		for j := range data {
			data[j] = float32(rng.NormFloat64() * 100)
		}

		v := New(data)
		got, err := ParseBlob(v.Serialize())
		require.NoError(t, err)
		assert.Equal(t, v.Data(), got.Data())
	}
}

func TestParseBlobErrors(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"short prefix", []byte{0x01, 0x00}},
		{"truncated payload", []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0x3F}},
		{"oversized count", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBlob(tt.blob)
			assert.ErrorIs(t, err, ErrInvalidBlob)
		})
	}
}

func TestParseBlobIgnoresTrailingBytes(t *testing.T) {
	blob := append(New([]float32{1, 2}).Serialize(), 0xDE, 0xAD)
	v, err := ParseBlob(blob)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, v.Data())
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 1.0},
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			assert.True(t, scalar.EqualWithinAbs(got, tt.want, 1e-7),
				"Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		})
	}
}

func TestCosineZeroNormIsNaN(t *testing.T) {
	assert.True(t, math.IsNaN(Cosine([]float32{0, 0}, []float32{1, 2})))
	assert.True(t, math.IsNaN(Cosine([]float32{0, 0}, []float32{0, 0})))
}

func TestCosineSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		dims := 1 + rng.Intn(64)
		a := make([]float32, dims)
		b := make([]float32, dims)
		for j := range a {
			a[j] = float32(rng.NormFloat64())
			b[j] = float32(rng.NormFloat64())
		}
		ab := Cosine(a, b)
		ba := Cosine(b, a)
		assert.Equal(t, math.Float64bits(ab), math.Float64bits(ba))
	}
}

func TestCosineIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 50; i++ {
		dims := 1 + rng.Intn(64)
		v := make([]float32, dims)
		for j := range v {
			v[j] = float32(rng.NormFloat64() + 2)
		}
		assert.LessOrEqual(t, Cosine(v, v), 1e-6)
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := New([]float32{1, 2}).Cosine(New([]float32{1, 2, 3}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	var dm *DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
}

func TestDistanceLessOrdering(t *testing.T) {
	nan := math.NaN()
	assert.True(t, Less(1.0, 2.0))
	assert.False(t, Less(2.0, 1.0))
	assert.True(t, Less(1.0, nan))
	assert.False(t, Less(nan, 1.0))
	assert.False(t, Less(nan, nan))
}
