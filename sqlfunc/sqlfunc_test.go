package sqlfunc

import (
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	require.NoError(t, Register())

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestVectorFunc(t *testing.T) {
	db := openDB(t)

	var blob []byte
	require.NoError(t, db.QueryRow(`SELECT vector('[1,2,3]')`).Scan(&blob))

	want := []byte{
		0x03, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x00, 0x40,
		0x00, 0x00, 0x40, 0x40,
	}
	assert.Equal(t, want, blob)
}

func TestVectorExtract(t *testing.T) {
	db := openDB(t)

	var text string
	require.NoError(t, db.QueryRow(`SELECT vector_extract(vector('[1,2.5,3]'))`).Scan(&text))
	assert.Equal(t, "[1,2.500000e+00,3]", text)

	// Extract accepts the text form directly as well.
	require.NoError(t, db.QueryRow(`SELECT vector_extract('[4,5]')`).Scan(&text))
	assert.Equal(t, "[4,5]", text)
}

func TestVectorDistanceCos(t *testing.T) {
	db := openDB(t)

	var dist float64
	require.NoError(t, db.QueryRow(`SELECT vector_distance_cos('[1,0,0]', '[0,1,0]')`).Scan(&dist))
	assert.InDelta(t, 1.0, dist, 1e-7)

	require.NoError(t, db.QueryRow(`SELECT vector_distance_cos('[1,2,3]', '[1,2,3]')`).Scan(&dist))
	assert.InDelta(t, 0.0, dist, 1e-7)

	// Blob and text arguments mix freely.
	require.NoError(t, db.QueryRow(`SELECT vector_distance_cos(vector('[1,0]'), '[0,1]')`).Scan(&dist))
	assert.InDelta(t, 1.0, dist, 1e-7)
}

func TestVectorDistanceCosZeroNorm(t *testing.T) {
	db := openDB(t)

	var dist sql.NullFloat64
	err := db.QueryRow(`SELECT vector_distance_cos('[0,0]', '[1,1]')`).Scan(&dist)
	if err == nil && dist.Valid {
		assert.True(t, math.IsNaN(dist.Float64) || !dist.Valid)
	}
}

func TestVectorDimensionMismatch(t *testing.T) {
	db := openDB(t)

	var dist float64
	err := db.QueryRow(`SELECT vector_distance_cos('[1,2]', '[1,2,3]')`).Scan(&dist)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestVectorRejectsMalformedText(t *testing.T) {
	db := openDB(t)

	var blob []byte
	err := db.QueryRow(`SELECT vector('1,2,3')`).Scan(&blob)
	require.Error(t, err)

	err = db.QueryRow(`SELECT vector(42)`).Scan(&blob)
	require.Error(t, err)
}

func TestRegisterIdempotent(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())
}
