// Package sqlfunc exposes the vector SQL surface on the pure-Go SQLite
// driver: vector() parses a textual or binary vector into its canonical
// blob, vector_extract() renders the canonical text form, and
// vector_distance_cos() computes exact cosine distance.
//
// Registration is process-wide on the modernc.org/sqlite driver and must
// happen before connections open, which matches database start:
//
//	import (
//		"database/sql"
//
//		"github.com/vekta-labs/diskvec/sqlfunc"
//		_ "modernc.org/sqlite"
//	)
//
//	func main() {
//		if err := sqlfunc.Register(); err != nil { ... }
//		db, err := sql.Open("sqlite", "app.db")
//		...
//	}
package sqlfunc

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"modernc.org/sqlite"

	"github.com/vekta-labs/diskvec/vector"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// Register installs the scalar functions on the modernc.org/sqlite driver.
// It is idempotent; every call after the first returns the first outcome.
func Register() error {
	registerOnce.Do(func() {
		registerErr = register()
	})
	return registerErr
}

func register() error {
	if err := sqlite.RegisterDeterministicScalarFunction("vector", 1, vectorFunc); err != nil {
		return fmt.Errorf("sqlfunc: register vector: %w", err)
	}
	if err := sqlite.RegisterDeterministicScalarFunction("vector_extract", 1, vectorExtractFunc); err != nil {
		return fmt.Errorf("sqlfunc: register vector_extract: %w", err)
	}
	if err := sqlite.RegisterDeterministicScalarFunction("vector_distance_cos", 2, vectorDistanceCosFunc); err != nil {
		return fmt.Errorf("sqlfunc: register vector_distance_cos: %w", err)
	}
	return nil
}

// parseArg accepts a vector in either surface form: TEXT parses the
// bracketed element list, BLOB decodes the canonical framing.
func parseArg(arg driver.Value) (*vector.Vector, error) {
	switch v := arg.(type) {
	case string:
		return vector.ParseText(v)
	case []byte:
		return vector.ParseBlob(v)
	default:
		return nil, fmt.Errorf("invalid vector: not a text or blob type")
	}
}

func vectorFunc(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	v, err := parseArg(args[0])
	if err != nil {
		return nil, err
	}
	return v.Serialize(), nil
}

func vectorExtractFunc(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	v, err := parseArg(args[0])
	if err != nil {
		return nil, err
	}
	return vector.FormatText(v), nil
}

func vectorDistanceCosFunc(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, err := parseArg(args[0])
	if err != nil {
		return nil, err
	}
	b, err := parseArg(args[1])
	if err != nil {
		return nil, err
	}
	dist, err := a.Cosine(b)
	if err != nil {
		return nil, err
	}
	return dist, nil
}
