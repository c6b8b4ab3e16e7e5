package diskvec

import (
	"github.com/vekta-labs/diskvec/diskann"
	"github.com/vekta-labs/diskvec/vector"
)

// The cursor surfaces the error kinds of its subpackages unchanged; these
// aliases let hosts match with errors.Is against one import.
var (
	// ErrInvalidText reports a malformed textual vector.
	ErrInvalidText = vector.ErrInvalidText

	// ErrInvalidBlob reports a truncated or oversized vector blob.
	ErrInvalidBlob = vector.ErrInvalidBlob

	// ErrDimensionMismatch reports a vector of the wrong dimension.
	ErrDimensionMismatch = vector.ErrDimensionMismatch

	// ErrCorrupt reports structural damage in the index file. A corrupt
	// cursor is latched: every later operation fails with ErrCorrupt
	// without touching the file.
	ErrCorrupt = diskann.ErrCorrupt

	// ErrIO reports a failure from the underlying VFS.
	ErrIO = diskann.ErrIO

	// ErrPartialBacklink reports an insert that persisted its node but
	// lost reverse edges. The cursor treats it as a warning, not a
	// failure.
	ErrPartialBacklink = diskann.ErrPartialBacklink

	// ErrInvalidK reports a non-positive result count.
	ErrInvalidK = diskann.ErrInvalidK

	// ErrClosed reports an operation on a closed cursor.
	ErrClosed = diskann.ErrClosed
)
