// Package vfs abstracts the host filesystem underneath the index. All block
// I/O performed by the index goes through a File obtained from an FS, so a
// host database can substitute its own VFS (or a test can run fully in
// memory).
package vfs

import (
	"io"
	"os"
)

// ErrNotFound is returned when a file does not exist and the FS does not
// create it.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// FS opens index files by name.
type FS interface {
	// Open opens the named file for reading and writing, creating it
	// empty when it does not exist.
	Open(name string) (File, error)
}

// File is a random-access handle to an index file.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	// Size returns the current size of the file in bytes.
	Size() (int64, error)

	// Sync flushes buffered writes to stable storage according to the
	// host's durability policy.
	Sync() error
}
