package vfs

import (
	"os"
)

// OSFS implements FS using the local file system.
type OSFS struct{}

// NewOSFS returns the default file-system backed FS.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Open opens name read-write, creating it when absent.
func (fs *OSFS) Open(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	return &osFile{f: f}, nil
}

type osFile struct {
	f *os.File
}

func (f *osFile) ReadAt(p []byte, off int64) (int, error) {
	return f.f.ReadAt(p, off)
}

func (f *osFile) WriteAt(p []byte, off int64) (int, error) {
	return f.f.WriteAt(p, off)
}

func (f *osFile) Size() (int64, error) {
	info, err := f.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (f *osFile) Sync() error {
	return f.f.Sync()
}

func (f *osFile) Close() error {
	return f.f.Close()
}
