package workload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	DefaultScratchFile = "test_io_benchmark.txt"
	DefaultChunkSize   = 10 * 1000 * 1000
	DefaultChunks      = 10
)

// FileWrite appends one ChunkSize block of data to a scratch file per call.
// The file is created in Prepare and removed in Cleanup.
type FileWrite struct {
	Path      string
	ChunkSize int

	chunk []byte
	f     *os.File
}

func (w *FileWrite) Name() string    { return "io-write" }
func (w *FileWrite) Effects() Effect { return WritesFile }
func (w *FileWrite) Unit() string    { return "bytes" }

func (w *FileWrite) Prepare() error {
	f, err := os.Create(w.Path)
	if err != nil {
		return fmt.Errorf("%w: create scratch file %s: %w", ErrResourceUnavailable, w.Path, err)
	}
	w.f = f
	w.chunk = bytes.Repeat([]byte{'A'}, w.ChunkSize)
	return nil
}

func (w *FileWrite) Execute() (int64, error) {
	if w.f == nil {
		return 0, fmt.Errorf("%w: scratch file %s not prepared", ErrResourceUnavailable, w.Path)
	}
	n, err := w.f.Write(w.chunk)
	if err != nil {
		return int64(n), fmt.Errorf("%w: write scratch file %s: %w", ErrResourceUnavailable, w.Path, err)
	}
	return int64(n), nil
}

func (w *FileWrite) Cleanup() error {
	var closeErr error
	if w.f != nil {
		closeErr = w.f.Close()
		w.f = nil
	}
	return errors.Join(closeErr, removeScratch(w.Path))
}

// FileRead reads a prepared scratch file of ChunkSize*Chunks bytes from
// start to end per call.
type FileRead struct {
	Path      string
	ChunkSize int
	Chunks    int
}

func (r *FileRead) Name() string    { return "io-read" }
func (r *FileRead) Effects() Effect { return ReadsFile | WritesFile }
func (r *FileRead) Unit() string    { return "bytes" }

func (r *FileRead) Prepare() error {
	f, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("%w: create scratch file %s: %w", ErrResourceUnavailable, r.Path, err)
	}
	defer f.Close()

	chunk := bytes.Repeat([]byte{'A'}, r.ChunkSize)
	for i := 0; i < r.Chunks; i++ {
		if _, err := f.Write(chunk); err != nil {
			return fmt.Errorf("%w: fill scratch file %s: %w", ErrResourceUnavailable, r.Path, err)
		}
	}
	return nil
}

func (r *FileRead) Execute() (int64, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: open scratch file %s: %w", ErrResourceUnavailable, r.Path, err)
	}
	defer f.Close()

	n, err := io.Copy(io.Discard, f)
	if err != nil {
		return n, fmt.Errorf("read scratch file %s: %w", r.Path, err)
	}
	return n, nil
}

func (r *FileRead) Cleanup() error {
	return removeScratch(r.Path)
}

func removeScratch(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove scratch file %s: %w", path, err)
	}
	return nil
}
