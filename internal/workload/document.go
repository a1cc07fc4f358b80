package workload

import (
	"encoding/json"
	"fmt"
	"os"
)

const DefaultDocument = "daytrip.users.json"

// DocumentRead reads the external JSON document without parsing it.
type DocumentRead struct {
	Path string
}

func (d *DocumentRead) Name() string    { return "document-read" }
func (d *DocumentRead) Effects() Effect { return ReadsFile | Allocates }
func (d *DocumentRead) Unit() string    { return "bytes" }

func (d *DocumentRead) Execute() (int64, error) {
	data, err := readDocument(d.Path)
	return int64(len(data)), err
}

// DocumentParse reads the external JSON document and decodes it. A document
// that is not exactly one JSON value fails with ErrMalformedInput.
type DocumentParse struct {
	Path string

	last any
}

func (d *DocumentParse) Name() string    { return "document-parse" }
func (d *DocumentParse) Effects() Effect { return ReadsFile | Allocates }
func (d *DocumentParse) Unit() string    { return "bytes" }
func (d *DocumentParse) Last() any       { return d.last }

func (d *DocumentParse) Execute() (int64, error) {
	data, err := readDocument(d.Path)
	if err != nil {
		return 0, err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrMalformedInput, d.Path, err)
	}
	d.last = v

	return int64(len(data)), nil
}

func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read document %s: %w", ErrResourceUnavailable, path, err)
	}
	return data, nil
}
