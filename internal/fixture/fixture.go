// Package fixture resizes the external JSON document the document workloads
// read. Both operations rewrite the file in place through a temporary file in
// the same directory.
package fixture

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Grow appends the document's top-level array to itself repetitions times,
// so a document of n items ends with n*(repetitions+1) items.
func Grow(path string, repetitions int) (int, error) {
	if repetitions < 0 {
		return 0, fmt.Errorf("repetitions must be >= 0, got %d", repetitions)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if items == nil {
		return 0, fmt.Errorf("decode %s: expected a top-level array, got null", path)
	}

	base := items[:len(items):len(items)]
	for i := 0; i < repetitions; i++ {
		items = append(items, base...)
	}

	err = replace(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(items)
	})
	return len(items), err
}

// Halve drops the first half of the document's top-level array and writes
// the remaining items one per line. The result is newline-delimited JSON, not
// a single JSON value. It returns how many items were kept.
func Halve(path string) (int, error) {
	total, err := countItems(path)
	if err != nil {
		return 0, err
	}
	skip := total / 2

	kept := 0
	err = replace(path, func(w io.Writer) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		return eachItem(f, func(i int, raw json.RawMessage) error {
			if i < skip {
				return nil
			}
			if _, err := w.Write(raw); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
			kept++
			return nil
		})
	})
	return kept, err
}

func countItems(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	err = eachItem(f, func(int, json.RawMessage) error {
		n++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count items in %s: %w", path, err)
	}
	return n, nil
}

// eachItem streams the elements of a top-level JSON array.
func eachItem(r io.Reader, fn func(i int, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bufio.NewReader(r))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("expected a top-level array, got %v", tok)
	}

	for i := 0; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(i, raw); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}

func replace(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
