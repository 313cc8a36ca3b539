// Package snapshot persists parsed datasets so they can be loaded without
// parsing the spreadsheet again.
//
// A snapshot is a magic header followed by a snappy stream holding the
// gob-encoded table.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"

	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

const version byte = 1

var magic = []byte("TMSNAP")

// ErrNotSnapshot indicates the input does not start with a snapshot header.
var ErrNotSnapshot = errors.New("snapshot: not a snapshot")

// ErrVersion indicates a snapshot written by an unsupported version.
var ErrVersion = errors.New("snapshot: unsupported version")

type payload struct {
	Headers map[string]int
	Rows    [][]string
}

// Write writes a table snapshot to w.
func Write(w io.Writer, t *tabular.Table) error {
	if _, err := w.Write(append(append([]byte(nil), magic...), version)); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	sw := snappy.NewBufferedWriter(w)
	if err := gob.NewEncoder(sw).Encode(payload{Headers: t.HeaderIndex(), Rows: t.RawRows()}); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("snapshot: flush: %w", err)
	}
	return nil
}

// Read reads a table snapshot from r.
func Read(r io.Reader) (*tabular.Table, error) {
	header := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrNotSnapshot
		}
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if !bytes.Equal(header[:len(magic)], magic) {
		return nil, ErrNotSnapshot
	}
	if header[len(magic)] != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, header[len(magic)])
	}

	var p payload
	if err := gob.NewDecoder(snappy.NewReader(r)).Decode(&p); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return tabular.NewTable(p.Headers, p.Rows), nil
}

// WriteFile writes a table snapshot to a file.
func WriteFile(path string, t *tabular.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, t)
}

// ReadFile reads a table snapshot from a file.
func ReadFile(path string) (*tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// IsSnapshot reports whether the file at path starts with a snapshot header.
func IsSnapshot(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(magic))
	if _, err := io.ReadFull(f, header); err != nil {
		return false, nil
	}
	return bytes.Equal(header, magic), nil
}
