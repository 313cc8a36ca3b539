// Package source resolves dataset ids to files and loads them, either by
// parsing a spreadsheet or by reading a snapshot.
package source

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spaolacci/murmur3"

	"github.com/iish/treemap-go/internal/snapshot"
	"github.com/iish/treemap-go/pkg/treemap/parser"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// StandardID is the dataset id of the configured standard dataset.
const StandardID = "dataset"

// ErrNoStandardDataset indicates StandardID was requested without a
// configured standard dataset.
var ErrNoStandardDataset = errors.New("no standard dataset configured")

// Kind tells how a source is loaded.
type Kind int

const (
	KindSpreadsheet Kind = iota
	KindSnapshot
)

// Source is a resolved dataset.
type Source struct {
	ID   string
	Path string
	Kind Kind
	// Key identifies the file contents, for caching.
	Key string
}

// Resolver resolves dataset ids, which are file paths or StandardID.
type Resolver struct {
	ingester *parser.Ingester
	standard string
	logger   *slog.Logger
}

// NewResolver creates a resolver. standard may be empty.
func NewResolver(ingester *parser.Ingester, standard string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{ingester: ingester, standard: standard, logger: logger}
}

// Resolve locates a dataset and fingerprints its contents.
func (r *Resolver) Resolve(id string) (Source, error) {
	path := id
	if id == StandardID {
		if r.standard == "" {
			return Source{}, ErrNoStandardDataset
		}
		path = r.standard
	}

	isSnap, err := snapshot.IsSnapshot(path)
	if err != nil {
		return Source{}, err
	}
	fp, err := Fingerprint(path)
	if err != nil {
		return Source{}, err
	}

	src := Source{ID: id, Path: path, Kind: KindSpreadsheet, Key: "xlsx:" + fp}
	if isSnap {
		src.Kind = KindSnapshot
		src.Key = "snapshot:" + fp
	}
	return src, nil
}

// Load reads a resolved dataset.
func (r *Resolver) Load(ctx context.Context, src Source) (*tabular.Table, error) {
	r.logger.Debug("loading dataset", slog.String("id", src.ID), slog.String("path", src.Path))
	if src.Kind == KindSnapshot {
		return snapshot.ReadFile(src.Path)
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.ingester.Ingest(ctx, f)
}

// Fingerprint returns the hex-encoded 128-bit murmur3 hash of a file.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := murmur3.New128()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
