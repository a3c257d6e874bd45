// Package catalog is the narrow waist between adapters and the engine: a
// registry of named indexes over a storage backend. Errors crossing this
// boundary are BeetleErrors whose string form leads with the failure kind,
// so adapters can present them directly.
package catalog

import (
	"context"

	"github.com/HenryZhang-ZHY/beetle/internal/config"
	"github.com/HenryZhang-ZHY/beetle/internal/searcher"
	"github.com/HenryZhang-ZHY/beetle/internal/storage"
	"github.com/HenryZhang-ZHY/beetle/internal/writer"
)

// Catalog names and lifecycles indexes over a Storage. It holds no
// in-memory state: every method round-trips through the backend, so a
// Catalog is safe to share across goroutines.
type Catalog struct {
	store storage.Storage
	cfg   config.Config
}

// New creates a catalog over the given storage backend.
func New(store storage.Storage, cfg config.Config) *Catalog {
	return &Catalog{store: store, cfg: cfg}
}

// Create registers a new index bound to target and leaves it empty.
func (c *Catalog) Create(name, target string) error {
	idx, err := c.store.Create(name, target)
	if err != nil {
		return err
	}
	return idx.Close()
}

// Remove deletes the named index entirely.
func (c *Catalog) Remove(name string) error {
	return c.store.Remove(name)
}

// List returns metadata for every index, sorted by name.
func (c *Catalog) List() ([]storage.Metadata, error) {
	return c.store.List()
}

// GetMetadata returns metadata for one index.
func (c *Catalog) GetMetadata(name string) (storage.Metadata, error) {
	return c.store.GetMetadata(name)
}

// Reset wipes the index contents while preserving its name and target
// binding.
func (c *Catalog) Reset(name string) error {
	return c.store.Reset(name)
}

// GetWriter opens a writer for the named index. The caller must Close it.
func (c *Catalog) GetWriter(name string) (*writer.Writer, error) {
	return writer.New(c.store, name, writer.Options{
		BatchSize:   c.cfg.Writer.BatchSize,
		ScanWorkers: c.cfg.Scanner.Workers,
	})
}

// GetSearcher opens a searcher for the named index. The caller must Close
// it.
func (c *Catalog) GetSearcher(name string) (*searcher.Searcher, error) {
	return searcher.New(c.store, name, searcher.Options{
		TopK: c.cfg.Search.TopK,
	})
}

// Update runs one incremental indexing pass on the named index.
func (c *Catalog) Update(ctx context.Context, name string) (writer.Stats, error) {
	w, err := c.GetWriter(name)
	if err != nil {
		return writer.Stats{}, err
	}
	defer func() { _ = w.Close() }()

	return w.Index(ctx)
}

// Search runs one query against the named index.
func (c *Catalog) Search(ctx context.Context, name, query string) ([]searcher.Result, error) {
	s, err := c.GetSearcher(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	return s.Search(ctx, query)
}
