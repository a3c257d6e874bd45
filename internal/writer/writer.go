// Package writer implements the incremental indexing pipeline: load the
// prior snapshot, scan the target tree, diff, apply deletes and upserts to
// the inverted index in batches, and persist the new snapshot only after a
// clean commit.
package writer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"golang.org/x/sync/errgroup"

	"github.com/HenryZhang-ZHY/beetle/internal/errors"
	"github.com/HenryZhang-ZHY/beetle/internal/index"
	"github.com/HenryZhang-ZHY/beetle/internal/scanner"
	"github.com/HenryZhang-ZHY/beetle/internal/snapshot"
	"github.com/HenryZhang-ZHY/beetle/internal/storage"
)

// DefaultBatchSize is the number of changed files indexed per batch.
const DefaultBatchSize = 100

// Options tunes one writer.
type Options struct {
	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int
	// ScanWorkers is passed through to the scanner.
	ScanWorkers int
}

// Stats summarizes one Index run.
type Stats struct {
	Scanned  int
	Added    int
	Modified int
	Removed  int
	Skipped  int
}

// Writer applies incremental updates to one index. At most one Writer may
// exist per index at a time; construction takes the cross-process lock.
type Writer struct {
	store storage.Storage
	meta  storage.Metadata
	idx   bleve.Index
	lock  *index.WriterLock
	opts  Options
}

// New opens a writer for the named index. Fails with WriterBusy when
// another writer holds the index lock.
func New(store storage.Storage, name string, opts Options) (*Writer, error) {
	meta, err := store.GetMetadata(name)
	if err != nil {
		return nil, err
	}

	lock := store.WriterLock(name)
	if err := lock.Acquire(); err != nil {
		return nil, err
	}

	idx, err := store.Open(name)
	if err != nil {
		_ = lock.Release()
		return nil, err
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	return &Writer{
		store: store,
		meta:  meta,
		idx:   idx,
		lock:  lock,
		opts:  opts,
	}, nil
}

// Close releases the index handle and the writer lock.
func (w *Writer) Close() error {
	err := w.idx.Close()
	if lockErr := w.lock.Release(); err == nil {
		err = lockErr
	}
	return err
}

// Index runs one incremental update. The on-disk snapshot is replaced only
// after every batch has been applied, so an aborted run leaves the
// snapshot lagging the index and the next run simply reprocesses the
// affected files.
func (w *Writer) Index(ctx context.Context) (Stats, error) {
	var stats Stats

	previous, err := w.store.ReadSnapshot(w.meta.IndexName)
	if err != nil {
		// A corrupt snapshot is not fatal: treat the prior state as empty
		// and rebuild. The index converges because every file reprocesses.
		if errors.IsKind(err, errors.KindCorrupted) {
			slog.Warn("snapshot unreadable, reindexing whole tree",
				slog.String("index", w.meta.IndexName),
				slog.String("error", err.Error()))
			previous = nil
		} else {
			return stats, err
		}
	}

	scan, err := scanner.New()
	if err != nil {
		return stats, err
	}
	current, err := scan.Scan(ctx, w.meta.TargetPath, scanner.Options{Workers: w.opts.ScanWorkers})
	if err != nil {
		return stats, err
	}
	stats.Scanned = len(current)

	delta := snapshot.Diff(previous, current)
	stats.Added = len(delta.Added)
	stats.Modified = len(delta.Modified)
	stats.Removed = len(delta.Removed)

	if delta.Empty() {
		slog.Debug("index up to date", slog.String("index", w.meta.IndexName))
		return stats, nil
	}

	if err := w.applyDeletes(delta.Removed); err != nil {
		return stats, err
	}

	skipped, err := w.applyUpserts(ctx, delta.Upserts())
	if err != nil {
		return stats, err
	}
	stats.Skipped = skipped

	if err := w.store.WriteSnapshot(w.meta.IndexName, current); err != nil {
		return stats, err
	}

	slog.Info("index updated",
		slog.String("index", w.meta.IndexName),
		slog.Int("added", stats.Added),
		slog.Int("modified", stats.Modified),
		slog.Int("removed", stats.Removed),
		slog.Int("skipped", stats.Skipped))

	return stats, nil
}

// applyDeletes removes documents by ID. The ID is the canonical path, so
// the delete is exact regardless of how the path field tokenizes.
func (w *Writer) applyDeletes(removed []snapshot.FileRecord) error {
	if len(removed) == 0 {
		return nil
	}

	batch := w.idx.NewBatch()
	for _, r := range removed {
		batch.Delete(r.Path)
	}
	if err := w.idx.Batch(batch); err != nil {
		return errors.Wrap(errors.KindBackend, err, "failed to apply deletes to index %q", w.meta.IndexName)
	}
	return nil
}

// applyUpserts indexes changed files in fixed-size batches. File contents
// are read in parallel within a batch; batch population is serial because
// the bleve batch is not safe for concurrent use. Returns the number of
// files skipped as unreadable or non-text.
func (w *Writer) applyUpserts(ctx context.Context, records []snapshot.FileRecord) (int, error) {
	skipped := 0

	for start := 0; start < len(records); start += w.opts.BatchSize {
		end := start + w.opts.BatchSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		docs := make([]*index.Document, len(chunk))
		g, _ := errgroup.WithContext(ctx)
		for i, record := range chunk {
			i, record := i, record
			g.Go(func() error {
				docs[i] = loadDocument(record)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return skipped, err
		}

		batch := w.idx.NewBatch()
		for _, doc := range docs {
			if doc == nil {
				skipped++
				continue
			}
			if err := batch.Index(doc.Path, doc); err != nil {
				return skipped, errors.Wrap(errors.KindBackend, err, "failed to stage document %s", doc.Path)
			}
		}
		if err := w.idx.Batch(batch); err != nil {
			return skipped, errors.Wrap(errors.KindBackend, err, "failed to apply batch to index %q", w.meta.IndexName)
		}
	}

	return skipped, nil
}

// loadDocument reads one file into an index document. Unreadable or
// non-UTF-8 files yield nil and are skipped with a warning, never failing
// the run.
func loadDocument(record snapshot.FileRecord) *index.Document {
	content, err := os.ReadFile(record.Path)
	if err != nil {
		slog.Warn("skipping unreadable file",
			slog.String("path", record.Path),
			slog.String("error", err.Error()))
		return nil
	}
	if !utf8.Valid(content) {
		slog.Warn("skipping non-text file", slog.String("path", record.Path))
		return nil
	}

	return &index.Document{
		Path:         record.Path,
		Content:      string(content),
		Extension:    extensionOf(record.Path),
		LastModified: record.ModifiedTime,
	}
}

// extensionOf returns the lowercased extension without the dot, "" when
// the file has none.
func extensionOf(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
