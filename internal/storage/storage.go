// Package storage owns the on-disk layout of beetle indexes.
//
// Each index is one directory under the storage root:
//
//	<root>/<index_name>/
//	    meta.json                 index metadata
//	    file_index_snapshot.bin   snapshot blob (absent until first commit)
//	    writer.lock               writer mutual exclusion
//	    index/                    inverted index owned by bleve
package storage

import (
	"github.com/blevesearch/bleve/v2"

	"github.com/HenryZhang-ZHY/beetle/internal/index"
	"github.com/HenryZhang-ZHY/beetle/internal/snapshot"
)

// Metadata describes one index. Written at create time, removed with the
// index, never mutated in between.
type Metadata struct {
	IndexName  string `json:"index_name"`
	IndexPath  string `json:"index_path"`
	TargetPath string `json:"target_path"`
}

// Storage is the persistence backend the catalog drives. Implementations
// are safe for concurrent use; all state lives behind the interface.
type Storage interface {
	// IndexDir returns the storage root directory.
	IndexDir() string

	// Create registers a new index bound to target and returns the open
	// inverted-index handle. The caller owns closing the handle.
	Create(name, target string) (bleve.Index, error)

	// Open returns the open inverted-index handle for an existing index.
	Open(name string) (bleve.Index, error)

	// Remove deletes the index directory tree.
	Remove(name string) error

	// List returns all metadata entries sorted by index name.
	List() ([]Metadata, error)

	// GetMetadata returns the metadata for one index.
	GetMetadata(name string) (Metadata, error)

	// Reset removes and recreates the index, keeping name and target.
	Reset(name string) error

	// ReadSnapshot returns the persisted file snapshot, empty when absent.
	ReadSnapshot(name string) ([]snapshot.FileRecord, error)

	// WriteSnapshot atomically replaces the persisted file snapshot.
	WriteSnapshot(name string, records []snapshot.FileRecord) error

	// WriterLock returns the cross-process writer lock for an index.
	WriterLock(name string) *index.WriterLock
}
