package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/blevesearch/bleve/v2"

	"github.com/HenryZhang-ZHY/beetle/internal/errors"
	"github.com/HenryZhang-ZHY/beetle/internal/index"
	"github.com/HenryZhang-ZHY/beetle/internal/pathutil"
	"github.com/HenryZhang-ZHY/beetle/internal/snapshot"
)

const (
	metaFileName     = "meta.json"
	snapshotFileName = "file_index_snapshot.bin"
	indexDirName     = "index"
)

// FsStorage keeps every index under one root directory.
type FsStorage struct {
	root string
}

// NewFsStorage creates a filesystem storage rooted at root. The root is
// created on demand by Create.
func NewFsStorage(root string) *FsStorage {
	return &FsStorage{root: pathutil.Canonicalize(root)}
}

// IndexDir implements Storage.
func (s *FsStorage) IndexDir() string {
	return s.root
}

func (s *FsStorage) indexRoot(name string) string {
	return filepath.Join(s.root, name)
}

// Create implements Storage.
func (s *FsStorage) Create(name, target string) (bleve.Index, error) {
	indexRoot := s.indexRoot(name)
	if _, err := os.Stat(indexRoot); err == nil {
		return nil, errors.AlreadyExists(name)
	}

	absTarget := pathutil.Canonicalize(target)
	info, err := os.Stat(absTarget)
	if err != nil || !info.IsDir() {
		return nil, errors.TargetMissing(target)
	}

	if err := os.MkdirAll(indexRoot, 0o755); err != nil {
		return nil, errors.Wrap(errors.KindIO, err, "failed to create directory for index %q", name)
	}

	meta := Metadata{
		IndexName:  name,
		IndexPath:  indexRoot,
		TargetPath: absTarget,
	}
	if err := s.writeMetadata(indexRoot, meta); err != nil {
		_ = os.RemoveAll(indexRoot)
		return nil, err
	}

	idx, err := index.Create(filepath.Join(indexRoot, indexDirName))
	if err != nil {
		_ = os.RemoveAll(indexRoot)
		return nil, err
	}

	return idx, nil
}

// Open implements Storage.
func (s *FsStorage) Open(name string) (bleve.Index, error) {
	indexDir := filepath.Join(s.indexRoot(name), indexDirName)
	if !index.Exists(indexDir) {
		return nil, errors.NotFound(name)
	}
	return index.Open(indexDir)
}

// Remove implements Storage.
func (s *FsStorage) Remove(name string) error {
	indexRoot := s.indexRoot(name)
	if _, err := os.Stat(indexRoot); err != nil {
		return errors.NotFound(name)
	}
	if err := os.RemoveAll(indexRoot); err != nil {
		return errors.Wrap(errors.KindIO, err, "failed to remove index %q", name)
	}
	return nil
}

// List implements Storage. Results are sorted by index name; a directory
// without readable metadata reports the index as corrupted.
func (s *FsStorage) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.KindIO, err, "failed to read storage root %s", s.root)
	}

	var metas []Metadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.readMetadata(entry.Name())
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].IndexName < metas[j].IndexName
	})
	return metas, nil
}

// GetMetadata implements Storage.
func (s *FsStorage) GetMetadata(name string) (Metadata, error) {
	if _, err := os.Stat(s.indexRoot(name)); err != nil {
		return Metadata{}, errors.NotFound(name)
	}
	return s.readMetadata(name)
}

// Reset implements Storage: remove and recreate with the same binding.
func (s *FsStorage) Reset(name string) error {
	meta, err := s.GetMetadata(name)
	if err != nil {
		return err
	}
	if err := s.Remove(name); err != nil {
		return err
	}

	idx, err := s.Create(meta.IndexName, meta.TargetPath)
	if err != nil {
		return err
	}
	return idx.Close()
}

// ReadSnapshot implements Storage.
func (s *FsStorage) ReadSnapshot(name string) ([]snapshot.FileRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.indexRoot(name), snapshotFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.KindIO, err, "failed to read snapshot for index %q", name)
	}
	return snapshot.Decode(data)
}

// WriteSnapshot implements Storage. The blob is written to a temp file in
// the same directory and renamed over the old snapshot.
func (s *FsStorage) WriteSnapshot(name string, records []snapshot.FileRecord) error {
	data, err := snapshot.Encode(records)
	if err != nil {
		return err
	}
	return s.atomicWrite(filepath.Join(s.indexRoot(name), snapshotFileName), data)
}

// WriterLock implements Storage.
func (s *FsStorage) WriterLock(name string) *index.WriterLock {
	return index.NewWriterLock(name, s.indexRoot(name))
}

func (s *FsStorage) readMetadata(name string) (Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.indexRoot(name), metaFileName))
	if err != nil {
		return Metadata{}, errors.Wrap(errors.KindCorrupted, err, "missing metadata for index %q", name)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, errors.Wrap(errors.KindCorrupted, err, "malformed metadata for index %q", name)
	}
	return meta, nil
}

func (s *FsStorage) writeMetadata(indexRoot string, meta Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return errors.Wrap(errors.KindIO, err, "failed to serialize metadata for index %q", meta.IndexName)
	}
	return s.atomicWrite(filepath.Join(indexRoot, metaFileName), data)
}

// atomicWrite writes data via a temp file in the destination directory
// followed by a rename.
func (s *FsStorage) atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.KindIO, err, "failed to create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.KindIO, err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.KindIO, err, "failed to close temp file for %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.KindIO, err, "failed to replace %s", path)
	}
	return nil
}

var _ Storage = (*FsStorage)(nil)
