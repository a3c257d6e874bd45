package index

import (
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/HenryZhang-ZHY/beetle/internal/errors"
)

// lockFileName lives in the index root, next to the bleve index directory
// rather than inside it. Removing the index root removes the lock file too.
const lockFileName = "writer.lock"

// WriterLock serializes writers on one index across processes.
type WriterLock struct {
	name  string
	flock *flock.Flock
}

// NewWriterLock creates the lock for the index rooted at indexDir.
func NewWriterLock(name, indexDir string) *WriterLock {
	return &WriterLock{
		name:  name,
		flock: flock.New(filepath.Join(indexDir, lockFileName)),
	}
}

// Acquire takes the lock without blocking. A lock held elsewhere yields
// WriterBusy rather than a deadlock.
func (l *WriterLock) Acquire() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return errors.Wrap(errors.KindIO, err, "failed to acquire writer lock for index %q", l.name)
	}
	if !acquired {
		return errors.WriterBusy(l.name)
	}
	return nil
}

// Release drops the lock. Safe to call when not held.
func (l *WriterLock) Release() error {
	return l.flock.Unlock()
}
