// Package scanner walks a target directory tree and produces the file
// metadata records the differ compares against the persisted snapshot.
//
// The walk runs on a worker pool and honors a fixed ignore policy: hidden
// entries, .gitignore files at every ancestor depth, the user's global git
// ignore, and .git/info/exclude.
package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/HenryZhang-ZHY/beetle/internal/errors"
	"github.com/HenryZhang-ZHY/beetle/internal/gitignore"
	"github.com/HenryZhang-ZHY/beetle/internal/pathutil"
	"github.com/HenryZhang-ZHY/beetle/internal/snapshot"
)

// matcherCacheSize bounds the number of cached per-directory gitignore
// matchers so long-running processes cannot grow without limit.
const matcherCacheSize = 1000

// Options tunes a scan.
type Options struct {
	// Workers is the walk worker pool size. Zero means NumCPU.
	Workers int
}

// Scanner discovers indexable files under a target directory.
type Scanner struct {
	// matcherCache caches parsed .gitignore matchers by directory.
	matcherCache *lru.Cache[string, *gitignore.Matcher]
}

// New creates a Scanner.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.Matcher](matcherCacheSize)
	if err != nil {
		return nil, errors.Wrap(errors.KindIO, err, "failed to create gitignore cache")
	}
	return &Scanner{matcherCache: cache}, nil
}

// Scan walks root and returns a record per indexable regular file. The
// call blocks until the walk completes; record order is unspecified.
func (s *Scanner) Scan(ctx context.Context, root string, opts Options) ([]snapshot.FileRecord, error) {
	absRoot := pathutil.Canonicalize(root)

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errors.Wrap(errors.KindTargetMissing, err, "failed to stat scan root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.KindTargetMissing, "scan root is not a directory: %s", absRoot)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	w := &walk{
		scanner:  s,
		root:     absRoot,
		baseRule: s.baseMatcher(absRoot),
		dirs:     make(chan string, workers*16),
	}

	w.wg.Add(1)
	w.dirs <- absRoot
	go func() {
		w.wg.Wait()
		close(w.dirs)
	}()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for dir := range w.dirs {
				if err := ctx.Err(); err != nil {
					w.wg.Done()
					continue
				}
				w.scanDir(dir)
				w.wg.Done()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.KindIO, err, "scan cancelled")
	}

	return w.records, nil
}

// walk is the shared state of one Scan call.
type walk struct {
	scanner  *Scanner
	root     string
	baseRule *gitignore.Matcher

	dirs chan string
	wg   sync.WaitGroup

	mu      sync.Mutex
	records []snapshot.FileRecord
}

// scanDir processes one directory's entries, queueing subdirectories back
// onto the pool. When the queue is saturated the subtree is descended
// inline so a full channel can never deadlock the pool.
func (w *walk) scanDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("skipping unreadable directory",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			continue
		}

		if entry.IsDir() {
			if w.ignored(relPath, true) {
				continue
			}
			w.wg.Add(1)
			select {
			case w.dirs <- path:
			default:
				w.scanDir(path)
				w.wg.Done()
			}
			continue
		}

		if w.ignored(relPath, false) {
			continue
		}

		info, err := statEntry(path, entry)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		w.append(snapshot.FileRecord{
			Path:         pathutil.Canonicalize(path),
			Size:         uint64(info.Size()),
			ModifiedTime: modifiedTime(info),
		})
	}
}

func (w *walk) append(record snapshot.FileRecord) {
	w.mu.Lock()
	w.records = append(w.records, record)
	w.mu.Unlock()
}

// ignored applies the fixed ignore policy to a root-relative path.
func (w *walk) ignored(relPath string, isDir bool) bool {
	if w.baseRule != nil && w.baseRule.Match(relPath, isDir) {
		return true
	}
	return w.scanner.gitignored(w.root, relPath, isDir)
}

// statEntry resolves the file info for an entry, following symlinks so a
// link to a regular file is indexed while links to anything else drop out.
func statEntry(path string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		return os.Stat(path)
	}
	return entry.Info()
}

// modifiedTime extracts mtime as seconds since epoch, zero when the clock
// predates the epoch.
func modifiedTime(info fs.FileInfo) uint64 {
	secs := info.ModTime().Unix()
	if secs < 0 {
		return 0
	}
	return uint64(secs)
}

// baseMatcher assembles the scan-wide ignore sources: the user's global
// git ignore and the repository's .git/info/exclude.
func (s *Scanner) baseMatcher(root string) *gitignore.Matcher {
	matcher := gitignore.New()
	loaded := false

	if path := gitignore.GlobalIgnoreFile(); path != "" {
		if err := matcher.AddFromFile(path, ""); err == nil {
			loaded = true
		}
	}
	if path := gitignore.RepoExcludeFile(root); path != "" {
		if err := matcher.AddFromFile(path, ""); err == nil {
			loaded = true
		}
	}

	if !loaded {
		return nil
	}
	return matcher
}

// gitignored checks .gitignore files from the root down to the path's
// parent directory.
func (s *Scanner) gitignored(root, relPath string, isDir bool) bool {
	if matcher := s.matcherFor(root, ""); matcher != nil && matcher.Match(relPath, isDir) {
		return true
	}

	dir := filepath.Dir(relPath)
	if dir == "." {
		return false
	}

	parts := strings.Split(dir, string(filepath.Separator))
	currentDir := root
	currentBase := ""
	for _, part := range parts {
		currentDir = filepath.Join(currentDir, part)
		currentBase = filepath.Join(currentBase, part)

		if matcher := s.matcherFor(currentDir, currentBase); matcher != nil && matcher.Match(relPath, isDir) {
			return true
		}
	}

	return false
}

// matcherFor returns the cached matcher for dir's .gitignore, or nil when
// the directory has none.
func (s *Scanner) matcherFor(dir, base string) *gitignore.Matcher {
	if matcher, ok := s.matcherCache.Get(dir); ok {
		return matcher
	}

	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	matcher := gitignore.New()
	if err := matcher.AddFromFile(path, base); err != nil {
		return nil
	}

	s.matcherCache.Add(dir, matcher)
	return matcher
}

// InvalidateCache drops all cached gitignore matchers. Nothing in this
// module calls it: each writer run builds a fresh Scanner with an empty cache.
func (s *Scanner) InvalidateCache() {
	s.matcherCache.Purge()
}
