// Package pathutil provides the path canonicalization shared by the
// scanner and the storage layer.
package pathutil

import "path/filepath"

// Canonicalize resolves path to an absolute, symlink-free form. Snapshots
// and index document IDs key on this form, so it must be stable across
// scans. When resolution fails (path gone, broken link) the absolute
// lexical form is returned instead of an error.
func Canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}
