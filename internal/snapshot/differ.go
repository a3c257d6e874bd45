package snapshot

// Diff compares two snapshots and returns the delta between them.
//
// A record is added when its path is new, removed when its path vanished,
// and modified when the path survives but size or mtime changed. Duplicate
// paths within one input list should not occur; when they do, the last
// occurrence wins. Runs in O(len(previous) + len(current)).
func Diff(previous, current []FileRecord) Delta {
	prevByPath := indexByPath(previous)
	curByPath := indexByPath(current)

	var delta Delta

	for _, cur := range dedupe(current, curByPath) {
		prev, existed := prevByPath[cur.Path]
		switch {
		case !existed:
			delta.Added = append(delta.Added, cur)
		case prev.Size != cur.Size || prev.ModifiedTime != cur.ModifiedTime:
			delta.Modified = append(delta.Modified, cur)
		}
	}

	for _, prev := range dedupe(previous, prevByPath) {
		if _, exists := curByPath[prev.Path]; !exists {
			delta.Removed = append(delta.Removed, prev)
		}
	}

	return delta
}

// indexByPath builds the lookup map; later entries overwrite earlier ones,
// making the last occurrence authoritative.
func indexByPath(records []FileRecord) map[string]FileRecord {
	m := make(map[string]FileRecord, len(records))
	for _, r := range records {
		m[r.Path] = r
	}
	return m
}

// dedupe yields records in first-seen path order, each carrying the
// authoritative (last-occurrence) value from byPath.
func dedupe(records []FileRecord, byPath map[string]FileRecord) []FileRecord {
	seen := make(map[string]struct{}, len(byPath))
	out := make([]FileRecord, 0, len(byPath))
	for _, r := range records {
		if _, dup := seen[r.Path]; dup {
			continue
		}
		seen[r.Path] = struct{}{}
		out = append(out, byPath[r.Path])
	}
	return out
}
