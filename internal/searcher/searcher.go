// Package searcher executes ranked queries against an index and shapes the
// hits into results with highlighted snippets.
package searcher

import (
	"context"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/HenryZhang-ZHY/beetle/internal/errors"
	"github.com/HenryZhang-ZHY/beetle/internal/index"
	"github.com/HenryZhang-ZHY/beetle/internal/storage"
)

// DefaultTopK is the number of hits returned when no override is given.
const DefaultTopK = 10

// Result is one search hit.
type Result struct {
	// Path is the canonical file path.
	Path string `json:"path"`
	// Snippet is an HTML fragment of content around the best match, with
	// matched tokens wrapped in <b> markers.
	Snippet string `json:"snippet"`
	// Extension is the file extension without the dot.
	Extension string `json:"extension"`
	// Score is the relevance score; results are ordered descending.
	Score float64 `json:"score"`
}

// Options tunes one searcher.
type Options struct {
	// TopK overrides DefaultTopK when positive.
	TopK int
}

// Searcher runs queries against one index. Multiple searchers on the same
// index are independent; a searcher observes the index state at the
// moment each query executes.
type Searcher struct {
	name string
	idx  bleve.Index
	topK int
}

// New opens a searcher for the named index.
func New(store storage.Storage, name string, opts Options) (*Searcher, error) {
	idx, err := store.Open(name)
	if err != nil {
		return nil, err
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &Searcher{name: name, idx: idx, topK: topK}, nil
}

// Close releases the index handle.
func (s *Searcher) Close() error {
	return s.idx.Close()
}

// Search parses queryStr in the backend's query mini-language (bare terms,
// "phrases", +/- boolean operators, wildcards, field:term scoping) and
// returns the top hits by descending score. A blank query returns no
// results; a malformed one fails with QueryParse.
func (s *Searcher) Search(ctx context.Context, queryStr string) ([]Result, error) {
	if strings.TrimSpace(queryStr) == "" {
		return []Result{}, nil
	}

	parsed, err := bleve.NewQueryStringQuery(queryStr).Parse()
	if err != nil {
		return nil, errors.Wrap(errors.KindQueryParse, err, "failed to parse query %q", queryStr)
	}

	request := bleve.NewSearchRequestOptions(parsed, s.topK, 0, false)
	request.Fields = []string{index.FieldPath, index.FieldExtension}
	request.Highlight = bleve.NewHighlightWithStyle(index.HighlighterName)
	request.Highlight.AddField(index.FieldContent)

	result, err := s.idx.SearchInContext(ctx, request)
	if err != nil {
		return nil, errors.Wrap(errors.KindBackend, err, "search failed on index %q", s.name)
	}

	results := make([]Result, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, Result{
			Path:      stringField(hit.Fields, index.FieldPath, hit.ID),
			Snippet:   firstFragment(hit.Fragments, index.FieldContent),
			Extension: stringField(hit.Fields, index.FieldExtension, ""),
			Score:     hit.Score,
		})
	}
	return results, nil
}

// stringField extracts a stored string field, falling back when absent.
func stringField(fields map[string]interface{}, name, fallback string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return fallback
}

// firstFragment returns the best highlight fragment for a field, "" when
// the match landed outside it.
func firstFragment(fragments map[string][]string, field string) string {
	if frags, ok := fragments[field]; ok && len(frags) > 0 {
		return frags[0]
	}
	return ""
}
