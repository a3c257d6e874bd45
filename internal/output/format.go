package output

import (
	"encoding/json"
	"fmt"

	"github.com/HenryZhang-ZHY/beetle/internal/searcher"
	"github.com/HenryZhang-ZHY/beetle/internal/storage"
)

// Format selects how command results are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// searchOutput is the JSON shape of a search response.
type searchOutput struct {
	Query   string            `json:"query"`
	Count   int               `json:"count"`
	Results []searcher.Result `json:"results"`
}

// SearchResults renders query hits in the requested format.
func (w *Writer) SearchResults(format Format, query string, results []searcher.Result) error {
	if format == FormatJSON {
		return w.writeJSON(searchOutput{Query: query, Count: len(results), Results: results})
	}

	if len(results) == 0 {
		w.Printf("No results found for query: %q", query)
		return nil
	}

	w.Printf("Found %d results for query %q:", len(results), query)
	w.Newline()
	for i, r := range results {
		w.Printf("%d. %s %s", i+1, w.path(r.Path), w.score(fmt.Sprintf("(score: %.2f)", r.Score)))
		if r.Snippet != "" {
			w.Printf("   %s", r.Snippet)
		}
		w.Newline()
	}
	return nil
}

// IndexList renders the catalog listing in the requested format.
func (w *Writer) IndexList(format Format, metas []storage.Metadata) error {
	if format == FormatJSON {
		if metas == nil {
			metas = []storage.Metadata{}
		}
		return w.writeJSON(metas)
	}

	if len(metas) == 0 {
		w.Printf("No indexes found.")
		return nil
	}

	for _, m := range metas {
		w.Printf("%s", w.path(m.IndexName))
		w.Printf("  index:  %s", m.IndexPath)
		w.Printf("  target: %s", m.TargetPath)
	}
	return nil
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
