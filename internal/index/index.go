// Package index owns the bleve schema and lifecycle for beetle's inverted
// indexes. The code tokenizer and the snippet highlighter are registered
// with the bleve registry at init time and referenced by name, and the code
// analyzer built on the tokenizer is stored in the index mapping, so indexes
// open consistently across processes.
package index

import (
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
	"github.com/blevesearch/bleve/v2/search/highlight"
	htmlFormatter "github.com/blevesearch/bleve/v2/search/highlight/format/html"
	simpleFragmenter "github.com/blevesearch/bleve/v2/search/highlight/fragmenter/simple"
	simpleHighlighter "github.com/blevesearch/bleve/v2/search/highlight/highlighter/simple"

	"github.com/HenryZhang-ZHY/beetle/internal/errors"
)

const (
	// AnalyzerName is the registry name of the code analyzer.
	AnalyzerName = "code"

	// HighlighterName is the registry name of the snippet highlighter.
	HighlighterName = "code_html"

	// Field names of the index schema.
	FieldPath         = "path"
	FieldContent      = "content"
	FieldExtension    = "extension"
	FieldLastModified = "last_modified"
)

// snippetFragmentSize is the window of content text around a match.
const snippetFragmentSize = 150

func init() {
	registry.RegisterHighlighter(HighlighterName, codeHighlighterConstructor)
}

// codeHighlighterConstructor builds the snippet highlighter: a small text
// window with matched terms wrapped in <b> markers.
func codeHighlighterConstructor(config map[string]interface{}, cache *registry.Cache) (highlight.Highlighter, error) {
	fragmenter := simpleFragmenter.NewFragmenter(snippetFragmentSize)
	formatter := htmlFormatter.NewFragmentFormatter("<b>", "</b>")
	return simpleHighlighter.NewHighlighter(fragmenter, formatter, "…"), nil
}

// Document is one file's representation in the inverted index. The bleve
// document ID is the canonical absolute path, which is also how deletes
// address documents: by exact ID, immune to tokenization.
type Document struct {
	Path         string `json:"path"`
	Content      string `json:"content"`
	Extension    string `json:"extension"`
	LastModified uint64 `json:"last_modified"`
}

// NewIndexMapping builds the schema: path and content run through the code
// analyzer with positions and term vectors, extension is a keyword, and
// last_modified is numeric.
func NewIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(AnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     TokenizerName,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindBackend, err, "failed to register code analyzer")
	}

	pathField := bleve.NewTextFieldMapping()
	pathField.Analyzer = AnalyzerName

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = AnalyzerName

	extensionField := bleve.NewTextFieldMapping()
	extensionField.Analyzer = keyword.Name

	lastModifiedField := bleve.NewNumericFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt(FieldPath, pathField)
	docMapping.AddFieldMappingsAt(FieldContent, contentField)
	docMapping.AddFieldMappingsAt(FieldExtension, extensionField)
	docMapping.AddFieldMappingsAt(FieldLastModified, lastModifiedField)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = AnalyzerName

	return indexMapping, nil
}

// Create creates a new empty index at dir.
func Create(dir string) (bleve.Index, error) {
	indexMapping, err := NewIndexMapping()
	if err != nil {
		return nil, err
	}

	idx, err := bleve.New(dir, indexMapping)
	if err != nil {
		return nil, errors.Wrap(errors.KindBackend, err, "failed to create index at %s", dir)
	}
	return idx, nil
}

// Open opens an existing index at dir.
func Open(dir string) (bleve.Index, error) {
	idx, err := bleve.Open(dir)
	if err != nil {
		return nil, errors.Wrap(errors.KindBackend, err, "failed to open index at %s", dir)
	}
	return idx, nil
}

// Exists reports whether dir looks like a bleve index directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "index_meta.json"))
	return err == nil
}
