package index

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

// Tokenize splits text with code-aware rules and lowercases the result.
// Identifiers are split on camelCase, snake_case, acronym boundaries, and
// letter/digit transitions; every non-alphanumeric byte is a separator.
func Tokenize(text string) []string {
	var tokens []string
	for _, word := range splitSeparators(text) {
		for _, t := range SplitIdentifier(word) {
			tokens = append(tokens, strings.ToLower(t))
		}
	}
	return tokens
}

// splitSeparators breaks text into maximal alphanumeric runs.
func splitSeparators(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SplitIdentifier splits one alphanumeric run at code-aware boundaries:
//
//	fooBar     -> foo, Bar
//	HTTPServer -> HTTP, Server
//	utf8       -> utf, 8
//	ipv4count  -> ipv, 4, count
//
// Case is preserved; empty parts never occur.
func SplitIdentifier(s string) []string {
	if s == "" {
		return nil
	}

	runes := []rune(s)
	var result []string
	start := 0

	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]

		boundary := false
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			boundary = true
		case unicode.IsLetter(prev) && unicode.IsDigit(cur):
			boundary = true
		case unicode.IsDigit(prev) && unicode.IsLetter(cur):
			boundary = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// End of an uppercase run followed by a lowercased word.
			boundary = true
		}

		if boundary {
			result = append(result, string(runes[start:i]))
			start = i
		}
	}

	return append(result, string(runes[start:]))
}

// TokenizerName is the registry name of the code tokenizer.
const TokenizerName = "code"

func init() {
	registry.RegisterTokenizer(TokenizerName, codeTokenizerConstructor)
}

func codeTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &codeTokenizer{}, nil
}

// codeTokenizer adapts the splitter to the bleve analysis chain. Tokens
// keep their original case; the analyzer's lowercase filter normalizes.
type codeTokenizer struct{}

// Tokenize implements analysis.Tokenizer with exact byte offsets.
func (t *codeTokenizer) Tokenize(input []byte) analysis.TokenStream {
	stream := make(analysis.TokenStream, 0, 64)
	pos := 1

	runStart := -1
	for i := 0; i <= len(input); {
		var r rune
		var width int
		if i < len(input) {
			r, width = utf8.DecodeRune(input[i:])
		} else {
			r, width = ' ', 1 // sentinel terminating the final run
		}

		alnum := unicode.IsLetter(r) || unicode.IsDigit(r)
		if alnum && runStart < 0 {
			runStart = i
		}
		if !alnum && runStart >= 0 {
			pos = t.emitRun(&stream, input, runStart, i, pos)
			runStart = -1
		}
		i += width
	}

	return stream
}

// emitRun splits input[start:end] at identifier boundaries and appends one
// token per part. Returns the next position counter.
func (t *codeTokenizer) emitRun(stream *analysis.TokenStream, input []byte, start, end, pos int) int {
	offset := start
	for _, part := range SplitIdentifier(string(input[start:end])) {
		partLen := len(part)
		*stream = append(*stream, &analysis.Token{
			Term:     []byte(part),
			Start:    offset,
			End:      offset + partLen,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		offset += partLen
		pos++
	}
	return pos
}
