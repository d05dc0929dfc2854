// Package extract turns source files into flat definition and reference
// records for the usage index. Two extraction strategies exist: a
// grammar-aware path driven by a tree-sitter parse (Python) and an
// approximate pattern path over raw text (Dart, Go, the JavaScript family).
// Extractors are selected by language tag through a registry; adding a
// language means registering one implementation.
package extract

import (
	"fmt"
	"os"

	"github.com/recluselabs/recluse/pkg/parser"
	"github.com/recluselabs/recluse/pkg/usage"
)

// Result holds one file's extraction output. A file either contributes its
// complete record set or, on error, nothing at all.
type Result struct {
	Unit     string
	Language parser.Language

	// Definitions and References are in traversal order.
	Definitions []usage.Definition
	References  []usage.Reference

	// UsedNames are the non-self call receivers and imported identifiers
	// seen in the file, in first-seen order. They feed the global
	// class-usage set.
	UsedNames []string
}

// Extractor produces one file's records from its source text.
type Extractor interface {
	Extract(unit string, source []byte) (*Result, error)
}

// Closer is implemented by extractors holding parser resources.
type Closer interface {
	Close()
}

// Registry dispatches files to extractors by language tag. A registry is not
// safe for concurrent use; give each worker its own.
type Registry struct {
	extractors map[parser.Language]Extractor
}

// NewRegistry returns a registry with the default extractors: the
// grammar-aware Python extractor and pattern extractors for Dart, Go and
// the JavaScript family. JSX and TypeScript declaration shapes are close
// enough to JavaScript for the pattern path to treat them alike.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[parser.Language]Extractor)}
	r.Register(parser.LangPython, NewPythonExtractor())
	r.Register(parser.LangDart, NewPatternExtractor(parser.LangDart))
	r.Register(parser.LangGo, NewPatternExtractor(parser.LangGo))
	r.Register(parser.LangJavaScript, NewPatternExtractor(parser.LangJavaScript))
	r.Register(parser.LangJSX, NewPatternExtractor(parser.LangJSX))
	r.Register(parser.LangTypeScript, NewPatternExtractor(parser.LangTypeScript))
	r.Register(parser.LangTSX, NewPatternExtractor(parser.LangTSX))
	return r
}

// Register installs an extractor for a language, replacing any previous one.
func (r *Registry) Register(lang parser.Language, e Extractor) {
	r.extractors[lang] = e
}

// Supports reports whether an extractor is registered for the language.
func (r *Registry) Supports(lang parser.Language) bool {
	_, ok := r.extractors[lang]
	return ok
}

// Extract runs the extractor registered for the language over the source.
func (r *Registry) Extract(unit string, source []byte, lang parser.Language) (*Result, error) {
	e, ok := r.extractors[lang]
	if !ok {
		return nil, &UnsupportedLanguageError{Unit: unit, Language: lang}
	}
	return e.Extract(unit, source)
}

// ExtractFile reads the file, detects its language from the path and
// extracts its records.
func (r *Registry) ExtractFile(path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return r.Extract(path, source, parser.DetectLanguage(path))
}

// Close releases parser resources held by registered extractors.
func (r *Registry) Close() {
	for _, e := range r.extractors {
		if c, ok := e.(Closer); ok {
			c.Close()
		}
	}
}
