package extract

import (
	"fmt"

	"github.com/recluselabs/recluse/pkg/parser"
)

// ParseError reports that the grammar-aware path could not build a usable
// tree for a file. The file contributes zero records; there is no fallback
// to the pattern path, which would silently mix precision levels.
type ParseError struct {
	Unit string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Unit, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedLanguageError reports that no extractor is registered for a
// file's language. The file is skipped and logged, never fatal.
type UnsupportedLanguageError struct {
	Unit     string
	Language parser.Language
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %s: %s", e.Language, e.Unit)
}
