package extract

import (
	"bytes"
	"regexp"

	"github.com/recluselabs/recluse/pkg/parser"
	"github.com/recluselabs/recluse/pkg/usage"
)

// Declaration shapes for the pattern path. The JavaScript pattern carries
// two alternatives; the name is whichever group matched. The JSX and
// TypeScript variants share the JavaScript shapes.
var (
	dartDeclPattern = regexp.MustCompile(`(?:void|Future|Widget|String|int|bool|double|dynamic|var)\s+(\w+)\s*\(`)
	goDeclPattern   = regexp.MustCompile(`func\s+(?:\([\w\s*]+\)\s+)?(\w+)\s*\(`)
	jsDeclPattern   = regexp.MustCompile(`(?:function|const|let|var)\s+(\w+)\s*\(|(\w+)\s*:\s*function`)
)

var declarationPatterns = map[parser.Language]*regexp.Regexp{
	parser.LangDart:       dartDeclPattern,
	parser.LangGo:         goDeclPattern,
	parser.LangJavaScript: jsDeclPattern,
	parser.LangJSX:        jsDeclPattern,
	parser.LangTypeScript: jsDeclPattern,
	parser.LangTSX:        jsDeclPattern,
}

// methodCallPattern matches receiver.name( shapes. The receiver token is
// discarded: text scanning cannot tell a class from a local, so the
// references it yields never carry a class hint.
var methodCallPattern = regexp.MustCompile(`(?:\w+)\.(\w+)\s*\(`)

// PatternExtractor is the approximate extraction path: two independent
// regex scans over raw text, one for declaration shapes and one for method
// call shapes. Scope is not recoverable from text alone, so definitions are
// always classless and can never become narrowing candidates; the path
// exists to extend the dead-function and call-count checks to languages
// without a bundled grammar.
type PatternExtractor struct {
	language    parser.Language
	declPattern *regexp.Regexp
	callPattern *regexp.Regexp
}

// NewPatternExtractor returns a pattern extractor for the language, or one
// that fails with UnsupportedLanguageError when no declaration pattern
// exists for it.
func NewPatternExtractor(lang parser.Language) *PatternExtractor {
	return &PatternExtractor{
		language:    lang,
		declPattern: declarationPatterns[lang],
		callPattern: methodCallPattern,
	}
}

// Extract scans the source text. It cannot fail on malformed input; a file
// with no matching shapes simply yields zero records.
func (e *PatternExtractor) Extract(unit string, source []byte) (*Result, error) {
	if e.declPattern == nil {
		return nil, &UnsupportedLanguageError{Unit: unit, Language: e.language}
	}

	result := &Result{Unit: unit, Language: e.language}

	for _, m := range e.declPattern.FindAllSubmatchIndex(source, -1) {
		name := submatch(source, m, 1)
		if name == "" {
			name = submatch(source, m, 2)
		}
		if name == "" {
			continue
		}
		result.Definitions = append(result.Definitions, usage.Definition{
			Name: name,
			Unit: unit,
			Line: lineAt(source, m[0]),
			Kind: usage.DefFunction,
		})
	}

	for _, m := range e.callPattern.FindAllSubmatchIndex(source, -1) {
		name := submatch(source, m, 1)
		if name == "" {
			continue
		}
		result.References = append(result.References, usage.Reference{
			TargetName: name,
			SiteUnit:   unit,
			Kind:       usage.RefCall,
		})
	}

	return result, nil
}

// submatch returns the text of a capture group from a SubmatchIndex slice,
// or "" when the group did not participate in the match.
func submatch(source []byte, m []int, group int) string {
	lo, hi := 2*group, 2*group+1
	if hi >= len(m) || m[lo] < 0 {
		return ""
	}
	return string(source[m[lo]:m[hi]])
}

// lineAt returns the 1-based line of a byte offset.
func lineAt(source []byte, offset int) int {
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}
