package report

import (
	"sort"

	"github.com/recluselabs/recluse/pkg/analyzer"
	"github.com/recluselabs/recluse/pkg/parser"
	"github.com/recluselabs/recluse/pkg/usage"
)

// RenderData contains everything the HTML template needs.
type RenderData struct {
	Title        string
	Version      string
	GeneratedAt  string
	ProjectPath  string
	Summary      analyzer.Summary
	Languages    []analyzer.LanguageStats
	Candidates   []CandidateView
	DeadElements []DeadElementView

	// LanguageNames feeds the language filter dropdown, sorted.
	LanguageNames []string
}

// CandidateView is a candidate annotated with its display language.
type CandidateView struct {
	usage.Candidate
	Language string
}

// DeadElementView is a dead element annotated with its display language
// and a short kind label for badges.
type DeadElementView struct {
	usage.DeadElement
	Language  string
	KindLabel string
}

// BuildRenderData maps an analysis report onto the template model. The
// language of each finding is derived from its file extension, the same
// way the analyzer classified it.
func BuildRenderData(rep *analyzer.Report, title, version string) *RenderData {
	data := &RenderData{
		Title:       title,
		Version:     version,
		GeneratedAt: rep.GeneratedAt.Format("2006-01-02 15:04:05"),
		ProjectPath: rep.Root,
		Summary:     rep.Summary,
		Languages:   rep.Languages,
	}

	seen := make(map[string]bool)
	for _, c := range rep.Candidates {
		lang := displayLanguage(c.Unit)
		seen[lang] = true
		data.Candidates = append(data.Candidates, CandidateView{Candidate: c, Language: lang})
	}
	for _, d := range rep.DeadElements {
		lang := displayLanguage(d.Unit)
		seen[lang] = true
		data.DeadElements = append(data.DeadElements, DeadElementView{
			DeadElement: d,
			Language:    lang,
			KindLabel:   kindLabel(d.Kind),
		})
	}

	for lang := range seen {
		data.LanguageNames = append(data.LanguageNames, lang)
	}
	sort.Strings(data.LanguageNames)

	return data
}

func displayLanguage(unit string) string {
	lang := parser.DetectLanguage(unit)
	if lang == parser.LangUnknown {
		return "Unknown"
	}
	return lang.DisplayName()
}

func kindLabel(kind string) string {
	switch kind {
	case usage.KindUnusedFunction:
		return "function"
	case usage.KindUnusedClass:
		return "class"
	case usage.KindUnusedVariable:
		return "variable"
	}
	return kind
}
