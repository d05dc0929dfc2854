// Package analyzer orchestrates the analysis pipeline: parallel symbol
// extraction, usage index construction, and classification of narrowing
// candidates and dead elements.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/zeebo/blake3"
	"gonum.org/v1/gonum/stat"

	"github.com/recluselabs/recluse/internal/fileproc"
	"github.com/recluselabs/recluse/pkg/config"
	"github.com/recluselabs/recluse/pkg/extract"
	"github.com/recluselabs/recluse/pkg/parser"
	"github.com/recluselabs/recluse/pkg/usage"
)

// FileAnalyzer is the interface that all file-based analyzers must implement.
// It provides a standard way to analyze collections of files with context support.
type FileAnalyzer[T any] interface {
	// Analyze processes a collection of files and returns the analysis result.
	// The context can be used for cancellation and progress reporting.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}

// Analyzer runs the symbol-usage pipeline over a set of files.
type Analyzer struct {
	cfg   *config.Config
	rules usage.DeadRules
	jobs  int
	root  string
}

// Compile-time check that Analyzer implements analyzer.FileAnalyzer[*Report].
var _ FileAnalyzer[*Report] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithConfig applies worker and dead-code settings from a config.
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		a.cfg = cfg
		a.jobs = cfg.Analysis.Jobs
		a.rules = deadRulesFromConfig(cfg)
	}
}

// WithJobs overrides the worker count. Zero means 2x NumCPU.
func WithJobs(jobs int) Option {
	return func(a *Analyzer) {
		a.jobs = jobs
	}
}

// WithRoot records the analyzed project root in report metadata.
func WithRoot(root string) Option {
	return func(a *Analyzer) {
		a.root = root
	}
}

// New creates an analyzer with default configuration.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{cfg: config.DefaultConfig()}
	a.rules = deadRulesFromConfig(a.cfg)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close implements FileAnalyzer. Extraction registries are scoped to each
// Analyze call, so there is nothing to release here.
func (a *Analyzer) Close() {}

func deadRulesFromConfig(cfg *config.Config) usage.DeadRules {
	return usage.DeadRules{
		TestPrefixes:     cfg.DeadCode.TestPrefixes,
		FixtureNames:     cfg.DeadCode.FixtureNames,
		EntryPoints:      cfg.DeadCode.EntryPoints,
		AbstractMarkers:  cfg.DeadCode.AbstractMarkers,
		TestClassAffixes: cfg.DeadCode.TestClassAffixes,
	}
}

// Analyze extracts every file, builds the usage index, and classifies
// findings. Individual files that cannot be read, parsed, or matched to a
// supported language are recorded as skipped and never fail the run; only
// context cancellation aborts it. Classification starts strictly after the
// last extraction worker finishes, and the index is fed in input order, so
// identical inputs produce identical reports regardless of scheduling.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Report, error) {
	report := NewReport()
	report.Root = a.root
	report.Summary.TotalFiles = len(files)

	if len(files) == 0 {
		return report, nil
	}

	tracker := TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	var (
		skipped []SkippedUnit
		mu      sync.Mutex
	)
	onError := func(path string, err error) {
		mu.Lock()
		skipped = append(skipped, classifySkip(path, err))
		mu.Unlock()
	}

	results := fileproc.MapUnitsN(ctx, files, a.jobs, func(reg *extract.Registry, path string) (*extract.Result, error) {
		result, err := reg.ExtractFile(path)
		if tracker != nil {
			tracker.Tick(path)
		}
		return result, err
	}, nil, onError)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix := usage.NewIndex()
	unitLang := make(map[string]parser.Language, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		ix.Add(result.Definitions, result.References, result.UsedNames)
		unitLang[result.Unit] = result.Language
		report.Summary.AnalyzedUnits++
	}

	report.Candidates = append(report.Candidates, usage.FindCandidates(ix)...)
	report.DeadElements = append(report.DeadElements, usage.FindDeadElements(ix, a.rules)...)

	sortByInputOrder(skipped, files)
	report.Skipped = skipped
	report.Summary.SkippedUnits = len(skipped)

	defs, refs, calls := ix.Stats()
	report.Summary.TotalDefinitions = defs
	report.Summary.TotalReferences = refs
	report.Summary.TotalCalls = calls
	for _, def := range ix.Definitions() {
		switch def.Kind {
		case usage.DefFunction:
			report.Summary.TotalFunctions++
		case usage.DefClass:
			report.Summary.TotalClasses++
		case usage.DefVariable:
			report.Summary.TotalVariables++
		}
	}
	report.Summary.CandidateCount = len(report.Candidates)
	report.Summary.DeadCount = len(report.DeadElements)

	byLang := make(map[parser.Language]*LanguageStats)
	langFor := func(unit string) *LanguageStats {
		lang := unitLang[unit]
		ls := byLang[lang]
		if ls == nil {
			ls = &LanguageStats{Language: lang.DisplayName()}
			byLang[lang] = ls
		}
		return ls
	}
	for _, result := range results {
		if result == nil {
			continue
		}
		ls := langFor(result.Unit)
		ls.Files++
		for _, def := range result.Definitions {
			switch def.Kind {
			case usage.DefFunction:
				ls.Functions++
			case usage.DefClass:
				ls.Classes++
			}
		}
	}

	findings := make(map[string]int)
	for _, candidate := range report.Candidates {
		langFor(candidate.Unit).Candidates++
		findings[candidate.Unit]++
	}
	for _, dead := range report.DeadElements {
		langFor(dead.Unit).Dead++
		findings[dead.Unit]++
	}

	for _, ls := range byLang {
		report.Languages = append(report.Languages, *ls)
	}
	sort.Slice(report.Languages, func(i, j int) bool {
		return report.Languages[i].Language < report.Languages[j].Language
	})

	report.Summary.FindingsPerFileP90 = findingsQuantile(results, findings, 0.9)
	report.Digest = inputDigest(files)

	return report, nil
}

// classifySkip attributes a unit failure to its pipeline stage.
func classifySkip(path string, err error) SkippedUnit {
	stage := StageRead
	var parseErr *extract.ParseError
	var langErr *extract.UnsupportedLanguageError
	switch {
	case errors.As(err, &parseErr):
		stage = StageParse
	case errors.As(err, &langErr):
		stage = StageLanguage
	}
	return SkippedUnit{Unit: path, Stage: stage, Reason: err.Error()}
}

// sortByInputOrder restores input ordering on concurrently collected skips.
func sortByInputOrder(skipped []SkippedUnit, files []string) {
	order := make(map[string]int, len(files))
	for i, path := range files {
		order[path] = i
	}
	sort.Slice(skipped, func(i, j int) bool {
		return order[skipped[i].Unit] < order[skipped[j].Unit]
	})
}

// findingsQuantile returns the q-quantile of findings per analyzed unit.
func findingsQuantile(results []*extract.Result, findings map[string]int, q float64) float64 {
	perFile := make([]float64, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		perFile = append(perFile, float64(findings[result.Unit]))
	}
	if len(perFile) == 0 {
		return 0
	}
	sort.Float64s(perFile)
	return stat.Quantile(q, stat.Empirical, perFile, nil)
}

// inputDigest fingerprints the analyzed inputs. Unreadable files contribute
// an empty content hash, so the digest stays stable for a given tree state.
func inputDigest(files []string) string {
	sums := fileproc.ForEachFile(files, func(path string) ([32]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return [32]byte{}, err
		}
		return blake3.Sum256(data), nil
	})

	h := blake3.New()
	for i, path := range files {
		_, _ = h.Write([]byte(path))
		_, _ = h.Write(sums[i][:])
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:8])
}
