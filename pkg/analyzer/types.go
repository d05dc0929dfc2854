package analyzer

import (
	"time"

	"github.com/recluselabs/recluse/pkg/usage"
)

// Stages at which a unit can drop out of a run. Every skip is attributed to
// exactly one stage.
const (
	StageRead     = "read"
	StageParse    = "parse"
	StageLanguage = "language"
)

// SkippedUnit records a file that contributed nothing to the analysis and why.
type SkippedUnit struct {
	Unit   string `json:"unit" toon:"unit"`
	Stage  string `json:"stage" toon:"stage"`
	Reason string `json:"reason" toon:"reason"`
}

// LanguageStats aggregates per-language counts for the report.
type LanguageStats struct {
	Language   string `json:"language" toon:"language"`
	Files      int    `json:"files" toon:"files"`
	Functions  int    `json:"functions" toon:"functions"`
	Classes    int    `json:"classes" toon:"classes"`
	Candidates int    `json:"candidates" toon:"candidates"`
	Dead       int    `json:"dead" toon:"dead"`
}

// Summary holds run-level totals.
type Summary struct {
	TotalFiles         int     `json:"total_files" toon:"total_files"`
	AnalyzedUnits      int     `json:"analyzed_units" toon:"analyzed_units"`
	SkippedUnits       int     `json:"skipped_units" toon:"skipped_units"`
	TotalDefinitions   int     `json:"total_definitions" toon:"total_definitions"`
	TotalFunctions     int     `json:"total_functions" toon:"total_functions"`
	TotalClasses       int     `json:"total_classes" toon:"total_classes"`
	TotalVariables     int     `json:"total_variables" toon:"total_variables"`
	TotalReferences    int     `json:"total_references" toon:"total_references"`
	TotalCalls         int     `json:"total_calls" toon:"total_calls"`
	CandidateCount     int     `json:"candidate_count" toon:"candidate_count"`
	DeadCount          int     `json:"dead_count" toon:"dead_count"`
	FindingsPerFileP90 float64 `json:"findings_per_file_p90" toon:"findings_per_file_p90"`
}

// Report is the complete output of one analysis run.
type Report struct {
	GeneratedAt  time.Time           `json:"generated_at" toon:"generated_at"`
	Root         string              `json:"root,omitempty" toon:"root,omitempty"`
	Digest       string              `json:"digest,omitempty" toon:"digest,omitempty"`
	Summary      Summary             `json:"summary" toon:"summary"`
	Languages    []LanguageStats     `json:"languages" toon:"languages"`
	Candidates   []usage.Candidate   `json:"private_method_candidates" toon:"private_method_candidates"`
	DeadElements []usage.DeadElement `json:"dead_elements" toon:"dead_elements"`
	Skipped      []SkippedUnit       `json:"skipped_units,omitempty" toon:"skipped_units,omitempty"`
}

// NewReport returns a report with initialized collections so the JSON form
// always carries arrays rather than nulls.
func NewReport() *Report {
	return &Report{
		GeneratedAt:  time.Now().UTC(),
		Languages:    make([]LanguageStats, 0),
		Candidates:   make([]usage.Candidate, 0),
		DeadElements: make([]usage.DeadElement, 0),
	}
}

// AllSkipped reports whether every input file dropped out of the run. A
// report in this state is structurally valid but empty, which usually
// deserves a warning to the user.
func (r *Report) AllSkipped() bool {
	return r.Summary.TotalFiles > 0 && r.Summary.AnalyzedUnits == 0
}
