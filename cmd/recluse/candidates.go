package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/recluselabs/recluse/internal/output"
	"github.com/recluselabs/recluse/pkg/analyzer"
	"github.com/recluselabs/recluse/pkg/usage"
)

func candidatesCmd() *cli.Command {
	flags := append(outputFlags(),
		&cli.StringFlag{
			Name:  "class",
			Usage: "Only report candidates defined on this class",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Show at most N candidates",
		},
	)
	return &cli.Command{
		Name:      "candidates",
		Aliases:   []string{"cand"},
		Usage:     "Find methods that can be narrowed to private visibility",
		ArgsUsage: "[path...]",
		Flags:     flags,
		Action:    runCandidatesCmd,
	}
}

func runCandidatesCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	report, err := runAnalysis(c, cfg, "Finding narrowing candidates...")
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if report.Summary.TotalFiles == 0 {
		color.Yellow("No source files found")
		return nil
	}

	candidates := report.Candidates
	if class := c.String("class"); class != "" {
		filtered := make([]usage.Candidate, 0, len(candidates))
		for _, cand := range candidates {
			if cand.Class == class {
				filtered = append(filtered, cand)
			}
		}
		candidates = filtered
	}
	if top := c.Int("top"); top > 0 && len(candidates) > top {
		candidates = candidates[:top]
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(struct {
			Candidates []usage.Candidate `json:"candidates" toon:"candidates"`
			Summary    analyzer.Summary  `json:"summary" toon:"summary"`
		}{candidates, report.Summary})
	}

	if len(candidates) > 0 {
		if err := formatter.Output(candidatesTable(candidates)); err != nil {
			return err
		}
	}

	// Summary
	fmt.Printf("\nSummary: %d narrowing candidates across %d files\n",
		len(candidates),
		report.Summary.TotalFiles)

	printSkipped(c, formatter, report)
	return nil
}

// candidatesTable lists narrowing candidates with their single call site.
func candidatesTable(candidates []usage.Candidate) *output.Table {
	var rows [][]string
	for _, cand := range candidates {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", cand.Unit, cand.Line),
			cand.Class,
			output.KindColor("candidate", cand.Method),
			callerLabel(cand.Callers),
		})
	}

	return output.NewTable(
		"Private Method Candidates",
		[]string{"Location", "Class", "Method", "Called From"},
		rows,
		nil,
		nil,
	)
}

// callerLabel renders the call site of a candidate's only caller.
func callerLabel(callers []usage.Caller) string {
	if len(callers) == 0 {
		return ""
	}
	caller := callers[0]
	switch {
	case caller.Function == "":
		return "module level"
	case caller.Class != "":
		return caller.Class + "." + caller.Function
	default:
		return caller.Function
	}
}
