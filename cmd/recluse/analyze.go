package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/recluselabs/recluse/internal/output"
	"github.com/recluselabs/recluse/pkg/analyzer"
)

func analyzeCmd() *cli.Command {
	flags := append(outputFlags(),
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Extraction worker count (0 = twice the CPU count)",
		},
		&cli.BoolFlag{
			Name:  "fail-on-findings",
			Usage: "Exit non-zero when any finding is reported",
		},
	)
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Run the full symbol-usage analysis",
		ArgsUsage: "[path...]",
		Flags:     flags,
		Action:    runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("jobs") {
		jobs := c.Int("jobs")
		if err := validateJobs(jobs); err != nil {
			return err
		}
		cfg.Analysis.Jobs = jobs
	}
	if c.Bool("fail-on-findings") {
		cfg.Analysis.FailOnFindings = true
	}

	report, err := runAnalysis(c, cfg, "Analyzing usage...")
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if report.Summary.TotalFiles == 0 {
		color.Yellow("No source files found")
		return nil
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	// For JSON/TOON, output the raw report
	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		if err := formatter.Output(report); err != nil {
			return err
		}
		return failOnFindings(cfg, report)
	}

	if err := formatter.Output(languagesTable(report)); err != nil {
		return err
	}

	if len(report.Candidates) > 0 {
		if err := formatter.Output(candidatesTable(report.Candidates)); err != nil {
			return err
		}
	}

	for _, table := range deadTables(report.DeadElements) {
		if err := formatter.Output(table); err != nil {
			return err
		}
	}

	// Summary
	fmt.Printf("\nSummary: %d narrowing candidates, %d dead elements across %d files\n",
		report.Summary.CandidateCount,
		report.Summary.DeadCount,
		report.Summary.TotalFiles)

	if report.AllSkipped() {
		formatter.Warning("All %d units were skipped; run with --verbose to see why", report.Summary.TotalFiles)
	} else if report.Summary.SkippedUnits > 0 {
		formatter.Warning("%d of %d units skipped", report.Summary.SkippedUnits, report.Summary.TotalFiles)
	}
	printSkipped(c, formatter, report)

	return failOnFindings(cfg, report)
}

// languagesTable summarizes per-language counts with run totals as footer.
func languagesTable(report *analyzer.Report) *output.Table {
	var rows [][]string
	for _, lang := range report.Languages {
		rows = append(rows, []string{
			lang.Language,
			fmt.Sprintf("%d", lang.Files),
			fmt.Sprintf("%d", lang.Functions),
			fmt.Sprintf("%d", lang.Classes),
			fmt.Sprintf("%d", lang.Candidates),
			fmt.Sprintf("%d", lang.Dead),
		})
	}

	footer := []string{
		"Total",
		fmt.Sprintf("%d", report.Summary.AnalyzedUnits),
		fmt.Sprintf("%d", report.Summary.TotalFunctions),
		fmt.Sprintf("%d", report.Summary.TotalClasses),
		fmt.Sprintf("%d", report.Summary.CandidateCount),
		fmt.Sprintf("%d", report.Summary.DeadCount),
	}

	return output.NewTable(
		"Analyzed Languages",
		[]string{"Language", "Files", "Functions", "Classes", "Candidates", "Dead"},
		rows,
		footer,
		nil,
	)
}
