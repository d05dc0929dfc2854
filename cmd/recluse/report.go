package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/recluselabs/recluse/internal/progress"
	htmlreport "github.com/recluselabs/recluse/internal/report"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Generate a self-contained HTML report",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "code_analysis_report.html",
				Usage:   "Output HTML file",
			},
			&cli.StringFlag{
				Name:  "json",
				Value: "refactoring_candidates.json",
				Usage: "Write the findings JSON artifact to this path (empty to skip)",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Report title (defaults to the configured title)",
			},
		},
		Action: runReportCmd,
	}
}

func runReportCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	title := cfg.Report.Title
	if c.IsSet("title") {
		title = c.String("title")
	}

	report, err := runAnalysis(c, cfg, "Analyzing usage...")
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if report.Summary.TotalFiles == 0 {
		color.Yellow("No source files found")
		return nil
	}

	renderer, err := htmlreport.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	spinner := progress.NewSpinner("Rendering report...")
	data := htmlreport.BuildRenderData(report, title, version)
	outputPath := c.String("output")
	if err := renderer.RenderToFile(data, outputPath); err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("failed to render report: %w", err)
	}
	spinner.FinishSuccess()

	if jsonPath := c.String("json"); jsonPath != "" {
		if err := writeJSON(jsonPath, report); err != nil {
			return fmt.Errorf("failed to write JSON report: %w", err)
		}
		fmt.Printf("JSON report written: %s\n", jsonPath)
	}

	fmt.Printf("Report rendered: %s\n", outputPath)
	if report.AllSkipped() {
		color.Yellow("Every input file was skipped; the report is empty")
	}
	return nil
}

func writeJSON(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
