package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/recluselabs/recluse/internal/output"
	"github.com/recluselabs/recluse/internal/progress"
	"github.com/recluselabs/recluse/internal/scanner"
	"github.com/recluselabs/recluse/pkg/analyzer"
	"github.com/recluselabs/recluse/pkg/config"
)

// outputFlags returns the flags shared by every command that prints results.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "text",
			Usage:   "Output format: text, json, markdown, toon",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

// getPaths returns the positional paths, defaulting to the current directory.
// urfave/cli v2 stops flag parsing at the first positional, so flags placed
// after a path land in the argument list and are filtered out here together
// with their values. A value is assumed to follow its flag unless attached
// with "=".
func getPaths(c *cli.Context) []string {
	args := c.Args().Slice()
	paths := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") {
				i++ // skip the flag value
			}
			continue
		}
		paths = append(paths, arg)
	}
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

// getTrailingFlag reads a string flag even when it trails the positional
// arguments, where urfave/cli no longer parses it.
func getTrailingFlag(c *cli.Context, name, short, defaultValue string) string {
	args := c.Args().Slice()
	long := "--" + name
	shortDash := "-" + short
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == long || arg == shortDash:
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, long+"="):
			return strings.TrimPrefix(arg, long+"=")
		case strings.HasPrefix(arg, shortDash+"="):
			return strings.TrimPrefix(arg, shortDash+"=")
		}
	}
	if c.IsSet(name) {
		return c.String(name)
	}
	return defaultValue
}

func getFormat(c *cli.Context) string {
	return getTrailingFlag(c, "format", "f", "text")
}

func getOutputFile(c *cli.Context) string {
	return getTrailingFlag(c, "output", "o", "")
}

// newFormatter builds a formatter from the command's output flags.
func newFormatter(c *cli.Context) (*output.Formatter, error) {
	colored := !c.Bool("no-color")
	if !colored {
		color.NoColor = true
	}
	return output.NewFormatter(output.ParseFormat(getFormat(c)), getOutputFile(c), colored)
}

// loadConfig resolves configuration from the --config flag or the standard
// search locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// validateJobs validates the --jobs flag and returns an error if invalid.
func validateJobs(jobs int) error {
	if jobs < 0 {
		return fmt.Errorf("--jobs must be zero or a positive integer (got %d)", jobs)
	}
	return nil
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// analysisRoot is the root recorded in report metadata: the single requested
// path made absolute, or empty when several paths were given.
func analysisRoot(paths []string) string {
	if len(paths) != 1 {
		return ""
	}
	abs, err := filepath.Abs(paths[0])
	if err != nil {
		return ""
	}
	return abs
}

// runAnalysis scans the requested paths and runs the full pipeline with a
// progress bar on stderr. An empty scan returns an empty report rather than
// an error; callers decide how to present it.
func runAnalysis(c *cli.Context, cfg *config.Config, label string) (*analyzer.Report, error) {
	paths := getPaths(c)
	files, err := scanner.NewScanner(cfg).ScanPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return analyzer.NewReport(), nil
	}

	bar := progress.NewBar(label, len(files))
	tracker := analyzer.NewTracker(func(current, total int, path string) {
		bar.TickFile(path)
	})
	ctx := analyzer.WithTracker(context.Background(), tracker)

	a := analyzer.New(analyzer.WithConfig(cfg), analyzer.WithRoot(analysisRoot(paths)))
	defer a.Close()

	report, err := a.Analyze(ctx, files)
	if err != nil {
		bar.FinishError(err)
		return nil, err
	}
	bar.FinishSuccess()
	return report, nil
}

// printSkipped lists skipped files when --verbose is set and the format is
// human-readable.
func printSkipped(c *cli.Context, formatter *output.Formatter, report *analyzer.Report) {
	if !c.Bool("verbose") || formatter.Format() != output.FormatText {
		return
	}
	if len(report.Skipped) == 0 {
		return
	}
	fmt.Println()
	color.Yellow("Skipped files (%d):", len(report.Skipped))
	for _, s := range report.Skipped {
		fmt.Printf("  %s [%s] %s\n", s.Unit, s.Stage, truncate(s.Reason, 80))
	}
}

// failOnFindings converts findings into a non-zero exit when configured.
func failOnFindings(cfg *config.Config, report *analyzer.Report) error {
	if !cfg.Analysis.FailOnFindings {
		return nil
	}
	total := report.Summary.CandidateCount + report.Summary.DeadCount
	if total == 0 {
		return nil
	}
	return fmt.Errorf("%d findings reported", total)
}
