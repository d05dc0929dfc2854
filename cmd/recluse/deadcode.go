package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/recluselabs/recluse/internal/output"
	"github.com/recluselabs/recluse/pkg/analyzer"
	"github.com/recluselabs/recluse/pkg/usage"
)

func deadcodeCmd() *cli.Command {
	flags := append(outputFlags(),
		&cli.StringFlag{
			Name:  "kind",
			Usage: "Filter by element kind: function, class, or variable",
		},
		&cli.StringSliceFlag{
			Name:  "entry-points",
			Usage: "Additional entry point names to exempt",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Show at most N elements",
		},
	)
	return &cli.Command{
		Name:      "deadcode",
		Aliases:   []string{"dc"},
		Usage:     "Detect unused functions, classes, and variables",
		ArgsUsage: "[path...]",
		Flags:     flags,
		Action:    runDeadcodeCmd,
	}
}

// deadKinds maps the --kind flag values to element kinds.
var deadKinds = map[string]string{
	"function": usage.KindUnusedFunction,
	"class":    usage.KindUnusedClass,
	"variable": usage.KindUnusedVariable,
}

func runDeadcodeCmd(c *cli.Context) error {
	kindFilter := ""
	if kind := c.String("kind"); kind != "" {
		mapped, ok := deadKinds[kind]
		if !ok {
			return fmt.Errorf("unknown kind %q: want function, class, or variable", kind)
		}
		kindFilter = mapped
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.DeadCode.EntryPoints = append(cfg.DeadCode.EntryPoints, c.StringSlice("entry-points")...)

	report, err := runAnalysis(c, cfg, "Detecting dead elements...")
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if report.Summary.TotalFiles == 0 {
		color.Yellow("No source files found")
		return nil
	}

	dead := report.DeadElements
	if kindFilter != "" {
		filtered := make([]usage.DeadElement, 0, len(dead))
		for _, d := range dead {
			if d.Kind == kindFilter {
				filtered = append(filtered, d)
			}
		}
		dead = filtered
	}
	if top := c.Int("top"); top > 0 && len(dead) > top {
		dead = dead[:top]
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(struct {
			DeadElements []usage.DeadElement `json:"dead_elements" toon:"dead_elements"`
			Summary      analyzer.Summary    `json:"summary" toon:"summary"`
		}{dead, report.Summary})
	}

	for _, table := range deadTables(dead) {
		if err := formatter.Output(table); err != nil {
			return err
		}
	}

	// Summary
	fmt.Printf("\nSummary: %d dead elements across %d files\n",
		len(dead),
		report.Summary.TotalFiles)

	printSkipped(c, formatter, report)
	return nil
}

// deadTables splits dead elements into per-kind tables, skipping empty ones.
func deadTables(dead []usage.DeadElement) []*output.Table {
	var fnRows, classRows, varRows [][]string
	for _, d := range dead {
		location := fmt.Sprintf("%s:%d", d.Unit, d.Line)
		name := output.KindColor(d.Kind, d.Name)
		switch d.Kind {
		case usage.KindUnusedFunction:
			fnRows = append(fnRows, []string{location, name, d.Class})
		case usage.KindUnusedClass:
			classRows = append(classRows, []string{location, name})
		case usage.KindUnusedVariable:
			kind := "variable"
			if d.IsConstant {
				kind = "constant"
			}
			varRows = append(varRows, []string{location, name, kind})
		}
	}

	var tables []*output.Table
	if len(fnRows) > 0 {
		tables = append(tables, output.NewTable(
			"Unused Functions",
			[]string{"Location", "Function", "Class"},
			fnRows,
			nil,
			nil,
		))
	}
	if len(classRows) > 0 {
		tables = append(tables, output.NewTable(
			"Unused Classes",
			[]string{"Location", "Class"},
			classRows,
			nil,
			nil,
		))
	}
	if len(varRows) > 0 {
		tables = append(tables, output.NewTable(
			"Unused Variables",
			[]string{"Location", "Variable", "Kind"},
			varRows,
			nil,
			nil,
		))
	}
	return tables
}
