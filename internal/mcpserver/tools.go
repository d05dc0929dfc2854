package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/recluselabs/recluse/internal/output"
	"github.com/recluselabs/recluse/internal/scanner"
	"github.com/recluselabs/recluse/pkg/analyzer"
	"github.com/recluselabs/recluse/pkg/config"
	"github.com/recluselabs/recluse/pkg/usage"
)

// Common input structures for tools

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// CandidatesInput adds narrowing-candidate options.
type CandidatesInput struct {
	AnalyzeInput
	Class string `json:"class,omitempty" jsonschema:"Only report candidates defined on this class."`
	Top   int    `json:"top,omitempty" jsonschema:"Show at most N candidates. Default all."`
}

// DeadCodeInput adds dead-element options.
type DeadCodeInput struct {
	AnalyzeInput
	Kind        string   `json:"kind,omitempty" jsonschema:"Filter by element kind: function, class, or variable. Default all."`
	EntryPoints []string `json:"entry_points,omitempty" jsonschema:"Additional entry point names to exempt beyond the configured defaults."`
	Top         int      `json:"top,omitempty" jsonschema:"Show at most N elements. Default all."`
}

// Helper functions

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return "```\n" + string(out) + "\n```", nil
	default:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// runAnalysis scans the requested paths and runs the full pipeline over them.
func runAnalysis(ctx context.Context, cfg *config.Config, paths []string) (*analyzer.Report, error) {
	files, err := scanner.NewScanner(cfg).ScanPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errNoSourceFiles
	}

	a := analyzer.New(analyzer.WithConfig(cfg))
	return a.Analyze(ctx, files)
}

var errNoSourceFiles = errors.New("no source files found")

// Tool handlers

func handleAnalyzeUsage(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input)
	format := getFormat(input)

	report, err := runAnalysis(ctx, config.LoadOrDefault(), paths)
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(report, format)
}

func handleFindCandidates(ctx context.Context, req *mcp.CallToolRequest, input CandidatesInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	report, err := runAnalysis(ctx, config.LoadOrDefault(), paths)
	if err != nil {
		return toolError(err.Error())
	}

	candidates := report.Candidates
	if input.Class != "" {
		filtered := make([]usage.Candidate, 0, len(candidates))
		for _, c := range candidates {
			if c.Class == input.Class {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}
	if input.Top > 0 && len(candidates) > input.Top {
		candidates = candidates[:input.Top]
	}

	out := struct {
		Candidates []usage.Candidate `json:"candidates" toon:"candidates"`
		Summary    analyzer.Summary  `json:"summary" toon:"summary"`
	}{candidates, report.Summary}

	return toolResult(out, format)
}

func handleFindDeadCode(ctx context.Context, req *mcp.CallToolRequest, input DeadCodeInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	var wantKind string
	switch input.Kind {
	case "":
	case "function":
		wantKind = usage.KindUnusedFunction
	case "class":
		wantKind = usage.KindUnusedClass
	case "variable":
		wantKind = usage.KindUnusedVariable
	default:
		return toolError("unknown kind " + input.Kind + ": want function, class, or variable")
	}

	cfg := config.LoadOrDefault()
	if len(input.EntryPoints) > 0 {
		cfg.DeadCode.EntryPoints = append(cfg.DeadCode.EntryPoints, input.EntryPoints...)
	}

	report, err := runAnalysis(ctx, cfg, paths)
	if err != nil {
		return toolError(err.Error())
	}

	dead := report.DeadElements
	if wantKind != "" {
		filtered := make([]usage.DeadElement, 0, len(dead))
		for _, d := range dead {
			if d.Kind == wantKind {
				filtered = append(filtered, d)
			}
		}
		dead = filtered
	}
	if input.Top > 0 && len(dead) > input.Top {
		dead = dead[:input.Top]
	}

	out := struct {
		DeadElements []usage.DeadElement `json:"dead_elements" toon:"dead_elements"`
		Summary      analyzer.Summary    `json:"summary" toon:"summary"`
	}{dead, report.Summary}

	return toolResult(out, format)
}
