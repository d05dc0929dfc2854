package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/recluselabs/recluse/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes recluse's
symbol-usage analysis as tools that LLMs can invoke. This enables AI
assistants to find visibility narrowing candidates and dead code.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "recluse": {
        "command": "recluse",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_usage              Full symbol-usage report
  - find_narrowing_candidates  Methods whose one caller shares their file
  - find_dead_code             Unused functions, classes, and variables`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the MCP server manifest (server.json) and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		manifest, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Println(string(manifest))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcpserver.NewServer(version)
	return server.Run(ctx)
}
