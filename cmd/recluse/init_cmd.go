package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/recluselabs/recluse/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new recluse configuration file",
		Description: `Creates a new recluse.toml configuration file in the current directory
with sensible defaults. Use --output to specify a different location.

Examples:
  recluse init                          # Creates recluse.toml in current directory
  recluse init -o .recluse/recluse.toml # Creates config in .recluse directory
  recluse init --format yaml            # Creates recluse.yaml
  recluse init --force                  # Overwrite existing config file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (defaults to recluse.<format>)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "toml",
				Usage:   "Config format: toml or yaml",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	format := c.String("format")
	outputPath := c.String("output")
	if outputPath == "" {
		outputPath = "recluse." + format
	}
	force := c.Bool("force")

	// Check if file already exists
	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	// Create parent directory if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig(format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Println("Edit this file to customize analysis settings.")
	return nil
}

func generateDefaultConfig(format string) (string, error) {
	cfg := config.DefaultConfig()

	var content []byte
	var err error
	switch format {
	case "toml":
		content, err = toml.Marshal(cfg)
	case "yaml", "yml":
		content, err = yaml.Marshal(cfg)
	default:
		return "", fmt.Errorf("unsupported config format %q (want toml or yaml)", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# Recluse Configuration\n")
	buf.WriteString("# Documentation: https://github.com/recluselabs/recluse\n\n")
	buf.Write(content)

	return buf.String(), nil
}
