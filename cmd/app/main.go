package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/sitegraph/internal"
	pkgconfig "github.com/starford/sitegraph/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "sitegraph",
		Usage:  "Interactive 3D viewer engine for interlinked pages",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the viewer and its HTTP API",
				Action: run,
			},
			{
				Name:  "path",
				Usage: "Print the cheapest path between two nodes",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "Start node id (defaults to home)"},
					&cli.StringFlag{Name: "to", Usage: "End node id", Required: true},
				},
				Action: pathCommand,
			},
			{
				Name:  "layout",
				Usage: "Settle the force layout and print node positions",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "max-ticks", Usage: "Stop after this many ticks", Value: 2000},
				},
				Action: layoutCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve graph tools over MCP on stdio",
				Action: mcpCommand,
			},
			{
				Name:  "export",
				Usage: "Write the loaded graph as a JSON document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file", Value: "graph.json"},
				},
				Action: exportCommand,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
