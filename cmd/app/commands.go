package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/starford/sitegraph/internal"
	"github.com/starford/sitegraph/internal/graphservice"
	"github.com/starford/sitegraph/internal/layout"
	"github.com/starford/sitegraph/internal/mcpserver"
	"github.com/starford/sitegraph/internal/report"
	"github.com/starford/sitegraph/internal/scene"
	"github.com/starford/sitegraph/internal/sitegraph"
	"github.com/starford/sitegraph/internal/storage"
	"github.com/starford/sitegraph/internal/viewer"
)

// openGraph loads config and the graph document for one-shot commands.
// Logs go to stderr so stdout stays clean for output and MCP framing.
func openGraph(cmd *cli.Command) (*internal.Config, *internal.Source, *sitegraph.Document, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	slog.SetDefault(logger)

	src, err := internal.OpenSource(cfg.Graph, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	doc, err := src.Document()
	if err != nil {
		src.Close()
		return nil, nil, nil, fmt.Errorf("load graph: %w", err)
	}
	return cfg, src, doc, nil
}

func pathCommand(ctx context.Context, cmd *cli.Command) error {
	cfg, src, doc, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer src.Close()

	s := scene.New(doc, cfg.SceneOptions())
	defer s.Close()

	from := cmd.String("from")
	if from == "" {
		from = s.Home()
	}
	to := cmd.String("to")
	ids, cost, err := s.FindPath(from, to)
	if err != nil {
		return fmt.Errorf("path %s -> %s: %w", from, to, err)
	}
	report.Path(os.Stdout, from, to, ids, cost)
	return nil
}

func layoutCommand(ctx context.Context, cmd *cli.Command) error {
	_, src, doc, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer src.Close()

	l := layout.New(doc)
	maxTicks := int(cmd.Int("max-ticks"))
	for i := 0; i < maxTicks; i++ {
		if !l.Advance() {
			break
		}
	}

	rows := make([]report.Position, 0, len(doc.Nodes))
	for _, id := range doc.IDs() {
		p, _ := l.DisplayPosition(id)
		rows = append(rows, report.Position{ID: id, Title: doc.Nodes[id].Title, X: p.X, Y: p.Y, Z: p.Z})
	}
	report.Layout(os.Stdout, rows, l.Ticks(), l.Converged())
	return nil
}

func mcpCommand(ctx context.Context, cmd *cli.Command) error {
	cfg, src, doc, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer src.Close()

	loop := viewer.New(doc, viewer.Options{
		Scene:  cfg.SceneOptions(),
		FPS:    cfg.Viewer.FPS,
		Logger: slog.Default(),
	})
	defer loop.Close()

	return mcpserver.New(graphservice.New(loop, src.Searcher())).ServeStdio()
}

func exportCommand(ctx context.Context, cmd *cli.Command) error {
	_, src, doc, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	out, err := filepath.Abs(cmd.String("out"))
	if err != nil {
		return err
	}
	if err := storage.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return err
	}
	slog.Info("graph exported", slog.String("file", out), slog.Int("nodes", len(doc.Nodes)))
	return nil
}
