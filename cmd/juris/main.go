// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/juris"
	"github.com/poiesic/juris/config"
	"github.com/poiesic/juris/ingest"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "juris",
		Usage:     "Answer Quebec and Canadian legal questions from a curated knowledge base",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML configuration file",
				EnvVars: []string{"JURIS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a single question",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "User identity for rate limiting",
						Value: "cli",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print retrieval progress and the answer metadata",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address; overrides the config file",
					},
				},
			},
			{
				Name:   "load",
				Usage:  "Load JSON Lines passages into the knowledge base",
				Action: loadCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSONL file to load, - for stdin",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "namespace",
						Usage: "Namespace for records that do not set one",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of passages to embed in each batch",
						Value: ingest.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: ingest.DefaultRetryPolicy.MaxAttempts,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Do not print progress",
					},
				},
			},
		},
	}
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := setupLogger(cfg.LogLevel, c.App.ErrWriter); err != nil {
		return nil, err
	}
	return cfg, nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var opts []juris.AppOption
	if c.Bool("verbose") {
		opts = append(opts, juris.WithMonitor(newConsoleMonitor(c.App.ErrWriter)))
	}
	app, err := juris.Open(c.Context, cfg, opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	answer, outcome := app.Query(c.Context, question, c.String("user"))
	fmt.Fprintln(c.App.Writer, answer)
	if c.Bool("verbose") {
		meta, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "\n%s\n", meta)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := juris.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := app.NewServer()
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

func loadCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if path := c.String("file"); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := juris.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	opts := []ingest.Option{
		ingest.WithBatchSize(c.Int("batch-size")),
		ingest.WithRetryPolicy(ingest.RetryPolicy{
			MaxAttempts: c.Int("max-retries"),
			BaseDelay:   c.Duration("retry-delay"),
		}),
	}
	if ns := c.String("namespace"); ns != "" {
		opts = append(opts, ingest.WithNamespace(ns))
	}
	if !c.Bool("quiet") {
		opts = append(opts, ingest.WithProgress(c.App.ErrWriter))
	}
	loader, err := app.NewLoader(opts...)
	if err != nil {
		return err
	}

	stats, err := loader.Run(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Read %d records, loaded %d passages in %d batches, skipped %d\n",
		stats.Read, stats.Loaded, stats.Batches, stats.Skipped)
	return nil
}

func setupLogger(levelStr string, w io.Writer) error {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}
