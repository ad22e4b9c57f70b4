package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/corpus"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/repl"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/config"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/logger"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/boolsearch.yaml", "path to config file")
	types := flag.String("type", "", "comma-separated file extensions to include, e.g. txt,md")
	limit := flag.Int("limit", -1, "limit the number of included documents (0 = no limit)")
	outfile := flag.String("outfile", "", "append queries and their results to this file")
	stderrPath := flag.String("stderr", "", "redirect log output to a file path or \"tty\"")
	serve := flag.Bool("serve", false, "serve the HTTP query API instead of the prompt")
	source := flag.String("source", "", "document source: files or postgres")
	flag.Usage = usage
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, flag.Args(), *types, *limit, *source); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		fmt.Fprintf(os.Stderr, "Run \"%s -help\" to print arguments and usage\n", os.Args[0])
		os.Exit(1)
	}

	if *stderrPath != "" {
		f, err := redirectStderr(*stderrPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to redirect stderr: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	}
	if err := logger.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled && !*serve {
		shutdown, err := m.StartServer(fmt.Sprintf(":%d", cfg.Metrics.Port))
		if err != nil {
			slog.Error("failed to start metrics server", "error", err)
			os.Exit(1)
		}
		defer shutdown(context.Background())
	}

	engine := indexer.New(indexer.WithMetrics(m))
	defer engine.Close()

	src, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to open document source", "source", cfg.Corpus.Source, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	interactive := !*serve && !repl.IsPiped(os.Stdin)
	opts := corpus.BuildOptions{Workers: cfg.Corpus.Workers}
	if interactive {
		opts.Progress = func(done, total int) {
			fmt.Printf("\rProcessing document # %d / %d", done, total)
			if done == total {
				fmt.Println()
			}
		}
	}
	if _, err := corpus.Build(ctx, engine, src, opts); err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}

	app, err := newApp(ctx, cfg, engine, m)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if *serve {
		err = app.Serve(ctx)
	} else {
		// the prompt blocks on stdin, so interrupts get their default
		// behaviour again once the index is built
		signal.Reset(os.Interrupt, syscall.SIGTERM)
		err = app.Prompt(ctx, *outfile, !interactive)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
	slog.Debug("exiting, status: OK")
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "\nUsage: %s [flags] <data-dir>\n", os.Args[0])
	fmt.Fprintf(out, "  <data-dir>\n\tdirectory of files to index (not needed with -source postgres)\n")
	flag.PrintDefaults()
}

// applyFlags lets command-line arguments override the loaded config.
func applyFlags(cfg *config.Config, args []string, types string, limit int, source string) error {
	if source != "" {
		cfg.Corpus.Source = source
	}
	if types != "" {
		cfg.Corpus.Extensions = strings.Split(types, ",")
	}
	if limit >= 0 {
		cfg.Corpus.Limit = limit
	}
	switch len(args) {
	case 0:
	case 1:
		cfg.Corpus.Dir = strings.TrimSuffix(args[0], "/")
	default:
		return fmt.Errorf("unexpected arguments after <data-dir>: %q", args[1:])
	}
	if cfg.Corpus.Source == "files" && cfg.Corpus.Dir == "" {
		return errors.New("missing required positional argument: <data-dir>")
	}
	return cfg.Validate()
}

// redirectStderr sends everything written to stderr to path, or to the
// controlling terminal for "tty".
func redirectStderr(path string) (*os.File, error) {
	if path == "tty" {
		path = "/dev/tty"
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	os.Stderr = f
	return f, nil
}
