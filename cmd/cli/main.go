package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nomis52/clubsignup/buildinfo"
	"github.com/nomis52/clubsignup/clients/activityclient"
	"github.com/nomis52/clubsignup/config"
	"github.com/nomis52/clubsignup/console"
	"github.com/nomis52/clubsignup/logging"
	"github.com/nomis52/clubsignup/metrics"
	"github.com/nomis52/clubsignup/page"
)

const programName = "clubsignup-cli"

type Args struct {
	ConfigPath  string
	EnvFile     string
	ShowVersion bool
	Validate    bool
	HTML        bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := parseArgs()

	// Handle version request
	if args.ShowVersion {
		fmt.Print(buildinfo.Get().Describe(programName))
		return nil
	}

	if err := config.LoadDotEnv(args.EnvFile); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Handle validation-only request
	if args.Validate {
		source := args.ConfigPath
		if source == "" {
			source = "(defaults)"
		}
		fmt.Printf("Configuration validation successful: %s\n", source)
		return nil
	}

	// Diagnostics go to stderr by default so they do not mix with the view.
	logCfg := cfg.Logging
	if args.ConfigPath == "" || logCfg.Output == "stdout" {
		logCfg.Output = "stderr"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	props := buildinfo.Get()
	logger.Debug("clubsignup-cli started",
		"version", props.Version,
		"git_commit", props.GitCommit,
		"backend", cfg.Backend.URL,
	)

	opts := []console.Option{console.WithHTML(args.HTML)}
	in := bufio.NewReader(os.Stdin)
	pageOpts := []page.Option{
		page.WithDialog(console.NewDialog(in, os.Stdout, os.Stderr)),
		page.WithLogger(logger.Logger),
	}

	if cfg.Monitoring.VictoriaMetricsURL != "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("failed to get hostname: %w", err)
		}
		// Create push-based metrics registry for CLI mode
		registry := metrics.NewPushRegistry(metrics.PushConfig{
			URL:      cfg.Monitoring.VictoriaMetricsURL,
			Prefix:   cfg.Monitoring.MetricsPrefix,
			Job:      cfg.Monitoring.JobName,
			Instance: hostname,
			Logger:   logger.Logger,
		})
		defer registry.Close()
		m, err := page.NewMetrics(registry)
		if err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}
		pageOpts = append(pageOpts, page.WithMetrics(m))
	}

	p, err := page.New(activityclient.New(cfg.Backend.URL), pageOpts...)
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = console.New(p, in, os.Stdout, os.Stderr, opts...).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func parseArgs() Args {
	configPath := flag.String("config", "", "Path to config file")
	configPathShort := flag.String("c", "", "Path to config file (shorthand)")
	envFile := flag.String("env-file", ".env", "Optional file of KEY=value overrides")
	showVersion := flag.Bool("version", false, "Show version information")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	html := flag.Bool("html", false, "Print the activity list markup instead of text")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nClub Signup - interactive activity signup client\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %s overrides backend.url\n", config.EnvBackendURL)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --config /etc/clubsignup/config.yaml\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s=http://localhost:8000 %s --html\n", config.EnvBackendURL, os.Args[0])
	}

	flag.Parse()

	path := *configPath
	if path == "" && *configPathShort != "" {
		path = *configPathShort
	}

	return Args{
		ConfigPath:  path,
		EnvFile:     *envFile,
		ShowVersion: *showVersion,
		Validate:    *validate,
		HTML:        *html,
	}
}
