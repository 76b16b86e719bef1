package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"installsplash/internal/config"
	"installsplash/internal/install"
	"installsplash/internal/progress"
	"installsplash/internal/splash"
	"installsplash/internal/telemetry"
	"installsplash/internal/toolkit"
	"installsplash/internal/toolkit/headless"
	"installsplash/internal/toolkit/teatk"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// options holds the parsed CLI flags. Zero values defer to the config file.
type options struct {
	configPath      string
	bundle          string
	headless        bool
	steps           int
	stepDelay       time.Duration
	shutdownTimeout time.Duration
	logFile         string
	verbose         bool
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.configPath, "config", config.FileName, "path to the optional YAML config")
	flag.StringVar(&opts.bundle, "bundle", "", "name of the bundle being installed")
	flag.BoolVar(&opts.headless, "headless", false, "never draw in the terminal")
	flag.IntVar(&opts.steps, "steps", 0, "number of simulated install steps")
	flag.DurationVar(&opts.stepDelay, "step-delay", 0, "duration of each simulated install step")
	flag.DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 0, "how long to wait for the splash to close")
	flag.StringVar(&opts.logFile, "log", "", "write logs to this file (terminal mode)")
	flag.BoolVar(&opts.verbose, "verbose", false, "log every surface operation (headless mode)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: installsplash [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Shows a splash surface while a simulated installation runs,\n")
		fmt.Fprintf(os.Stderr, "then fades it out once the installation settles.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return opts
}

// resolve merges the config file with flags; flags win.
func resolve(opts options) (config.Resolved, error) {
	file, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return config.Resolved{}, err
	}
	r := file.Resolve()
	if opts.bundle != "" {
		r.BundleName = opts.bundle
	}
	if opts.headless {
		r.Headless = true
	}
	if opts.steps > 0 {
		r.Plan = r.Plan.WithStepCount(opts.steps)
	}
	if opts.stepDelay > 0 {
		r.Plan.StepDelay = opts.stepDelay
	}
	if opts.shutdownTimeout > 0 {
		r.ShutdownTimeout = opts.shutdownTimeout
	}
	if !r.Headless && !term.IsTerminal(int(os.Stdout.Fd())) {
		r.Headless = true
	}
	return r, nil
}

// newToolkit picks the surface backend and the logger that goes with it.
// The terminal toolkit owns stdout, so its logs go to a file or nowhere.
func newToolkit(r config.Resolved, opts options) (toolkit.Toolkit, *log.Logger, func(), error) {
	if r.Headless {
		logger := log.New(os.Stderr, "", log.LstdFlags)
		hopts := headless.Options{}
		if opts.verbose {
			hopts.Logger = logger
		}
		return headless.New(hopts), logger, func() {}, nil
	}

	cleanup := func() {}
	if opts.logFile != "" {
		f, err := tea.LogToFile(opts.logFile, "installsplash")
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open log %q: %w", opts.logFile, err)
		}
		cleanup = func() { f.Close() }
	} else {
		log.SetOutput(io.Discard)
	}
	logger := log.Default()
	tk := teatk.New(teatk.Options{
		Background: r.Background,
		Width:      r.Width,
		Logger:     logger,
	})
	return tk, logger, cleanup, nil
}

func run(ctx context.Context, opts options) error {
	r, err := resolve(opts)
	if err != nil {
		return err
	}

	tk, logger, cleanup, err := newToolkit(r, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	tp, err := telemetry.Setup(ctx)
	if err != nil {
		logger.Printf("telemetry: disabled: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Printf("telemetry: shutdown: %v", err)
		}
	}()

	screen := splash.New(r.BundleName, tk,
		splash.WithLogger(logger),
		splash.WithShutdownTimeout(r.ShutdownTimeout),
	)
	screen.Show()

	events := make(chan progress.Event, 16)
	errc := make(chan error, 1)
	go func() {
		defer close(events)
		errc <- install.Run(ctx, r.Plan, &progress.ChanEmitter{Ch: events})
	}()

	last := progress.DismissOnSettled(ctx, events, screen)
	screen.Close()
	for range events {
	}
	installErr := <-errc

	fmt.Printf("%s: %s\n", screen.Caption(), last.Message)
	return installErr
}

func main() {
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "installsplash: %v\n", err)
		os.Exit(1)
	}
}
