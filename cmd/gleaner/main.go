package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/joho/godotenv"

	"github.com/fenwick-labs/gleaner/internal/config"
	"github.com/fenwick-labs/gleaner/internal/logging"
	"github.com/fenwick-labs/gleaner/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gleaner: %v\n", err)
		return 1
	}

	var showVersion bool
	flag.StringVar(&cfg.Root, "root", cfg.Root, "maintenance run directory to aggregate")
	flag.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory (default <root>/processed)")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall run deadline")
	flag.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "log errors only, no progress spinner")
	flag.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "indent the exported JSON documents")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("gleaner " + config.Version)
		return 0
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "gleaner: %v\n", err)
		return 1
	}

	log := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.Quiet)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn().Str("signal", sig.String()).Msg("shutting down, exporting partial results")
		cancel()
	}()

	var opts []pipeline.Option
	if !cfg.Quiet && interactive(os.Stderr) {
		spin := spinner.New(spinner.CharSets[11], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " starting"
		spin.Start()
		defer spin.Stop()
		opts = append(opts, pipeline.WithStateHook(func(s pipeline.State) {
			if s == pipeline.StateDone || s == pipeline.StateFailed {
				spin.Stop()
				return
			}
			spin.Suffix = " " + string(s)
		}))
	}

	p := pipeline.New(cfg, log, opts...)
	res := p.Run(ctx)

	out, err := marshalResult(res, cfg.Pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gleaner: %v\n", err)
		return 1
	}
	fmt.Println(string(out))

	if !res.Success {
		return 1
	}
	return 0
}

func marshalResult(res pipeline.RunResult, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(res, "", "  ")
	}
	return json.Marshal(res)
}

// interactive reports whether f is a terminal, so the spinner stays out
// of redirected output.
func interactive(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
