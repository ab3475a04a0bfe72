// JourneyMAPS - reproducible-experiment runner
// A CLI front-end over the journey engine: one-shot path runs plus an
// interactive shell, grounded on cmd/goclode/main.go's flag-parsed
// entrypoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sephiram591/journeymaps/internal/cachestore"
	"github.com/sephiram591/journeymaps/internal/config"
	"github.com/sephiram591/journeymaps/internal/demo"
	"github.com/sephiram591/journeymaps/internal/ioregistry"
	"github.com/sephiram591/journeymaps/internal/journey"
	"github.com/sephiram591/journeymaps/internal/jpath"
)

const version = "0.1.0"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version")
		configPath  = flag.String("config", "", "Path to journeymaps.json (default: auto-generated demo config)")
		debug       = flag.Bool("debug", false, "Enable verbose run logging")
		forceDepth  = flag.Int("force-run-to-depth", -1, "Override force_run_to_depth for this invocation (-1: use config default)")
		noCache     = flag.Bool("no-cache", false, "Disable saving and loading for this invocation")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `JourneyMAPS v%s - reproducible-experiment runner

Usage: journeymaps [options] <command> [args]

Commands:
  run <path>       Run path once and print its result
  list             List registered path names
  repl             Start an interactive shell
  describe         Print the journey's paths and root environment

Options:
`, version)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  journeymaps run double
  journeymaps --debug run sweep
  journeymaps repl
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("JourneyMAPS v%s\n", version)
		return
	}

	j, cfg, err := buildJourney(*configPath, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	opts := cfg.Options
	if *forceDepth >= 0 {
		opts.ForceRunToDepth = *forceDepth
	}
	if *noCache {
		opts.DisableSavingAndLoading = true
	}

	switch args[0] {
	case "run":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Error: run requires a path name")
			os.Exit(1)
		}
		if err := runOnce(j, args[1], opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "list":
		for _, name := range j.PathNames() {
			fmt.Println(name)
		}
	case "describe":
		fmt.Print(j.Describe())
	case "repl":
		if err := runREPL(j, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
}

// buildJourney assembles a Journey from a config file, falling back to a
// built-in demo configuration (the demo package's example paths, rooted
// at ./.journeymaps/) when no config path is given — mirroring the
// teacher's NewEngine(*dbPath) "auto-generated in .goclode/" default.
func buildJourney(configPath string, debug bool) (*journey.Journey, *config.Config, error) {
	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = demoConfig()
	}

	if dir := filepath.Dir(cfg.CacheDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.MkdirAll(cfg.ResultDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create result dir: %w", err)
	}

	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	store, err := cachestore.Open(cfg.CacheDBPath, cacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache store: %w", err)
	}

	var logf func(string, ...any)
	if debug || cfg.Options.Verbose {
		logf = func(format string, args ...any) { fmt.Fprintf(os.Stderr, "[journeymaps] "+format+"\n", args...) }
	}

	j := journey.New("journeymaps", cfg.Root, store, cfg.ResultDir, ioregistry.New(), logf)
	if err := j.AddPaths(demo.All()...); err != nil {
		return nil, nil, fmt.Errorf("register demo paths: %w", err)
	}
	return j, cfg, nil
}

func runOnce(j *journey.Journey, name string, opts jpath.PathOptions) error {
	result, err := j.Run(context.Background(), name, opts)
	if err != nil {
		return err
	}
	for _, key := range sortedResultKeys(result) {
		fmt.Printf("%s = %v\n", key, result.SQL[key])
	}
	return nil
}

func sortedResultKeys(r *jpath.Result) []string {
	keys := make([]string, 0, len(r.SQL))
	for k := range r.SQL {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
