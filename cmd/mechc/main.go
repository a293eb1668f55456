// Command mechc compiles one or more mechanism source files through the
// full pipeline — lex, parse, semantic analysis, lowering, optional
// optimisation, print — and writes the resulting debug-contract text to an
// output path (or stdout). Grounded on funxy/cmd/funxy/main.go's overall
// shape (a single main that dispatches to a per-file compile function,
// flags controlling backend/verbosity), generalized from that CLI's
// hand-parsed os.Args subcommands to the standard library flag package:
// mechc has no subcommands, only flags and positional file arguments, so
// flag.Parse covers it without needing a dependency the rest of the pack
// doesn't otherwise offer (cobra/pflag appear in none of the example
// repos).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"

	"mechc/internal/cache"
	"mechc/internal/config"
	"mechc/internal/diagnostics"
	"mechc/internal/lowering"
	"mechc/internal/parser"
	"mechc/internal/passes"
	"mechc/internal/printer"
	"mechc/internal/semantic"
	"mechc/internal/traceutil"
)

// Version is this build's semantic version, compared against -require.
const Version = "v0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

type options struct {
	output   string
	target   string
	optimize bool
	level    traceutil.Level
	cacheDB  string
	require  string
	version  bool
}

func run(args []string) int {
	fs := flag.NewFlagSet("mechc", flag.ContinueOnError)
	opts := options{}
	fs.StringVar(&opts.output, "o", "-", "output path ('-' for stdout; a directory when compiling more than one file)")
	fs.StringVar(&opts.target, "t", "cpu", "downstream printer target: cpu, gpu, or simd")
	fs.BoolVar(&opts.optimize, "O", false, "run the optimisation pass before printing")
	verbose := fs.Bool("V", false, "verbose trace output on stderr")
	veryVerbose := fs.Bool("VV", false, "very verbose trace output, including a full module dump")
	fs.StringVar(&opts.cacheDB, "cache", "", "path to a compile-result cache database (disabled if empty)")
	configPath := fs.String("c", "mechc.yaml", "path to the project config file, if present")
	fs.StringVar(&opts.require, "require", "", "fail unless this build's version is >= the given semver")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: mechc [flags] file.mod [file2.mod ...]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if opts.version {
		fmt.Println(Version)
		return 0
	}
	if opts.require != "" {
		if !semver.IsValid(opts.require) {
			fmt.Fprintf(os.Stderr, "mechc: -require %q is not a valid semver\n", opts.require)
			return 2
		}
		if semver.Compare(Version, opts.require) < 0 {
			fmt.Fprintf(os.Stderr, "mechc: this build is %s, which is older than the required %s\n", Version, opts.require)
			return 1
		}
	}

	if cfg, err := config.Load(*configPath); err == nil {
		applyConfigDefaults(&opts, fs, cfg)
	}
	// A missing or unparsable config file is not an error: mechc.yaml is
	// optional, and flags already carry every default it would set.

	if *veryVerbose {
		opts.level = traceutil.VeryVerbose
	} else if *verbose {
		opts.level = traceutil.Verbose
	}

	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return 2
	}

	return compileAll(files, opts)
}

// applyConfigDefaults fills in any flag the caller left at its zero
// value from cfg, without overriding an explicit flag.
func applyConfigDefaults(opts *options, fs *flag.FlagSet, cfg *config.Config) {
	setTarget, setOptimize, setCache := false, false, false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			setTarget = true
		case "O":
			setOptimize = true
		case "cache":
			setCache = true
		}
	})
	if !setTarget && cfg.Target != "" {
		opts.target = cfg.Target
	}
	if !setOptimize && cfg.Optimize {
		opts.optimize = true
	}
	if !setCache && cfg.CacheDir != "" {
		opts.cacheDB = cfg.ResolvedCacheDir()
	}
}

func compileAll(files []string, opts options) int {
	var c *cache.Cache
	if opts.cacheDB != "" {
		opened, err := cache.Open(opts.cacheDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mechc: %s\n", err)
			return 1
		}
		c = opened
		defer c.Close()
	}

	multi := len(files) > 1
	if multi && opts.output != "-" {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "mechc: creating output directory %s: %s\n", opts.output, err)
			return 1
		}
	}

	var g errgroup.Group
	g.SetLimit(8)
	results := make([]int, len(files))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			results[i] = compileOne(path, outputPathFor(path, opts, multi), opts, c)
			return nil
		})
	}
	_ = g.Wait()

	worst := 0
	for _, code := range results {
		if code > worst {
			worst = code
		}
	}
	return worst
}

// outputPathFor resolves one file's output destination: stdout is shared
// across a batch only when compiling a single file; a multi-file batch
// with -o unset writes alongside each source, and with -o set writes
// into that directory, one file per input stem.
func outputPathFor(path string, opts options, multi bool) string {
	if !multi {
		return opts.output
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if opts.output == "-" {
		return filepath.Join(filepath.Dir(path), stem+".out")
	}
	return filepath.Join(opts.output, stem+".out")
}

// compileOne runs the full pipeline over one source file and returns a
// process exit code (0 happy, 1 error, still 0 on warning-only status
// per §4.10's three-valued status not affecting the process exit code
// beyond error/fatal).
func compileOne(path, outputPath string, opts options, c *cache.Cache) int {
	tracer := traceutil.New(os.Stderr, opts.level)

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mechc: %s\n", err)
		return 1
	}

	var key string
	if c != nil {
		key = cache.Key(source, opts.target, opts.optimize)
		if cached, status, ok, lookupErr := c.Lookup(key); lookupErr == nil && ok {
			tracer.Stage(path+" (cache hit)", 0)
			return writeOutput(outputPath, cached, status)
		}
	}

	start := time.Now()
	p := parser.New(path, string(source))
	mod := p.Parse()
	tracer.Stage("parse", time.Since(start))

	t1 := time.Now()
	semantic.Analyze(mod)
	tracer.Stage("semantic", time.Since(t1))

	if !mod.Diags.HasErrors() {
		t2 := time.Now()
		lowering.Lower(mod)
		tracer.Stage("lowering", time.Since(t2))
	}

	if opts.optimize && mod.APIMethods != nil {
		t3 := time.Now()
		passes.Optimize(mod)
		tracer.Stage("optimize", time.Since(t3))
	}

	var buf strings.Builder
	mod.Diags.Render(os.Stderr, os.Stderr.Fd(), false, false)
	status := mod.Status().String()
	if mod.APIMethods != nil {
		if err := printer.Print(mod, &buf); err != nil {
			fmt.Fprintf(os.Stderr, "mechc: printing %s: %s\n", path, err)
			return 1
		}
	}
	tracer.Dump(path, mod)

	output := []byte(buf.String())
	if c != nil && key != "" {
		_ = c.Store(key, output, status)
	}

	exitCode := writeOutput(outputPath, output, status)
	if mod.Status() == diagnostics.HasError {
		return 1
	}
	return exitCode
}

func writeOutput(path string, data []byte, status string) int {
	if path == "-" || path == "" {
		os.Stdout.Write(data)
		return 0
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "mechc: writing %s: %s\n", path, err)
		return 1
	}
	return 0
}
