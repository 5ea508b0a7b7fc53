// Command vendorcall runs one operation against one vendor and prints
// the extracted canonical records as JSONL. It is the operational
// smoke-test tool for vendor configs: author a config, point
// vendorcall at it, and see exactly what the engine extracts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"numgate/internal/adapter"
	"numgate/internal/config"
	"numgate/internal/httpds"
	"numgate/internal/metrics"
	"numgate/internal/metrics/datadog"
	"numgate/internal/store"

	// register store backends; -store_kind selects one.
	_ "numgate/internal/store/postgres"
	_ "numgate/internal/store/sqlite"
)

// backendCloser is the minimal interface used by this command to manage a metrics backend.
type backendCloser interface {
	metrics.Backend
	Close() error
}

// deps are external seams for testability.
type deps struct {
	Stdout io.Writer
	Stderr io.Writer

	Transport      http.RoundTripper
	BackendFactory func(ctx context.Context, service string, tags []string, flushEvery time.Duration) (backendCloser, error)
	OpenStore      func(ctx context.Context, cfg store.Config) (store.Store, error)
}

// runConfig holds the parsed flags for a run.
type runConfig struct {
	ConfigPath string
	StoreKind  string
	StoreDSN   string
	Vendor     string
	Operation  string
	Params     map[string]string

	Datadog    bool
	DDTagsCSV  string
	FlushEvery time.Duration

	ShowTrace bool
}

func main() {
	code := run(context.Background(), os.Args[1:], deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		BackendFactory: func(ctx context.Context, service string, tags []string, flushEvery time.Duration) (backendCloser, error) {
			return datadog.NewBackend(ctx, datadog.Options{
				Service:    service,
				Tags:       tags,
				FlushEvery: flushEvery,
			})
		},
		OpenStore: store.Open,
	})
	os.Exit(code)
}

// run executes the command and returns an exit code.
//
// Exit codes:
//   - 0: records extracted and printed.
//   - 1: the vendor call or extraction failed.
//   - 2: configuration/usage error.
func run(ctx context.Context, args []string, d deps) int {
	if d.Stdout == nil {
		d.Stdout = io.Discard
	}
	if d.Stderr == nil {
		d.Stderr = io.Discard
	}
	if d.OpenStore == nil {
		d.OpenStore = store.Open
	}

	cfg, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(d.Stderr, err.Error())
		return 2
	}

	vcfg, err := loadVendorConfig(ctx, cfg, d)
	if err != nil {
		fmt.Fprintf(d.Stderr, "load vendor config: %v\n", err)
		return 2
	}

	if cfg.Datadog {
		if d.BackendFactory == nil {
			fmt.Fprintln(d.Stderr, "internal error: BackendFactory is nil")
			return 2
		}
		tags := append(datadog.ParseTagsCSV(cfg.DDTagsCSV), "tool:vendorcall")
		backend, err := d.BackendFactory(ctx, "numgate", tags, cfg.FlushEvery)
		if err != nil {
			fmt.Fprintf(d.Stderr, "datadog backend init failed: %v\n", err)
			return 2
		}
		metrics.SetBackend(backend)
		defer func() {
			_ = metrics.Flush()
			_ = backend.Close()
		}()
	}

	a := adapter.New(vcfg, adapter.Options{Transport: d.Transport})

	recs, err := a.Perform(ctx, cfg.Operation, cfg.Params)
	if err != nil {
		fmt.Fprintf(d.Stderr, "%s %s failed: %v\n", vcfg.Name, cfg.Operation, err)
		var ce *adapter.ConfigError
		if errors.As(err, &ce) {
			return 2
		}
		if cfg.ShowTrace {
			printTrace(d.Stderr, a.LastTrace())
		}
		return 1
	}

	enc := json.NewEncoder(d.Stdout)
	for _, rec := range recs {
		_ = enc.Encode(rec)
	}

	if cfg.ShowTrace {
		printTrace(d.Stderr, a.LastTrace())
	}
	return 0
}

// parseFlags parses command arguments into a validated runConfig.
//
// Errors:
//   - Returns an error for invalid/missing required flags.
//   - Does not exit the process (caller decides exit code).
func parseFlags(args []string) (runConfig, error) {
	fs := flag.NewFlagSet("vendorcall", flag.ContinueOnError)

	var usageBuf strings.Builder
	fs.SetOutput(&usageBuf)
	fs.Usage = func() {
		fmt.Fprintf(&usageBuf, "Usage of %s:\n", fs.Name())
		fs.PrintDefaults()
	}

	var cfg runConfig
	var params paramList

	fs.StringVar(&cfg.ConfigPath, "config", "", "Path to a vendor config JSON file")
	fs.StringVar(&cfg.StoreKind, "store_kind", "", "Config store backend (sqlite, postgres); requires -vendor")
	fs.StringVar(&cfg.StoreDSN, "store_dsn", "", "Config store DSN")
	fs.StringVar(&cfg.Vendor, "vendor", "", "Vendor name to load from the store")
	fs.StringVar(&cfg.Operation, "op", "", "Operation to run (getNumber, getStatus, cancelNumber, getBalance, getPrices, getCountries, getServices)")
	fs.Var(&params, "p", "Operation parameter key=value (repeatable)")
	fs.BoolVar(&cfg.Datadog, "dd", false, "Submit metrics to Datadog")
	fs.StringVar(&cfg.DDTagsCSV, "dd_tags", "", "Extra Datadog tags CSV (e.g. env:prod)")
	fs.DurationVar(&cfg.FlushEvery, "metrics_flush", 1*time.Minute, "Datadog flush interval")
	fs.BoolVar(&cfg.ShowTrace, "trace", false, "Print the masked diagnostic trace to stderr")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return runConfig{}, errors.New(usageBuf.String())
		}
		return runConfig{}, fmt.Errorf("%v\n\n%s", err, usageBuf.String())
	}

	if cfg.Operation == "" {
		return runConfig{}, errors.New("missing required -op <operation>")
	}
	if cfg.ConfigPath == "" && cfg.StoreKind == "" {
		return runConfig{}, errors.New("either -config <file> or -store_kind/-store_dsn/-vendor is required")
	}
	if cfg.ConfigPath != "" && cfg.StoreKind != "" {
		return runConfig{}, errors.New("-config and -store_kind are mutually exclusive")
	}
	if cfg.StoreKind != "" && cfg.Vendor == "" {
		return runConfig{}, errors.New("-store_kind requires -vendor <name>")
	}

	cfg.Params = params.m
	return cfg, nil
}

func loadVendorConfig(ctx context.Context, cfg runConfig, d deps) (*config.VendorConfig, error) {
	if cfg.ConfigPath != "" {
		return config.LoadVendorFile(cfg.ConfigPath)
	}

	s, err := d.OpenStore(ctx, store.Config{Kind: cfg.StoreKind, DSN: cfg.StoreDSN})
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Get(ctx, cfg.Vendor)
}

func printTrace(w io.Writer, tr *httpds.Trace) {
	if tr == nil {
		return
	}
	b, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(w, "trace: %s\n", b)
}

// paramList collects repeated -p key=value flags.
type paramList struct {
	m map[string]string
}

func (p *paramList) String() string {
	if p == nil || len(p.m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.m))
	for k, v := range p.m {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (p *paramList) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("parameter %q must be key=value", s)
	}
	if p.m == nil {
		p.m = make(map[string]string)
	}
	p.m[k] = v
	return nil
}
