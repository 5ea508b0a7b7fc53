// Command confstore manages the vendor-config registry: install,
// inspect, list, and remove vendor configuration documents.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"numgate/internal/config"
	"numgate/internal/store"

	// register store backends; -kind selects one.
	_ "numgate/internal/store/postgres"
	_ "numgate/internal/store/sqlite"
)

// deps are external seams for testability.
type deps struct {
	Stdout io.Writer
	Stderr io.Writer

	OpenStore func(ctx context.Context, cfg store.Config) (store.Store, error)
}

// runConfig holds the parsed flags and command for a run.
type runConfig struct {
	Kind    string
	DSN     string
	Command string
	Arg     string
}

func main() {
	code := run(context.Background(), os.Args[1:], deps{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		OpenStore: store.Open,
	})
	os.Exit(code)
}

// run executes the command and returns an exit code.
//
// Exit codes:
//   - 0: success.
//   - 1: the store operation failed.
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

	s, err := d.OpenStore(ctx, store.Config{Kind: cfg.Kind, DSN: cfg.DSN})
	if err != nil {
		fmt.Fprintf(d.Stderr, "open store: %v\n", err)
		return 2
	}
	defer s.Close()

	if err := s.Init(ctx); err != nil {
		fmt.Fprintf(d.Stderr, "init store: %v\n", err)
		return 1
	}

	switch cfg.Command {
	case "put":
		vcfg, err := config.LoadVendorFile(cfg.Arg)
		if err != nil {
			fmt.Fprintf(d.Stderr, "%v\n", err)
			return 2
		}
		if err := s.Put(ctx, vcfg); err != nil {
			fmt.Fprintf(d.Stderr, "put %s: %v\n", vcfg.Name, err)
			return 1
		}
		fmt.Fprintf(d.Stdout, "installed %s\n", vcfg.Name)
		return 0

	case "get":
		vcfg, err := s.Get(ctx, cfg.Arg)
		if err != nil {
			fmt.Fprintf(d.Stderr, "get %s: %v\n", cfg.Arg, err)
			return 1
		}
		b, err := json.MarshalIndent(vcfg, "", "  ")
		if err != nil {
			fmt.Fprintf(d.Stderr, "encode %s: %v\n", cfg.Arg, err)
			return 1
		}
		fmt.Fprintln(d.Stdout, string(b))
		return 0

	case "list":
		names, err := s.List(ctx)
		if err != nil {
			fmt.Fprintf(d.Stderr, "list: %v\n", err)
			return 1
		}
		for _, name := range names {
			fmt.Fprintln(d.Stdout, name)
		}
		return 0

	case "delete":
		if err := s.Delete(ctx, cfg.Arg); err != nil {
			fmt.Fprintf(d.Stderr, "delete %s: %v\n", cfg.Arg, err)
			return 1
		}
		fmt.Fprintf(d.Stdout, "deleted %s\n", cfg.Arg)
		return 0

	default:
		// parseFlags already validated; unreachable in practice.
		fmt.Fprintf(d.Stderr, "unknown command %q\n", cfg.Command)
		return 2
	}
}

// parseFlags parses "confstore -kind ... -dsn ... <command> [arg]".
//
// Errors:
//   - Returns an error for invalid/missing flags or commands.
//   - Does not exit the process (caller decides exit code).
func parseFlags(args []string) (runConfig, error) {
	fs := flag.NewFlagSet("confstore", flag.ContinueOnError)

	var usageBuf strings.Builder
	fs.SetOutput(&usageBuf)
	fs.Usage = func() {
		fmt.Fprintf(&usageBuf, "Usage: %s -kind <sqlite|postgres> -dsn <dsn> <put file.json | get vendor | list | delete vendor>\n", fs.Name())
		fs.PrintDefaults()
	}

	var cfg runConfig
	fs.StringVar(&cfg.Kind, "kind", "sqlite", "Store backend kind")
	fs.StringVar(&cfg.DSN, "dsn", "", "Store DSN (file path for sqlite)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return runConfig{}, errors.New(usageBuf.String())
		}
		return runConfig{}, fmt.Errorf("%v\n\n%s", err, usageBuf.String())
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return runConfig{}, errors.New("missing command (put, get, list, delete)")
	}
	cfg.Command = rest[0]

	switch cfg.Command {
	case "put", "get", "delete":
		if len(rest) != 2 {
			return runConfig{}, fmt.Errorf("%s requires exactly one argument", cfg.Command)
		}
		cfg.Arg = rest[1]
	case "list":
		if len(rest) != 1 {
			return runConfig{}, errors.New("list takes no arguments")
		}
	default:
		return runConfig{}, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.DSN == "" {
		return runConfig{}, errors.New("missing required -dsn")
	}
	return cfg, nil
}
