// autocachectl inspects and edits the cache an application would use.
//
// Usage:
//
//	autocachectl [global options] <command> [arguments]
//
// Global options:
//
//	-c, --config   YAML or JSON config file (default: built-in defaults)
//	-b, --backend  auto, memcached, memcache or none (default: from config)
//	    --verbose  log backend probes and failures to stderr
//
// Commands:
//
//	detect                          print the backend auto-detection picks
//	get <key> [--no-version-check]  print a cached value
//	put <key> <value> [--ttl 5m]    store a value
//	remove <key>                    delete a value
//
// Exit codes:
//
//	0: success
//	1: failure, or get found nothing
//	2: usage error
//
// The in-process apcu backend is never probed: its segment would die with
// this process.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/unkn0wn-root/autocache"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// env carries the process plumbing the commands need; tests swap it.
type env struct {
	stdout io.Writer
	stderr io.Writer
	// options is applied last to the registry options built from config.
	options func(*autocache.Options)
}

func createApp(e *env) *cli.Command {
	return &cli.Command{
		Name:    "autocachectl",
		Usage:   "inspect the auto-detected application cache",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file (.yaml, .yml or .json)",
				Sources: cli.EnvVars("AUTOCACHE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "backend to use instead of the configured one",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log probes and backend errors",
			},
		},
		Writer:         e.stdout,
		ErrWriter:      e.stderr,
		Commands:       createCommands(e),
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runApp(ctx, &env{stdout: stdout, stderr: stderr}, args)
}

func runApp(ctx context.Context, e *env, args []string) int {
	err := createApp(e).Run(ctx, args)
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(e.stderr, "usage: %v\n", usageErr)
		return 2
	}
	var cfgErr *autocache.ConfigurationError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return 2
	}
	if isCLIUsageError(err) {
		fmt.Fprintf(e.stderr, "usage: %v\n", err)
		return 2
	}
	fmt.Fprintf(e.stderr, "error: %v\n", err)
	return 1
}

func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, p := range []string{"flag provided but not defined", "No help topic", "invalid value"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
