package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/autocache"
	"github.com/unkn0wn-root/autocache/config"
	zaplog "github.com/unkn0wn-root/autocache/log/zap"
)

// exitError carries a non-zero exit code after the command already printed
// what it had to say.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func createCommands(e *env) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "detect",
			Usage: "print the backend auto-detection picks",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withCache(ctx, cmd, e, func(c autocache.Cache) error {
					fmt.Fprintln(e.stdout, c.Backend())
					return nil
				})
			},
		},
		{
			Name:      "get",
			Usage:     "print a cached value",
			ArgsUsage: "<key>",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "no-version-check", Usage: "accept entries from any deployment version"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				key, err := args(cmd, 1)
				if err != nil {
					return err
				}
				var opts []autocache.GetOption
				if cmd.Bool("no-version-check") {
					opts = append(opts, autocache.WithoutVersionCheck())
				}
				return withCache(ctx, cmd, e, func(c autocache.Cache) error {
					v, ok := c.Get(ctx, key[0], opts...)
					if !ok {
						fmt.Fprintf(e.stderr, "%s: not found\n", key[0])
						return &exitError{code: 1}
					}
					fmt.Fprintf(e.stdout, "%s\n", v)
					return nil
				})
			},
		},
		{
			Name:      "put",
			Usage:     "store a value",
			ArgsUsage: "<key> <value>",
			Flags: []cli.Flag{
				&cli.DurationFlag{Name: "ttl", Usage: "entry lifetime; 0 uses the configured default"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				kv, err := args(cmd, 2)
				if err != nil {
					return err
				}
				ttl := cmd.Duration("ttl")
				if ttl < 0 {
					return &usageError{msg: "--ttl must not be negative"}
				}
				return withCache(ctx, cmd, e, func(c autocache.Cache) error {
					c.Put(ctx, kv[0], []byte(kv[1]), ttl)
					return nil
				})
			},
		},
		{
			Name:      "remove",
			Aliases:   []string{"rm"},
			Usage:     "delete a value",
			ArgsUsage: "<key>",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				key, err := args(cmd, 1)
				if err != nil {
					return err
				}
				return withCache(ctx, cmd, e, func(c autocache.Cache) error {
					c.Remove(ctx, key[0])
					return nil
				})
			},
		},
	}
}

func args(cmd *cli.Command, n int) ([]string, error) {
	a := cmd.Args().Slice()
	if len(a) != n {
		return nil, &usageError{msg: fmt.Sprintf("%s: want %d argument(s), got %d", cmd.Name, n, len(a))}
	}
	return a, nil
}

// withCache loads config, builds a registry and hands fn the cache the
// selected backend resolves to.
func withCache(ctx context.Context, cmd *cli.Command, e *env, fn func(autocache.Cache) error) error {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	if b := cmd.String("backend"); b != "" {
		cfg.Backend = b
	}
	name, err := cfg.BackendName()
	if err != nil {
		return err
	}
	if name == autocache.APCu {
		return &usageError{msg: "apcu is process-local and not reachable from autocachectl"}
	}
	cfg.Shm.Disabled = true

	logger, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := cfg.Options(func(o *autocache.Options) { o.Logger = zaplog.New(logger) })
	if e.options != nil {
		e.options(&opts)
	}
	c, err := autocache.New(opts).Instance(ctx, name)
	if err != nil {
		return err
	}
	return fn(c)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	zc := zap.NewDevelopmentConfig()
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}
