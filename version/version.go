// Package version supplies the deployment version stamped on every cache
// entry. Entries written under another version are treated as misses, so a
// new deployment lazily invalidates everything the previous one cached.
package version

import (
	"context"
	"errors"
	"os"
	"runtime/debug"
)

var ErrNoVersion = errors.New("version: no version available")

// Source returns the current deployment version.
type Source interface {
	Version(ctx context.Context) (string, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (string, error)

func (f Func) Version(ctx context.Context) (string, error) { return f(ctx) }

type static string

// Static always returns v.
func Static(v string) Source { return static(v) }

func (s static) Version(context.Context) (string, error) { return string(s), nil }

// Build derives the version from the binary's build info: the VCS revision
// when stamped (suffixed with "+dirty" for modified trees), else the main
// module version, else "devel".
func Build() Source {
	return Func(func(context.Context) (string, error) {
		return fromBuildInfo(debug.ReadBuildInfo()), nil
	})
}

func fromBuildInfo(bi *debug.BuildInfo, ok bool) string {
	if !ok || bi == nil {
		return "devel"
	}
	var rev, modified string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if rev != "" {
		if modified == "true" {
			return rev + "+dirty"
		}
		return rev
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "devel"
}

// Env reads the version from an environment variable, falling back to
// fallback when it is unset or empty. An empty fallback makes a missing
// variable an error.
func Env(name, fallback string) Source {
	return Func(func(context.Context) (string, error) {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
		if fallback == "" {
			return "", ErrNoVersion
		}
		return fallback, nil
	})
}
