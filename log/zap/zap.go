// Package zap adapts a *zap.Logger to autocache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/autocache"
)

var _ autocache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

func New(l *zap.Logger) Logger { return Logger{L: l.Named("autocache")} }

func (z Logger) Debug(msg string, f autocache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f autocache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f autocache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f autocache.Fields) { z.L.Error(msg, fields(f)...) }

// fields are emitted in key order; errors go through zap.NamedError.
func fields(f autocache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
