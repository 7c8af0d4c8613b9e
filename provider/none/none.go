// Package none provides a Provider that never stores anything.
package none

import (
	"context"
	"time"

	pr "github.com/unkn0wn-root/autocache/provider"
)

// None is always available and always misses.
type None struct{}

var _ pr.Provider = None{}

func New() None { return None{} }

func (None) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set reports a refused write; nothing is stored.
func (None) Set(context.Context, string, []byte, time.Duration) (bool, error) { return false, nil }

func (None) Del(context.Context, string) error { return nil }
func (None) Available(context.Context) bool    { return true }
func (None) AutomaticCleanup() bool            { return true }
