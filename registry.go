package autocache

import (
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/autocache/provider"
	"github.com/unkn0wn-root/autocache/provider/memcache"
	"github.com/unkn0wn-root/autocache/provider/memcached"
	"github.com/unkn0wn-root/autocache/provider/none"
	"github.com/unkn0wn-root/autocache/provider/shm"
	"github.com/unkn0wn-root/autocache/version"
)

// Registry resolves backend names to Cache instances. The application owns
// it and shares it with whatever needs a cache; it lives as long as the
// process and is never closed.
type Registry struct {
	disabled   bool
	namespace  string
	version    version.Source
	providers  map[BackendName]pr.Provider
	defaultTTL time.Duration
	now        func() time.Time
	log        Logger
	hooks      Hooks

	mu       sync.RWMutex
	detected bool
	resolved BackendName
	adapters map[BackendName]*adapter
}

func New(opts Options) *Registry {
	r := &Registry{
		disabled:  opts.Disabled,
		namespace: coalesce(opts.Namespace, DefaultNamespace),
		providers: defaultProviders(),
		adapters:  make(map[BackendName]*adapter),
	}
	for name, p := range opts.Providers {
		if name != Auto && name.valid() && p != nil {
			r.providers[name] = p
		}
	}

	r.version = opts.Version
	if r.version == nil {
		r.version = version.Build()
	}
	r.log, r.hooks = opts.Logger, opts.Hooks
	if r.log == nil {
		r.log = NopLogger{}
	}
	if r.hooks == nil {
		r.hooks = NopHooks{}
	}
	r.defaultTTL = coalesce(opts.DefaultTTL, DefaultTTL)
	r.now = opts.Now
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func defaultProviders() map[BackendName]pr.Provider {
	return map[BackendName]pr.Provider{
		APCu:      shm.New(shm.Config{}),
		Memcached: memcached.New(memcached.Config{}),
		Memcache:  memcache.New(memcache.Config{}),
		None:      none.New(),
	}
}

// Instance returns the Cache for name, building it on first use. Auto is
// resolved through Detect. Unknown names yield a *ConfigurationError; a
// backend failing its probe at build time yields a *BackendUnavailableError.
func (r *Registry) Instance(ctx context.Context, name BackendName) (Cache, error) {
	if !name.valid() {
		return nil, &ConfigurationError{Input: "backend", Value: name.String(), Err: ErrUnknownBackend}
	}

	r.mu.RLock()
	if name == Auto && r.detected {
		name = r.resolved
	}
	a, ok := r.adapters[name]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if name == Auto {
		name = r.detectLocked(ctx)
	}
	if a, ok := r.adapters[name]; ok {
		return a, nil
	}
	a, err := r.build(ctx, name)
	if err != nil {
		return nil, err
	}
	r.adapters[name] = a
	return a, nil
}

// InstanceByName parses name (see ParseBackendName) and calls Instance.
func (r *Registry) InstanceByName(ctx context.Context, name string) (Cache, error) {
	n, err := ParseBackendName(name)
	if err != nil {
		return nil, err
	}
	return r.Instance(ctx, n)
}

// Detect returns the first available backend in probe order: APCu,
// Memcached, Memcache; None if none answers or caching is disabled. The probe
// sequence runs once per Registry; later calls return the same answer even if
// availability changed since.
func (r *Registry) Detect(ctx context.Context) BackendName {
	r.mu.RLock()
	if r.detected {
		defer r.mu.RUnlock()
		return r.resolved
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detectLocked(ctx)
}

func (r *Registry) detectLocked(ctx context.Context) BackendName {
	if r.detected {
		return r.resolved
	}
	r.resolved = r.probe(ctx)
	r.detected = true
	r.hooks.Detected(r.resolved)
	return r.resolved
}

func (r *Registry) probe(ctx context.Context) BackendName {
	if r.disabled {
		r.log.Info("caching disabled by configuration", nil)
		return None
	}
	for _, name := range probeOrder {
		if r.providers[name].Available(ctx) {
			r.log.Info("auto-detected cache backend", Fields{"backend": name.String()})
			return name
		}
		r.log.Debug("cache backend not available", Fields{"backend": name.String()})
	}
	r.log.Info("no cache backend detected", nil)
	return None
}

func (r *Registry) build(ctx context.Context, name BackendName) (*adapter, error) {
	p := r.providers[name]
	// availability may have changed since detection
	if !p.Available(ctx) {
		return nil, &BackendUnavailableError{Backend: name}
	}
	ver, err := r.version.Version(ctx)
	if err != nil {
		return nil, &ConfigurationError{Input: "version", Err: err}
	}
	r.log.Debug("cache adapter created", Fields{"backend": name.String(), "version": ver, "namespace": r.namespace})
	return &adapter{
		name:       name,
		provider:   p,
		prefix:     r.namespace + ":",
		version:    ver,
		defaultTTL: r.defaultTTL,
		now:        r.now,
		log:        r.log,
		hooks:      r.hooks,
	}, nil
}
