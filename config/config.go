// Package config loads registry settings from YAML or JSON with koanf and
// turns them into autocache.Options wired to real providers.
//
//	disabled: false
//	namespace: shop
//	backend: auto
//	default_ttl: 5m
//	version:
//	  source: redis        # build | static | env | redis
//	  redis: {addr: 127.0.0.1:6379, key: deploy:version}
//	shm:
//	  engine: ristretto
//	  max_bytes: 134217728
//	memcached:
//	  servers: [10.0.0.5:11211]
//	  timeout: 50ms
//	memcache:
//	  compress_threshold: 1024
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/autocache"
	pr "github.com/unkn0wn-root/autocache/provider"
	"github.com/unkn0wn-root/autocache/provider/memcache"
	"github.com/unkn0wn-root/autocache/provider/memcached"
	"github.com/unkn0wn-root/autocache/provider/shm"
	"github.com/unkn0wn-root/autocache/version"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

type Config struct {
	Disabled   bool          `koanf:"disabled"`
	Namespace  string        `koanf:"namespace"`
	Backend    string        `koanf:"backend"`
	DefaultTTL time.Duration `koanf:"default_ttl"`

	Version   Version   `koanf:"version"`
	Shm       Shm       `koanf:"shm"`
	Memcached Memcached `koanf:"memcached"`
	Memcache  Memcache  `koanf:"memcache"`
}

type Version struct {
	Source string `koanf:"source"` // build (default), static, env, redis
	Value  string `koanf:"value"`  // static value, or env fallback
	Env    string `koanf:"env"`
	Redis  Redis  `koanf:"redis"`
}

type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Key      string `koanf:"key"`
}

type Shm struct {
	Engine     string        `koanf:"engine"`
	MaxBytes   int           `koanf:"max_bytes"`
	Shards     int           `koanf:"shards"`
	LifeWindow time.Duration `koanf:"life_window"`
	Disabled   bool          `koanf:"disabled"`
}

type Memcached struct {
	Servers []string      `koanf:"servers"`
	Timeout time.Duration `koanf:"timeout"`
}

type Memcache struct {
	Servers           []string      `koanf:"servers"`
	Timeout           time.Duration `koanf:"timeout"`
	CompressThreshold int           `koanf:"compress_threshold"`
}

// Default is what an empty file produces.
func Default() Config {
	return Config{
		Namespace:  autocache.DefaultNamespace,
		Backend:    autocache.Auto.String(),
		DefaultTTL: autocache.DefaultTTL,
		Version:    Version{Source: "build"},
		Shm:        Shm{Engine: string(shm.EngineBigCache)},
	}
}

// Load reads a YAML (.yaml/.yml) or JSON (.json) file. Every failure is a
// *autocache.ConfigurationError for input "config" wrapping one of the
// sentinels above.
func Load(path string) (Config, error) {
	cfg, err := load(path)
	if err != nil {
		return Config{}, configError(path, err)
	}
	return cfg, nil
}

// LoadBytes parses data in the given format over Default and validates it.
// Errors are reported like Load's, with an empty Value.
func LoadBytes(data []byte, format Format) (Config, error) {
	cfg, err := parse(data, format)
	if err != nil {
		return Config{}, configError("", err)
	}
	return cfg, nil
}

func load(path string) (Config, error) {
	if path == "" {
		return Config{}, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return parse(data, format)
}

func parse(data []byte, format Format) (Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Config{}, ErrUnsupportedFormat
	}

	k := koanf.New(".")
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// configError leaves field-level ConfigurationErrors from Validate as they are.
func configError(path string, err error) error {
	var ce *autocache.ConfigurationError
	if errors.As(err, &ce) {
		return err
	}
	return &autocache.ConfigurationError{Input: "config", Value: path, Err: err}
}

func (c Config) Validate() error {
	if _, err := c.BackendName(); err != nil {
		return err
	}
	if c.DefaultTTL < 0 {
		return invalid("default_ttl", c.DefaultTTL.String())
	}
	switch shm.Engine(c.Shm.Engine) {
	case "", shm.EngineBigCache, shm.EngineRistretto, shm.EngineFastcache:
	default:
		return invalid("shm.engine", c.Shm.Engine)
	}
	switch c.Version.Source {
	case "", "build", "static", "env":
	case "redis":
		if c.Version.Redis.Addr == "" || c.Version.Redis.Key == "" {
			return invalid("version.redis", c.Version.Redis.Addr+" "+c.Version.Redis.Key)
		}
	default:
		return invalid("version.source", c.Version.Source)
	}
	if c.Version.Source == "env" && c.Version.Env == "" {
		return invalid("version.env", "")
	}
	return nil
}

func invalid(field, value string) error {
	return &autocache.ConfigurationError{Input: field, Value: value, Err: ErrInvalid}
}

// BackendName parses Backend; "" means Auto.
func (c Config) BackendName() (autocache.BackendName, error) {
	if c.Backend == "" {
		return autocache.Auto, nil
	}
	return autocache.ParseBackendName(c.Backend)
}

// Options builds registry options with providers configured from c.
// Logger and Hooks are left for the caller to fill in through mutate.
func (c Config) Options(mutate ...func(*autocache.Options)) autocache.Options {
	opts := autocache.Options{
		Disabled:   c.Disabled,
		Namespace:  c.Namespace,
		DefaultTTL: c.DefaultTTL,
		Version:    c.versionSource(),
		Providers: map[autocache.BackendName]pr.Provider{
			autocache.APCu: shm.New(shm.Config{
				Engine:     shm.Engine(c.Shm.Engine),
				MaxBytes:   c.Shm.MaxBytes,
				Shards:     c.Shm.Shards,
				LifeWindow: c.Shm.LifeWindow,
				Disabled:   c.Shm.Disabled,
			}),
			autocache.Memcached: memcached.New(memcached.Config{
				Servers: c.Memcached.Servers,
				Timeout: c.Memcached.Timeout,
			}),
			autocache.Memcache: memcache.New(memcache.Config{
				Servers:           c.Memcache.Servers,
				Timeout:           c.Memcache.Timeout,
				CompressThreshold: c.Memcache.CompressThreshold,
			}),
		},
	}
	for _, m := range mutate {
		m(&opts)
	}
	return opts
}

func (c Config) versionSource() version.Source {
	v := c.Version
	switch v.Source {
	case "static":
		return version.Static(v.Value)
	case "env":
		return version.Env(v.Env, v.Value)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     v.Redis.Addr,
			Password: v.Redis.Password,
			DB:       v.Redis.DB,
		})
		return version.Redis(rdb, v.Redis.Key)
	default:
		return version.Build()
	}
}

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}
