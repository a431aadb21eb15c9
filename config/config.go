// Package config loads the assetroute server configuration from YAML.
//
// A configuration lists the asset root and the file routes:
//
//	root: /srv/assets
//	listen: ":8080"
//	log:
//	  format: json
//	  level: info
//	routes:
//	  - namespace: static
//	    action: files
//	    template: "/:namespace/*"
//	  - action: favicon.ico
//	    template: /img/favicon.ico
//	    content_type: image/x-icon
//
// Environment variables override file values: ASSETROUTE_ROOT,
// ASSETROUTE_LISTEN and ASSETROUTE_LOG_FORMAT.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvRoot      = "ASSETROUTE_ROOT"
	EnvListen    = "ASSETROUTE_LISTEN"
	EnvLogFormat = "ASSETROUTE_LOG_FORMAT"
)

// Defaults applied to empty fields.
const (
	DefaultListen          = ":8080"
	DefaultMetricsPath     = "/metrics"
	DefaultLogFormat       = "json"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
)

// Validation errors returned by Load, Parse and Validate.
var (
	ErrNoRoot           = errors.New("config: root is required")
	ErrNoRoutes         = errors.New("config: at least one route is required")
	ErrInvalidLogFormat = errors.New("config: log format must be json or text")
	ErrInvalidLogLevel  = errors.New("config: invalid log level")
	ErrInvalidMethod    = errors.New("config: invalid route method")
	ErrDuplicateName    = errors.New("config: duplicate route name")
	ErrInvalidMetrics   = errors.New("config: metrics path must start with /")
)

// Config is the server configuration.
type Config struct {
	Root            string        `yaml:"root"`
	Listen          string        `yaml:"listen"`
	MetricsPath     string        `yaml:"metrics_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Log             Log           `yaml:"log"`
	RequestID       RequestID     `yaml:"request_id"`
	Sendfile        *Sendfile     `yaml:"sendfile"`
	Cache           []CacheRule   `yaml:"cache"`
	Routes          []Route       `yaml:"routes"`
}

// Log selects the slog handler.
type Log struct {
	// Format is "json" or "text".
	Format string `yaml:"format"`

	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
}

// RequestID configures request ID propagation.
type RequestID struct {
	Header        string `yaml:"header"`
	Version       int    `yaml:"version"`
	TrustIncoming bool   `yaml:"trust_incoming"`
}

// Sendfile enables transport hints for a front proxy.
type Sendfile struct {
	Header string `yaml:"header"`
	Root   string `yaml:"root"`
	Prefix string `yaml:"prefix"`
}

// CacheRule maps to a Cache-Control rule.
type CacheRule struct {
	Namespace   string        `yaml:"namespace"`
	ContentType string        `yaml:"content_type"`
	MaxAge      time.Duration `yaml:"max_age"`
	Public      bool          `yaml:"public"`
	Immutable   bool          `yaml:"immutable"`
	NoCache     bool          `yaml:"no_cache"`
}

// Route is a file route.
type Route struct {
	Name        string   `yaml:"name"`
	Namespace   string   `yaml:"namespace"`
	Action      string   `yaml:"action"`
	Template    string   `yaml:"template"`
	ContentType string   `yaml:"content_type"`
	Methods     []string `yaml:"methods"`

	// Headers restricts the route to requests carrying these headers. An
	// empty value only requires presence.
	Headers map[string]string `yaml:"headers"`

	// Args restricts the route to an exact number of positional
	// arguments. Nil accepts any number.
	Args *int `yaml:"args"`

	Debug bool `yaml:"debug"`
}

// Load reads the file at path, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML from r, applies environment overrides and defaults,
// and validates the result. Unknown fields are rejected.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvRoot); ok && v != "" {
		c.Root = v
	}
	if v, ok := os.LookupEnv(EnvListen); ok && v != "" {
		c.Listen = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.MetricsPath == "" {
		c.MetricsPath = DefaultMetricsPath
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}

	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	for i := range c.Routes {
		route := &c.Routes[i]
		if len(route.Methods) == 0 {
			route.Methods = []string{http.MethodGet, http.MethodHead}
		}
		for j, m := range route.Methods {
			route.Methods[j] = strings.ToUpper(m)
		}
	}
}

// Validate checks the configuration after defaults were applied.
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrNoRoot
	}

	if len(c.Routes) == 0 {
		return ErrNoRoutes
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidMetrics, c.MetricsPath)
	}

	names := make(map[string]struct{}, len(c.Routes))
	for i, route := range c.Routes {
		for _, m := range route.Methods {
			if !validMethod(m) {
				return fmt.Errorf("%w: route %d: %q", ErrInvalidMethod, i, m)
			}
		}

		if route.Name == "" {
			continue
		}
		if _, exists := names[route.Name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateName, route.Name)
		}
		names[route.Name] = struct{}{}
	}

	return nil
}

// validMethod accepts the methods a file route can serve.
func validMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead:
		return true
	}
	return false
}

// SlogLevel parses Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
	return level, nil
}

// NewLogger returns a logger writing to w in the configured format.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch l.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogFormat, l.Format)
	}

	return slog.New(handler), nil
}
