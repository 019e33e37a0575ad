// handles publicd.yaml, environment and command-line flags
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the optional config file read from the working directory.
	FileName = "publicd.yaml"

	DefaultPort  = 8000
	DefaultIndex = "index.html"
)

// DefaultRoots are served in this order: site assets, then dependencies.
var DefaultRoots = []string{"public", "node_modules"}

type Config struct {
	Host  string   `yaml:"host"`
	Port  int      `yaml:"port"`
	Roots []string `yaml:"roots"` // Tried in order, first match wins
	Index string   `yaml:"index"` // Landing document for GET /, relative to the first root

	// Response middleware, both off by default
	Compress bool `yaml:"compress"`
	Minify   bool `yaml:"minify"`

	// Timeouts
	ReadTimeout     time.Duration `yaml:"readTimeout"`     // default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"` // default: 5s
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Host:            "",
		Port:            DefaultPort,
		Roots:           append([]string(nil), DefaultRoots...),
		Index:           DefaultIndex,
		ReadTimeout:     10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load builds the configuration from defaults, publicd.yaml, the HOST and
// PORT environment variables and finally args, in increasing priority.
// A missing or unparsable config file leaves the defaults in place.
func Load(args []string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(FileName); err == nil {
		fileCfg := Default()
		if err := yaml.Unmarshal(data, fileCfg); err == nil {
			cfg = fileCfg
		}
	}

	if host, ok := os.LookupEnv("HOST"); ok {
		cfg.Host = host
	}
	cfg.Port = envInt("PORT", cfg.Port)

	var roots rootsFlag
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	host := fs.String("host", cfg.Host, "The host/IP to bind to")
	port := fs.Int("port", cfg.Port, "The port to listen on")
	fs.Var(&roots, "root", "Directory to serve, repeat in priority order")
	index := fs.String("index", cfg.Index, "Landing document served for /")
	compress := fs.Bool("compress", cfg.Compress, "Enable gzip compression")
	minify := fs.Bool("minify", cfg.Minify, "Minify HTML, CSS and JS responses")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg.Host = *host
	cfg.Port = *port
	cfg.Index = *index
	cfg.Compress = *compress
	cfg.Minify = *minify
	if len(roots) > 0 {
		cfg.Roots = roots
	}

	cfg.validate()

	if err := cfg.absRoots(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// IndexPath returns the landing document path relative to the primary root.
func (c *Config) IndexPath() string {
	return "/" + strings.TrimPrefix(filepath.ToSlash(c.Index), "/")
}

// validate ensures configuration values are within reasonable bounds
func (c *Config) validate() {
	if c.Port < 0 || c.Port > 65535 {
		c.Port = DefaultPort
	}

	var roots []string
	for _, r := range c.Roots {
		if strings.TrimSpace(r) != "" {
			roots = append(roots, r)
		}
	}
	if len(roots) == 0 {
		roots = append(roots, DefaultRoots...)
	}
	c.Roots = roots

	if strings.TrimSpace(c.Index) == "" {
		c.Index = DefaultIndex
	}

	// Timeouts
	if c.ReadTimeout < 1*time.Second {
		c.ReadTimeout = 1 * time.Second
	}
	if c.ReadTimeout > 5*time.Minute {
		c.ReadTimeout = 5 * time.Minute
	}
	if c.ShutdownTimeout < 1*time.Second {
		c.ShutdownTimeout = 1 * time.Second
	}
	if c.ShutdownTimeout > 60*time.Second {
		c.ShutdownTimeout = 60 * time.Second
	}
}

func (c *Config) absRoots() error {
	for i, r := range c.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return fmt.Errorf("invalid root %q: %w", r, err)
		}
		c.Roots[i] = abs
	}
	return nil
}

// envInt reads key as an integer, keeping fallback when unset or malformed.
func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}

// rootsFlag collects repeated -root flags.
type rootsFlag []string

func (r *rootsFlag) String() string {
	return strings.Join(*r, ",")
}

func (r *rootsFlag) Set(v string) error {
	*r = append(*r, v)
	return nil
}
