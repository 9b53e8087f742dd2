package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

var (
	once     sync.Once
	instance *Config
)

// Backend keys used by the default route table.
const (
	BackendLegacy      = "legacy"
	BackendUnified     = "unified"
	BackendPlaceholder = "placeholder"
)

// ComponentConfig holds the network settings of a listening service.
type ComponentConfig struct {
	Protocol string `yaml:"protocol"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Debug    bool   `yaml:"debug"`
}

// GatewayConfig configures the HTTP gateway process.
type GatewayConfig struct {
	ComponentConfig `yaml:",inline"`
	ServiceName     string        `yaml:"service_name"`
	Version         string        `yaml:"version"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// LogConfig selects level and output format.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CLIConfig configures the command line client.
type CLIConfig struct {
	GatewayURL  string        `yaml:"gateway_url"`
	Timeout     time.Duration `yaml:"timeout"`
	HistoryFile string        `yaml:"history_file"`
	ProbeRate   float64       `yaml:"probe_rate"`
	Debug       bool          `yaml:"debug"`
}

// RouteConfig describes one proxy endpoint and the backend call behind it.
type RouteConfig struct {
	Name            string   `yaml:"name"`
	Patterns        []string `yaml:"patterns"`
	Backend         string   `yaml:"backend"`
	Path            string   `yaml:"path"`
	Paginate        bool     `yaml:"paginate"`
	MirrorStatus    bool     `yaml:"mirror_status"`
	TransportErrors bool     `yaml:"transport_errors"`
	FollowRedirects bool     `yaml:"follow_redirects"`
}

// Config is the root of addictiontube.yaml.
type Config struct {
	Gateway  GatewayConfig     `yaml:"gateway"`
	Log      LogConfig         `yaml:"log"`
	CLI      CLIConfig         `yaml:"cli"`
	Backends map[string]string `yaml:"backends"`
	Routes   []RouteConfig     `yaml:"routes"`

	// UnifiedSearchRoute names the route used by the search page.
	UnifiedSearchRoute string `yaml:"unified_search_route"`
}

type envOverrides struct {
	GatewayHost     string         `envconfig:"GATEWAY_HOST"`
	GatewayPort     int            `envconfig:"GATEWAY_PORT"`
	ServiceVersion  string         `envconfig:"SERVICE_VERSION"`
	UpstreamTimeout *time.Duration `envconfig:"UPSTREAM_TIMEOUT"`
	LogLevel        string         `envconfig:"LOG_LEVEL"`
	LogJSON         *bool          `envconfig:"LOG_JSON"`
	GatewayURL      string         `envconfig:"GATEWAY_URL"`
}

// Get returns the process-wide configuration. The file named by
// ADDICTIONTUBE_CONFIG (default addictiontube.yaml) is optional.
func Get() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[CONFIG] .env ignored: %v", err)
		}

		path := os.Getenv("ADDICTIONTUBE_CONFIG")
		if path == "" {
			path = "addictiontube.yaml"
		}

		cfg, err := Load(path)
		if err != nil {
			log.Fatalf("[CONFIG ERROR] %v", err)
		}
		instance = cfg
	})
	return instance
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// missing) and environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := cfg.merge(f); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration: the five proxy routes and the
// backend hosts they were first deployed against.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			ComponentConfig: ComponentConfig{Protocol: "http", Host: "", Port: 8080},
			ServiceName:     "addictiontube-gateway",
			Version:         "dev",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		CLI: CLIConfig{
			GatewayURL:  "http://localhost:8080",
			Timeout:     30 * time.Second,
			HistoryFile: ".addictiontube_history",
			ProbeRate:   1,
		},
		Backends: map[string]string{
			BackendLegacy:      "https://addictiontube-proxy.onrender.com",
			BackendUnified:     "https://addictiontube-unified.onrender.com",
			BackendPlaceholder: "https://your-backend-domain.com",
		},
		Routes:             DefaultRoutes(),
		UnifiedSearchRoute: "unified_search",
	}
}

// DefaultRoutes is the built-in endpoint table.
func DefaultRoutes() []RouteConfig {
	return []RouteConfig{
		{
			Name:     "search",
			Patterns: []string{"/search.php"},
			Backend:  BackendLegacy,
			Path:     "/search",
			Paginate: true,
		},
		{
			Name:     "search_proxy",
			Patterns: []string{"/search-proxy.php"},
			Backend:  BackendPlaceholder,
			Path:     "/rag_answer",
		},
		{
			Name:     "rag_answer",
			Patterns: []string{"/rag-answer.php"},
			Backend:  BackendLegacy,
			Path:     "/rag_answer",
		},
		{
			Name:         "unified_rag_answer",
			Patterns:     []string{"/unified-rag-answer.php", "/unified/unified-rag-answer.php"},
			Backend:      BackendUnified,
			Path:         "/rag_answer",
			MirrorStatus: true,
		},
		{
			Name:            "unified_search",
			Patterns:        []string{"/unified-search-proxy.php", "/unified/unified-search-proxy.php"},
			Backend:         BackendUnified,
			Path:            "/search",
			TransportErrors: true,
			FollowRedirects: true,
		},
	}
}

// merge overlays the YAML document on c. Backends are merged by key; a
// non-empty routes list replaces the built-in table.
func (c *Config) merge(data []byte) error {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	backends := c.Backends
	routes := c.Routes

	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}

	for k, v := range file.Backends {
		backends[k] = v
	}
	c.Backends = backends
	if len(file.Routes) == 0 {
		c.Routes = routes
	}
	return nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	if env.GatewayHost != "" {
		c.Gateway.Host = env.GatewayHost
	}
	if env.GatewayPort != 0 {
		c.Gateway.Port = env.GatewayPort
	}
	if env.ServiceVersion != "" {
		c.Gateway.Version = env.ServiceVersion
	}
	if env.UpstreamTimeout != nil {
		c.Gateway.UpstreamTimeout = *env.UpstreamTimeout
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.LogJSON != nil {
		c.Log.JSON = *env.LogJSON
	}
	if env.GatewayURL != "" {
		c.CLI.GatewayURL = env.GatewayURL
	}
	return nil
}

// Validate checks that every route resolves to an absolute backend URL.
func (c *Config) Validate() error {
	if c.Gateway.Port <= 0 {
		return invalid("gateway port is required")
	}
	if len(c.Routes) == 0 {
		return invalid("at least one route is required")
	}

	seen := make(map[string]bool, len(c.Routes))
	for _, r := range c.Routes {
		if r.Name == "" {
			return invalid("route without name")
		}
		if seen[r.Name] {
			return invalid(fmt.Sprintf("duplicate route %q", r.Name))
		}
		seen[r.Name] = true
		if len(r.Patterns) == 0 {
			return invalid(fmt.Sprintf("route %q has no patterns", r.Name))
		}
		if _, err := c.BaseURL(r); err != nil {
			return err
		}
	}
	if c.UnifiedSearchRoute == "" {
		return invalid("unified_search_route is required")
	}
	if !seen[c.UnifiedSearchRoute] {
		return invalid(fmt.Sprintf("unified_search_route %q is not a configured route", c.UnifiedSearchRoute))
	}
	return nil
}

// BaseURL resolves the backend of r.
func (c *Config) BaseURL(r RouteConfig) (string, error) {
	base, ok := c.Backends[r.Backend]
	if !ok {
		return "", invalid(fmt.Sprintf("route %q references unknown backend %q", r.Name, r.Backend))
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", invalid(fmt.Sprintf("backend %q: %q is not an absolute URL", r.Backend, base))
	}
	return base, nil
}

// Route looks a route up by name.
func (c *Config) Route(name string) (RouteConfig, bool) {
	for _, r := range c.Routes {
		if r.Name == name {
			return r, true
		}
	}
	return RouteConfig{}, false
}

// Address returns host:port.
func (c ComponentConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FullURL returns protocol://host:port.
func (c ComponentConfig) FullURL() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s://%s:%d", c.Protocol, host, c.Port)
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

func invalid(msg string) error { return fmt.Errorf("%w: %s", ErrInvalid, msg) }
