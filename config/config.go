package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Rewatch struct {
	Subdomain string `yaml:"subdomain" mapstructure:"subdomain"`
	// APIKey is read from the environment or a config file but never saved.
	APIKey   string `yaml:"-" mapstructure:"api_key"`
	Endpoint string `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}
type Fetch struct {
	TimeoutSeconds    int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	IncludeSummary    bool    `yaml:"include_summary" mapstructure:"include_summary"`
	Debug             bool    `yaml:"debug" mapstructure:"debug"`
}
type Root struct {
	Pipeline struct {
		Name    string `yaml:"name" mapstructure:"name"`
		Version string `yaml:"version" mapstructure:"version"`
		LogLvl  string `yaml:"log_level" mapstructure:"log_level"`
	} `yaml:"pipeline" mapstructure:"pipeline"`
	Rewatch Rewatch `yaml:"rewatch" mapstructure:"rewatch"`
	Fetch   Fetch   `yaml:"fetch" mapstructure:"fetch"`
	Paths   struct {
		Outputs  string `yaml:"outputs" mapstructure:"outputs"`
		DebugLog string `yaml:"debug_log" mapstructure:"debug_log"`
		Metrics  string `yaml:"metrics,omitempty" mapstructure:"metrics"`
	} `yaml:"paths" mapstructure:"paths"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "rewatch-transcripts")
	v.SetDefault("pipeline.version", "")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("rewatch.subdomain", "")
	v.SetDefault("rewatch.api_key", "")
	v.SetDefault("rewatch.endpoint", "")
	v.SetDefault("rewatch.timezone", "Local")
	v.SetDefault("fetch.timeout_seconds", 60)
	v.SetDefault("fetch.requests_per_second", 0.0)
	v.SetDefault("fetch.include_summary", false)
	v.SetDefault("fetch.debug", false)
	v.SetDefault("paths.outputs", ".")
	v.SetDefault("paths.debug_log", "debug_log.txt")
	v.SetDefault("paths.metrics", "")
}

// NewViper returns a viper instance with defaults and REWATCH_* env bindings.
// Callers may bind command-line flags before passing it to LoadWith.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix("REWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("rewatch.api_key", "REWATCH_API_KEY")
	_ = v.BindEnv("rewatch.subdomain", "REWATCH_SUBDOMAIN")
	return v
}

// LoadWith reads path, or the first config file found on the search list
// when path is empty. No file at all is fine: defaults and env apply.
func LoadWith(v *viper.Viper, path string) (*Root, error) {
	loadDotEnv(".env", ".env.local")

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// ReadFile decodes path over the defaults, ignoring env and flags. A missing
// file yields the defaults.
func ReadFile(path string) (*Root, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Resolve names the file a run without --config reads, or "" when none exists.
func Resolve() string { return findConfigFile() }

func searchPaths() []string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
	}
	if p := DefaultPath(); p != "" {
		guess = append(guess, p)
	}
	return guess
}

func findConfigFile() string {
	for _, p := range searchPaths() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// DefaultPath is where `configure` saves settings.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rewatch", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "rewatch", "config.yaml")
	}
	return ""
}

// Save writes cfg as yaml. The API key is never written.
func Save(path string, cfg *Root) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// loadDotEnv never overrides variables that are already set.
func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// Location resolves rewatch.timezone; empty and "Local" mean time.Local.
func (r *Root) Location() (*time.Location, error) {
	tz := r.Rewatch.Timezone
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", tz, err)
	}
	return loc, nil
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
