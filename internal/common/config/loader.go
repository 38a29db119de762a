// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultCDNThreeJS   = "https://cdnjs.cloudflare.com/ajax/libs/three.js/r128/three.min.js"
	DefaultCDND3        = "https://d3js.org/d3.v7.min.js"
	DefaultLocalThreeJS = "./lib/three.min.js"
	DefaultLocalD3      = "./lib/d3.v7.min.js"
)

// Load reads pi-builder.yaml from the usual locations. A missing file is not
// an error; defaults and PI_* variables still apply.
func Load() (*Config, error) {
	return load("")
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pi-builder")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".pi-builder"))
		}
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys registers every scalar key so AutomaticEnv picks up PI_* values
// even when the yaml file does not mention the key.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.name", "app.version",
		"paths.templates_dir", "paths.output_dir", "paths.lib_dir",
		"deployment.mode",
		"preview.port", "preview.ticker_interval", "preview.globe_delay", "preview.watch",
		"publish.region", "publish.bucket", "publish.prefix",
		"http.timeout",
		"logging.level", "logging.format", "logging.output",
	} {
		_ = v.BindEnv(key)
	}
}

func loadEnvFile() {
	for _, path := range []string{".env", filepath.Join("configs", ".env")} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pi-builder"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}

	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = "./sites"
	}

	if cfg.Deployment.Mode == "" {
		cfg.Deployment.Mode = "local"
	}
	if cfg.Deployment.CDN == nil {
		cfg.Deployment.CDN = map[string]string{}
	}
	if cfg.Deployment.Local == nil {
		cfg.Deployment.Local = map[string]string{}
	}
	setIfMissing(cfg.Deployment.CDN, "threejs", DefaultCDNThreeJS)
	setIfMissing(cfg.Deployment.CDN, "d3", DefaultCDND3)
	setIfMissing(cfg.Deployment.Local, "threejs", DefaultLocalThreeJS)
	setIfMissing(cfg.Deployment.Local, "d3", DefaultLocalD3)

	if cfg.Preview.Port == 0 {
		cfg.Preview.Port = 8080
	}
	if cfg.Preview.TickerInterval == 0 {
		cfg.Preview.TickerInterval = 5000
	}
	if cfg.Preview.GlobeDelay == 0 {
		cfg.Preview.GlobeDelay = 50
	}

	if cfg.Publish.Region == "" {
		cfg.Publish.Region = "us-east-1"
	}

	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = 10000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

func setIfMissing(m map[string]string, key, value string) {
	if m[key] == "" {
		m[key] = value
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Deployment.Mode != "local" && cfg.Deployment.Mode != "cdn" {
		return fmt.Errorf("deployment.mode must be local or cdn, got %q", cfg.Deployment.Mode)
	}
	if cfg.Preview.Port < 1 || cfg.Preview.Port > 65535 {
		return fmt.Errorf("preview.port out of range: %d", cfg.Preview.Port)
	}
	if cfg.Preview.TickerInterval < 0 || cfg.Preview.GlobeDelay < 0 {
		return fmt.Errorf("preview intervals must not be negative")
	}
	return nil
}

// Default returns a config with every default applied, for tests and for
// commands that run without a settings file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
