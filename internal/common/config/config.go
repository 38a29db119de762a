// internal/common/config/config.go
package config

import "time"

// Config is the pi-builder settings struct, loaded from pi-builder.yaml and
// PI_* environment variables.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Preview    PreviewConfig    `mapstructure:"preview"`
	Publish    PublishConfig    `mapstructure:"publish"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// PathsConfig locates template sources and generated sites. An empty
// TemplatesDir means the templates compiled into the binary.
type PathsConfig struct {
	TemplatesDir string `mapstructure:"templates_dir"`
	OutputDir    string `mapstructure:"output_dir"`
	LibDir       string `mapstructure:"lib_dir"`
}

// DeploymentConfig holds the third-party script locations per mode.
type DeploymentConfig struct {
	Mode  string            `mapstructure:"mode"`
	CDN   map[string]string `mapstructure:"cdn"`
	Local map[string]string `mapstructure:"local"`
}

type PreviewConfig struct {
	Port           int  `mapstructure:"port"`
	TickerInterval int  `mapstructure:"ticker_interval"` // milliseconds
	GlobeDelay     int  `mapstructure:"globe_delay"`     // milliseconds
	Watch          bool `mapstructure:"watch"`
}

// PublishConfig targets an S3 bucket for `export --publish`.
type PublishConfig struct {
	Region string `mapstructure:"region"`
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

type HTTPConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
