package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the process-wide settings, fixed at startup
type Config struct {
	Host            string
	Port            int
	ScanRoot        string
	StaticDir       string
	ScanConcurrency int
	WalkWorkers     int
	AllowedOrigins  []string
	RateLimitRPS    float64
	RateLimitBurst  int
	VolumeInterval  time.Duration
	LogLevel        string
	LogFile         string
	GinMode         string
}

// Keys shared between viper, the environment and cobra flags
const (
	KeyHost            = "host"
	KeyPort            = "port"
	KeyScanRoot        = "scan_root"
	KeyStaticDir       = "static_dir"
	KeyScanConcurrency = "scan_concurrency"
	KeyWalkWorkers     = "walk_workers"
	KeyAllowedOrigins  = "allowed_origins"
	KeyRateLimitRPS    = "rate_limit_rps"
	KeyRateLimitBurst  = "rate_limit_burst"
	KeyVolumeInterval  = "volume_interval"
	KeyLogLevel        = "log_level"
	KeyLogFile         = "log_file"
	KeyGinMode         = "gin_mode"
)

const DefaultScanRoot = "/data"

// SetDefaults registers defaults and environment lookup on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHost, "0.0.0.0")
	v.SetDefault(KeyPort, 3000)
	v.SetDefault(KeyScanRoot, DefaultScanRoot)
	v.SetDefault(KeyStaticDir, "./build")
	v.SetDefault(KeyScanConcurrency, 0)
	v.SetDefault(KeyWalkWorkers, 0)
	v.SetDefault(KeyAllowedOrigins, "")
	v.SetDefault(KeyRateLimitRPS, 20.0)
	v.SetDefault(KeyRateLimitBurst, 40)
	v.SetDefault(KeyVolumeInterval, 5*time.Second)
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyGinMode, "release")

	// PORT, SCAN_ROOT, LOG_LEVEL, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv applies a .env file to the process environment. A missing file
// is not an error; variables already set in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads a Config out of v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Host:            v.GetString(KeyHost),
		Port:            v.GetInt(KeyPort),
		ScanRoot:        v.GetString(KeyScanRoot),
		StaticDir:       v.GetString(KeyStaticDir),
		ScanConcurrency: v.GetInt(KeyScanConcurrency),
		WalkWorkers:     v.GetInt(KeyWalkWorkers),
		AllowedOrigins:  splitList(v.GetString(KeyAllowedOrigins)),
		RateLimitRPS:    v.GetFloat64(KeyRateLimitRPS),
		RateLimitBurst:  v.GetInt(KeyRateLimitBurst),
		VolumeInterval:  v.GetDuration(KeyVolumeInterval),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFile:         v.GetString(KeyLogFile),
		GinMode:         v.GetString(KeyGinMode),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and fills in derived defaults
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ScanRoot == "" {
		c.ScanRoot = DefaultScanRoot
	}
	if c.ScanConcurrency < 0 {
		return fmt.Errorf("scan concurrency cannot be negative")
	}
	if c.ScanConcurrency == 0 {
		c.ScanConcurrency = DefaultScanConcurrency()
	}
	if c.WalkWorkers < 0 {
		return fmt.Errorf("walk workers cannot be negative")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be positive, got %v", c.RateLimitRPS)
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = int(c.RateLimitRPS * 2)
		if c.RateLimitBurst < 1 {
			c.RateLimitBurst = 1
		}
	}
	if c.VolumeInterval <= 0 {
		c.VolumeInterval = 5 * time.Second
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DefaultScanConcurrency sizes the folder worker pool to the machine
func DefaultScanConcurrency() int {
	n := runtime.NumCPU() * 2
	if n < 4 {
		n = 4
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
