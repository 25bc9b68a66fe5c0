package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Stats     StatsConfig
	Catalog   CatalogConfig
	Heatmap   HeatmapConfig
	Storage   StorageConfig
	Log       LogConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时字段（非配置文件）
	ConfigFile string `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// StatsConfig 统计接口配置
type StatsConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Courses        string        `mapstructure:"courses"`
	Timeout        time.Duration `mapstructure:"timeout_seconds"`
	DefaultQuarter string        `mapstructure:"default_quarter"`
}

// CatalogConfig 课程目录文档的位置，Source 取值 http / local / minio / oss
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	URL    string `mapstructure:"url"`
	Object string `mapstructure:"object"`
}

type HeatmapConfig struct {
	WidthRatio         float64 `mapstructure:"width_ratio"`
	HeightRatio        float64 `mapstructure:"height_ratio"`
	DefaultParentWidth int     `mapstructure:"default_parent_width"`
}

type StorageConfig struct {
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("stats.courses", "all")
	v.SetDefault("stats.timeout_seconds", 0)

	v.SetDefault("catalog.source", "http")

	v.SetDefault("heatmap.width_ratio", 0.97)
	v.SetDefault("heatmap.height_ratio", 0.25)
	v.SetDefault("heatmap.default_parent_width", 1200)

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("STEM_DASHBOARD")
	v.AutomaticEnv()

	setDefaults(v)

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Stats endpoint
	v.BindEnv("stats.base_url", "STATS_BASE_URL")
	v.BindEnv("stats.default_quarter", "STATS_DEFAULT_QUARTER")

	// Catalog
	v.BindEnv("catalog.source", "CATALOG_SOURCE")
	v.BindEnv("catalog.url", "CATALOG_URL")
	v.BindEnv("catalog.object", "CATALOG_OBJECT")

	// Storage
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Stats.Timeout = cfg.Stats.Timeout * time.Second
	cfg.ConfigFile = v.ConfigFileUsed()
	if cfg.ConfigFile == "" {
		cfg.ConfigFile = filepath.Join(path, "config.yaml")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Stats.BaseURL == "" {
		return fmt.Errorf("stats.base_url is required")
	}
	if _, err := url.ParseRequestURI(c.Stats.BaseURL); err != nil {
		return fmt.Errorf("stats.base_url is invalid: %w", err)
	}
	if c.Heatmap.WidthRatio <= 0 || c.Heatmap.HeightRatio <= 0 {
		return fmt.Errorf("heatmap ratios must be positive (width=%v, height=%v)", c.Heatmap.WidthRatio, c.Heatmap.HeightRatio)
	}

	switch c.Catalog.Source {
	case "http":
		if c.Catalog.URL == "" {
			return fmt.Errorf("catalog.url is required for http source")
		}
	case "local", "minio", "oss":
		if c.Catalog.Object == "" {
			return fmt.Errorf("catalog.object is required for %s source", c.Catalog.Source)
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	return nil
}
