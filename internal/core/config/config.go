package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

// LogFile 文件输出 + lumberjack 切割
type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string // mysql | postgres | memory
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Geo 匹配相关参数
type Geo struct {
	MaxServiceRadiusKm   float64 `mapstructure:"max_service_radius_km"`
	ProviderListLimit    int     `mapstructure:"provider_list_limit"`
	DirectoryCacheTTLSec int     `mapstructure:"directory_cache_ttl_sec"`
}

// Limits 中间件限流/保护参数
type Limits struct {
	RateRPS           float64 `mapstructure:"rate_rps"`
	RateBurst         int     `mapstructure:"rate_burst"`
	PerIPRPS          float64 `mapstructure:"per_ip_rps"`
	PerIPBurst        int     `mapstructure:"per_ip_burst"`
	MaxConcurrent     int64   `mapstructure:"max_concurrent"`
	MaxBodyBytes      int64   `mapstructure:"max_body_bytes"`
	RequestTimeoutSec int     `mapstructure:"request_timeout_sec"`
}

func (l Limits) RequestTimeout() time.Duration {
	return time.Duration(l.RequestTimeoutSec) * time.Second
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Redis  Redis  `mapstructure:"redis"`
	Geo    Geo    `mapstructure:"geo"`
	Limits Limits `mapstructure:"limits"`
}

// Load 读取失败直接退出进程
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}

func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "servicecircle")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)

	v.SetDefault("jwt.issuer", "servicecircle")
	v.SetDefault("jwt.accesstokenttlmin", 720)

	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("geo.max_service_radius_km", 200)
	v.SetDefault("geo.provider_list_limit", 5)
	v.SetDefault("geo.directory_cache_ttl_sec", 30)

	v.SetDefault("limits.rate_rps", 200)
	v.SetDefault("limits.rate_burst", 400)
	v.SetDefault("limits.per_ip_rps", 20)
	v.SetDefault("limits.per_ip_burst", 40)
	v.SetDefault("limits.max_concurrent", 300)
	v.SetDefault("limits.max_body_bytes", 1<<20)
	v.SetDefault("limits.request_timeout_sec", 10)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case "mysql", "postgres":
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("db.dsn is required for driver "+c.DB.Driver))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("db.driver %q not supported", c.DB.Driver))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Geo.MaxServiceRadiusKm <= 0 {
		errs = append(errs, errors.New("geo.max_service_radius_km must be positive"))
	}
	if c.Geo.ProviderListLimit <= 0 {
		errs = append(errs, errors.New("geo.provider_list_limit must be positive"))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis.enabled"))
	}
	return errors.Join(errs...)
}
