package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the top-level configuration structure
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Mongo       MongoConfig       `mapstructure:"mongo"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Submissions SubmissionsConfig `mapstructure:"submissions"`
	Feed        FeedConfig        `mapstructure:"feed"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// TrustedProxies lists proxy addresses or CIDR ranges whose X-Forwarded-For is believed
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig holds Redis connection settings. Addr may be host:port or a redis:// URL.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds owner credentials and token settings.
// Users maps usernames to bcrypt hashes; Username/Password is a single plain-text owner for development.
type AuthConfig struct {
	JWTSecret string            `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration     `mapstructure:"token_ttl"`
	Username  string            `mapstructure:"username"`
	Password  string            `mapstructure:"password"`
	Users     map[string]string `mapstructure:"users"`
}

// CORSConfig holds the values of the CORS response headers
type CORSConfig struct {
	AllowedOrigins string `mapstructure:"allowed_origins"`
	AllowedMethods string `mapstructure:"allowed_methods"`
	AllowedHeaders string `mapstructure:"allowed_headers"`
}

// LoggingConfig holds settings for the logger
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// CacheConfig holds cache sizes and lifetimes
type CacheConfig struct {
	FormTTL       time.Duration `mapstructure:"form_ttl"`
	LocalFormSize int           `mapstructure:"local_form_size"`
	LocalFormTTL  time.Duration `mapstructure:"local_form_ttl"`
	AnalyticsTTL  time.Duration `mapstructure:"analytics_ttl"`
}

// SubmissionsConfig limits public submissions per client. A zero RateLimit disables limiting.
type SubmissionsConfig struct {
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

// FeedConfig configures live submission subscriptions
type FeedConfig struct {
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	SnapshotLimit int64         `mapstructure:"snapshot_limit"`
}

// setDefaults sets the default values for the configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "createform")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.users", map[string]string{})

	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("cors.allowed_methods", "GET, POST, PUT, DELETE, OPTIONS")
	v.SetDefault("cors.allowed_headers", "Content-Type, Authorization")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", true)

	v.SetDefault("cache.form_ttl", 10*time.Minute)
	v.SetDefault("cache.local_form_size", 512)
	v.SetDefault("cache.local_form_ttl", 30*time.Second)
	v.SetDefault("cache.analytics_ttl", 5*time.Minute)

	v.SetDefault("submissions.rate_limit", 30)
	v.SetDefault("submissions.rate_window", time.Minute)

	v.SetDefault("feed.poll_interval", 3*time.Second)
	v.SetDefault("feed.snapshot_limit", 50)
}

// bindLegacyEnv keeps the plain variable names used by older deployments working
func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string]string{
		"mongo.uri":            "MONGO_URI",
		"redis.addr":           "REDIS_URI",
		"server.port":          "PORT",
		"auth.jwt_secret":      "JWT_SECRET",
		"auth.username":        "HOST_USERNAME",
		"auth.password":        "HOST_PASSWORD",
		"cors.allowed_origins": "CORS_ALLOWED_ORIGINS",
		"cors.allowed_methods": "CORS_ALLOWED_METHODS",
		"cors.allowed_headers": "CORS_ALLOWED_HEADERS",
	}
	for key, env := range legacy {
		prefixed := "CREATEFORM_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}

// Load reads defaults, the optional config file and the environment.
// An empty configFile searches ./config/config.yaml; a missing file is not an error.
func Load(configFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CREATEFORM") // e.g. CREATEFORM_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("config: server.port is required")
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return errors.New("config: mongo.uri and mongo.database are required")
	}
	if c.Redis.Addr == "" {
		return errors.New("config: redis.addr is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret is required")
	}
	if c.Submissions.RateLimit > 0 && c.Submissions.RateWindow <= 0 {
		return errors.New("config: submissions.rate_window must be positive when rate_limit is set")
	}
	if c.Feed.PollInterval <= 0 {
		return errors.New("config: feed.poll_interval must be positive")
	}
	return nil
}

// Options converts the Redis settings into client options
func (c RedisConfig) Options() (*redis.Options, error) {
	if strings.Contains(c.Addr, "://") {
		opts, err := redis.ParseURL(c.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if c.Password != "" {
			opts.Password = c.Password
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}, nil
}

// Watch reloads the configuration when the file changes and passes the new value to apply.
// Invalid edits are logged and ignored.
func Watch(v *viper.Viper, log *zap.Logger, apply func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		cfg, err := decode(v)
		if err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		apply(cfg)
	})
	v.WatchConfig()
}
