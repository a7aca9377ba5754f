package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"Server"`
	Database  DatabaseConfig  `mapstructure:"Database"`
	Auth      AuthConfig      `mapstructure:"Auth"`
	Storage   StorageConfig   `mapstructure:"Storage"`
	Share     ShareConfig     `mapstructure:"Share"`
	Export    ExportConfig    `mapstructure:"Export"`
	Session   SessionConfig   `mapstructure:"Session"`
	RateLimit RateLimitConfig `mapstructure:"RateLimit"`
}

type ServerConfig struct {
	Port    string `mapstructure:"Port"`
	BaseURL string `mapstructure:"BaseURL"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"Host"`
	Port     string `mapstructure:"Port"`
	User     string `mapstructure:"User"`
	Password string `mapstructure:"Password"`
	Name     string `mapstructure:"Name"`
	SSLMode  string `mapstructure:"SSLMode"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"JWTSecret"`
}

type StorageConfig struct {
	// Backend is "local" or "s3".
	Backend         string `mapstructure:"Backend"`
	LocalDir        string `mapstructure:"LocalDir"`
	S3Endpoint      string `mapstructure:"S3Endpoint"`
	S3Region        string `mapstructure:"S3Region"`
	S3Bucket        string `mapstructure:"S3Bucket"`
	AccessKeyID     string `mapstructure:"AccessKeyID"`
	SecretAccessKey string `mapstructure:"SecretAccessKey"`
}

type ShareConfig struct {
	// MaxExpiry bounds how far out a share expiry may be set.
	MaxExpiry time.Duration `mapstructure:"MaxExpiry"`
}

type ExportConfig struct {
	RenderTimeout time.Duration `mapstructure:"RenderTimeout"`
	SweepInterval time.Duration `mapstructure:"SweepInterval"`
}

type SessionConfig struct {
	Secret string `mapstructure:"Secret"`
}

type RateLimitConfig struct {
	ShareCreateLimit  int           `mapstructure:"ShareCreateLimit"`
	ShareCreateWindow time.Duration `mapstructure:"ShareCreateWindow"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	v.BindEnv("Database.Host", "DATABASE_HOST")
	v.BindEnv("Database.Port", "DATABASE_PORT")
	v.BindEnv("Database.User", "DATABASE_USER")
	v.BindEnv("Database.Password", "DATABASE_PASSWORD")
	v.BindEnv("Database.Name", "DATABASE_NAME")
	v.BindEnv("Database.SSLMode", "DATABASE_SSLMODE")
	v.BindEnv("Server.Port", "HTTP_PORT")
	v.BindEnv("Server.BaseURL", "BASE_URL")
	v.BindEnv("Auth.JWTSecret", "JWT_SECRET")
	v.BindEnv("Session.Secret", "SESSION_SECRET")
	v.BindEnv("Storage.Backend", "STORAGE_BACKEND")
	v.BindEnv("Storage.LocalDir", "STORAGE_LOCAL_DIR")
	v.BindEnv("Storage.S3Endpoint", "S3_ENDPOINT")
	v.BindEnv("Storage.S3Region", "S3_REGION")
	v.BindEnv("Storage.S3Bucket", "S3_BUCKET")
	v.BindEnv("Storage.AccessKeyID", "S3_ACCESS_KEY_ID")
	v.BindEnv("Storage.SecretAccessKey", "S3_SECRET_ACCESS_KEY")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Database.Host == "" ||
		cfg.Database.Port == "" ||
		cfg.Database.User == "" ||
		cfg.Database.Name == "" {
		return nil, fmt.Errorf("database configuration is incomplete: host=%s, port=%s, user=%s, name=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Name)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("Auth.JWTSecret is required")
	}
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("Session.Secret is required")
	}
	if cfg.Storage.Backend == "s3" {
		if cfg.Storage.S3Bucket == "" || cfg.Storage.AccessKeyID == "" || cfg.Storage.SecretAccessKey == "" {
			return nil, fmt.Errorf("S3 storage requires bucket, access key id and secret access key")
		}
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:" + cfg.Server.Port
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./data/exports"
	}
	if cfg.Share.MaxExpiry == 0 {
		cfg.Share.MaxExpiry = 365 * 24 * time.Hour
	}
	if cfg.Export.RenderTimeout == 0 {
		cfg.Export.RenderTimeout = 30 * time.Second
	}
	if cfg.Export.SweepInterval == 0 {
		cfg.Export.SweepInterval = time.Hour
	}
	if cfg.RateLimit.ShareCreateLimit == 0 {
		cfg.RateLimit.ShareCreateLimit = 10
	}
	if cfg.RateLimit.ShareCreateWindow == 0 {
		cfg.RateLimit.ShareCreateWindow = time.Hour
	}
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}
