package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config top-level application configuration, loaded from YAML with
// environment variable overrides for secrets.
type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	CORS     CORSConfig     `yaml:"cors"`
	Upload   UploadConfig   `yaml:"upload"`
	Videos   VideosConfig   `yaml:"videos"`
	Web      WebConfig      `yaml:"web"`
}

// ServerConfig API server settings
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig MySQL settings
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// GetDSN builds the MySQL DSN
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig session token settings
type JWTConfig struct {
	Secret    string        `yaml:"secret"`
	ExpiresIn time.Duration `yaml:"expires_in"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// UploadConfig image upload settings
type UploadConfig struct {
	Dir        string `yaml:"dir"`
	MaxSizeMB  int64  `yaml:"max_size_mb"`
	PublicPath string `yaml:"public_path"`
}

// VideosConfig video feed settings
type VideosConfig struct {
	// FeedURL is the upstream JSON feed the pull job merges from.
	FeedURL string `yaml:"feed_url"`
	// LegacyFile is the tiktok_videos.json file imported by update-database.
	LegacyFile string `yaml:"legacy_file"`
	// ChannelURL is the public channel the fallback cards link to.
	ChannelURL string `yaml:"channel_url"`
	// ChannelHandle appears on fallback cards.
	ChannelHandle string `yaml:"channel_handle"`
}

// WebConfig frontend server settings
type WebConfig struct {
	Port     int    `yaml:"port"`
	APIURL   string `yaml:"api_url"`
	Hostname string `yaml:"hostname"`
	// EmbedScriptURL is the third-party embed script the watch page loads.
	EmbedScriptURL string `yaml:"embed_script_url"`
}

// Load reads and parses a YAML config file, then applies env overrides
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Env:    "local",
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            3306,
			User:            "mged",
			Name:            "mged",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379, PoolSize: 10},
		JWT:   JWTConfig{ExpiresIn: 24 * time.Hour},
		Upload: UploadConfig{
			Dir:        "uploads",
			MaxSizeMB:  16,
			PublicPath: "/uploads",
		},
		Videos: VideosConfig{
			LegacyFile:    "tiktok_videos.json",
			ChannelURL:    "https://www.tiktok.com/@minigolfeveryday",
			ChannelHandle: "@minigolfeveryday",
		},
		Web: WebConfig{
			Port:           8081,
			APIURL:         "http://localhost:8080",
			EmbedScriptURL: "https://www.tiktok.com/embed.js",
		},
	}
}

// LoadDotEnv reads .env.local then .env from the working directory.
// godotenv never overwrites variables that are already set, so real
// environment beats .env.local beats .env. The returned list names the
// files that existed.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
		loaded = append(loaded, f)
	}
	return loaded
}

// Secrets never live in the YAML file in production.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
}

// IsDevelopment reports whether the app runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "local" || c.Env == "dev" || c.Env == "development"
}
