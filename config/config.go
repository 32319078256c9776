// Package config loads the service configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Agent    AgentConfig    `yaml:"agent"`
	Matching MatchingConfig `yaml:"matching"`
	Idle     IdleConfig     `yaml:"idle"`
	Auth     AuthConfig     `yaml:"auth"`
	Social   SocialConfig   `yaml:"social"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	// RequestTimeout cancels handler work before WriteTimeout cuts the
	// connection, so slow LLM calls end in a 504 instead of a dropped response.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	CORSOrigins    []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Host         string `yaml:"host"`
	Name         string `yaml:"name"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// DSN returns the go-sql-driver/mysql data source name. clientFoundRows makes
// conditional UPDATEs report matched rather than changed rows.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@%s/%s?parseTime=true&loc=Local&clientFoundRows=true", d.User, d.Password, d.Host, d.Name)
}

type OpenAIConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

type AgentConfig struct {
	MaxTurns             int     `yaml:"max_turns"`
	DefaultMinRateRatio  float64 `yaml:"default_min_rate_ratio"`
	ReviewRepliesDefault bool    `yaml:"review_replies_default"`
}

type MatchingConfig struct {
	CandidatePool       int `yaml:"candidate_pool"`
	RerankLimit         int `yaml:"rerank_limit"`
	TopK                int `yaml:"top_k"`
	OutreachConcurrency int `yaml:"outreach_concurrency"`
}

type IdleConfig struct {
	Schedule  string        `yaml:"schedule"`
	Threshold time.Duration `yaml:"threshold"`
}

type AuthConfig struct {
	JWTSecret   string                   `yaml:"jwt_secret"`
	TokenExpiry time.Duration            `yaml:"token_expiry"`
	StateTTL    time.Duration            `yaml:"state_ttl"`
	Providers   map[string]OAuthProvider `yaml:"providers"`
}

type OAuthProvider struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	UserInfoURL  string   `yaml:"user_info_url"`
	Scopes       []string `yaml:"scopes"`
}

type SocialConfig struct {
	Instagram SocialPlatformConfig `yaml:"instagram"`
	YouTube   SocialPlatformConfig `yaml:"youtube"`
	CacheTTL  time.Duration        `yaml:"cache_ttl"`
	CacheSize int                  `yaml:"cache_size"`
}

type SocialPlatformConfig struct {
	OAuthProvider `yaml:",inline"`
	APIBaseURL    string `yaml:"api_base_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   5 * time.Minute,
			RequestTimeout: 4 * time.Minute,
			CORSOrigins:    []string{"*"},
		},
		Database: DatabaseConfig{
			User:         "user",
			Password:     "password",
			Host:         "tcp(127.0.0.1:3306)",
			Name:         "collab_db",
			MaxOpenConns: 10,
		},
		OpenAI: OpenAIConfig{
			Model:      "gpt-4o-mini",
			Timeout:    60 * time.Second,
			MaxRetries: 2,
		},
		Agent: AgentConfig{
			MaxTurns:            6,
			DefaultMinRateRatio: 0.8,
		},
		Matching: MatchingConfig{
			CandidatePool:       50,
			RerankLimit:         20,
			TopK:                10,
			OutreachConcurrency: 4,
		},
		Idle: IdleConfig{
			Schedule:  "@every 15m",
			Threshold: 72 * time.Hour,
		},
		Auth: AuthConfig{
			TokenExpiry: 7 * 24 * time.Hour,
			StateTTL:    10 * time.Minute,
		},
		Social: SocialConfig{
			Instagram: SocialPlatformConfig{APIBaseURL: "https://graph.instagram.com"},
			YouTube:   SocialPlatformConfig{APIBaseURL: "https://www.googleapis.com/youtube/v3"},
			CacheTTL:  30 * time.Minute,
			CacheSize: 1024,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads path on top of Default, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Database.User, "MYSQL_USER")
	set(&c.Database.Password, "MYSQL_PWD")
	set(&c.Database.Host, "MYSQL_HOST")
	set(&c.Database.Name, "MYSQL_DATABASE")
	set(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&c.Auth.JWTSecret, "JWT_SECRET")
	set(&c.Logging.Level, "LOG_LEVEL")
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 || c.Server.WriteTimeout <= c.Server.RequestTimeout {
		return errors.New("server.write_timeout must exceed server.request_timeout > 0")
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return errors.New("database host and name are required")
	}
	if c.Agent.MaxTurns < 1 {
		return fmt.Errorf("agent.max_turns must be positive, got %d", c.Agent.MaxTurns)
	}
	if c.Agent.DefaultMinRateRatio < 0 || c.Agent.DefaultMinRateRatio > 1 {
		return fmt.Errorf("agent.default_min_rate_ratio must be within [0,1], got %v", c.Agent.DefaultMinRateRatio)
	}
	if c.Matching.TopK < 1 || c.Matching.CandidatePool < c.Matching.TopK {
		return errors.New("matching.candidate_pool must be >= matching.top_k >= 1")
	}
	if c.Matching.OutreachConcurrency < 1 {
		c.Matching.OutreachConcurrency = 1
	}
	if c.Idle.Threshold <= 0 {
		return errors.New("idle.threshold must be positive")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	return nil
}
