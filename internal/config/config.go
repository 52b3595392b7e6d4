package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Environment string `json:"environment"`
	Server      struct {
		Host    string   `json:"host"`
		Port    int      `json:"port"`
		Origins []string `json:"origins"`
	} `json:"server"`
	MongoDB struct {
		URI      string `json:"uri"`
		Database string `json:"database"`
	} `json:"mongodb"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	OAuth struct {
		ClientID    string `json:"clientId"`
		AuthURL     string `json:"authUrl"`
		TokenURL    string `json:"tokenUrl"`
		AccountURL  string `json:"accountUrl"`
		RedirectURL string `json:"redirectUrl"`
		StateSecret string `json:"stateSecret"`
	} `json:"oauth"`
	Session struct {
		SameSite string `json:"sameSite"`
		Secure   bool   `json:"secure"`
		HttpOnly bool   `json:"httpOnly"`
	} `json:"session"`
	Moderator string `json:"moderator"`
	Frontend  struct {
		URL string `json:"url"`
	} `json:"frontend"`
	// Ai maps variant names to selection presets for the built-in
	// opponent.
	Ai struct {
		Pockets map[string][]string `json:"pockets"`
	} `json:"ai"`
}

func Load(env string) (*Config, error) {
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		// Default to configs directory relative to working directory
		configDir = "configs"
	}

	filename := fmt.Sprintf("config.%s.json", env)
	configPath := filepath.Join(configDir, filename)

	cfg := defaults()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Environment = env
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Replace environment variables in the config
	configStr := expandEnvVars(string(data))

	if err := json.Unmarshal([]byte(configStr), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Environment = env
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Origins = []string{"http://localhost:3000"}
	cfg.MongoDB.URI = "mongodb://localhost:27017"
	cfg.MongoDB.Database = "shuuro"
	cfg.Redis.Addr = "localhost:6379"
	cfg.OAuth.AuthURL = "https://lichess.org/oauth"
	cfg.OAuth.TokenURL = "https://lichess.org/api/token"
	cfg.OAuth.AccountURL = "https://lichess.org/api/account"
	cfg.OAuth.RedirectURL = "http://localhost:8080/callback"
	cfg.Session.SameSite = "lax"
	cfg.Session.HttpOnly = true
	cfg.Frontend.URL = "http://localhost:3000"
	return cfg
}

// expandEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} with
// environment variable values
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if name, def, ok := strings.Cut(key, ":-"); ok {
			if v := os.Getenv(name); v != "" {
				return v
			}
			return def
		}
		return os.Getenv(key)
	})
}

func GetEnv() string {
	env := os.Getenv("SHUURO_ENV")
	if env == "" {
		return "development"
	}
	return env
}
