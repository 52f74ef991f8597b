package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all configurable server parameters.
type Config struct {
	Port        int    `json:"port"`
	DatabaseURL string `json:"database_url"`

	// AuthSecret signs the session cookie (HS256). Required for logins to work.
	AuthSecret string `json:"auth_secret"`
	// AuthJWKSURL optionally accepts tokens issued by an external identity provider.
	AuthJWKSURL string `json:"auth_jwks_url"`
	// AdminPassword is the shared password exchanged for a session cookie.
	AdminPassword   string `json:"admin_password"`
	SessionTTLHours int    `json:"session_ttl_hours"`
	CookieName      string `json:"cookie_name"`
	CookieSecure    bool   `json:"cookie_secure"`

	AllowedOrigin string `json:"allowed_origin"`

	// SetsToWin is the number of sets the winning side must reach.
	SetsToWin int `json:"sets_to_win"`

	LogLevel string `json:"log_level"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Port:            8080,
		SessionTTLHours: 24 * 30,
		CookieName:      "strikers_session",
		AllowedOrigin:   "*",
		SetsToWin:       3,
		LogLevel:        "info",
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	overrideInt(&cfg.Port, "PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthSecret, "AUTH_SECRET")
	overrideString(&cfg.AuthJWKSURL, "AUTH_JWKS_URL")
	overrideString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	overrideInt(&cfg.SessionTTLHours, "SESSION_TTL_HOURS")
	overrideString(&cfg.CookieName, "COOKIE_NAME")
	overrideBool(&cfg.CookieSecure, "COOKIE_SECURE")
	overrideString(&cfg.AllowedOrigin, "ALLOWED_ORIGIN")
	overrideInt(&cfg.SetsToWin, "SETS_TO_WIN")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")

	if cfg.SetsToWin < 1 {
		log.Printf("Warning: SETS_TO_WIN must be positive, using 3")
		cfg.SetsToWin = 3
	}
	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func overrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			*field = b
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}
