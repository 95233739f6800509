package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds process settings read from the environment.
type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string

	NATS NATSConfig

	WSSendBuffer      int
	WSMaxMessageBytes int64
}

// NATSConfig locates the match feed stream. An empty URL disables the feed.
type NATSConfig struct {
	URL           string
	Stream        string
	SubjectPrefix string
}

// Load reads an optional .env file and then the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	cfg := NewConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewConfigFromEnv reads settings from the environment, with defaults.
func NewConfigFromEnv() Config {
	return Config{
		Port:           getEnv("PORT", "3000"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "console")),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			Stream:        getEnv("NATS_STREAM", "PONG_MATCHES"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "pong.matches"),
		},
		WSSendBuffer:      getEnvAsInt("WS_SEND_BUFFER", 256),
		WSMaxMessageBytes: int64(getEnvAsInt("WS_MAX_MESSAGE_BYTES", 1024)),
	}
}

func (c Config) Validate() error {
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		return fmt.Errorf("%w: PORT %q: %v", ErrInvalid, c.Port, err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalid, err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("%w: LOG_FORMAT must be console or json, got %q", ErrInvalid, c.LogFormat)
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("%w: ALLOWED_ORIGINS is empty", ErrInvalid)
	}
	if c.WSSendBuffer <= 0 || c.WSMaxMessageBytes <= 0 {
		return fmt.Errorf("%w: WebSocket buffer sizes must be positive", ErrInvalid)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Level is the parsed log level. Validate has already rejected bad values.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c NATSConfig) Enabled() bool {
	return c.URL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
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
