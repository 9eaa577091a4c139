package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server settings
	ServerPort   string        `yaml:"server_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	Debug        bool          `yaml:"debug"`
	Version      string        `yaml:"version"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Log           LogConfig           `yaml:"log"`
	CORS          CORSConfig          `yaml:"cors"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Database      DatabaseConfig      `yaml:"database"`
	Download      DownloadConfig      `yaml:"download"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Summary       SummaryConfig       `yaml:"summary"`
	Archive       ArchiveConfig       `yaml:"archive"`
}

type LogConfig struct {
	Dir    string `yaml:"dir"`
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	BurstSize         int  `yaml:"burst_size"`
}

type DatabaseConfig struct {
	Path               string        `yaml:"path"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnMaxLifetime    time.Duration `yaml:"conn_max_lifetime"`
}

type DownloadConfig struct {
	Dir           string        `yaml:"dir"`
	ExtractorPath string        `yaml:"extractor_path"`
	Format        string        `yaml:"format"`
	Extensions    []string      `yaml:"extensions"`
	RecentWindow  time.Duration `yaml:"recent_window"`
	AllowedHosts  []string      `yaml:"allowed_hosts"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

type TranscriptionConfig struct {
	// Hosted backend; disabled when APIKey is empty
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	// Local backend; disabled when the binary cannot be found
	LocalBinary string `yaml:"local_binary"`
	LocalModel  string `yaml:"local_model"`

	Timeout time.Duration `yaml:"timeout"`
}

type SummaryConfig struct {
	Provider string `yaml:"provider"`
	// Model falls back to the provider's default when empty
	Model        string `yaml:"model"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	// BaseURL overrides the OpenAI endpoint for summaries only
	BaseURL      string        `yaml:"base_url"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	MaxTokens    int           `yaml:"max_tokens"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ArchiveConfig points at an S3-compatible bucket (DigitalOcean Spaces, MinIO, S3).
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

func defaults() *Config {
	return &Config{
		ServerPort:      "8000",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Minute,
		IdleTimeout:     60 * time.Second,
		Version:         "1.0.0",
		RequestTimeout:  30 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		Log: LogConfig{
			Dir:    "./logs",
			Level:  "info",
			Format: "text",
		},
		CORS: CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{},
			MaxAge:         86400,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
		Database: DatabaseConfig{
			Path:               "./data/videos.db",
			MaxConnections:     10,
			MaxIdleConnections: 5,
			ConnMaxLifetime:    time.Hour,
		},
		Download: DownloadConfig{
			Dir:           "./downloads",
			ExtractorPath: "yt-dlp",
			Format:        "bestaudio[ext=m4a]/bestaudio[ext=mp3]/bestaudio",
			Extensions:    []string{".mp3", ".m4a", ".wav", ".aac", ".webm", ".opus"},
			RecentWindow:  600 * time.Second,
			AllowedHosts: []string{
				"youtube.com", "www.youtube.com", "m.youtube.com",
				"youtu.be", "www.youtu.be",
			},
			Timeout:       30 * time.Minute,
			MaxConcurrent: 4,
		},
		Transcription: TranscriptionConfig{
			Model:          "whisper-1",
			MaxUploadBytes: 25 * 1024 * 1024,
			LocalBinary:    "whisper",
			LocalModel:     "base",
			Timeout:        60 * time.Minute,
		},
		Summary: SummaryConfig{
			Provider:  "openai",
			MaxTokens: 2000,
			Timeout:   5 * time.Minute,
		},
		Archive: ArchiveConfig{
			Region: "us-east-1",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if os.Getenv("ENV") == "production" && os.Getenv("LOG_FORMAT") == "" {
		cfg.Log.Format = "json"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = getEnvAsDuration("IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.Debug = getEnvAsBool("DEBUG", cfg.Debug)
	cfg.Version = getEnv("VERSION", cfg.Version)
	cfg.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.Log.Dir = getEnv("LOG_DIR", cfg.Log.Dir)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.CORS.Enabled = getEnvAsBool("CORS_ENABLED", cfg.CORS.Enabled)
	cfg.CORS.AllowedOrigins = getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)
	cfg.CORS.AllowedMethods = getEnvAsStringSlice("CORS_ALLOWED_METHODS", cfg.CORS.AllowedMethods)
	cfg.CORS.AllowedHeaders = getEnvAsStringSlice("CORS_ALLOWED_HEADERS", cfg.CORS.AllowedHeaders)
	cfg.CORS.ExposedHeaders = getEnvAsStringSlice("CORS_EXPOSED_HEADERS", cfg.CORS.ExposedHeaders)
	cfg.CORS.AllowCredentials = getEnvAsBool("CORS_ALLOW_CREDENTIALS", cfg.CORS.AllowCredentials)
	cfg.CORS.MaxAge = getEnvAsInt("CORS_MAX_AGE", cfg.CORS.MaxAge)

	cfg.RateLimit.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestsPerMinute = getEnvAsInt("RATE_LIMIT_RPM", cfg.RateLimit.RequestsPerMinute)
	cfg.RateLimit.BurstSize = getEnvAsInt("RATE_LIMIT_BURST", cfg.RateLimit.BurstSize)

	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Database.MaxConnections = getEnvAsInt("DB_MAX_CONNECTIONS", cfg.Database.MaxConnections)
	cfg.Database.MaxIdleConnections = getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", cfg.Database.MaxIdleConnections)
	cfg.Database.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)

	cfg.Download.Dir = getEnv("DOWNLOAD_DIR", cfg.Download.Dir)
	cfg.Download.ExtractorPath = getEnv("YTDLP_PATH", cfg.Download.ExtractorPath)
	cfg.Download.Format = getEnv("DOWNLOAD_FORMAT", cfg.Download.Format)
	cfg.Download.Extensions = getEnvAsStringSlice("DOWNLOAD_EXTENSIONS", cfg.Download.Extensions)
	cfg.Download.RecentWindow = getEnvAsDuration("DOWNLOAD_RECENT_WINDOW", cfg.Download.RecentWindow)
	cfg.Download.AllowedHosts = getEnvAsStringSlice("ALLOWED_HOSTS", cfg.Download.AllowedHosts)
	cfg.Download.Timeout = getEnvAsDuration("DOWNLOAD_TIMEOUT", cfg.Download.Timeout)
	cfg.Download.MaxConcurrent = getEnvAsInt("DOWNLOAD_MAX_CONCURRENT", cfg.Download.MaxConcurrent)

	cfg.Transcription.APIKey = getEnv("OPENAI_API_KEY", cfg.Transcription.APIKey)
	cfg.Transcription.BaseURL = getEnv("OPENAI_BASE_URL", cfg.Transcription.BaseURL)
	cfg.Transcription.Model = getEnv("TRANSCRIPTION_MODEL", cfg.Transcription.Model)
	cfg.Transcription.MaxUploadBytes = getEnvAsInt64("TRANSCRIPTION_MAX_UPLOAD_BYTES", cfg.Transcription.MaxUploadBytes)
	cfg.Transcription.LocalBinary = getEnv("WHISPER_PATH", cfg.Transcription.LocalBinary)
	cfg.Transcription.LocalModel = getEnv("WHISPER_MODEL", cfg.Transcription.LocalModel)
	cfg.Transcription.Timeout = getEnvAsDuration("TRANSCRIPTION_TIMEOUT", cfg.Transcription.Timeout)

	cfg.Summary.Provider = strings.ToLower(getEnv("SUMMARY_PROVIDER", cfg.Summary.Provider))
	cfg.Summary.Model = getEnv("SUMMARY_MODEL", cfg.Summary.Model)
	cfg.Summary.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.Summary.OpenAIAPIKey)
	cfg.Summary.BaseURL = getEnv("SUMMARY_BASE_URL", cfg.Summary.BaseURL)
	cfg.Summary.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.Summary.GeminiAPIKey)
	cfg.Summary.MaxTokens = getEnvAsInt("SUMMARY_MAX_TOKENS", cfg.Summary.MaxTokens)
	cfg.Summary.Timeout = getEnvAsDuration("SUMMARY_TIMEOUT", cfg.Summary.Timeout)

	cfg.Archive.Endpoint = getEnv("SPACES_ENDPOINT", cfg.Archive.Endpoint)
	cfg.Archive.Region = getEnv("SPACES_REGION", cfg.Archive.Region)
	cfg.Archive.Bucket = getEnv("SPACES_BUCKET", cfg.Archive.Bucket)
	cfg.Archive.AccessKey = getEnv("SPACES_ACCESS_KEY", cfg.Archive.AccessKey)
	cfg.Archive.SecretKey = getEnv("SPACES_SECRET_KEY", cfg.Archive.SecretKey)
}

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}
	if err := validateTimeouts(c); err != nil {
		return err
	}
	return validateServices(c)
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.Log.Dir, "log directory"},
		{c.Download.Dir, "download directory"},
		{filepath.Dir(c.Database.Path), "database directory"},
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}
	if c.Download.Timeout <= 0 {
		return errors.New("download timeout must be positive")
	}
	if c.Download.RecentWindow <= 0 {
		return errors.New("download recent window must be positive")
	}
	return nil
}

func validateServices(c *Config) error {
	if c.ServerPort == "" {
		return errors.New("server port is required")
	}
	if len(c.Download.AllowedHosts) == 0 {
		return errors.New("at least one allowed host is required")
	}
	if len(c.Download.Extensions) == 0 {
		return errors.New("at least one audio extension is required")
	}
	if c.Download.MaxConcurrent <= 0 {
		return errors.New("download concurrency must be positive")
	}
	if c.Transcription.MaxUploadBytes <= 0 {
		return errors.New("transcription upload limit must be positive")
	}
	switch c.Summary.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown summary provider %q", c.Summary.Provider)
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		warnInvalid(key, value, defaultValue, "integer")
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		warnInvalid(key, value, defaultValue, "integer")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		warnInvalid(key, value, defaultValue, "boolean")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		warnInvalid(key, value, defaultValue, "duration")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	return defaultValue
}

func warnInvalid(key, value string, defaultValue interface{}, kind string) {
	logrus.WithFields(logrus.Fields{
		"key":          key,
		"value":        value,
		"defaultValue": defaultValue,
	}).Warnf("Invalid %s, using default", kind)
}
