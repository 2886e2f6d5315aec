package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"actas/internal/extract"
	"actas/internal/pipeline"
)

// DatabaseConfig holds PostgreSQL settings for the batch audit trail.
// The audit trail is disabled when Host is empty.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a database host was configured.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

// MinIOConfig holds object storage settings for archiving raw uploads.
// Archiving is disabled when Endpoint is empty.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object storage endpoint was configured.
func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

// SessionConfig controls the in-memory record tables.
type SessionConfig struct {
	Cookie        string
	TTL           time.Duration
	SweepInterval time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string
	Timezone       string
	MaxUploadBytes int
	Database       DatabaseConfig
	MinIO          MinIOConfig
	Session        SessionConfig
	Pipeline       pipeline.Config
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"),
		Timezone:       getEnv("TZ", "UTC"),
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", 64<<20),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Session: SessionConfig{
			Cookie:        getEnv("SESSION_COOKIE", "actas_session"),
			TTL:           getEnvDuration("SESSION_TTL", 12*time.Hour),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		},
		Pipeline: loadPipeline(),
	}
}

func loadPipeline() pipeline.Config {
	def := pipeline.DefaultConfig()
	keywords := def.Keywords
	if v := getEnv("PIPELINE_KEYWORDS", ""); v != "" {
		keywords = pipeline.ParseKeywords(v)
	}
	return pipeline.Config{
		Pages:          pipeline.PageSelection(strings.ToLower(getEnv("PIPELINE_PAGES", string(def.Pages)))),
		DPI:            getEnvFloat("PIPELINE_DPI", def.DPI),
		InstitutionDPI: getEnvFloat("PIPELINE_INSTITUTION_DPI", def.InstitutionDPI),
		CropFraction:   getEnvFloat("PIPELINE_CROP_FRACTION", def.CropFraction),
		Upscale:        getEnvFloat("PIPELINE_UPSCALE", def.Upscale),
		Language:       getEnv("PIPELINE_OCR_LANG", def.Language),
		Keywords:       keywords,
		IDDelimiters:   getEnvRaw("PIPELINE_ID_DELIMITERS", extract.DelimitersSpaceOnly),
		Backend:        pipeline.Backend(strings.ToLower(getEnv("PIPELINE_BACKEND", string(def.Backend)))),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getEnvRaw keeps surrounding whitespace, which is meaningful for delimiter sets.
func getEnvRaw(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}
