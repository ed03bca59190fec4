package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL connection settings.
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

// MinIOConfig holds object storage settings.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// TokenConfig holds the signing secret and lifetime of request tokens.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// AppConfig is the centralized configuration for the admin server,
// populated from environment variables.
type AppConfig struct {
	Port string
	// Admin gates box registration; a non-admin process renders and
	// saves nothing.
	Admin    bool
	BoxDir   string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Token    TokenConfig
}

// Load reads configuration from environment variables. A .env file is
// auto-loaded by importing _ "github.com/joho/godotenv/autoload" in
// the binary; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:   getEnv("PORT", "8080"),
		Admin:  getEnvBool("METABOX_ADMIN", true),
		BoxDir: getEnv("METABOX_BOX_DIR", "boxes"),
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
			Bucket:    getEnv("MINIO_BUCKET", "metabox-media"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Token: TokenConfig{
			Secret: getEnv("METABOX_TOKEN_SECRET", ""),
			TTL:    time.Duration(getEnvInt("METABOX_TOKEN_TTL_MIN", 720)) * time.Minute,
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
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
