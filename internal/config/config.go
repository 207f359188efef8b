package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
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

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// HuggingFaceConfig holds settings for the optional model-assisted content
// analysis. When Token is empty the classifier never calls out and relies on
// its deterministic fallback.
type HuggingFaceConfig struct {
	APIURL     string
	Token      string
	Model      string
	TimeoutSec int
}

// PolicyConfig holds the security policy thresholds and toggles evaluated
// by the policy engine.
type PolicyConfig struct {
	MaxFileSize        int64
	QuarantineHighRisk bool
	BlockPII           bool
	BlockCredentials   bool
	MaxRiskFlags       int
}

// PipelineConfig sizes the background processing worker pool.
type PipelineConfig struct {
	Workers   int
	QueueSize int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	HuggingFace HuggingFaceConfig
	Policy      PolicyConfig
	Pipeline    PipelineConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
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
		HuggingFace: HuggingFaceConfig{
			APIURL:     getEnv("HUGGINGFACE_API_URL", "https://api-inference.huggingface.co/models"),
			Token:      getEnv("HUGGINGFACE_API_TOKEN", ""),
			Model:      getEnv("HUGGINGFACE_MODEL", "microsoft/DialoGPT-medium"),
			TimeoutSec: getEnvInt("HUGGINGFACE_TIMEOUT_SEC", 30),
		},
		Policy: PolicyConfig{
			MaxFileSize:        getEnvInt64("POLICY_MAX_FILE_SIZE", 52428800), // 50 MiB
			QuarantineHighRisk: getEnvBool("POLICY_QUARANTINE_HIGH_RISK", true),
			BlockPII:           getEnvBool("POLICY_BLOCK_PII", true),
			BlockCredentials:   getEnvBool("POLICY_BLOCK_CREDENTIALS", true),
			MaxRiskFlags:       getEnvInt("POLICY_MAX_RISK_FLAGS", 3),
		},
		Pipeline: PipelineConfig{
			Workers:   getEnvInt("PIPELINE_WORKERS", 4),
			QueueSize: getEnvInt("PIPELINE_QUEUE_SIZE", 64),
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

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
