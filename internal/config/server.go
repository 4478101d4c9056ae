package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/joho/godotenv"
)

// Driver names
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
	DriverLocal    = "local"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// ServerConfig drives the reference backend
type ServerConfig struct {
	Port     string
	LogLevel string

	StorageDriver string // postgres | memory
	QueueDriver   string // redis | memory, also used for events and token revocation
	FileDriver    string // s3 | local

	Database DatabaseConfig

	RedisAddr string
	RedisPass string

	AWSRegion string
	AWSBucket string
	AWSPrefix string
	LocalDir  string

	JWTSecret      string
	AccessTokenTTL time.Duration

	OpenAIKey         string
	EmbeddingsEnabled bool

	AdminUsername string
	AdminPassword string

	Workers         int
	CORSOrigins     string
	RegistrationURL string
}

// LoadServer reads .env when present, then the process environment
func LoadServer() (*ServerConfig, error) {
	if err := godotenv.Load(); err != nil {
		logx.Debug("No .env file found, using environment variables")
	}

	cfg := &ServerConfig{
		Port:     getenv("PORT", "8000"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", DriverMemory)),
		QueueDriver:   strings.ToLower(getenv("QUEUE_DRIVER", DriverMemory)),
		FileDriver:    strings.ToLower(getenv("FILE_DRIVER", DriverLocal)),

		Database: DatabaseConfig{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getenv("DB_NAME", "talentdesk"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},

		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
		RedisPass: os.Getenv("REDIS_PASS"),

		AWSRegion: getenv("AWS_REGION", "us-east-1"),
		AWSBucket: os.Getenv("AWS_BUCKET"),
		AWSPrefix: getenv("AWS_PREFIX", "uploads"),
		LocalDir:  getenv("LOCAL_STORAGE_DIR", "./data/uploads"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		OpenAIKey: os.Getenv("OPENAI_API_KEY"),

		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		CORSOrigins:     getenv("CORS_ORIGINS", "*"),
		RegistrationURL: getenv("REGISTRATION_URL", "http://localhost:3000/register"),
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getInt("WORKERS", 3); err != nil {
		return nil, err
	}
	if cfg.EmbeddingsEnabled, err = getBool("EMBEDDINGS_ENABLED", cfg.OpenAIKey != ""); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServerConfig) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if err := oneOf("STORAGE_DRIVER", c.StorageDriver, DriverPostgres, DriverMemory); err != nil {
		return err
	}
	if err := oneOf("QUEUE_DRIVER", c.QueueDriver, DriverRedis, DriverMemory); err != nil {
		return err
	}
	if err := oneOf("FILE_DRIVER", c.FileDriver, DriverS3, DriverLocal); err != nil {
		return err
	}
	if c.FileDriver == DriverS3 && c.AWSBucket == "" {
		return fmt.Errorf("AWS_BUCKET is required when FILE_DRIVER=s3")
	}
	if c.EmbeddingsEnabled && c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when EMBEDDINGS_ENABLED=true")
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q, expected one of %s", key, value, strings.Join(allowed, ", "))
}
