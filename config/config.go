package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	App      AppConfig
	Firebase FirebaseConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Store    StoreConfig
	Blob     BlobConfig
	Auth     AuthConfig
	Sweep    SweepConfig
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	CORSOrigins    []string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

// FirebaseConfig is shared by the Firestore store, the Storage uploader and
// ID-token auth. An empty CredentialsPath falls back to application default
// credentials.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsPath string
	StorageBucket   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig takes either a full DSN or its parts. MaxConns and
// MinConns tune the pgx pool.
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// ConnString returns DSN, or one built from the parts when only Host is set.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" || d.Host == "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type StoreConfig struct {
	Driver string // firestore | redis | postgres | memory
}

type BlobConfig struct {
	Driver         string // firebase | s3 | memory
	MaxUploadSize  string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3PathStyle    bool
	PublicBaseURL  string
	maxUploadBytes int64
}

// MaxUploadBytes returns MaxUploadSize parsed during Validate.
func (b BlobConfig) MaxUploadBytes() int64 {
	return b.maxUploadBytes
}

type AuthConfig struct {
	Mode          string // placeholder | firebase | none
	AdminEmail    string
	AdminPassword string
	LoginPerMin   int
}

type SweepConfig struct {
	Enabled  bool
	Schedule string
	Grace    time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
			CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			StorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "content_admin"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "firestore"),
		},
		Blob: BlobConfig{
			Driver:        getEnv("BLOB_DRIVER", "firebase"),
			MaxUploadSize: getEnv("MAX_UPLOAD_SIZE", "10MB"),
			S3Bucket:      getEnv("BLOB_S3_BUCKET", ""),
			S3Region:      getEnv("BLOB_S3_REGION", "us-east-1"),
			S3Endpoint:    getEnv("BLOB_S3_ENDPOINT", ""),
			S3PathStyle:   getEnvAsBool("BLOB_S3_PATH_STYLE", false),
			PublicBaseURL: getEnv("BLOB_PUBLIC_BASE_URL", ""),
		},
		Auth: AuthConfig{
			Mode:          getEnv("AUTH_MODE", "placeholder"),
			AdminEmail:    getEnv("ADMIN_EMAIL", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
			LoginPerMin:   getEnvAsInt("LOGIN_RATE_PER_MIN", 10),
		},
		Sweep: SweepConfig{
			Enabled:  getEnvAsBool("SWEEP_ENABLED", true),
			Schedule: getEnv("SWEEP_SCHEDULE", "0 0 3 * * *"),
			Grace:    getEnvAsDuration("SWEEP_GRACE", time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Driver {
	case "firestore", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case "postgres":
		if c.Database.ConnString() == "" {
			return fmt.Errorf("DB_DSN or DB_HOST is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Blob.Driver {
	case "firebase":
		if c.Firebase.StorageBucket == "" {
			return fmt.Errorf("FIREBASE_STORAGE_BUCKET is required for the firebase blob driver")
		}
	case "s3":
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("BLOB_S3_BUCKET is required for the s3 blob driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown BLOB_DRIVER %q", c.Blob.Driver)
	}

	size, err := units.FromHumanSize(c.Blob.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	c.Blob.maxUploadBytes = size

	switch c.Auth.Mode {
	case "placeholder":
		if c.Auth.AdminEmail == "" || c.Auth.AdminPassword == "" {
			return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required in placeholder auth mode")
		}
	case "firebase", "none":
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
