package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Password modes accepted by PASSWORD_MODE.
const (
	PasswordPlain  = "plain"
	PasswordBcrypt = "bcrypt"
)

type Config struct {
	ServerPort string

	StorageDriver    string
	StoragePath      string
	StorageKeyPrefix string

	RedisURL        string
	EventStreamMax  int64
	ActivityWorkers int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret         string
	AccessTokenMaxAge int

	PasswordMode  string
	AvatarBaseURL string

	MaxImageSizeBytes int64
	ImageMaxWidth     int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	LogLevel       string
	LogDevelopment bool
}

func LoadConfig() (*Config, error) {
	return LoadConfigFrom("")
}

// LoadConfigFrom reads envFile (or .env when empty) into the environment before
// building the config. A missing file is not an error.
func LoadConfigFrom(envFile string) (*Config, error) {
	var err error
	if envFile != "" {
		err = godotenv.Load(envFile)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 86400
	}

	maxImageSize, err := strconv.ParseInt(os.Getenv("MAX_IMAGE_SIZE_BYTES"), 10, 64)
	if err != nil || maxImageSize <= 0 {
		maxImageSize = 5 * 1024 * 1024
	}

	imageMaxWidth, err := strconv.Atoi(os.Getenv("IMAGE_MAX_WIDTH"))
	if err != nil || imageMaxWidth <= 0 {
		imageMaxWidth = 1920
	}

	eventStreamMax, err := strconv.ParseInt(os.Getenv("EVENT_STREAM_MAXLEN"), 10, 64)
	if err != nil || eventStreamMax < 0 {
		eventStreamMax = 10000
	}

	activityWorkers, err := strconv.Atoi(os.Getenv("ACTIVITY_WORKERS"))
	if err != nil || activityWorkers < 0 {
		activityWorkers = 2
	}

	logDevelopment, _ := strconv.ParseBool(os.Getenv("LOG_DEVELOPMENT"))

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", StorageFile)),
		StoragePath:      getEnv("STORAGE_PATH", "./data"),
		StorageKeyPrefix: os.Getenv("STORAGE_KEY_PREFIX"),

		RedisURL:        os.Getenv("REDIS_URL"),
		EventStreamMax:  eventStreamMax,
		ActivityWorkers: activityWorkers,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenMaxAge: accessTokenMaxAge,

		PasswordMode:  strings.ToLower(getEnv("PASSWORD_MODE", PasswordPlain)),
		AvatarBaseURL: os.Getenv("AVATAR_BASE_URL"),

		MaxImageSizeBytes: maxImageSize,
		ImageMaxWidth:     imageMaxWidth,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogDevelopment: logDevelopment,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres, StorageSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.PasswordMode {
	case PasswordPlain, PasswordBcrypt:
	default:
		return fmt.Errorf("unknown PASSWORD_MODE %q", c.PasswordMode)
	}

	if c.StorageDriver == StorageRedis && c.RedisURL == "" {
		return fmt.Errorf("STORAGE_DRIVER=redis requires REDIS_URL")
	}
	if c.StorageDriver == StoragePostgres && (c.DBHost == "" || c.DBName == "") {
		return fmt.Errorf("STORAGE_DRIVER=postgres requires DB_HOST and DB_NAME")
	}
	return nil
}

// R2Enabled reports whether every Cloudflare R2 setting is present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
