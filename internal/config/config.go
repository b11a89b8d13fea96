package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Storage       StorageConfig
	Auth          AuthConfig
	Notifications NotificationsConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Type      string // "local" or "s3"
	LocalPath string
	S3Bucket  string
	S3Region  string
}

type AuthConfig struct {
	// MockMode enables the fixed development credential table in front of
	// the real provider.
	MockMode         bool
	SessionExpiresIn time.Duration
	AdminTeam        string
	VolunteerTeam    string
}

type NotificationsConfig struct {
	// MarkAllBatch bounds how many unread notifications a single
	// MarkAllRead call touches.
	MarkAllBatch int
	// CleanupInterval is how often the expiry daemon runs.
	CleanupInterval time.Duration
	// ReminderInterval is how often the due-task scan runs.
	ReminderInterval time.Duration
	// UnreadCacheTTL bounds staleness of the redis unread counter.
	UnreadCacheTTL time.Duration
}

func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnv("SERVER_PORT", "3001"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			Environment:  getEnv("SERVER_ENVIRONMENT", EnvironmentDevelopment),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "campuspaws"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			S3Bucket:  getEnv("STORAGE_S3_BUCKET", ""),
			S3Region:  getEnv("STORAGE_S3_REGION", ""),
		},
		Auth: AuthConfig{
			MockMode:         getEnvBool("AUTH_MOCK_MODE", true),
			SessionExpiresIn: getEnvDuration("AUTH_SESSION_EXPIRES_IN", 30*24*time.Hour),
			AdminTeam:        getEnv("AUTH_ADMIN_TEAM", "admins"),
			VolunteerTeam:    getEnv("AUTH_VOLUNTEER_TEAM", "volunteers"),
		},
		Notifications: NotificationsConfig{
			MarkAllBatch:     getEnvInt("NOTIFICATION_BATCH", 20),
			CleanupInterval:  getEnvDuration("NOTIFICATION_CLEANUP_INTERVAL", time.Hour),
			ReminderInterval: getEnvDuration("NOTIFICATION_REMINDER_INTERVAL", time.Hour),
			UnreadCacheTTL:   getEnvDuration("NOTIFICATION_UNREAD_CACHE_TTL", time.Minute),
		},
	}
}

// DatabaseURL builds the postgres connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
