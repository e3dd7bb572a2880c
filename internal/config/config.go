package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Storage  StorageConfig
	WhatsApp WhatsAppConfig
}

type ServerConfig struct {
	Port               string
	Env                string
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AdminConfig carries the back-office login settings. PasswordHash is a
// bcrypt hash of the shared admin password.
type AdminConfig struct {
	PasswordHash  string
	JWTSecret     string
	SessionExpiry int // in minutes
}

// StorageConfig points at the bucket holding product images.
type StorageConfig struct {
	Bucket        string
	MaxUploadSize int64 // in bytes
}

// WhatsAppConfig holds the fixed quote recipient: digits only, with country
// code (e.g. 5571999990000).
type WhatsAppConfig struct {
	Phone string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("ADMIN_SESSION_EXPIRY", 480)
	viper.SetDefault("STORAGE_MAX_UPLOAD_SIZE", 10<<20)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			Env:                viper.GetString("SERVER_ENV"),
			CORSAllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Admin: AdminConfig{
			PasswordHash:  viper.GetString("ADMIN_PASSWORD_HASH"),
			JWTSecret:     viper.GetString("ADMIN_JWT_SECRET"),
			SessionExpiry: viper.GetInt("ADMIN_SESSION_EXPIRY"),
		},
		Storage: StorageConfig{
			Bucket:        viper.GetString("STORAGE_BUCKET"),
			MaxUploadSize: viper.GetInt64("STORAGE_MAX_UPLOAD_SIZE"),
		},
		WhatsApp: WhatsAppConfig{
			Phone: viper.GetString("WHATSAPP_PHONE"),
		},
	}
}
