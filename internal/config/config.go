package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode     string
	Port        string
	AppURL      string
	FrontendURL string
	Database    DatabaseConfig
	JWT         JWTConfig
	Flutterwave FlutterwaveConfig
	Cloudinary  CloudinaryConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// FlutterwaveConfig holds payment provider configuration
type FlutterwaveConfig struct {
	BaseURL   string
	SecretKey string
	// SecretHash is the pre-shared webhook signature (verif-hash header)
	SecretHash  string
	RedirectURL string
}

// CloudinaryConfig holds file storage configuration
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:     appMode,
		Port:        getEnv("PORT", "5000"),
		AppURL:      getEnv("APP_URL", "http://localhost:5000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		Database:    loadDatabaseConfig(),
		JWT:         loadJWTConfig(),
		Flutterwave: loadFlutterwaveConfig(),
		Cloudinary:  loadCloudinaryConfig(),
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASS", ""),
		DBName:   getEnv("DB_NAME", "marvel_driving"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func loadJWTConfig() JWTConfig {
	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv("JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

func loadFlutterwaveConfig() FlutterwaveConfig {
	return FlutterwaveConfig{
		BaseURL:     getEnv("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com/v3"),
		SecretKey:   getEnv("FLUTTERWAVE_SECRET_KEY", ""),
		SecretHash:  getEnv("FLUTTERWAVE_SECRET_HASH", ""),
		RedirectURL: getEnv("PAYMENT_REDIRECT_URL", ""),
	}
}

func loadCloudinaryConfig() CloudinaryConfig {
	return CloudinaryConfig{
		CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		Folder:    getEnv("CLOUDINARY_FOLDER", "marvel-driving-school"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return c.FrontendURL
	}
	return origins
}
