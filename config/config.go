package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Paystack   PaystackConfig
	AMQP       AMQPConfig
	Cloudinary CloudinaryConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PaystackConfig struct {
	Secret  string
	BaseURL string
	Timeout time.Duration
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Load reads configuration from the environment, falling back to development
// defaults. A .env file is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:         getenv("APP_PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  getduration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getduration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getenv("DB_DSN", "root:@tcp(localhost:3306)/soko?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getint("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getint("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getduration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			Secret: getenv("JWT_SECRET", "change-me-in-production"),
			Expiry: getduration("JWT_EXPIRY", 24*time.Hour),
			Issuer: getenv("JWT_ISSUER", "soko"),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASS"),
			DB:       getint("REDIS_DB", 0),
		},
		Paystack: PaystackConfig{
			Secret:  os.Getenv("PAYSTACK_SECRET"),
			BaseURL: getenv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			Timeout: getduration("PAYSTACK_TIMEOUT", 30*time.Second),
		},
		AMQP: AMQPConfig{
			URL:      os.Getenv("AMQP_URL"), // empty disables event publishing
			Exchange: getenv("AMQP_EXCHANGE", "soko.events"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
