package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/competition-manager/storage"
	"github.com/joho/godotenv"
)

const (
	defaultServerPort = 8080
	defaultRatingsTTL = time.Hour
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	// DatabaseURL пустой, если используется хранилище в памяти.
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	RatingsURL string
	RatingsTTL time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	CORSAllowedOrigins []string
}

// R2 возвращает параметры Cloudflare R2; нулевое значение означает, что архив выключен.
func (c *Config) R2() storage.CloudflareR2UploaderConfig {
	return storage.CloudflareR2UploaderConfig{
		AccountID:       c.R2AccountID,
		AccessKeyID:     c.R2AccessKeyID,
		SecretAccessKey: c.R2SecretAccessKey,
		BucketName:      c.R2BucketName,
		PublicBaseURL:   c.R2PublicBaseURL,
	}
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию через переданную функцию чтения переменных.
func FromEnv(getenv func(string) string) (*Config, error) {
	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port := defaultServerPort
	if portStr := getenv("SERVER_PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		port = p
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	ttl := defaultRatingsTTL
	if ttlStr := getenv("RATINGS_TTL"); ttlStr != "" {
		d, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid RATINGS_TTL environment variable: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("RATINGS_TTL must be positive, got %s", d)
		}
		ttl = d
	}

	cfg := &Config{
		DatabaseURL:        strings.TrimSpace(getenv("DATABASE_URL")),
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		RatingsURL:         strings.TrimSpace(getenv("RATINGS_URL")),
		RatingsTTL:         ttl,
		R2AccountID:        getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    getenv("R2_PUBLIC_BASE_URL"),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if err := cfg.validateR2(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// R2 либо настроен полностью, либо не настроен вовсе.
func (c *Config) validateR2() error {
	vars := map[string]string{
		"R2_ACCOUNT_ID":        c.R2AccountID,
		"R2_ACCESS_KEY_ID":     c.R2AccessKeyID,
		"R2_SECRET_ACCESS_KEY": c.R2SecretAccessKey,
		"R2_BUCKET_NAME":       c.R2BucketName,
		"R2_PUBLIC_BASE_URL":   c.R2PublicBaseURL,
	}
	var missing []string
	for _, name := range []string{"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_BASE_URL"} {
		if vars[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 && len(missing) < len(vars) {
		return fmt.Errorf("incomplete R2 configuration, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
