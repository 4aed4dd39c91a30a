package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Matching MatchingConfig
	Auth     AuthConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// MatchingConfig holds the confidence policy for cut normalization.
// The defaults are working values pending product confirmation, so every
// threshold is overridable from the environment.
type MatchingConfig struct {
	// MinConfidence is the floor below which fuzzy candidates are dropped
	MinConfidence float64
	// AttachThreshold is the confidence at which a match is attached
	// without asking the caller to disambiguate
	AttachThreshold float64
	// AutoVerifyThreshold is the confidence at which a new variation is
	// marked verified without admin review
	AutoVerifyThreshold float64
	// SuggestLimit is the default number of ranked candidates returned
	SuggestLimit int
	// MaxSuggestLimit caps caller-supplied limits
	MaxSuggestLimit int
}

// AuthConfig carries what this service needs from the external auth
// subsystem: the public key to verify tokens it issued, and the expected
// issuer. Token issuance lives elsewhere.
type AuthConfig struct {
	PublicKey *rsa.PublicKey
	Issuer    string
}

type SecurityConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "meatmarket_user"),
			Password:        getEnv("DB_PASSWORD", "meatmarket_password"),
			Name:            getEnv("DB_NAME", "meatmarket_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			QueryTimeout:    getDurationEnv("DB_QUERY_TIMEOUT", 5*time.Second),
		},
		Matching: MatchingConfig{
			MinConfidence:       getFloatEnv("MATCH_MIN_CONFIDENCE", 0.3),
			AttachThreshold:     getFloatEnv("MATCH_ATTACH_THRESHOLD", 0.75),
			AutoVerifyThreshold: getFloatEnv("MATCH_AUTO_VERIFY_THRESHOLD", 0.9),
			SuggestLimit:        getIntEnv("MATCH_SUGGEST_LIMIT", 5),
			MaxSuggestLimit:     getIntEnv("MATCH_MAX_SUGGEST_LIMIT", 50),
		},
		Security: SecurityConfig{
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 5),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 10),
		},
		Auth: AuthConfig{
			Issuer: getEnv("JWT_ISSUER", "meatmarket-auth"),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	var loadKeyErr error
	config.Auth.PublicKey, loadKeyErr = config.loadVerificationKey()
	if loadKeyErr != nil {
		log.Fatal("Failed to load JWT verification key:", loadKeyErr)
	}

	return config
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// loadVerificationKey loads the RSA public key used to verify tokens from
// the auth service. Priority order:
// 1. If JWT_PUBLIC_KEY is set, use it (works in all environments)
// 2. If production and the env var is missing, fail (production requires an explicit key)
// 3. If development/testing, generate a throwaway keypair so the service can run standalone
func (c *Config) loadVerificationKey() (*rsa.PublicKey, error) {
	publicKeyB64 := os.Getenv("JWT_PUBLIC_KEY")

	if publicKeyB64 != "" {
		log.Println("Loading JWT verification key from environment")
		publicKeyBytes, err := base64.StdEncoding.DecodeString(publicKeyB64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode JWT_PUBLIC_KEY: %w", err)
		}
		return loadRSAPublicKey(publicKeyBytes)
	}

	if c.IsProduction() {
		return nil, fmt.Errorf("JWT_PUBLIC_KEY environment variable must be set in production environments")
	}

	log.Println("Development environment: generating a throwaway RSA keypair for JWT verification (set JWT_PUBLIC_KEY to verify real auth-service tokens)")
	_, publicKey, err := GenerateRSAKeyPair()
	return publicKey, err
}

// loadCORSAllowOrigins retrieves CORS allowed origins from environment or returns default
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")

	if corsOrigins == "" {
		if c.IsProduction() {
			log.Println("WARNING: CORS_ALLOW_ORIGINS not set in production environment, defaulting to '*' (all origins). Consider setting specific origins for security.")
		} else {
			log.Println("INFO: CORS_ALLOW_ORIGINS not set, defaulting to '*' (all origins)")
		}
		return []string{"*"}
	}

	// Split by comma and trim whitespace
	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	log.Printf("CORS allowed origins configured: %v", origins)
	return origins
}

// GenerateRSAKeyPair generates a new RSA key pair
func GenerateRSAKeyPair() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}

	return privateKey, &privateKey.PublicKey, nil
}

// loadRSAPublicKey loads an RSA public key from PEM format
func loadRSAPublicKey(pemData []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}

	return rsaPublicKey, nil
}
