// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Blockchain  BlockchainConfig
	Backend     BackendConfig
	Firebase    FirebaseConfig
	Polling     PollingConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
	UploadDir       string
	PublicBaseURL   string
	MaxUploadSizeMB int64
}

type BlockchainConfig struct {
	Network         string
	RPCURL          string
	PrivateKey      string
	ContractAddress string
	AutoApprove     bool
	ReconnectFlag   string
	// Per-network RPC overrides keyed by network name (ethereum, sepolia, polygon, mumbai).
	NetworkRPC map[string]string
}

type BackendConfig struct {
	BaseURL        string
	RequestTimeout int // in seconds
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsJSON string
}

type PollingConfig struct {
	UnreadInterval   int // in seconds
	MessagesInterval int // in seconds
}

type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	TxPerMinute       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type I18nConfig struct {
	DefaultLocale string
}

const defaultContractAddress = "0xA9bde62a88EFb45DfEd198349dCAEd9BE4743aB1"

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 0), // streams and mined-tx waits outlive a fixed write deadline
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvAsBool("DB_ENABLED", true),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "frima_gateway"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "ap-northeast-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "frima-profile-images"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
			UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
			PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
			MaxUploadSizeMB: int64(getEnvAsInt("MAX_UPLOAD_SIZE_MB", 10)),
		},
		Blockchain: BlockchainConfig{
			Network:         getEnv("BLOCKCHAIN_NETWORK", "sepolia"),
			RPCURL:          getEnv("BLOCKCHAIN_RPC_URL", ""),
			PrivateKey:      strings.TrimPrefix(getEnv("BLOCKCHAIN_PRIVATE_KEY", ""), "0x"),
			ContractAddress: getEnv("MARKETPLACE_CONTRACT_ADDRESS", defaultContractAddress),
			AutoApprove:     getEnvAsBool("WALLET_AUTO_APPROVE", true),
			ReconnectFlag:   getEnv("WALLET_RECONNECT_FLAG", "./.wallet-connected"),
			NetworkRPC: map[string]string{
				"ethereum": getEnv("RPC_URL_ETHEREUM", ""),
				"sepolia":  getEnv("RPC_URL_SEPOLIA", ""),
				"polygon":  getEnv("RPC_URL_POLYGON", ""),
				"mumbai":   getEnv("RPC_URL_MUMBAI", ""),
			},
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "https://hackathon-backend-982651832089.europe-west1.run.app"), "/"),
			RequestTimeout: getEnvAsInt("API_TIMEOUT", 20),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		},
		Polling: PollingConfig{
			UnreadInterval:   getEnvAsInt("POLL_UNREAD_INTERVAL", 30),
			MessagesInterval: getEnvAsInt("POLL_MESSAGES_INTERVAL", 5),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
			TxPerMinute:       getEnvAsInt("RATE_LIMIT_TX_PER_MINUTE", 6),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "ja"),
		},
	}

	// The target network's RPC can be given either way.
	if config.Blockchain.RPCURL != "" && config.Blockchain.NetworkRPC[config.Blockchain.Network] == "" {
		config.Blockchain.NetworkRPC[config.Blockchain.Network] = config.Blockchain.RPCURL
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Enabled && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if !addressPattern.MatchString(c.Blockchain.ContractAddress) {
		return fmt.Errorf("invalid marketplace contract address %q", c.Blockchain.ContractAddress)
	}

	if c.Polling.UnreadInterval <= 0 || c.Polling.MessagesInterval <= 0 {
		return fmt.Errorf("polling intervals must be positive")
	}

	return nil
}

// IsProduction reports whether the gateway runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
