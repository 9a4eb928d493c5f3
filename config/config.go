package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	SiteURL           string `mapstructure:"SITE_URL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	// TrustedProxies lists proxy CIDRs whose forwarding headers are believed.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisFlashDB  int    `mapstructure:"REDIS_FLASH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Admin access.
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminUsername     string `mapstructure:"ADMIN_USERNAME"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	// Pesapal v3.
	PesapalBaseURL        string `mapstructure:"PESAPAL_BASE_URL"`
	PesapalConsumerKey    string `mapstructure:"PESAPAL_CONSUMER_KEY"`
	PesapalConsumerSecret string `mapstructure:"PESAPAL_CONSUMER_SECRET"`

	// AzamPay.
	AzamPayAppName      string `mapstructure:"AZAMPAY_APP_NAME"`
	AzamPayClientID     string `mapstructure:"AZAMPAY_CLIENT_ID"`
	AzamPayClientSecret string `mapstructure:"AZAMPAY_CLIENT_SECRET"`
	AzamPaySandbox      bool   `mapstructure:"AZAMPAY_SANDBOX"`

	// Gateway call policy.
	GatewayTimeout   time.Duration `mapstructure:"GATEWAY_TIMEOUT"`
	RetryMaxAttempts int           `mapstructure:"RETRY_MAX_ATTEMPTS"`
	RetryBaseDelay   time.Duration `mapstructure:"RETRY_BASE_DELAY"`

	// Reconciliation policy.
	VerifyDelay           time.Duration `mapstructure:"VERIFY_DELAY"`
	RespectManualOverride bool          `mapstructure:"RESPECT_MANUAL_OVERRIDE"`
}

// Load reads config.yaml (if present) and the environment into a Config.
func Load() (*Config, error) {
	v := viper.New()
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SITE_URL", "")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("TRUSTED_PROXIES", []string{})

	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "wetech")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_FLASH_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("PESAPAL_BASE_URL", "https://pay.pesapal.com/v3")
	v.SetDefault("PESAPAL_CONSUMER_KEY", "")
	v.SetDefault("PESAPAL_CONSUMER_SECRET", "")

	v.SetDefault("AZAMPAY_APP_NAME", "We-Tech")
	v.SetDefault("AZAMPAY_CLIENT_ID", "")
	v.SetDefault("AZAMPAY_CLIENT_SECRET", "")
	v.SetDefault("AZAMPAY_SANDBOX", true)

	v.SetDefault("GATEWAY_TIMEOUT", 30*time.Second)
	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RETRY_BASE_DELAY", 2*time.Second)

	v.SetDefault("VERIFY_DELAY", 5*time.Minute)
	v.SetDefault("RESPECT_MANUAL_OVERRIDE", false)
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
