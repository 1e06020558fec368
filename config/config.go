package config

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// ProviderConfig holds the primary generative-language provider settings.
// Kind selects the client implementation: "gemini" (REST generateContent)
// or "openai" (any OpenAI-compatible endpoint).
type ProviderConfig struct {
	Kind    string `mapstructure:"kind"`
	APIKey  string `mapstructure:"api_key"` // normally injected via env, not YAML
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// TrialConfig is the process-wide usage policy for non-premium users.
// Read-only after startup.
type TrialConfig struct {
	MaxMessages     int `mapstructure:"max_messages"`
	DurationMinutes int `mapstructure:"duration_minutes"`
}

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"server"`
	Database struct {
		DSN string `mapstructure:"dsn"` // "memory" or SQLite file path
	} `mapstructure:"database"`
	Provider ProviderConfig `mapstructure:"provider"`
	Backup   struct {
		DataURL string `mapstructure:"data_url"`
	} `mapstructure:"backup"`
	Trial TrialConfig `mapstructure:"trial"`
	JWT   struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
	} `mapstructure:"jwt"`
	Stripe struct {
		SecretKey      string `mapstructure:"secret_key"`
		PremiumPriceID string `mapstructure:"premium_price_id"`
		SuccessURL     string `mapstructure:"success_url"`
		CancelURL      string `mapstructure:"cancel_url"`
	} `mapstructure:"stripe"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from config.yaml and environment
// variables. Secrets (API keys, JWT secret) are expected in the
// environment; the YAML only carries non-sensitive defaults.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../config") // for running from locations like tests

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("database.dsn", "memory")
	viper.SetDefault("provider.kind", "gemini")
	viper.SetDefault("provider.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("provider.model", "gemini-1.5-flash")
	viper.SetDefault("trial.max_messages", 10)
	viper.SetDefault("trial.duration_minutes", 30)
	viper.SetDefault("jwt.expiration_hours", 24)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}

	// Environment variable overrides.
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		AppConfig.Server.Environment = env
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		AppConfig.Database.DSN = dsn
	}
	if url := os.Getenv("BACKUP_API_URL"); url != "" {
		AppConfig.Backup.DataURL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		AppConfig.JWT.Secret = secret
	}
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		AppConfig.Stripe.SecretKey = key
	}
	if v := os.Getenv("MAX_TRIAL_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			AppConfig.Trial.MaxMessages = n
		} else {
			log.Printf("WARN: [Config] Invalid MAX_TRIAL_MESSAGES value '%s', keeping %d.", v, AppConfig.Trial.MaxMessages)
		}
	}
	if v := os.Getenv("TRIAL_DURATION_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			AppConfig.Trial.DurationMinutes = n
		} else {
			log.Printf("WARN: [Config] Invalid TRIAL_DURATION_MINUTES value '%s', keeping %d.", v, AppConfig.Trial.DurationMinutes)
		}
	}

	// Provider credential: GEMINI_API_KEY or OPENAI_API_KEY depending on
	// the selected kind, with PROVIDER_API_KEY as a generic fallback.
	switch AppConfig.Provider.Kind {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			AppConfig.Provider.APIKey = key
		}
	default:
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			AppConfig.Provider.APIKey = key
		}
	}
	if AppConfig.Provider.APIKey == "" {
		if key := os.Getenv("PROVIDER_API_KEY"); key != "" {
			AppConfig.Provider.APIKey = key
		}
	}

	if err := Validate(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Invalid configuration: %v", err)
	}
	log.Println("INFO: [Config] Configuration loading complete.")
}

// Validate fails fast on configuration whose absence would silently
// disable the trial gate or the provider path.
func Validate(cfg *Config) error {
	if cfg.Provider.APIKey == "" {
		return errors.New("provider API key is not set (GEMINI_API_KEY / OPENAI_API_KEY)")
	}
	if cfg.Provider.BaseURL == "" {
		return errors.New("provider base URL is not set")
	}
	if cfg.Backup.DataURL == "" {
		return errors.New("backup responder data URL is not set (BACKUP_API_URL)")
	}
	if cfg.Trial.MaxMessages <= 0 {
		return errors.New("trial.max_messages must be positive")
	}
	if cfg.Trial.DurationMinutes <= 0 {
		return errors.New("trial.duration_minutes must be positive")
	}
	if cfg.JWT.Secret == "" {
		return errors.New("JWT secret is not set (JWT_SECRET)")
	}
	if cfg.Stripe.SecretKey == "" {
		log.Println("WARN: [Config] Stripe secret key not set; payment endpoints will be unavailable.")
	}
	return nil
}
