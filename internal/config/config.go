package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	AyurvedaXLSX string `mapstructure:"AYURVEDA_XLSX"`
	UnaniXLSX    string `mapstructure:"UNANI_XLSX"`
	SiddhaXLSX   string `mapstructure:"SIDDHA_XLSX"`
	ICD11CSV     string `mapstructure:"ICD11_CSV"`

	// When DATABASE_URL is set the NAMASTE tables are loaded from
	// Postgres instead of the workbook files.
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	AyurvedaTable string `mapstructure:"AYURVEDA_TABLE"`
	UnaniTable    string `mapstructure:"UNANI_TABLE"`
	SiddhaTable   string `mapstructure:"SIDDHA_TABLE"`

	// When ICD11_API_URL is set, /search and chat context use the
	// remote flat-search API instead of the local ICD-11 table.
	ICD11APIURL      string `mapstructure:"ICD11_API_URL"`
	ICD11TimeoutSecs int    `mapstructure:"ICD11_TIMEOUT_SECS"`

	GoogleAPIKey     string `mapstructure:"GOOGLE_API_KEY"`
	GenAIBaseURL     string `mapstructure:"GENAI_BASE_URL"`
	GeminiModel      string `mapstructure:"GEMINI_MODEL"`
	GenAITimeoutSecs int    `mapstructure:"GENAI_TIMEOUT_SECS"`

	SearchTopK     int     `mapstructure:"SEARCH_TOP_K"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("AYURVEDA_XLSX", "data/AYURVEDA.xlsx")
	v.SetDefault("UNANI_XLSX", "data/UNANI.xlsx")
	v.SetDefault("SIDDHA_XLSX", "data/SIDDHA.xlsx")
	v.SetDefault("ICD11_CSV", "data/icd11.csv")
	v.SetDefault("AYURVEDA_TABLE", "ayurveda")
	v.SetDefault("UNANI_TABLE", "unani")
	v.SetDefault("SIDDHA_TABLE", "siddha")
	v.SetDefault("ICD11_TIMEOUT_SECS", 10)
	v.SetDefault("GENAI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GENAI_TIMEOUT_SECS", 20)
	v.SetDefault("SEARCH_TOP_K", 5)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AYURVEDA_XLSX")
	v.BindEnv("UNANI_XLSX")
	v.BindEnv("SIDDHA_XLSX")
	v.BindEnv("ICD11_CSV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("AYURVEDA_TABLE")
	v.BindEnv("UNANI_TABLE")
	v.BindEnv("SIDDHA_TABLE")
	v.BindEnv("ICD11_API_URL")
	v.BindEnv("ICD11_TIMEOUT_SECS")
	v.BindEnv("GOOGLE_API_KEY")
	v.BindEnv("GENAI_BASE_URL")
	v.BindEnv("GEMINI_MODEL")
	v.BindEnv("GENAI_TIMEOUT_SECS")
	v.BindEnv("SEARCH_TOP_K")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsePostgres reports whether the NAMASTE tables come from Postgres.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// RemoteICD11 reports whether ICD-11 search goes to the remote API.
func (c *Config) RemoteICD11() bool {
	return c.ICD11APIURL != ""
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.SearchTopK <= 0 || c.SearchTopK > 100 {
		return fmt.Errorf("SEARCH_TOP_K must be between 1 and 100, got %d", c.SearchTopK)
	}
	if c.ICD11TimeoutSecs <= 0 {
		return fmt.Errorf("ICD11_TIMEOUT_SECS must be positive, got %d", c.ICD11TimeoutSecs)
	}
	if c.GenAITimeoutSecs <= 0 {
		return fmt.Errorf("GENAI_TIMEOUT_SECS must be positive, got %d", c.GenAITimeoutSecs)
	}
	return nil
}
