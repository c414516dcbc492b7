package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds every application setting. Secrets are overridden from the
// environment after the file is loaded; the yaml file itself should not
// carry API keys.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Binance struct {
			WSURL     string   `yaml:"ws_url"`
			RestURL   string   `yaml:"rest_url"`
			APIKey    string   `yaml:"api_key"`
			APISecret string   `yaml:"api_secret"`
			Testnet   bool     `yaml:"testnet"`
			Symbols   []string `yaml:"symbols"`
		} `yaml:"binance"`
	} `yaml:"api"`

	Listening struct {
		WakeWord        string   `yaml:"wake_word"`
		WakeVariants    []string `yaml:"wake_variants"`
		Sensitivity     int      `yaml:"sensitivity"`
		ActiveWindowSec int      `yaml:"active_window_sec"`
		PassiveChunkSec float64  `yaml:"passive_chunk_sec"`
		ActiveChunkSec  float64  `yaml:"active_chunk_sec"`
		SampleRate      int      `yaml:"sample_rate"`
	} `yaml:"listening"`

	Trading struct {
		DefaultSymbol   string `yaml:"default_symbol"`
		DefaultLeverage int    `yaml:"default_leverage"`
		PaperTrading    bool   `yaml:"paper_trading"`
	} `yaml:"trading"`

	Risk struct {
		MaxNotionalUSD string `yaml:"max_notional_usd"`
		MaxLeverage    string `yaml:"max_leverage"`
	} `yaml:"risk"`

	Speech struct {
		TTSEnabled bool   `yaml:"tts_enabled"`
		Language   string `yaml:"language"`
	} `yaml:"speech"`

	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// secretOverrides are read from the environment (and a .env file when
// present) and take precedence over anything in the yaml file.
type secretOverrides struct {
	BinanceAPIKey    string `envconfig:"BINANCE_API_KEY"`
	BinanceAPISecret string `envconfig:"BINANCE_API_SECRET"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := overrideWithEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	// Empty URLs are allowed; the gateway falls back to the venue default
	// for the configured network (mainnet or testnet).
	if u := c.API.Binance.WSURL; u != "" && !strings.HasPrefix(u, "ws://") && !strings.HasPrefix(u, "wss://") {
		return fmt.Errorf("invalid Binance WS URL: %s", u)
	}
	if u := c.API.Binance.RestURL; u != "" && !strings.HasPrefix(u, "http") {
		return fmt.Errorf("invalid Binance REST URL: %s", u)
	}

	if c.Listening.Sensitivity < 1 || c.Listening.Sensitivity > 10 {
		return fmt.Errorf("sensitivity must be 1-10, got %d", c.Listening.Sensitivity)
	}
	if c.Listening.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive")
	}

	if c.Trading.DefaultSymbol == "" {
		return fmt.Errorf("default symbol is required")
	}
	if c.Trading.DefaultLeverage < 1 || c.Trading.DefaultLeverage > 125 {
		return fmt.Errorf("default leverage must be 1-125, got %d", c.Trading.DefaultLeverage)
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage db_path is required")
	}

	return nil
}

// overrideWithEnv applies .env / environment secrets over the file values.
func overrideWithEnv(cfg *Config) error {
	// A missing .env file is fine; real deployments use the environment.
	_ = godotenv.Load()

	var sec secretOverrides
	if err := envconfig.Process("vt", &sec); err != nil {
		return fmt.Errorf("reading environment overrides: %w", err)
	}

	if sec.BinanceAPIKey != "" {
		cfg.API.Binance.APIKey = sec.BinanceAPIKey
	}
	if sec.BinanceAPISecret != "" {
		cfg.API.Binance.APISecret = sec.BinanceAPISecret
	}
	return nil
}
