// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"`   // milliseconds; 0 disables (required for SSE)
	MetricsAddress string `mapstructure:"metrics_address"` // empty mounts /metrics on the main listener
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GenAIConfig holds settings for the external generation service.
type GenAIConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	SpeechModel    string  `mapstructure:"speech_model"`
	SpeechVoice    string  `mapstructure:"speech_voice"`
	SpeechMaxChars int     `mapstructure:"speech_max_chars"`
	Temperature    float64 `mapstructure:"temperature"`
	Timeout        int     `mapstructure:"timeout"` // milliseconds, per streaming run
}

// AdminConfig holds settings for the admin console and content registry.
type AdminConfig struct {
	Password     string `mapstructure:"password"`
	SearchLogCap int    `mapstructure:"search_log_cap"`
	RegistryPath string `mapstructure:"registry_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}
	if cfg.GenAI.Model == "" {
		return fmt.Errorf("genai.model is required")
	}
	if cfg.GenAI.Temperature < 0 || cfg.GenAI.Temperature > 2 {
		return fmt.Errorf("genai.temperature out of range: %v", cfg.GenAI.Temperature)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "askliberia"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.GenAI.Model == "" {
		cfg.GenAI.Model = "gemini-2.5-flash"
	}
	if cfg.GenAI.SpeechModel == "" {
		cfg.GenAI.SpeechModel = "gemini-2.5-flash-preview-tts"
	}
	if cfg.GenAI.SpeechVoice == "" {
		cfg.GenAI.SpeechVoice = "Kore"
	}
	if cfg.GenAI.SpeechMaxChars <= 0 {
		cfg.GenAI.SpeechMaxChars = 2000
	}
	if cfg.GenAI.Temperature == 0 {
		cfg.GenAI.Temperature = 0.3
	}
	if cfg.GenAI.Timeout <= 0 {
		cfg.GenAI.Timeout = 60000
	}
	if cfg.Admin.SearchLogCap <= 0 {
		cfg.Admin.SearchLogCap = 100
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
