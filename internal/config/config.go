// Package config loads runtime settings from defaults, an optional YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "AGT"

// Config is the resolved runtime configuration.
type Config struct {
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	MaxTokens        int64         `mapstructure:"max_tokens"`
	MaxRounds        int           `mapstructure:"max_rounds"`
	TokenBudget      int           `mapstructure:"token_budget"`
	ToolConcurrency  int           `mapstructure:"tool_concurrency"`
	ToolTimeout      time.Duration `mapstructure:"tool_timeout"`
	DBPath           string        `mapstructure:"db_path"`
	ArtifactsDir     string        `mapstructure:"artifacts_dir"`
	DocumentsDir     string        `mapstructure:"documents_dir"`
	ConversationPath string        `mapstructure:"conversation_path"`
	Observe          bool          `mapstructure:"observe"`
	LogLevel         string        `mapstructure:"log_level"`
	EncryptUserData  bool          `mapstructure:"encrypt_user_data"`
	Passphrase       string        `mapstructure:"passphrase"`
	MaxJobsPerSearch int           `mapstructure:"max_jobs_per_search"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", "claude-sonnet-4-5")
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("max_rounds", 10)
	v.SetDefault("token_budget", 0) // windowing off
	v.SetDefault("tool_concurrency", 4)
	v.SetDefault("tool_timeout", "60s")
	v.SetDefault("db_path", ".agent/jobs.db")
	v.SetDefault("artifacts_dir", ".agent")
	v.SetDefault("documents_dir", "documents")
	v.SetDefault("conversation_path", ".agent/conversation.json")
	v.SetDefault("observe", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("encrypt_user_data", true)
	v.SetDefault("passphrase", "")
	v.SetDefault("max_jobs_per_search", 25)
	v.SetDefault("api_key", "")
}

// Unprefixed names kept for existing .env files; the AGT_ form wins.
var envAliases = map[string][]string{
	"api_key":             {"ANTHROPIC_API_KEY"},
	"model":               {"AGT_MODEL", "AGENT_MODEL"},
	"max_tokens":          {"AGT_MAX_TOKENS", "MAX_TOKENS"},
	"observe":             {"AGT_OBSERVE_JSON", "AGT_OBSERVE"},
	"encrypt_user_data":   {"AGT_ENCRYPT_USER_DATA", "ENCRYPT_USER_DATA"},
	"max_jobs_per_search": {"AGT_MAX_JOBS_PER_SEARCH", "MAX_JOBS_PER_SEARCH"},
}

// Load resolves the configuration. path names a YAML config file; when empty,
// config.yaml is looked up in the working directory and .agent/ and its
// absence is not an error.
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(".agent")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.MaxRounds <= 0:
		return fmt.Errorf("max_rounds must be positive, got %d", c.MaxRounds)
	case c.MaxTokens <= 0:
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	case c.ToolConcurrency <= 0:
		return fmt.Errorf("tool_concurrency must be positive, got %d", c.ToolConcurrency)
	case c.TokenBudget < 0:
		return fmt.Errorf("token_budget must not be negative, got %d", c.TokenBudget)
	case c.ToolTimeout < 0:
		return fmt.Errorf("tool_timeout must not be negative, got %s", c.ToolTimeout)
	case c.EncryptUserData && c.Passphrase == "":
		return errors.New("passphrase is required when encrypt_user_data is on (set AGT_PASSPHRASE)")
	}
	return nil
}
