// Package config loads server configuration from defaults, an optional
// config file and APPBUILDER_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type OpenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	ProjectRoot string `mapstructure:"project_root"`
	// SrcDir is the subdirectory of ProjectRoot that file operations are
	// sandboxed to.
	SrcDir      string   `mapstructure:"src_dir"`
	AuthToken   string   `mapstructure:"auth_token"`
	PreviewURL  string   `mapstructure:"preview_url"`
	LogLevel    string   `mapstructure:"log_level"`
	IgnoreGlobs []string `mapstructure:"ignore_globs"`

	// IssueStore selects the AI issue persistence backend: file or sqlite.
	IssueStore     string        `mapstructure:"issue_store"`
	IssueStorePath string        `mapstructure:"issue_store_path"`
	NPMTimeout     time.Duration `mapstructure:"npm_timeout"`
	ToolTimeout    time.Duration `mapstructure:"tool_timeout"`

	Provider string       `mapstructure:"provider"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8787")
	v.SetDefault("project_root", ".")
	v.SetDefault("src_dir", "src")
	v.SetDefault("log_level", "info")
	v.SetDefault("ignore_globs", []string{})
	v.SetDefault("issue_store", "file")
	v.SetDefault("issue_store_path", "")
	v.SetDefault("npm_timeout", 2*time.Minute)
	v.SetDefault("tool_timeout", 30*time.Second)
	v.SetDefault("provider", "openai")
	v.SetDefault("auth_token", "")
	v.SetDefault("preview_url", "http://localhost:3001")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	// empty-string defaults keep env-only keys visible to Unmarshal
	v.SetDefault("openai.api_key", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
}

// Load reads configuration. cfgFile may be empty, in which case
// appbuilder.yaml is looked for in the project root and the current
// directory; a missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APPBUILDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("appbuilder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.IssueStorePath == "" {
		switch cfg.IssueStore {
		case "sqlite":
			cfg.IssueStorePath = filepath.Join(cfg.ProjectRoot, ".ide", "issues.db")
		default:
			cfg.IssueStorePath = filepath.Join(cfg.ProjectRoot, ".ide", "ai-issues.json")
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.IssueStore != "file" && c.IssueStore != "sqlite" {
		return fmt.Errorf("issue_store must be file or sqlite, got %q", c.IssueStore)
	}
	switch c.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("provider must be openai or gemini, got %q", c.Provider)
	}
	if c.NPMTimeout <= 0 {
		return fmt.Errorf("npm_timeout must be positive")
	}
	return nil
}

// SrcRoot is the absolute sandbox root for file operations.
func (c *Config) SrcRoot() string {
	return filepath.Join(c.ProjectRoot, c.SrcDir)
}
