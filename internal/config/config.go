package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/ericogr/gamedash/internal/constants"
)

type rawConfig struct {
	Server *struct {
		Address     string   `json:"address" yaml:"address"`
		CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
	} `json:"server" yaml:"server"`
	Database *struct {
		Path string `json:"path" yaml:"path"`
	} `json:"database" yaml:"database"`
	Export *struct {
		Dir         string `json:"dir" yaml:"dir"`
		Enabled     *bool  `json:"enabled" yaml:"enabled"`
		TemplateDir string `json:"template_dir" yaml:"template_dir"`
	} `json:"export" yaml:"export"`
	Storage *struct {
		Dir string `json:"dir" yaml:"dir"`
	} `json:"storage" yaml:"storage"`
	Auth *struct {
		JWTSecret string `json:"jwt_secret" yaml:"jwt_secret"`
		TokenTTL  string `json:"token_ttl" yaml:"token_ttl"`
	} `json:"auth" yaml:"auth"`
	Log *struct {
		Level      string `json:"level" yaml:"level"`
		File       string `json:"file" yaml:"file"`
		MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
		MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	} `json:"log" yaml:"log"`
	Cache *struct {
		NPCTTL string `json:"npc_ttl" yaml:"npc_ttl"`
	} `json:"cache" yaml:"cache"`
	DefaultGame *struct {
		Title       string `json:"title" yaml:"title"`
		Description string `json:"description" yaml:"description"`
	} `json:"default_game" yaml:"default_game"`
	// Optional prompt used to describe assets. The token {{name}} is
	// replaced with the asset name.
	DescribePrompt string `json:"describe_prompt" yaml:"describe_prompt"`
}

// LoadedConfig is the resolved server configuration with defaults applied.
type LoadedConfig struct {
	ServerAddress  string
	CORSOrigins    []string
	DatabasePath   string
	ExportDir      string
	ExportEnabled  bool
	StorageDir     string
	JWTSecret      string
	TokenTTL       time.Duration
	LogLevel       string
	LogFile        string
	LogMaxSizeMB   int
	LogMaxBackups  int
	NPCCacheTTL    time.Duration
	DefaultGame    DefaultGame
	DescribePrompt string
	OpenAIAPIKey   string

	// ExportTemplateDir, when set, is copied into the export dir of every
	// new game.
	ExportTemplateDir string
}

// DefaultGame is seeded when the games table is empty.
type DefaultGame struct {
	Title       string
	Description string
}

// Defaults returns the configuration used when no file is present.
func Defaults() *LoadedConfig {
	return &LoadedConfig{
		ServerAddress: ":8080",
		DatabasePath:  "./data/gamedash.db",
		ExportDir:     "./games",
		ExportEnabled: true,
		StorageDir:    "./data/assets",
		TokenTTL:      24 * time.Hour,
		LogLevel:      "info",
		LogMaxSizeMB:  50,
		LogMaxBackups: 3,
		NPCCacheTTL:   5 * time.Minute,
		DefaultGame: DefaultGame{
			Title:       "Default Game",
			Description: "The default game instance",
		},
	}
}

// LoadConfig reads the configuration file at path. YAML is used unless the
// file ends in .json. A missing file yields the defaults; environment
// overrides are applied last in both cases.
func LoadConfig(path string) (*LoadedConfig, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		applyEnv(cfg)
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var rc rawConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(b, &rc)
	} else {
		err = yaml.Unmarshal(b, &rc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := merge(cfg, &rc, path); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func parseDuration(path, key, s string, into *time.Duration) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fmt.Errorf("config file %s: invalid duration for '%s': %q", path, key, s)
	}
	*into = d
	return nil
}

func merge(cfg *LoadedConfig, rc *rawConfig, path string) error {
	if rc.Server != nil {
		if rc.Server.Address != "" {
			cfg.ServerAddress = rc.Server.Address
		}
		cfg.CORSOrigins = rc.Server.CORSOrigins
	}
	if rc.Database != nil && rc.Database.Path != "" {
		cfg.DatabasePath = rc.Database.Path
	}
	if rc.Export != nil {
		if rc.Export.Dir != "" {
			cfg.ExportDir = rc.Export.Dir
		}
		if rc.Export.Enabled != nil {
			cfg.ExportEnabled = *rc.Export.Enabled
		}
		cfg.ExportTemplateDir = strings.TrimSpace(rc.Export.TemplateDir)
	}
	if rc.Storage != nil && rc.Storage.Dir != "" {
		cfg.StorageDir = rc.Storage.Dir
	}
	if rc.Auth != nil {
		cfg.JWTSecret = strings.TrimSpace(rc.Auth.JWTSecret)
		if err := parseDuration(path, "auth.token_ttl", rc.Auth.TokenTTL, &cfg.TokenTTL); err != nil {
			return err
		}
	}
	if rc.Log != nil {
		if rc.Log.Level != "" {
			cfg.LogLevel = rc.Log.Level
		}
		cfg.LogFile = rc.Log.File
		if rc.Log.MaxSizeMB > 0 {
			cfg.LogMaxSizeMB = rc.Log.MaxSizeMB
		}
		if rc.Log.MaxBackups > 0 {
			cfg.LogMaxBackups = rc.Log.MaxBackups
		}
	}
	if rc.Cache != nil {
		if err := parseDuration(path, "cache.npc_ttl", rc.Cache.NPCTTL, &cfg.NPCCacheTTL); err != nil {
			return err
		}
	}
	if rc.DefaultGame != nil {
		if t := strings.TrimSpace(rc.DefaultGame.Title); t != "" {
			cfg.DefaultGame.Title = t
			cfg.DefaultGame.Description = strings.TrimSpace(rc.DefaultGame.Description)
		}
	}
	cfg.DescribePrompt = strings.TrimSpace(rc.DescribePrompt)
	return nil
}

func applyEnv(cfg *LoadedConfig) {
	if v := os.Getenv(constants.EnvDBPath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(constants.EnvServerAddr); v != "" {
		cfg.ServerAddress = v
	}
	if v := os.Getenv(constants.EnvJWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	cfg.OpenAIAPIKey = os.Getenv(constants.EnvOpenAIAPIKey)
}

// Path returns the config path from the environment or the default.
func Path() string {
	if p := os.Getenv(constants.EnvConfigPath); p != "" {
		return p
	}
	return constants.DefaultConfigPath
}
