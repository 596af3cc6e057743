package sys

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDiscordToken     = "DISCORD_TOKEN"
	EnvGuildID          = "GUILD_ID"
	EnvDatabasePath     = "DATABASE_PATH"
	EnvStreamingURL     = "STREAMING_URL"
	EnvStatusText       = "STATUS_TEXT"
	EnvStatusInterval   = "STATUS_INTERVAL"
	EnvDefaultEmoji     = "GIVEAWAY_DEFAULT_EMOJI"
	EnvManagersOnly     = "GIVEAWAY_MANAGERS_ONLY"
	EnvSilent           = "SILENT"
	EnvDebug            = "DEBUG"
	DefaultStreamingURL = "https://www.twitch.tv/night"
	DefaultStatusText   = "Giveaway running!"
	DefaultEntryEmoji   = "🎉"
	DefaultStatusPeriod = 2 * time.Minute
)

type Config struct {
	Token          string
	GuildID        string
	DatabasePath   string
	StreamingURL   string
	StatusText     string
	StatusInterval time.Duration
	DefaultEmoji   string
	ManagersOnly   bool
	Silent         bool
}

var GlobalConfig *Config

var configLoadedCallbacks []func(cfg *Config)

// OnConfigLoaded runs cb once LoadConfig succeeded, before commands are synced.
func OnConfigLoaded(cb func(cfg *Config)) {
	configLoadedCallbacks = append(configLoadedCallbacks, cb)
}

// LoadConfig initializes the configuration from environment variables.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := configFromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}

	if cfg.Silent {
		SetSilentMode(true)
	}

	GlobalConfig = cfg
	for _, cb := range configLoadedCallbacks {
		cb(cfg)
	}
	return cfg, nil
}

func configFromEnv(getenv func(string) string) (*Config, error) {
	dbPath := getenv(EnvDatabasePath)
	if dbPath == "" {
		dbPath = filepath.Join(".", GetProjectName()+".db")
	}

	silent, _ := strconv.ParseBool(getenv(EnvSilent))
	managersOnly, _ := strconv.ParseBool(getenv(EnvManagersOnly))

	cfg := &Config{
		Token:          strings.TrimSpace(getenv(EnvDiscordToken)),
		GuildID:        strings.TrimSpace(getenv(EnvGuildID)),
		DatabasePath:   dbPath,
		StreamingURL:   getenv(EnvStreamingURL),
		StatusText:     getenv(EnvStatusText),
		StatusInterval: DefaultStatusPeriod,
		DefaultEmoji:   strings.TrimSpace(getenv(EnvDefaultEmoji)),
		ManagersOnly:   managersOnly,
		Silent:         silent,
	}

	if cfg.StreamingURL == "" {
		cfg.StreamingURL = DefaultStreamingURL
	}
	if cfg.StatusText == "" {
		cfg.StatusText = DefaultStatusText
	}
	if cfg.DefaultEmoji == "" {
		cfg.DefaultEmoji = DefaultEntryEmoji
	}
	if raw := getenv(EnvStatusInterval); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf(MsgConfigInvalidInterval, err)
		}
		cfg.StatusInterval = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf(MsgConfigMissingToken)
	}
	if c.GuildID != "" && (len(c.GuildID) < 17 || len(c.GuildID) > 20) {
		return fmt.Errorf(MsgConfigInvalidGuildID)
	}
	if c.StatusInterval < 10*time.Second {
		return fmt.Errorf(MsgConfigIntervalTooShort, c.StatusInterval)
	}
	return nil
}

func GetProjectName() string {
	exePath, err := os.Executable()
	projectName := "giveaway"
	if err == nil {
		projectName = filepath.Base(exePath)
		projectName = strings.TrimSuffix(projectName, ".exe")

		if projectName == "main" || strings.HasPrefix(projectName, "go_build_") || strings.HasSuffix(projectName, ".test") {
			projectName = "giveaway"
			if modData, err := os.ReadFile("go.mod"); err == nil {
				lines := strings.Split(string(modData), "\n")
				if len(lines) > 0 && strings.HasPrefix(lines[0], "module ") {
					parts := strings.Split(lines[0], "/")
					projectName = strings.TrimSpace(parts[len(parts)-1])
				}
			}
		}
	}
	return projectName
}
