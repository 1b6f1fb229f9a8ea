package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var defaultMediaCDNHosts = []string{"cdn.discordapp.com", "media.discordapp.net"}

type DiscordConfig struct {
	ApplicationID string `validate:"required,numeric"`
	BotToken      string `validate:"required"`
}

type DatabaseConfig struct {
	URL        string `validate:"required,url"`
	ServiceKey string `validate:"required"`
	Schema     string `validate:"required"`
}

// DSN returns the connection string with the service key applied as password
// (unless the URL already carries one) and search_path pinned to the schema
func (c DatabaseConfig) DSN() (string, error) {
	parsed, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}

	if parsed.User == nil {
		parsed.User = url.UserPassword("postgres", c.ServiceKey)
	} else if _, hasPassword := parsed.User.Password(); !hasPassword {
		parsed.User = url.UserPassword(parsed.User.Username(), c.ServiceKey)
	}

	query := parsed.Query()
	if query.Get("search_path") == "" {
		query.Set("search_path", c.Schema)
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

type ArchiveConfig struct {
	MediaRoot           string        `validate:"required"`
	URLRoot             string        `validate:"required"`
	CDNHosts            []string      `validate:"min=1,dive,required"`
	DownloadConcurrency int           `validate:"min=1,max=64"`
	DownloadTimeout     time.Duration `validate:"gt=0"`
}

type RankingConfig struct {
	Command     string        `validate:"required"`
	ChannelName string        `validate:"required"`
	Window      time.Duration `validate:"gt=0"`
	Limit       int           `validate:"min=1,max=25"`
}

type AppConfig struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"required"`

	// MonitoredChannelIDs are the external IDs of channels whose events are captured
	MonitoredChannelIDs []string `validate:"min=1,dive,required,numeric"`

	DiscordConfig  DiscordConfig
	DatabaseConfig DatabaseConfig
	ArchiveConfig  ArchiveConfig
	RankingConfig  RankingConfig
}

// IsMonitored reports whether channelID is one of the configured monitored channels
func (c *AppConfig) IsMonitored(channelID string) bool {
	for _, id := range c.MonitoredChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	applicationID, err := getEnvRequired("DISCORD_APPLICATION_ID")
	if err != nil {
		return nil, err
	}

	botToken, err := getEnvRequired("DISCORD_BOT_TOKEN")
	if err != nil {
		return nil, err
	}

	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	serviceKey, err := getEnvRequired("DB_SERVICE_KEY")
	if err != nil {
		return nil, err
	}

	monitoredChannels, err := getEnvRequired("MONITORED_CHANNEL_IDS")
	if err != nil {
		return nil, err
	}

	downloadConcurrency, err := getEnvIntWithDefault("MEDIA_DOWNLOAD_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	downloadTimeout, err := getEnvDurationWithDefault("MEDIA_DOWNLOAD_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	rankingWindow, err := getEnvDurationWithDefault("RANKING_WINDOW", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	rankingLimit, err := getEnvIntWithDefault("RANKING_LIMIT", 3)
	if err != nil {
		return nil, err
	}

	cdnHosts := splitList(getEnvWithDefault("MEDIA_CDN_HOSTS", ""))
	if len(cdnHosts) == 0 {
		cdnHosts = defaultMediaCDNHosts
	}

	config := &AppConfig{
		Port:                getEnvWithDefault("PORT", "8080"),
		Environment:         getEnvWithDefault("ENVIRONMENT", "dev"),
		MonitoredChannelIDs: splitList(monitoredChannels),

		DiscordConfig: DiscordConfig{
			ApplicationID: applicationID,
			BotToken:      botToken,
		},

		DatabaseConfig: DatabaseConfig{
			URL:        databaseURL,
			ServiceKey: serviceKey,
			Schema:     getEnvWithDefault("DB_SCHEMA", "public"),
		},

		ArchiveConfig: ArchiveConfig{
			MediaRoot:           getEnvWithDefault("MEDIA_ROOT", "media"),
			URLRoot:             getEnvWithDefault("URL_ROOT", "urls"),
			CDNHosts:            cdnHosts,
			DownloadConcurrency: downloadConcurrency,
			DownloadTimeout:     downloadTimeout,
		},

		RankingConfig: RankingConfig{
			Command:     getEnvWithDefault("RANKING_COMMAND", "!top"),
			ChannelName: getEnvWithDefault("RANKING_CHANNEL_NAME", "general"),
			Window:      rankingWindow,
			Limit:       rankingLimit,
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Printf("✅ Configuration loaded - monitoring %d channel(s)", len(config.MonitoredChannelIDs))
	return config, nil
}

// Validate checks the configuration against its struct constraints
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnvRequired(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntWithDefault(key string, defaultValue int) (int, error) {
	value := getEnvWithDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnvWithDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return parsed, nil
}

func splitList(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
