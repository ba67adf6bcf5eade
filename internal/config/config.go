package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Promo    PromoConfig    `yaml:"promo"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	Slack    SlackConfig    `yaml:"slack"`
	Email    EmailConfig    `yaml:"email"`
	Server   ServerConfig   `yaml:"server"`
	Digest   DigestConfig   `yaml:"digest"`
	LogLevel string         `yaml:"log_level"`
}

type BotConfig struct {
	Token          string  `yaml:"token"`
	ManagersChatID int64   `yaml:"managers_chat_id"` // 0 disables the staff card in Telegram
	RestaurantName string  `yaml:"restaurant_name"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
}

type PromoConfig struct {
	ValidDays int `yaml:"valid_days"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// MongoConfig switches feedback storage to MongoDB when URI is set.
type MongoConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

// RedisConfig switches the conversation state store to Redis when URL is set.
type RedisConfig struct {
	URL      string `yaml:"url"`
	TTLHours int    `yaml:"ttl_hours"`
}

type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

type EmailConfig struct {
	ResendAPIKey string `yaml:"resend_api_key"`
	From         string `yaml:"from"`
	StaffAddress string `yaml:"staff_address"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"` // empty disables the staff API routes
}

type DigestConfig struct {
	Cron string `yaml:"cron"` // empty disables the digest
	Days int    `yaml:"days"`
}

// Load reads .env, then the optional YAML file, then environment overrides.
func Load(configPath string) (*Config, error) {
	// .env is optional; in production env vars are set directly
	_ = godotenv.Load()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_FILE")
	}

	cfg := DefaultConfig()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			RestaurantName: "Ribambelle",
			RatePerSecond:  25,
		},
		Promo: PromoConfig{
			ValidDays: 30,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./data/bot.db",
		},
		Mongo: MongoConfig{
			DBName: "feedback",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Digest: DigestConfig{
			Days: 7,
		},
		LogLevel: "info",
	}
}

// Validate reports configuration that would prevent the bot from starting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if c.Promo.ValidDays <= 0 {
		return fmt.Errorf("PROMO_VALID_DAYS must be positive, got %d", c.Promo.ValidDays)
	}
	return nil
}

func (c *Config) overrideFromEnv() error {
	setString(&c.Bot.Token, "BOT_TOKEN")
	setString(&c.Bot.RestaurantName, "RESTAURANT_NAME")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Database.DSN, "DB_PATH")
	setString(&c.Mongo.URI, "MONGODB_URI")
	setString(&c.Mongo.DBName, "DB_NAME")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Slack.BotToken, "SLACK_BOT_TOKEN")
	setString(&c.Slack.ChannelID, "SLACK_CHANNEL_ID")
	setString(&c.Email.ResendAPIKey, "RESEND_API_KEY")
	setString(&c.Email.From, "FROM_EMAIL")
	setString(&c.Email.StaffAddress, "STAFF_EMAIL")
	setString(&c.Server.Port, "HTTP_PORT")
	setString(&c.Server.JWTSecret, "STAFF_JWT_SECRET")
	setString(&c.Digest.Cron, "STATS_DIGEST_CRON")
	setString(&c.LogLevel, "LOG_LEVEL")

	if err := setInt64(&c.Bot.ManagersChatID, "MANAGERS_CHAT_ID"); err != nil {
		return err
	}
	if err := setInt(&c.Promo.ValidDays, "PROMO_VALID_DAYS"); err != nil {
		return err
	}
	if err := setInt(&c.Redis.TTLHours, "STATE_TTL_HOURS"); err != nil {
		return err
	}
	if err := setInt(&c.Digest.Days, "STATS_DIGEST_DAYS"); err != nil {
		return err
	}
	if v := os.Getenv("TELEGRAM_RATE_PER_SEC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_RATE_PER_SEC: %w", err)
		}
		c.Bot.RatePerSecond = f
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
