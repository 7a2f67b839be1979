package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`
	TelegramBot struct {
		Token       string        `yaml:"token"`
		Username    string        `yaml:"username"`
		PollTimeout time.Duration `yaml:"poll_timeout"`
		Debug       bool          `yaml:"debug"`
	} `yaml:"telegram_bot"`
	API struct {
		BaseURL   string        `yaml:"base_url"`
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
	} `yaml:"api"`
	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"dbname"`
	} `yaml:"database"`
	Storage struct {
		Type      string        `yaml:"type"`
		ReviewTTL time.Duration `yaml:"review_ttl"`
	} `yaml:"storage"`
	Timer struct {
		Tick            time.Duration `yaml:"tick"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		SubmitTimeout   time.Duration `yaml:"submit_timeout"`
	} `yaml:"timer"`
	Idempotency struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"idempotency"`
	Report struct {
		FontDir string `yaml:"font_dir"`
	} `yaml:"report"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// LoadConfig читает yaml файл, затем переменные окружения (и .env, если он есть).
// Секреты из окружения важнее значений из файла.
func LoadConfig(filename string) (*Config, error) {
	const op = "config.LoadConfig"

	_ = godotenv.Load()

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			log.Warn().Err(err).Msg("f.Close() failed")
		}
	}(f)

	config := &Config{}
	if err := yaml.NewDecoder(f).Decode(config); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.TelegramBot.Token = v
	}
	if v := os.Getenv("API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.TelegramBot.Debug = debug
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.TelegramBot.PollTimeout == 0 {
		c.TelegramBot.PollTimeout = 10 * time.Second
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = "exambot/1.0"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = StorageMemory
	}
	if c.Storage.ReviewTTL == 0 {
		c.Storage.ReviewTTL = 7 * 24 * time.Hour
	}
	if c.Timer.Tick == 0 {
		c.Timer.Tick = time.Second
	}
	if c.Timer.RefreshInterval == 0 {
		c.Timer.RefreshInterval = 5 * time.Second
	}
	if c.Timer.SubmitTimeout == 0 {
		c.Timer.SubmitTimeout = 30 * time.Second
	}
	if c.Idempotency.TTL == 0 {
		c.Idempotency.TTL = 24 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramBot.Token == "" {
		errs = append(errs, errors.New("telegram_bot.token is required (or TELEGRAM_BOT_TOKEN)"))
	}
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required (or API_BASE_URL)"))
	}
	switch c.Storage.Type {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.type %q", c.Storage.Type))
	}
	if c.Timer.RefreshInterval < c.Timer.Tick {
		errs = append(errs, errors.New("timer.refresh_interval must not be shorter than timer.tick"))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Addr - адрес служебного HTTP сервера
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// DSN - строка подключения к PostgreSQL
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}
