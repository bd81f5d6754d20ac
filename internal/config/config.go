package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"taskflow/internal/logging"
)

const defaultPath = "config/config.yaml"

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	FromName     string `yaml:"from_name"`
}

type PDFConfig struct {
	Engine     string `yaml:"engine"` // chrome | fpdf
	ChromePath string `yaml:"chrome_path"`
	FontPath   string `yaml:"font_path"`
}

// ScheduleConfig is one recurring report delivery.
type ScheduleConfig struct {
	Name       string   `yaml:"name"`
	Cron       string   `yaml:"cron"`
	Kind       string   `yaml:"kind"`
	ProjectID  int64    `yaml:"project_id"`
	UserID     int64    `yaml:"user_id"`
	Department string   `yaml:"department"`
	Timeframe  string   `yaml:"timeframe"`
	Format     string   `yaml:"format"`
	Recipients []string `yaml:"recipients"`
	ChatID     int64    `yaml:"telegram_chat_id"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		AccessTTL time.Duration `yaml:"access_ttl"`
	} `yaml:"auth"`
	Email EmailConfig `yaml:"email"`
	Mail  struct {
		Provider string `yaml:"provider"` // smtp | sendgrid
	} `yaml:"mail"`
	SendGrid struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"sendgrid"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	PDF     PDFConfig `yaml:"pdf"`
	Reports struct {
		Departments []string `yaml:"departments"`
	} `yaml:"reports"`
	Schedules []ScheduleConfig `yaml:"schedules"`
	Logging   logging.Config   `yaml:"logging"`
}

// LoadConfig reads the file named by CONFIG_PATH (config/config.yaml by
// default) and panics if it can't.
func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultPath
	}
	cfg, err := Load(path)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Auth.AccessTTL == 0 {
		c.Auth.AccessTTL = 24 * time.Hour
	}
	if c.Mail.Provider == "" {
		c.Mail.Provider = "smtp"
	}
	if c.PDF.Engine == "" {
		c.PDF.Engine = "chrome"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	for i := range c.Schedules {
		if c.Schedules[i].Format == "" {
			c.Schedules[i].Format = "xlsx"
		}
	}
}

func (c *Config) validate() error {
	switch c.Mail.Provider {
	case "smtp", "sendgrid":
	default:
		return fmt.Errorf("mail.provider must be smtp or sendgrid, got %q", c.Mail.Provider)
	}
	switch c.PDF.Engine {
	case "chrome", "fpdf":
	default:
		return fmt.Errorf("pdf.engine must be chrome or fpdf, got %q", c.PDF.Engine)
	}
	if c.PDF.Engine == "fpdf" && c.PDF.FontPath != "" {
		if _, err := os.Stat(c.PDF.FontPath); err != nil {
			return fmt.Errorf("pdf.font_path: %w", err)
		}
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	for _, s := range c.Schedules {
		if s.Name == "" || s.Cron == "" || s.Kind == "" {
			return fmt.Errorf("schedule %q: name, cron and kind are required", s.Name)
		}
	}
	return nil
}
