package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Sheet struct {
	MenuURL    string `mapstructure:"menu_url"`
	OrdersURL  string `mapstructure:"orders_url"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type DB struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"password"`
	Name string `mapstructure:"database"`
}

type MQ struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"password"`
}

type App struct {
	HTTPPort     int           `mapstructure:"http_port"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	StoreBackend string        `mapstructure:"store_backend"` // sheet | postgres
	Sheet        Sheet         `mapstructure:"sheet"`
	Database     DB            `mapstructure:"database"`
	Rabbit       MQ            `mapstructure:"rabbitmq"`
}

// Load reads config.yaml (or the given path) via viper, with env
// overrides. Defaults mirror the production sheet setup.
func Load(path string) (App, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("deploy")
	}
	v.SetEnvPrefix("comanda")
	v.AutomaticEnv()

	v.SetDefault("http_port", 3000)
	v.SetDefault("poll_interval", 5*time.Second)
	v.SetDefault("store_backend", "sheet")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("database.port", 5432)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return App{}, fmt.Errorf("read config: %w", err)
		}
	}

	var a App
	if err := v.Unmarshal(&a); err != nil {
		return App{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return a, nil
}

// ValidateStore checks the fields the chosen store backend needs. Called
// by server mode only; the notification subscriber needs no store.
func (a App) ValidateStore() error {
	switch a.StoreBackend {
	case "sheet":
		if a.Sheet.OrdersURL == "" || a.Sheet.WebhookURL == "" {
			return fmt.Errorf("invalid config: sheet backend needs sheet.orders_url and sheet.webhook_url")
		}
	case "postgres":
		if a.Database.Host == "" {
			return fmt.Errorf("invalid config: postgres backend needs database.host")
		}
	default:
		return fmt.Errorf("invalid config: unknown store_backend %q", a.StoreBackend)
	}
	return nil
}
