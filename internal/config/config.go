package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Secrets  Secrets `mapstructure:"-"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
	RateLimitRPS   int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst int    `mapstructure:"rate_limit_burst"`
	LogLevel       string `mapstructure:"log_level"`
	PrettyLogs     bool   `mapstructure:"pretty_logs"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	RefreshSecret      string `mapstructure:"refresh_secret"`
	ExpiryHours        int    `mapstructure:"expiry_hours"`
	RefreshExpiryHours int    `mapstructure:"refresh_expiry_hours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Secrets are environment-only overrides for values that must not live
// in config.yaml.
type Secrets struct {
	DatabasePassword string `envconfig:"CAREFLOW_DB_PASSWORD"`
	JWTSecret        string `envconfig:"CAREFLOW_JWT_SECRET"`
	SMTPPassword     string `envconfig:"CAREFLOW_SMTP_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.Secrets); err != nil {
		return nil, fmt.Errorf("failed to read secret overrides: %w", err)
	}
	if config.Secrets.DatabasePassword != "" {
		config.Database.Password = config.Secrets.DatabasePassword
	}
	if config.Secrets.JWTSecret != "" {
		config.JWT.Secret = config.Secrets.JWTSecret
	}
	if config.Secrets.SMTPPassword != "" {
		config.SMTP.Password = config.Secrets.SMTPPassword
	}

	return &config, nil
}
