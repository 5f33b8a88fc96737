// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strconv"
)

// Config is the process configuration shared by every command.
type Config struct {
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	AWS         AWSConfig      `mapstructure:"aws"`
	Stripe      StripeConfig   `mapstructure:"stripe"`
	AMQP        AMQPConfig     `mapstructure:"amqp"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	FrontendURL string         `mapstructure:"frontend_url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	SecretARN    string `mapstructure:"secret_arn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection URL.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + strconv.Itoa(d.Port),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type AWSConfig struct {
	Region              string `mapstructure:"region"`
	AccessKeyID         string `mapstructure:"access_key_id"`
	SecretAccessKey     string `mapstructure:"secret_access_key"`
	SESRegion           string `mapstructure:"ses_region"`
	SESConfigurationSet string `mapstructure:"ses_configuration_set"`
	DefaultSender       string `mapstructure:"default_sender"`
	UserPoolID          string `mapstructure:"user_pool_id"`
	OrganizerTopicARN   string `mapstructure:"organizer_topic_arn"`
	FeedbackTopicARN    string `mapstructure:"feedback_topic_arn"`
}

// MailRegion falls back to the general region when no SES region is set.
func (a AWSConfig) MailRegion() string {
	if a.SESRegion != "" {
		return a.SESRegion
	}
	return a.Region
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type AMQPConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) validate() error {
	if c.Database.Host == "" && c.Database.SecretARN == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("database port must be positive, got %d", c.Database.Port)
	}
	if c.FrontendURL == "" {
		return fmt.Errorf("frontend url is required")
	}
	return nil
}
