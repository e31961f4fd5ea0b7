package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the campus service configuration.
type Config struct {
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"campusqa"`

	// Institutional-domain predicate: exact, case-sensitive suffix match,
	// e.g. "@institution.edu".
	InstitutionalEmailDomain string `env:"INSTITUTIONAL_EMAIL_DOMAIN"`

	VerificationTokenTTL   time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	VerificationRateLimit  int64         `env:"VERIFICATION_RATE_LIMIT" envDefault:"3"`
	VerificationRateWindow time.Duration `env:"VERIFICATION_RATE_WINDOW" envDefault:"1h"`

	// AppVerificationURL is the page the emailed verification link points at.
	AppVerificationURL string `env:"APP_VERIFICATION_URL"`

	Token  TokenConfig
	Kafka  KafkaConfig
	Consul ConsulConfig

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`
}

// TokenConfig holds JWT session token configuration.
type TokenConfig struct {
	Issuer                string        `env:"TOKEN_ISSUER" envDefault:"campus-qa-api"`
	AccessTokenSecret     string        `env:"ACCESS_TOKEN_SECRET"`
	AccessTokenExpiresIn  time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN" envDefault:"15m"`
	RefreshTokenSecret    string        `env:"REFRESH_TOKEN_SECRET"`
	RefreshTokenExpiresIn time.Duration `env:"REFRESH_TOKEN_EXPIRES_IN" envDefault:"720h"`
}

// KafkaConfig holds event queue configuration. An empty broker disables the queue.
type KafkaConfig struct {
	Broker           string `env:"KAFKA_BROKER"`
	AnswerEventTopic string `env:"KAFKA_ANSWER_EVENT_TOPIC" envDefault:"qa.answer-events"`
	NotifyTopic      string `env:"KAFKA_NOTIFY_TOPIC" envDefault:"qa.notifications"`
	GroupID          string `env:"KAFKA_GROUP_ID" envDefault:"campus-service"`
	Username         string `env:"KAFKA_USERNAME"`
	Password         string `env:"KAFKA_PASSWORD"`
}

// ConsulConfig holds service discovery configuration. An empty address
// disables registration.
type ConsulConfig struct {
	Address     string `env:"CONSUL_ADDRESS"`
	ServiceName string `env:"CONSUL_SERVICE_NAME" envDefault:"campus-service"`
	ServiceID   string `env:"CONSUL_SERVICE_ID"`
}

// NewConfig creates a Config instance from environment variables.
func NewConfig(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate service configuration")
	}

	return &cfg
}

// validate checks if the service configuration is valid.
func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.InstitutionalEmailDomain == "" {
		return fmt.Errorf("missing INSTITUTIONAL_EMAIL_DOMAIN environment variable")
	}
	if !strings.HasPrefix(c.InstitutionalEmailDomain, "@") {
		return fmt.Errorf("INSTITUTIONAL_EMAIL_DOMAIN must start with '@'")
	}
	if c.AppVerificationURL == "" {
		return fmt.Errorf("missing APP_VERIFICATION_URL environment variable")
	}
	if c.Token.AccessTokenSecret == "" {
		return fmt.Errorf("missing ACCESS_TOKEN_SECRET environment variable")
	}
	if c.Token.RefreshTokenSecret == "" {
		return fmt.Errorf("missing REFRESH_TOKEN_SECRET environment variable")
	}

	return nil
}
