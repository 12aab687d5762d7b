// Package bootstrap wires every core component into a runnable Service,
// grounded on the teacher's internal/bootstrap (config.go/service.go/
// server.go), trimmed of the multi-tenant routing and OpenTelemetry
// plumbing this spec's scope does not carry (see DESIGN.md).
package bootstrap

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the flat struct-of-env-tags every deployment knob lives on,
// loaded with github.com/caarlos0/env/v11 the way the rest of the
// pack's services load configuration.
type Config struct {
	EnvName       string `env:"ENV_NAME" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":3003"`

	EventStoreDriver string `env:"EVENT_STORE_DRIVER" envDefault:"memory"` // "memory" | "postgres"
	PostgresDSN      string `env:"POSTGRES_DSN"`

	RedisURL             string `env:"REDIS_URL"`
	IdempotencyRetention  time.Duration `env:"IDEMPOTENCY_RETENTION" envDefault:"24h"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQEnabled  bool   `env:"RABBITMQ_ENABLED" envDefault:"false"`

	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"eventledger"`
	MongoEnabled  bool   `env:"MONGO_ENABLED" envDefault:"false"`

	JWTSecret   string `env:"JWT_SECRET"`
	JWTIssuer   string `env:"JWT_ISSUER" envDefault:"eventledger"`
	JWTAudience string `env:"JWT_AUDIENCE" envDefault:"eventledger-clients"`

	SubscriptionBufferSize int `env:"SUBSCRIPTION_BUFFER_SIZE" envDefault:"256"`
}

// LoadConfig reads Config from the process environment, after a .env
// file (if present) has already been loaded into it by the caller.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: parse config: %w", err)
	}

	return cfg, nil
}
