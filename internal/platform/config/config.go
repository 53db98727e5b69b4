package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string         `mapstructure:"service_name"`
	HTTPPort    string         `mapstructure:"http_port"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	Ballot      BallotConfig   `mapstructure:"ballot"`
	Audit       AuditConfig    `mapstructure:"audit"`
}

type PostgresConfig struct {
	DSN         string        `mapstructure:"dsn"`
	PingTimeout time.Duration `mapstructure:"ping_timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type BallotConfig struct {
	// AdminPrincipal is the single principal allowed to run admin-only
	// ledger operations.
	AdminPrincipal string `mapstructure:"admin_principal"`
}

type AuditConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

// Load reads the optional config file at path, then applies environment
// overrides (GREENBALLOT_*). A missing file falls back to env and defaults
// so the binaries run bare.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("service_name", "greenballot")
	v.SetDefault("http_port", "8080")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.ping_timeout", 5*time.Second)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "greenballot.audit")
	v.SetDefault("ballot.admin_principal", "")
	v.SetDefault("audit.poll_interval", 2*time.Second)
	v.SetDefault("audit.batch_size", 100)

	v.SetEnvPrefix("GREENBALLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
