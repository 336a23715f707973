package config

import (
	"time"

	pkgconfig "github.com/weiawesome/wes-idgen/pkg/config"
	"github.com/weiawesome/wes-idgen/pkg/database"
	"github.com/weiawesome/wes-idgen/pkg/idgen"
	"github.com/weiawesome/wes-idgen/pkg/pubsub"
)

type Config struct {
	Server    ServerConfig
	GRPC      GRPCConfig
	IDGen     IDGenConfig  `mapstructure:"idgen"`
	Snowflake idgen.Config `mapstructure:"snowflake"`
	NanoID    idgen.Config `mapstructure:"nanoid"`
	CUID2     idgen.Config `mapstructure:"cuid2"`
	Database  DatabaseConfig
	Events    pubsub.Config
	Auth      AuthConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	Host string
	Port int
}

type IDGenConfig struct {
	// Kind is the default kind served when a request names none.
	Kind     string `mapstructure:"kind"`
	MaxBatch int    `mapstructure:"max_batch"`
}

type DatabaseConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	database.Config `mapstructure:",squash"`
}

// AuthConfig protects the issuance ledger routes. An empty secret leaves
// them public.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// KindConfigs returns the registry options for every kind that takes them.
func (c *Config) KindConfigs() map[idgen.Kind]idgen.Config {
	return map[idgen.Kind]idgen.Config{
		idgen.KindSnowflake: c.Snowflake,
		idgen.KindNanoID:    c.NanoID,
		idgen.KindCUID2:     c.CUID2,
	}
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load(pkgconfig.GetEnv("CONFIG_PATH", "./config"), "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50053)
	v.SetDefault("idgen.kind", string(idgen.KindSnowflake))
	v.SetDefault("idgen.max_batch", 1000)
	v.SetDefault("snowflake.instance", 1)
	v.SetDefault("snowflake.epoch", 1704067200000)
	v.SetDefault("nanoid.size", idgen.DefaultNanoIDSize)
	v.SetDefault("nanoid.alphabet", idgen.DefaultNanoIDAlphabet)
	v.SetDefault("cuid2.length", idgen.DefaultCUID2Length)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "idgen.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("events.driver", "")
	v.SetDefault("events.redis.address", "localhost:6379")
	v.SetDefault("events.redis.pool_size", 10)
	v.SetDefault("events.redis.read_timeout", "3s")
	v.SetDefault("events.redis.write_timeout", "3s")
	v.SetDefault("events.kafka.brokers", "localhost:9092")
	v.SetDefault("events.kafka.partitions", 4)
	v.SetDefault("auth.issuer", "idgen-service")
	v.SetDefault("log.level", "info")

	// Override from environment
	err = pkgconfig.BindEnvs(v, map[string]string{
		"server.port":          "PORT",
		"grpc.port":            "GRPC_PORT",
		"idgen.kind":           "IDGEN_KIND",
		"snowflake.instance":   "SNOWFLAKE_INSTANCE",
		"snowflake.epoch":      "SNOWFLAKE_EPOCH",
		"nanoid.size":          "NANOID_SIZE",
		"nanoid.alphabet":      "NANOID_ALPHABET",
		"cuid2.length":         "CUID2_LENGTH",
		"database.enabled":     "DATABASE_ENABLED",
		"events.driver":        "EVENTS_DRIVER",
		"events.redis.address": "REDIS_ADDRESS",
		"events.kafka.brokers": "KAFKA_BROKERS",
		"auth.jwt_secret":      "JWT_SECRET",
		"log.level":            "LOG_LEVEL",
	})
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
