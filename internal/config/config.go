package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `toml:"env" env:"ENV" env-default:"dev"`
	Server   HTTPServer     `toml:"server" env-prefix:"SERVER_"`
	Postgres PostgresConfig `toml:"postgres" env-prefix:"PG_"`
	Team     TeamConfig     `toml:"team" env-prefix:"TEAM_"`
}

type HTTPServer struct {
	Port    string        `toml:"port" env:"PORT" env-default:"8080"`
	Timeout time.Duration `toml:"timeout" env:"TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host     string `toml:"host" env:"HOST" env-default:"localhost"`
	Port     string `toml:"port" env:"PORT" env-default:"5432"`
	User     string `toml:"user" env:"USER" env-default:"postgres"`
	Password string `toml:"password" env:"PASSWORD" env-default:"postgres"`
	DbName   string `toml:"dbname" env:"DBNAME" env-default:"team_manager_db"`
	SslMode  string `toml:"sslmode" env:"SSLMODE" env-default:"disable"`
}

type TeamConfig struct {
	MaxMembers int `toml:"max_members" env:"MAX_MEMBERS" env-default:"6"`
}

// MustLoad reads configuration from a TOML file when CONFIG_PATH is set,
// otherwise from the environment. Environment variables win either way.
func MustLoad() *Config {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			panic("failed to read config file " + path + ": " + err.Error())
		}
		return &cfg
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read config from environment: " + err.Error())
	}

	return &cfg
}
