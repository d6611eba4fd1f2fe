package config

import (
	"errors"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"strings"
	"time"
	_ "time/tzdata"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMongo    Driver = "mongo"
	DriverMemory   Driver = "memory"
)

type Config struct {
	App struct {
		Env             Environment `yaml:"env" env:"ENV" env-required:""`
		// DefaultTimezone falls back to the runtime TZ, then to UTC.
		DefaultTimezone string `yaml:"default_timezone" env:"DEFAULT_TIMEZONE"`
	} `yaml:"app" env-prefix:"APP_" env-required:""`

	TZ string `yaml:"-" env:"TZ"`

	Server struct {
		Host string `yaml:"host" env:"HOST" env-default:"localhost"`
		Port int    `yaml:"port" env:"PORT" env-default:"8080"`
	} `yaml:"server" env-prefix:"SERVER_"`

	Storage struct {
		// Driver stores accounts: postgres or memory.
		Driver Driver `yaml:"driver" env:"DRIVER" env-default:"postgres"`
		// Profiles overrides where profiles live: postgres, mongo or memory.
		// Empty means the same as Driver.
		Profiles Driver `yaml:"profiles" env:"PROFILES"`
	} `yaml:"storage" env-prefix:"STORAGE_"`

	DB struct {
		DSN string `yaml:"dsn" env:"DSN"`
	} `yaml:"db" env-prefix:"DB_"`

	Mongo struct {
		URI      string `yaml:"uri" env:"URI" env-default:"mongodb://localhost:27017"`
		Database string `yaml:"database" env:"DATABASE" env-default:"endurance"`
	} `yaml:"mongo" env-prefix:"MONGO_"`

	Redis struct {
		// An empty address keeps onboarding drafts in memory.
		Addr     string        `yaml:"addr" env:"ADDR"`
		Password string        `yaml:"password" env:"PASSWORD"`
		DB       int           `yaml:"db" env:"DB" env-default:"0"`
		DraftTTL time.Duration `yaml:"draft_ttl" env:"DRAFT_TTL" env-default:"168h"`
	} `yaml:"redis" env-prefix:"REDIS_"`

	JWT struct {
		AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"2h"`
		RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"24h"`
		Secret          string        `yaml:"secret" env:"SECRET" env-required:""`
	} `yaml:"jwt" env-prefix:"JWT_" env-required:""`

	RateLimit struct {
		AuthRPS   float64 `yaml:"auth_rps" env:"AUTH_RPS" env-default:"5"`
		AuthBurst int     `yaml:"auth_burst" env:"AUTH_BURST" env-default:"10"`
	} `yaml:"rate_limit" env-prefix:"RATE_LIMIT_"`
}

// ProfilesDriver is the driver that stores profiles.
func (c *Config) ProfilesDriver() Driver {
	if c.Storage.Profiles == "" {
		return c.Storage.Driver
	}
	return c.Storage.Profiles
}

func (c *Config) validate() error {
	if err := c.App.Env.SetValue(string(c.App.Env)); err != nil {
		return err
	}

	if err := c.resolveTimezone(); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return configNotLoadedErr("unknown storage driver %q", c.Storage.Driver)
	}

	switch profiles := c.ProfilesDriver(); {
	case profiles != DriverPostgres && profiles != DriverMongo && profiles != DriverMemory:
		return configNotLoadedErr("unknown profiles driver %q", profiles)
	case (profiles == DriverMemory) != (c.Storage.Driver == DriverMemory):
		return configNotLoadedErr("memory storage can't be mixed with other drivers")
	}

	if c.usesPostgres() && c.DB.DSN == "" {
		return configNotLoadedErr("db.dsn is required by the postgres driver")
	}
	return nil
}

func (c *Config) resolveTimezone() error {
	tz := c.App.DefaultTimezone
	if tz == "" {
		tz = strings.TrimPrefix(c.TZ, ":")
	}
	if tz == "" {
		tz = "UTC"
	}

	if strings.EqualFold(tz, "local") {
		return configNotLoadedErr("default timezone must be an IANA name, got %q", tz)
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return configNotLoadedErr("invalid default timezone %q: %w", tz, err)
	}

	c.App.DefaultTimezone = tz
	return nil
}

func (c *Config) usesPostgres() bool {
	return c.Storage.Driver == DriverPostgres || c.ProfilesDriver() == DriverPostgres
}

func Load(filePath string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
