package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	DefaultRunAddress    = "localhost:8080"
	DefaultMigrationsDir = "internal/db/migrations"
	DefaultLockTimeout   = 5 * time.Second
	DefaultTokenTTL      = 24 * time.Hour
	DefaultAllowOrigin   = "*"
)

var (
	ErrDatabaseDSNMissing = errors.New("database DSN is not set")
	ErrJWTSecretMissing   = errors.New("jwt secret is not set")
)

type Config struct {
	RunAddress    string        `env:"RUN_ADDRESS"`
	DatabaseDSN   string        `env:"DATABASE_URI"`
	MigrationsDir string        `env:"MIGRATIONS_DIR"`
	JWTSecret     string        `env:"JWT_SECRET"`
	LockTimeout   time.Duration `env:"LOCK_TIMEOUT"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"`
	LogLevel      string        `env:"LOG_LEVEL"`
	AllowOrigin   string        `env:"CORS_ALLOW_ORIGIN"`
}

// String не выводит секреты, конфиг пишется в лог при старте.
func (c Config) String() string {
	masked := c
	if masked.JWTSecret != "" {
		masked.JWTSecret = "***"
	}
	if masked.DatabaseDSN != "" {
		masked.DatabaseDSN = "***"
	}
	type plain Config
	return fmt.Sprintf("%+v", plain(masked))
}

// LoadConfig собирает конфиг из .env (если есть), переменных окружения и флагов. Переменные окружения
// приоритетнее флагов.
func LoadConfig(args []string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, errors.Wrap(envParseErr, "parse env config")
	}

	if flagsErr := loadFlags(&flagsConfig, args); flagsErr != nil {
		return nil, flagsErr
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, ErrDatabaseDSNMissing
	}
	if conf.JWTSecret == "" {
		return nil, ErrJWTSecretMissing
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return config
}

// loadDotEnv подгружает переменные из файла, не перезаписывая уже выставленные. Отсутствие файла не ошибка.
func loadDotEnv(path string) error {
	if _, statErr := os.Stat(path); statErr != nil {
		if os.IsNotExist(statErr) {
			return nil
		}
		return errors.Wrapf(statErr, "stat %s", path)
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	return nil
}

func loadFlags(flagConfig *Config, args []string) error {
	fs := flag.NewFlagSet("bank", flag.ContinueOnError)
	fs.StringVar(&flagConfig.RunAddress, "a", DefaultRunAddress, "Run address in format host:port")
	fs.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	fs.StringVar(&flagConfig.MigrationsDir, "m", DefaultMigrationsDir, "Database migrations directory")
	fs.StringVar(&flagConfig.JWTSecret, "j", "", "JWT signing secret")
	fs.DurationVar(&flagConfig.LockTimeout, "l", DefaultLockTimeout, "Max wait for an account lock")
	fs.DurationVar(&flagConfig.TokenTTL, "t", DefaultTokenTTL, "Auth token lifetime")
	fs.StringVar(&flagConfig.LogLevel, "v", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&flagConfig.AllowOrigin, "c", DefaultAllowOrigin, "CORS allowed origin")

	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse flags")
	}
	return nil
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:    defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:   defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir: defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTSecret:     defaultIfBlank(envConfig.JWTSecret, flagsConfig.JWTSecret),
		LockTimeout:   defaultIfZero(envConfig.LockTimeout, flagsConfig.LockTimeout),
		TokenTTL:      defaultIfZero(envConfig.TokenTTL, flagsConfig.TokenTTL),
		LogLevel:      defaultIfBlank(envConfig.LogLevel, flagsConfig.LogLevel),
		AllowOrigin:   defaultIfBlank(envConfig.AllowOrigin, flagsConfig.AllowOrigin),
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func defaultIfZero(value, defaultValue time.Duration) time.Duration {
	if value <= 0 {
		return defaultValue
	}
	return value
}
