package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StorageConfig selects the key-value backend the ledger persists into.
type StorageConfig struct {
	Driver     string
	SQLitePath string
	KeyPrefix  string
	Postgres   PostgresConfig
	Redis      RedisConfig
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LedgerConfig holds the knobs of the ledger store itself.
type LedgerConfig struct {
	AverageWindowDays   int
	DayShiftStartHour   int
	NightShiftStartHour int
	ShiftLength         time.Duration
	Location            *time.Location
	AutoCompleteExpired bool
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type Config struct {
	Storage StorageConfig
	Ledger  LedgerConfig
	Server  ServerConfig
	JWT     JWTConfig
}

func setDefaults() {
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.sqlite_path", "./data/savingsjars.db")
	viper.SetDefault("storage.key_prefix", "savingsjars")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.name", "savingsjars")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 2)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("ledger.average_window_days", 30)
	viper.SetDefault("ledger.day_shift_start_hour", 8)
	viper.SetDefault("ledger.night_shift_start_hour", 20)
	viper.SetDefault("ledger.shift_length", 12*time.Hour)
	viper.SetDefault("ledger.timezone", "Local")
	viper.SetDefault("ledger.auto_complete_expired", true)

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.allowed_origins", []string{"https://*", "http://*"})

	viper.SetDefault("jwt.secret_key", "")
	viper.SetDefault("jwt.expiry_hours", 24*30)
}

// BindEnv maps the environment variables the service understands onto viper keys.
func BindEnv() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.BindEnv("storage.driver", "STORAGE_DRIVER")
	viper.BindEnv("storage.sqlite_path", "STORAGE_SQLITE_PATH")
	viper.BindEnv("storage.key_prefix", "STORAGE_KEY_PREFIX")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("ledger.timezone", "LEDGER_TIMEZONE")
	viper.BindEnv("ledger.auto_complete_expired", "LEDGER_AUTO_COMPLETE_EXPIRED")

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
}

// ReadFile loads a config file into viper. A missing file is not an error.
func ReadFile(path string) {
	if path == "" {
		path = ".env"
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}
}

// Load builds a Config from whatever viper currently holds.
func Load() (*Config, error) {
	setDefaults()

	location, err := loadLocation(viper.GetString("ledger.timezone"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Storage: StorageConfig{
			Driver:     strings.ToLower(viper.GetString("storage.driver")),
			SQLitePath: viper.GetString("storage.sqlite_path"),
			KeyPrefix:  viper.GetString("storage.key_prefix"),
			Postgres: PostgresConfig{
				Host:            viper.GetString("database.host"),
				Port:            viper.GetString("database.port"),
				User:            viper.GetString("database.user"),
				Password:        viper.GetString("database.password"),
				Name:            viper.GetString("database.name"),
				SSLMode:         viper.GetString("database.ssl_mode"),
				MaxOpenConns:    viper.GetInt("database.max_open_conns"),
				MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
				ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
			},
			Redis: RedisConfig{
				Host:     viper.GetString("redis.host"),
				Port:     viper.GetString("redis.port"),
				Password: viper.GetString("redis.password"),
				DB:       viper.GetInt("redis.db"),
			},
		},
		Ledger: LedgerConfig{
			AverageWindowDays:   viper.GetInt("ledger.average_window_days"),
			DayShiftStartHour:   viper.GetInt("ledger.day_shift_start_hour"),
			NightShiftStartHour: viper.GetInt("ledger.night_shift_start_hour"),
			ShiftLength:         viper.GetDuration("ledger.shift_length"),
			Location:            location,
			AutoCompleteExpired: viper.GetBool("ledger.auto_complete_expired"),
		},
		Server: ServerConfig{
			Port:           viper.GetString("server.port"),
			AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		},
		JWT: JWTConfig{
			SecretKey:   viper.GetString("jwt.secret_key"),
			ExpiryHours: viper.GetInt("jwt.expiry_hours"),
		},
	}

	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultLedgerConfig mirrors the viper defaults; used by tests and embedders.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		AverageWindowDays:   30,
		DayShiftStartHour:   8,
		NightShiftStartHour: 20,
		ShiftLength:         12 * time.Hour,
		Location:            time.Local,
		AutoCompleteExpired: true,
	}
}

func (c LedgerConfig) validate() error {
	if c.AverageWindowDays <= 0 {
		return fmt.Errorf("ledger.average_window_days must be positive, got %d", c.AverageWindowDays)
	}
	for name, hour := range map[string]int{"day": c.DayShiftStartHour, "night": c.NightShiftStartHour} {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("ledger.%s_shift_start_hour out of range: %d", name, hour)
		}
	}
	if c.ShiftLength <= 0 {
		return fmt.Errorf("ledger.shift_length must be positive, got %s", c.ShiftLength)
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("ledger.timezone: %w", err)
	}
	return location, nil
}
