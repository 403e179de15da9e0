package config

import (
	"encoding/hex"
	"strings"
	"sync"

	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	GoogleAPI GoogleAPIConfig
	Security  SecurityConfig
	Calendar  CalendarConfig
}

type AppConfig struct {
	Name          string
	Port          int
	LogLevel      string
	PublicBaseURL string
	FrontendURL   string
}

type DatabaseConfig struct {
	Driver          string // postgres | sqlite3
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	DSN             string // sqlite file path, or a full postgres DSN
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type GoogleAPIConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// Overrides for the OAuth token endpoint and Calendar API base; empty means Google's.
	TokenURL        string
	CalendarBaseURL string
}

type SecurityConfig struct {
	EncryptionKey string
}

type CalendarConfig struct {
	RefreshBeforeSync bool
	SyncCron          string
	LockTTLSeconds    int
	LockWaitSeconds   int
}

var (
	mu       sync.RWMutex
	instance *Config
)

// Load reads .env (if present) and the environment, validates the result and
// stores it as the process configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:          v.GetString("APP_NAME"),
			Port:          v.GetInt("PORT"),
			LogLevel:      v.GetString("LOG_LEVEL"),
			PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			FrontendURL:   strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("DB_DRIVER"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			DSN:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetInt("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		GoogleAPI: GoogleAPIConfig{
			ClientID:        v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret:    v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURI:     v.GetString("GOOGLE_REDIRECT_URI"),
			TokenURL:        v.GetString("GOOGLE_TOKEN_URL"),
			CalendarBaseURL: v.GetString("GOOGLE_CALENDAR_BASE_URL"),
		},
		Security: SecurityConfig{
			EncryptionKey: v.GetString("ENCRYPTION_KEY"),
		},
		Calendar: CalendarConfig{
			RefreshBeforeSync: v.GetBool("CALENDAR_REFRESH_BEFORE_SYNC"),
			SyncCron:          v.GetString("CALENDAR_SYNC_CRON"),
			LockTTLSeconds:    v.GetInt("CALENDAR_LOCK_TTL_SECONDS"),
			LockWaitSeconds:   v.GetInt("CALENDAR_LOCK_WAIT_SECONDS"),
		},
	}

	if cfg.GoogleAPI.RedirectURI == "" && cfg.App.PublicBaseURL != "" {
		cfg.GoogleAPI.RedirectURI = cfg.App.PublicBaseURL + constants.CallbackPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Set(cfg)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "assistflow-backend")
	v.SetDefault("PORT", 3000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", constants.DatabaseSSLMode)
	v.SetDefault("DB_MAX_OPEN_CONNS", constants.DatabaseMaxOpenConns)
	v.SetDefault("DB_MAX_IDLE_CONNS", constants.DatabaseMaxIdleConns)
	v.SetDefault("DB_CONN_MAX_LIFETIME", constants.DatabaseConnMaxLifetime)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("CALENDAR_REFRESH_BEFORE_SYNC", false)
	v.SetDefault("CALENDAR_SYNC_CRON", constants.DefaultSyncCron)
	v.SetDefault("CALENDAR_LOCK_TTL_SECONDS", int(constants.SyncLockTTL.Seconds()))
	v.SetDefault("CALENDAR_LOCK_WAIT_SECONDS", int(constants.SyncLockWait.Seconds()))
}

// Validate checks the settings the service cannot boot without.
func (c *Config) Validate() error {
	var missing []string
	if c.Security.EncryptionKey == "" {
		missing = append(missing, "ENCRYPTION_KEY")
	}
	if c.GoogleAPI.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleAPI.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.GoogleAPI.RedirectURI == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URI or PUBLIC_BASE_URL")
	}
	if c.App.FrontendURL == "" {
		missing = append(missing, "FRONTEND_URL")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" && (c.Database.User == "" || c.Database.DBName == "") {
			missing = append(missing, "DB_USER/DB_NAME or DATABASE_URL")
		}
	case "sqlite3":
		if c.Database.DSN == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		return errors.ConfigurationError("unsupported DB_DRIVER "+c.Database.Driver, nil)
	}
	if len(missing) > 0 {
		return errors.ConfigurationError("missing required configuration: "+strings.Join(missing, ", "), nil)
	}

	key, err := hex.DecodeString(c.Security.EncryptionKey)
	if err != nil || len(key) != 32 {
		return errors.ConfigurationError("ENCRYPTION_KEY must be 64 hex characters", err)
	}
	return nil
}

func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}

// Get returns the loaded configuration and panics when Load has not run.
func Get() *Config {
	cfg, err := GetSafe()
	if err != nil {
		panic(err)
	}
	return cfg
}

func GetSafe() (*Config, error) {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return nil, errors.ConfigurationError("configuration not loaded", nil)
	}
	return instance, nil
}
