package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"pet-wellness/internal/domain/wellness"
	"pet-wellness/internal/platform/logger"
)

const (
	DefaultPort     = "8080"
	DefaultCacheTTL = 5 * time.Minute
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port string

	// Store: DBDSN (Postgres) tiene prioridad sobre SQLitePath; sin ninguno, memoria.
	DBDSN      string
	SQLitePath string

	// Cache: con RedisAddr se usa Redis; si no, memoria.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Verificador de tokens remoto; vacío = modo dev con X-Debug-User-ID.
	AuthVerifyURL string
	AuthAPIKey    string

	LogLevel  logger.Level
	LogFormat logger.Format
	AppName   string

	TZName string

	// Overrides de pesos; nil = default.
	MoodMultiplier *float64
	VitalCritical  *float64
	VitalWarning   *float64
	VitalNormal    *float64
	GumCritical    *float64
}

// Load lee la configuración del entorno.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(k string) string { return strings.TrimSpace(getenv(k)) }

	cfg := Config{
		Port:          firstNonEmpty(env("PORT"), DefaultPort),
		DBDSN:         env("DB_DSN"),
		SQLitePath:    env("SQLITE_PATH"),
		RedisAddr:     env("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		CacheTTL:      DefaultCacheTTL,
		AuthVerifyURL: env("AUTH_VERIFY_URL"),
		AuthAPIKey:    env("AUTH_API_KEY"),
		AppName:       firstNonEmpty(env("APP_NAME"), "pet-wellness"),
		TZName:        firstNonEmpty(env("TZ_NAME"), "UTC"),
	}

	// niveles y formatos desconocidos caen en info/text
	cfg.LogLevel = logger.ParseLevel(env("LOG_LEVEL"))
	cfg.LogFormat = logger.ParseFormat(env("LOG_FORMAT"))

	if v := env("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: REDIS_DB: %v", ErrInvalidConfig, err)
		}
		cfg.RedisDB = n
	}
	if v := env("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: CACHE_TTL: %v", ErrInvalidConfig, err)
		}
		cfg.CacheTTL = d
	}

	floats := []struct {
		key string
		dst **float64
	}{
		{"WELLNESS_MOOD_MULTIPLIER", &cfg.MoodMultiplier},
		{"WELLNESS_VITAL_CRITICAL", &cfg.VitalCritical},
		{"WELLNESS_VITAL_WARNING", &cfg.VitalWarning},
		{"WELLNESS_VITAL_NORMAL", &cfg.VitalNormal},
		{"WELLNESS_GUM_CRITICAL", &cfg.GumCritical},
	}
	for _, f := range floats {
		v := env(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, f.key, err)
		}
		*f.dst = &n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("%w: PORT must be a valid port number", ErrInvalidConfig)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("%w: REDIS_DB must not be negative", ErrInvalidConfig)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: CACHE_TTL must not be negative", ErrInvalidConfig)
	}
	if (c.AuthVerifyURL == "") != (c.AuthAPIKey == "") {
		return fmt.Errorf("%w: AUTH_VERIFY_URL and AUTH_API_KEY go together", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.TZName); err != nil {
		return fmt.Errorf("%w: TZ_NAME: %v", ErrInvalidConfig, err)
	}
	if c.MoodMultiplier != nil && *c.MoodMultiplier <= 0 {
		return fmt.Errorf("%w: WELLNESS_MOOD_MULTIPLIER must be positive", ErrInvalidConfig)
	}
	// penalizaciones negativas, normal no negativo
	for name, v := range map[string]*float64{
		"WELLNESS_VITAL_CRITICAL": c.VitalCritical,
		"WELLNESS_VITAL_WARNING":  c.VitalWarning,
		"WELLNESS_GUM_CRITICAL":   c.GumCritical,
	} {
		if v != nil && *v > 0 {
			return fmt.Errorf("%w: %s must not be positive", ErrInvalidConfig, name)
		}
	}
	if c.VitalNormal != nil && *c.VitalNormal < 0 {
		return fmt.Errorf("%w: WELLNESS_VITAL_NORMAL must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Weights aplica los overrides sobre los pesos por defecto.
func (c Config) Weights() wellness.Weights {
	w := wellness.DefaultWeights()
	if c.MoodMultiplier != nil {
		w.MoodMultiplier = *c.MoodMultiplier
	}
	if c.VitalCritical != nil {
		w.VitalCritical = *c.VitalCritical
	}
	if c.VitalWarning != nil {
		w.VitalWarning = *c.VitalWarning
	}
	if c.VitalNormal != nil {
		w.VitalNormal = *c.VitalNormal
	}
	if c.GumCritical != nil {
		w.GumCritical = *c.GumCritical
	}
	return w
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TZName)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.LogLevel, Format: c.LogFormat, App: c.AppName}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
