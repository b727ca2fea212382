package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MinIdleConns    int    `yaml:"min_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer     string `yaml:"issuer"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
		// Seeds ed25519 en base64. En prod vienen por env, nunca en YAML.
		AccessSeed  string `yaml:"access_seed"`
		RefreshSeed string `yaml:"refresh_seed"`
		CookieName  string `yaml:"cookie_name"`
	} `yaml:"jwt"`

	OTP struct {
		TTL string `yaml:"ttl"`
	} `yaml:"otp"`

	Rate struct {
		Enabled bool `yaml:"enabled"`

		// Intentos de login por IP de origen.
		LoginIP struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login_ip"`

		// Intentos de login por cuenta resuelta.
		LoginUser struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login_user"`

		// Requests autenticados por IP (middleware general).
		AccessIP struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"access_ip"`
	} `yaml:"rate"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// AccessTTL parsea la duración del access token (ya validada en Load).
func (c *Config) AccessTTL() time.Duration { return mustDur(c.JWT.AccessTTL) }

// RefreshTTL parsea la duración del refresh token (ya validada en Load).
func (c *Config) RefreshTTL() time.Duration { return mustDur(c.JWT.RefreshTTL) }

func mustDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "720h" // 30d
	}
	if c.JWT.CookieName == "" {
		c.JWT.CookieName = "gk_refresh"
	}
	if c.OTP.TTL == "" {
		c.OTP.TTL = "5m"
	}
	// Rate limit defaults
	if c.Rate.LoginIP.Limit == 0 {
		c.Rate.LoginIP.Limit = 10
	}
	if c.Rate.LoginIP.Window == "" {
		c.Rate.LoginIP.Window = "1m"
	}
	if c.Rate.LoginUser.Limit == 0 {
		c.Rate.LoginUser.Limit = 5
	}
	if c.Rate.LoginUser.Window == "" {
		c.Rate.LoginUser.Window = "1m"
	}
	if c.Rate.AccessIP.Limit == 0 {
		c.Rate.AccessIP.Limit = 120
	}
	if c.Rate.AccessIP.Window == "" {
		c.Rate.AccessIP.Window = "1m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	// Overrides por env
	c.applyEnvOverrides()

	// validate string durations
	for name, s := range map[string]string{
		"storage.postgres.conn_max_lifetime": c.Storage.Postgres.ConnMaxLifetime,
		"cache.memory.default_ttl":           c.Cache.Memory.DefaultTTL,
		"jwt.access_ttl":                     c.JWT.AccessTTL,
		"jwt.refresh_ttl":                    c.JWT.RefreshTTL,
		"otp.ttl":                            c.OTP.TTL,
		"rate.login_ip.window":               c.Rate.LoginIP.Window,
		"rate.login_user.window":             c.Rate.LoginUser.Window,
		"rate.access_ip.window":              c.Rate.AccessIP.Window,
	} {
		if s == "" {
			continue
		}
		if _, err := time.ParseDuration(s); err != nil {
			return nil, fmt.Errorf("config %s: %w", name, err)
		}
	}

	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		return nil, fmt.Errorf("config storage.dsn requerido con driver postgres")
	}

	return &c, nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MIN_IDLE_CONNS"); ok {
		c.Storage.Postgres.MinIdleConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
	if v, ok := getEnvStr("CACHE_MEMORY_DEFAULT_TTL"); ok {
		c.Cache.Memory.DefaultTTL = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_SEED"); ok {
		c.JWT.AccessSeed = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_SEED"); ok {
		c.JWT.RefreshSeed = v
	}
	if v, ok := getEnvStr("JWT_COOKIE_NAME"); ok {
		c.JWT.CookieName = v
	}
	// Overrides de test (CI/e2e): pisan si están seteados
	if v, ok := getEnvStr("TEST_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("TEST_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}

	// OTP
	if v, ok := getEnvStr("OTP_TTL"); ok {
		c.OTP.TTL = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_IP_LIMIT"); ok {
		c.Rate.LoginIP.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_IP_WINDOW"); ok {
		c.Rate.LoginIP.Window = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_USER_LIMIT"); ok {
		c.Rate.LoginUser.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_USER_WINDOW"); ok {
		c.Rate.LoginUser.Window = v
	}
	if v, ok := getEnvInt("RATE_ACCESS_IP_LIMIT"); ok {
		c.Rate.AccessIP.Limit = v
	}
	if v, ok := getEnvStr("RATE_ACCESS_IP_WINDOW"); ok {
		c.Rate.AccessIP.Window = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}
