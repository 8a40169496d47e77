package config

import "os"

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Session   SessionConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Cron      CronConfig
	Geocoder  GeocoderConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type SessionConfig struct {
	Secret         string
	TTL            string
	CookieDomain   string
	CookiePath     string
	CookieSecure   string
	CookieSameSite string
}

type AuthConfig struct {
	AdminEmail       string
	AdminPassword    string
	LockoutThreshold string
	LockoutWindow    string
	ResetTokenTTL    string
}

type RateLimitConfig struct {
	AuthPerMinute string
	APIPerMinute  string
}

type CacheConfig struct {
	RedisAddr     string
	Capacity      string
	SweepInterval string
}

type CronConfig struct {
	Secret           string
	RegistrationScan string
	ExpiryWindowDays string
}

type GeocoderConfig struct {
	BaseURL string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			AllowedOrigins: getenv("ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Session: SessionConfig{
			Secret:         os.Getenv("SESSION_SECRET"),
			TTL:            getenv("SESSION_TTL", "168h"),
			CookieDomain:   os.Getenv("AUTH_COOKIE_DOMAIN"),
			CookiePath:     getenv("AUTH_COOKIE_PATH", "/"),
			CookieSecure:   getenv("AUTH_COOKIE_SECURE", "true"),
			CookieSameSite: getenv("AUTH_COOKIE_SAMESITE", "lax"),
		},
		Auth: AuthConfig{
			AdminEmail:       os.Getenv("ADMIN_EMAIL"),
			AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
			LockoutThreshold: getenv("AUTH_LOCKOUT_THRESHOLD", "5"),
			LockoutWindow:    getenv("AUTH_LOCKOUT_WINDOW", "15m"),
			ResetTokenTTL:    getenv("AUTH_RESET_TOKEN_TTL", "1h"),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: getenv("RATE_LIMIT_AUTH_PER_MINUTE", "10"),
			APIPerMinute:  getenv("RATE_LIMIT_API_PER_MINUTE", "120"),
		},
		Cache: CacheConfig{
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			Capacity:      getenv("CACHE_CAPACITY", "1024"),
			SweepInterval: getenv("CACHE_SWEEP_INTERVAL", "1m"),
		},
		Cron: CronConfig{
			Secret:           os.Getenv("CRON_SECRET"),
			RegistrationScan: getenv("CRON_REGISTRATION_SCAN", "0 6 * * *"),
			ExpiryWindowDays: getenv("REGISTRATION_EXPIRY_WINDOW_DAYS", "30"),
		},
		Geocoder: GeocoderConfig{
			BaseURL: getenv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
