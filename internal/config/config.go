package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort         string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL      string        `env:"DATABASE_URL,required,notEmpty"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"30s"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"CareerMate"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	TierCacheTTL  time.Duration `env:"TIER_CACHE_TTL" envDefault:"5m"`

	ReportsDir string `env:"REPORTS_DIR" envDefault:"reports"`

	// Login con proveedores externos. Un proveedor queda activo solo si tiene audiencia y clave.
	OAuthGoogleClientID  string `env:"OAUTH_GOOGLE_CLIENT_ID"`
	OAuthGooglePublicKey string `env:"OAUTH_GOOGLE_PUBLIC_KEY_FILE,file"`
	OAuthBrokerIssuer    string `env:"OAUTH_BROKER_ISSUER"`
	OAuthBrokerAudience  string `env:"OAUTH_BROKER_AUDIENCE"`
	OAuthBrokerSecret    string `env:"OAUTH_BROKER_SECRET"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
