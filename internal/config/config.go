package config

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the store API service.
type Config struct {
	Addr            string        `env:"ADDR,default=:8080"`
	DatabaseDSN     string        `env:"DATABASE_DSN"`
	AuthSecret      string        `env:"AUTH_SECRET,required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,default=1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL,default=168h"`
	CookieDomain    string        `env:"COOKIE_DOMAIN"`
	CookieSecure    bool          `env:"COOKIE_SECURE,default=false"`
	PurgeInterval   time.Duration `env:"REVOKED_PURGE_INTERVAL,default=168h"`
	RateBurst       int           `env:"AUTH_RATE_BURST,default=5"`
	RateWindow      time.Duration `env:"AUTH_RATE_WINDOW,default=15m"`
	AccessLogBuffer int           `env:"ACCESS_LOG_BUFFER,default=256"`
}

// Load returns a Config populated from environment variables. The access
// token lifetime must stay strictly below the refresh token lifetime; a
// misordered pair is a deployment mistake caught at startup.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL >= cfg.RefreshTokenTTL {
		return Config{}, errors.New("config: ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	return cfg, nil
}
