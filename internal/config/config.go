// Package config loads the server's configuration once at startup into a
// single immutable Config value, injected into constructors rather than
// read from process-wide globals.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full set of environment-driven server settings.
type Config struct {
	DatabaseURL string

	SessionSigningSecret string
	SessionTTLDays       int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	PublicBaseURL string

	MediaServiceURL    string
	MediaServiceKey    string
	MediaServiceSecret string

	RedisURL string

	ListenPort int
}

// SessionTTL returns SessionTTLDays as a time.Duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLDays) * 24 * time.Hour
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.SessionSigningSecret == "" {
		return errors.New("SESSION_SIGNING_SECRET is required")
	}
	if c.MediaServiceSecret == "" {
		return errors.New("MEDIA_SERVICE_SECRET is required")
	}
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("invalid listen port (must be between 1-65535 inclusive): %d", c.ListenPort)
	}
	return nil
}

// BindFlags registers every setting as a pflag.FlagSet flag, each
// overridable by a FIVECROWNS_-prefixed environment variable via viper,
// and returns a function that finalizes and validates cfg once flags have
// been parsed.
func BindFlags(fs *pflag.FlagSet, cfg *Config) func() error {
	v := viper.New()
	v.SetEnvPrefix("FIVECROWNS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "Postgres connection string (env: FIVECROWNS_DATABASE_URL)")
	fs.StringVar(&cfg.SessionSigningSecret, "session-signing-secret", "", "HMAC secret for session tokens (env: FIVECROWNS_SESSION_SIGNING_SECRET)")
	fs.IntVar(&cfg.SessionTTLDays, "session-ttl-days", 7, "session token lifetime in days (env: FIVECROWNS_SESSION_TTL_DAYS)")
	fs.StringVar(&cfg.SMTPHost, "smtp-host", "", "SMTP host for verification/reset email (env: FIVECROWNS_SMTP_HOST)")
	fs.IntVar(&cfg.SMTPPort, "smtp-port", 587, "SMTP port (env: FIVECROWNS_SMTP_PORT)")
	fs.StringVar(&cfg.SMTPUsername, "smtp-username", "", "SMTP auth username (env: FIVECROWNS_SMTP_USERNAME)")
	fs.StringVar(&cfg.SMTPPassword, "smtp-password", "", "SMTP auth password (env: FIVECROWNS_SMTP_PASSWORD)")
	fs.StringVar(&cfg.PublicBaseURL, "public-base-url", "", "externally reachable base URL (env: FIVECROWNS_PUBLIC_BASE_URL)")
	fs.StringVar(&cfg.MediaServiceURL, "media-service-url", "", "media plane base URL (env: FIVECROWNS_MEDIA_SERVICE_URL)")
	fs.StringVar(&cfg.MediaServiceKey, "media-service-key", "", "media plane API key (env: FIVECROWNS_MEDIA_SERVICE_KEY)")
	fs.StringVar(&cfg.MediaServiceSecret, "media-service-secret", "", "HMAC secret for media-room tokens (env: FIVECROWNS_MEDIA_SERVICE_SECRET)")
	fs.StringVar(&cfg.RedisURL, "redis-url", "", "Redis URL for cross-instance fan-out (env: FIVECROWNS_REDIS_URL)")
	fs.IntVarP(&cfg.ListenPort, "port", "p", 8080, "port to listen on (env: FIVECROWNS_PORT)")

	return func() error {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = v.BindPFlag(f.Name, f)
			_ = v.BindEnv(f.Name)
			if !f.Changed && v.IsSet(f.Name) {
				_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
			}
		})
		return cfg.validate()
	}
}
