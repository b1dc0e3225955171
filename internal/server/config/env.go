package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables. A .env file in the working
// directory is loaded first when present; real environment variables win.
func parseEnv(c *Config) error {
	_ = godotenv.Load()

	if port := getEnv("PORT"); port != "" {
		c.EndpointAddrHTTP = ":" + strings.TrimPrefix(port, ":")
	}
	if dsn := getEnv("DATABASE_URL"); dsn != "" {
		c.DatabaseDSN = dsn
	} else if dsn := dsnFromParts(); dsn != "" {
		c.DatabaseDSN = dsn
	}
	setString(&c.SecretKey, getEnv("JWT_SECRET"))
	if v := getEnv("JWT_EXPIRES_IN"); v != "" {
		d, err := parseExpiry(v)
		if err != nil {
			return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
		}
		c.AccessTokenValidityDuration = d
	}

	setString(&c.Environment, getEnv("NODE_ENV"))
	setString(&c.Environment, getEnv("APP_ENV"))
	setString(&c.LogLevel, getEnv("LOG_LEVEL"))
	setString(&c.LogFile, getEnv("LOG_FILE"))
	setString(&c.PublicURL, strings.TrimRight(getEnv("PUBLIC_URL"), "/"))
	if v := getEnv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CorsAllowedOrigins = splitCSV(v)
	}
	if v := getEnv("GUARD_BLOG_CREATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GUARD_BLOG_CREATE: %w", err)
		}
		c.GuardBlogCreate = b
	}
	if v := getEnv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRUST_PROXY: %w", err)
		}
		c.TrustProxy = b
	}
	if v := getEnv("SESSION_PRUNE_INTERVAL"); v != "" {
		d, err := parseExpiry(v)
		if err != nil {
			return fmt.Errorf("SESSION_PRUNE_INTERVAL: %w", err)
		}
		c.SessionPruneInterval = d
	}
	if v := getEnv("LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOGIN_RATE_LIMIT: %w", err)
		}
		c.LoginRateLimit = n
	}

	setString(&c.MailHost, getEnv("MAIL_HOST"))
	if v := getEnv("MAIL_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAIL_PORT: %w", err)
		}
		c.MailPort = n
	}
	setString(&c.MailUser, getEnv("MAIL_USER"))
	setString(&c.MailPassword, getEnv("MAIL_PASSWORD"))
	setString(&c.MailFrom, getEnv("MAIL_FROM"))

	setString(&c.BroadcastDriver, strings.ToLower(getEnv("BROADCAST_DRIVER")))
	setString(&c.PusherAppID, getEnv("PUSHER_APP_ID"))
	setString(&c.PusherKey, getEnv("PUSHER_KEY"))
	setString(&c.PusherSecret, getEnv("PUSHER_SECRET"))
	setString(&c.PusherCluster, getEnv("PUSHER_CLUSTER"))
	setString(&c.NATSURL, getEnv("NATS_URL"))

	return nil
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// dsnFromParts assembles a postgres DSN from DB_HOST, DB_PORT, DB_USER,
// DB_PASSWORD and DB_NAME. It returns "" unless DB_HOST is set.
func dsnFromParts() string {
	host := getEnv("DB_HOST")
	if host == "" {
		return ""
	}
	if port := getEnv("DB_PORT"); port != "" {
		host += ":" + port
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     host,
		Path:     "/" + getEnv("DB_NAME"),
		RawQuery: getEnv("DB_OPTIONS"),
	}
	if user := getEnv("DB_USER"); user != "" {
		u.User = url.UserPassword(user, getEnv("DB_PASSWORD"))
	}
	return u.String()
}

// parseExpiry accepts Go durations ("90m"), a day suffix ("7d") or a bare
// number of seconds ("3600").
func parseExpiry(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimRight(strings.TrimSpace(part), "/"); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
