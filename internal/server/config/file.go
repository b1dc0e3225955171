package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/blogapi/internal/flagx"
	"github.com/dmitrijs2005/blogapi/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// strings such as "15m" or integer nanoseconds. Zero values leave the
// corresponding Config field untouched.
type FileConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	SessionValidityDuration     timex.Duration `json:"session_validity_duration" yaml:"session_validity_duration"`
	SessionPruneInterval        timex.Duration `json:"session_prune_interval" yaml:"session_prune_interval"`
	Environment                 string         `json:"environment" yaml:"environment"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	LogFile                     string         `json:"log_file" yaml:"log_file"`
	PublicURL                   string         `json:"public_url" yaml:"public_url"`
	CorsAllowedOrigins          []string       `json:"cors_allowed_origins" yaml:"cors_allowed_origins"`
	GuardBlogCreate             *bool          `json:"guard_blog_create" yaml:"guard_blog_create"`
	LoginRateLimit              int            `json:"login_rate_limit" yaml:"login_rate_limit"`
	TrustProxy                  *bool          `json:"trust_proxy" yaml:"trust_proxy"`
	Mail                        struct {
		Host     string         `json:"host" yaml:"host"`
		Port     int            `json:"port" yaml:"port"`
		User     string         `json:"user" yaml:"user"`
		Password string         `json:"password" yaml:"password"`
		From     string         `json:"from" yaml:"from"`
		Timeout  timex.Duration `json:"timeout" yaml:"timeout"`
	} `json:"mail" yaml:"mail"`
	Broadcast struct {
		Driver        string         `json:"driver" yaml:"driver"`
		PusherAppID   string         `json:"pusher_app_id" yaml:"pusher_app_id"`
		PusherKey     string         `json:"pusher_key" yaml:"pusher_key"`
		PusherSecret  string         `json:"pusher_secret" yaml:"pusher_secret"`
		PusherCluster string         `json:"pusher_cluster" yaml:"pusher_cluster"`
		NATSURL       string         `json:"nats_url" yaml:"nats_url"`
		Timeout       timex.Duration `json:"timeout" yaml:"timeout"`
	} `json:"broadcast" yaml:"broadcast"`
}

// parseFile loads the file named by -c/-config, if any. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setDuration(&c.AccessTokenValidityDuration, fc.AccessTokenValidityDuration)
	setDuration(&c.SessionValidityDuration, fc.SessionValidityDuration)
	setDuration(&c.SessionPruneInterval, fc.SessionPruneInterval)
	setString(&c.Environment, fc.Environment)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFile, fc.LogFile)
	setString(&c.PublicURL, fc.PublicURL)
	if len(fc.CorsAllowedOrigins) > 0 {
		c.CorsAllowedOrigins = fc.CorsAllowedOrigins
	}
	if fc.GuardBlogCreate != nil {
		c.GuardBlogCreate = *fc.GuardBlogCreate
	}
	if fc.LoginRateLimit > 0 {
		c.LoginRateLimit = fc.LoginRateLimit
	}
	if fc.TrustProxy != nil {
		c.TrustProxy = *fc.TrustProxy
	}

	setString(&c.MailHost, fc.Mail.Host)
	if fc.Mail.Port > 0 {
		c.MailPort = fc.Mail.Port
	}
	setString(&c.MailUser, fc.Mail.User)
	setString(&c.MailPassword, fc.Mail.Password)
	setString(&c.MailFrom, fc.Mail.From)
	setDuration(&c.MailTimeout, fc.Mail.Timeout)

	setString(&c.BroadcastDriver, fc.Broadcast.Driver)
	setString(&c.PusherAppID, fc.Broadcast.PusherAppID)
	setString(&c.PusherKey, fc.Broadcast.PusherKey)
	setString(&c.PusherSecret, fc.Broadcast.PusherSecret)
	setString(&c.PusherCluster, fc.Broadcast.PusherCluster)
	setString(&c.NATSURL, fc.Broadcast.NATSURL)
	setDuration(&c.PublishTimeout, fc.Broadcast.Timeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
