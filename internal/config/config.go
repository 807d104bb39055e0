package config

import (
	"errors"
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

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Storage struct {
		DSN             string `yaml:"dsn"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	} `yaml:"storage"`

	JWT struct {
		Key       string `yaml:"key"`
		Issuer    string `yaml:"issuer"`
		Audience  string `yaml:"audience"`
		AccessTTL string `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Auth struct {
		OTP struct {
			TTL             time.Duration `yaml:"ttl"`
			ConsumeOnVerify *bool         `yaml:"consume_on_verify"`
		} `yaml:"otp"`
		Reset struct {
			// Si es true, reset exige un OTP de forgot-password ya verificado.
			RequireVerifiedOTP bool `yaml:"require_verified_otp"`
		} `yaml:"reset"`
	} `yaml:"auth"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Email struct {
		FromName           string   `yaml:"from_name"`
		OTPFromName        string   `yaml:"otp_from_name"`
		RestrictedDomains  []string `yaml:"restricted_domains"`
		MaxAttachmentBytes int64    `yaml:"max_attachment_bytes"`
	} `yaml:"email"`

	Uploads struct {
		Dir       string `yaml:"dir"`
		URLPrefix string `yaml:"url_prefix"`
	} `yaml:"uploads"`
}

// DefaultRestrictedDomains son los proveedores públicos a los que el relay no envía.
var DefaultRestrictedDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}

// Load lee el YAML (si path no es vacío), aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()

	// Overrides por env
	c.applyEnvOverrides()

	// validate string durations
	if c.Storage.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.ConnMaxLifetime); err != nil {
			return nil, fmt.Errorf("storage.conn_max_lifetime: %w", err)
		}
	}
	if _, err := time.ParseDuration(c.JWT.AccessTTL); err != nil {
		return nil, fmt.Errorf("jwt.access_ttl: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 5
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "MyAppIssuer"
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = "MyAppAudience"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "1h"
	}
	if c.Auth.OTP.TTL == 0 {
		c.Auth.OTP.TTL = 15 * time.Minute
	}
	if c.Auth.OTP.ConsumeOnVerify == nil {
		v := true
		c.Auth.OTP.ConsumeOnVerify = &v
	}
	// SMTP defaults
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Data Nova"
	}
	if c.Email.OTPFromName == "" {
		c.Email.OTPFromName = "Datanova"
	}
	if len(c.Email.RestrictedDomains) == 0 {
		c.Email.RestrictedDomains = append([]string(nil), DefaultRestrictedDomains...)
	}
	if c.Email.MaxAttachmentBytes == 0 {
		c.Email.MaxAttachmentBytes = 10 * 1024 * 1024
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "wwwroot/uploads"
	}
	if c.Uploads.URLPrefix == "" {
		c.Uploads.URLPrefix = "/uploads"
	}
}

// AccessTTL devuelve jwt.access_ttl ya parseado.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWT.AccessTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// ConnMaxLifetime devuelve storage.conn_max_lifetime (0 = sin límite).
func (c *Config) ConnMaxLifetime() time.Duration {
	d, _ := time.ParseDuration(c.Storage.ConnMaxLifetime)
	return d
}

// ConsumeOTPOnVerify indica si un OTP verificado se marca como usado.
func (c *Config) ConsumeOTPOnVerify() bool {
	return c.Auth.OTP.ConsumeOnVerify == nil || *c.Auth.OTP.ConsumeOnVerify
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
func getEnvInt64(key string) (int64, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
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
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
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
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvDur("SERVER_READ_TIMEOUT"); ok {
		c.Server.ReadTimeout = v
	}
	if v, ok := getEnvDur("SERVER_WRITE_TIMEOUT"); ok {
		c.Server.WriteTimeout = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.MaxIdleConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.ConnMaxLifetime = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_KEY"); ok {
		c.JWT.Key = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_AUDIENCE"); ok {
		c.JWT.Audience = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}

	// AUTH
	if v, ok := getEnvDur("AUTH_OTP_TTL"); ok {
		c.Auth.OTP.TTL = v
	}
	if v, ok := getEnvBool("AUTH_OTP_CONSUME_ON_VERIFY"); ok {
		c.Auth.OTP.ConsumeOnVerify = &v
	}
	if v, ok := getEnvBool("AUTH_RESET_REQUIRE_VERIFIED_OTP"); ok {
		c.Auth.Reset.RequireVerifiedOTP = v
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	// EMAIL
	if v, ok := getEnvStr("EMAIL_FROM_NAME"); ok {
		c.Email.FromName = v
	}
	if v, ok := getEnvStr("EMAIL_OTP_FROM_NAME"); ok {
		c.Email.OTPFromName = v
	}
	if v, ok := getEnvCSV("EMAIL_RESTRICTED_DOMAINS"); ok && len(v) > 0 {
		c.Email.RestrictedDomains = v
	}
	if v, ok := getEnvInt64("EMAIL_MAX_ATTACHMENT_BYTES"); ok {
		c.Email.MaxAttachmentBytes = v
	}

	// UPLOADS
	if v, ok := getEnvStr("UPLOADS_DIR"); ok {
		c.Uploads.Dir = v
	}
	if v, ok := getEnvStr("UPLOADS_URL_PREFIX"); ok {
		c.Uploads.URLPrefix = v
	}

	// Guardia: en prod nunca se saltea la verificación TLS del relay.
	if strings.EqualFold(c.App.Env, "prod") {
		c.SMTP.InsecureSkipVerify = false
	}
}

var (
	ErrJWTKeyMissing  = errors.New("jwt.key is required")
	ErrJWTKeyTooShort = errors.New("jwt.key must be at least 32 bytes")
	ErrSMTPPort       = errors.New("smtp.port must be positive")
	ErrAttachmentMax  = errors.New("email.max_attachment_bytes must be positive")
)

// Validate revisa los valores críticos de configuración.
func (c *Config) Validate() error {
	key := strings.TrimSpace(c.JWT.Key)
	if key == "" {
		return ErrJWTKeyMissing
	}
	if len(key) < 32 {
		return ErrJWTKeyTooShort
	}
	if c.SMTP.Port <= 0 {
		return ErrSMTPPort
	}
	if c.Email.MaxAttachmentBytes <= 0 {
		return ErrAttachmentMax
	}
	return nil
}
