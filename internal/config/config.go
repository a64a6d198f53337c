package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Email        EmailConfig        `yaml:"email"`
	JWT          JWTConfig          `yaml:"jwt"`
	Storage      StorageConfig      `yaml:"storage"`
	Registration RegistrationConfig `yaml:"registration"`
	RateLimit    RateLimitConfig    `yaml:"ratelimit"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Log          LogConfig          `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig selects and configures the outbound mail provider.
type EmailConfig struct {
	Provider string         `yaml:"provider"` // "smtp" or "sendgrid"
	SMTP     SMTPConfig     `yaml:"smtp"`
	SendGrid SendGridConfig `yaml:"sendgrid"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type SendGridConfig struct {
	APIKey string `yaml:"api_key"`
	From   string `yaml:"from"`
}

// JWTConfig contains token settings for the auth cookie and the
// registration-gate marker.
type JWTConfig struct {
	Secret          string `yaml:"secret"`
	AuthExpiryHours int    `yaml:"auth_expiry_hours"`
	GateExpiryMins  int    `yaml:"gate_expiry_minutes"`
}

// StorageConfig contains profile-image storage settings
type StorageConfig struct {
	Type      string `yaml:"type"` // "local"
	UploadDir string `yaml:"upload_dir"`
	BaseURL   string `yaml:"base_url"`
}

// RegistrationConfig contains invitation and verification settings.
type RegistrationConfig struct {
	FrontendURL          string   `yaml:"frontend_url"`
	PromoCode            string   `yaml:"promo_code"`
	InviteTTLDays        int      `yaml:"invite_ttl_days"`
	VerificationTTLMins  int      `yaml:"verification_ttl_minutes"`
	AdminEmails          []string `yaml:"admin_emails"`
	PurgeRetentionDays   int      `yaml:"purge_retention_days"`
}

// RateLimitConfig bounds fast-verification escalation requests.
type RateLimitConfig struct {
	DailyCap     int `yaml:"daily_cap"`
	CooldownMins int `yaml:"cooldown_minutes"`
}

// SchedulerConfig contains cron schedule settings (six-field specs, UTC)
type SchedulerConfig struct {
	ExpireInvitations string `yaml:"expire_invitations"`
	ReconcileCodes    string `yaml:"reconcile_codes"`
	PurgeInvitations  string `yaml:"purge_invitations"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file, applies environment overrides
// and validates the result.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	if val := os.Getenv("EMAIL_PROVIDER"); val != "" {
		c.Email.Provider = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.Email.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Email.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.Email.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.Email.SMTP.Password = val
	}
	if val := os.Getenv("SMTP_FROM"); val != "" {
		c.Email.SMTP.From = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGrid.APIKey = val
	}

	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}
	if val := os.Getenv("FRONTEND_URL"); val != "" {
		c.Registration.FrontendURL = val
	}
	if val := os.Getenv("PROMO_CODE"); val != "" {
		c.Registration.PromoCode = val
	}
	if val := os.Getenv("ADMIN_EMAILS"); val != "" {
		c.Registration.AdminEmails = strings.Split(val, ",")
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	switch c.Email.Provider {
	case "", "smtp":
		c.Email.Provider = "smtp"
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Email.SMTP.Port <= 0 || c.Email.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTP.Port)
		}
	case "sendgrid":
		if c.Email.SendGrid.APIKey == "" {
			return fmt.Errorf("SendGrid API key is required")
		}
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AuthExpiryHours == 0 {
		c.JWT.AuthExpiryHours = 24 * 7
	}
	if c.JWT.GateExpiryMins == 0 {
		c.JWT.GateExpiryMins = 30
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}

	if c.Registration.FrontendURL == "" {
		c.Registration.FrontendURL = "http://localhost:3000"
	}
	if c.Registration.InviteTTLDays == 0 {
		c.Registration.InviteTTLDays = 30
	}
	if c.Registration.VerificationTTLMins == 0 {
		c.Registration.VerificationTTLMins = 30
	}
	if c.Registration.PurgeRetentionDays == 0 {
		c.Registration.PurgeRetentionDays = 90
	}

	if c.RateLimit.DailyCap == 0 {
		c.RateLimit.DailyCap = 2
	}
	if c.RateLimit.CooldownMins == 0 {
		c.RateLimit.CooldownMins = 30
	}

	if c.Scheduler.ExpireInvitations == "" {
		c.Scheduler.ExpireInvitations = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.ReconcileCodes == "" {
		c.Scheduler.ReconcileCodes = "0 30 1 * * *" // 1:30 AM UTC
	}
	if c.Scheduler.PurgeInvitations == "" {
		c.Scheduler.PurgeInvitations = "0 0 2 * * 0" // Sunday 2 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
