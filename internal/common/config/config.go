// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig         `mapstructure:"app"`
	Server       ServerConfig      `mapstructure:"server"`
	Admin        AdminConfig       `mapstructure:"admin"`
	Intake       IntakeConfig      `mapstructure:"intake"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Integrations IntegrationConfig `mapstructure:"integrations"`
	Notify       NotifyConfig      `mapstructure:"notify"`
	Logging      LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// AdminConfig holds the shared-secret gate for the read path.
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// IntakeConfig bounds the volatile in-process lead store. The store is
// intentionally non-durable: leads live in process memory only and are lost
// on restart. Capacity caps memory growth, it is not a retention policy.
type IntakeConfig struct {
	Capacity       int `mapstructure:"capacity"`
	NameMaxLen     int `mapstructure:"name_max_len"`
	HandleMaxLen   int `mapstructure:"handle_max_len"`
	EmailMaxLen    int `mapstructure:"email_max_len"`
	FreeTextMaxLen int `mapstructure:"free_text_max_len"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// IntegrationConfig holds settings for the external collaborators. Every
// collaborator is optional: unset credentials disable it silently and the
// intake path succeeds regardless.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled    bool     `mapstructure:"enabled"`
			FromEmail  string   `mapstructure:"from_email"`
			Recipients []string `mapstructure:"recipients"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled       bool   `mapstructure:"enabled"`
			OperatorPhone string `mapstructure:"operator_phone"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	Sheets struct {
		SpreadsheetID   string `mapstructure:"spreadsheet_id"`
		CredentialsJSON string `mapstructure:"credentials_json"`
		SheetName       string `mapstructure:"sheet_name"`
	} `mapstructure:"sheets"`

	Zoho struct {
		APIKey     string `mapstructure:"api_key"`
		OAuthToken string `mapstructure:"oauth_token"`
	} `mapstructure:"zoho"`

	WhatsApp struct {
		GatewayURL    string `mapstructure:"gateway_url"`
		Token         string `mapstructure:"token"`
		OperatorPhone string `mapstructure:"operator_phone"`
	} `mapstructure:"whatsapp"`
}

// NotifyConfig bounds the fire-and-forget collaborator calls.
type NotifyConfig struct {
	Timeout    int `mapstructure:"timeout"`     // milliseconds, per collaborator call
	RetryDelay int `mapstructure:"retry_delay"` // milliseconds before the single retry
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
