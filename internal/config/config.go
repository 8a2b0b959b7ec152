package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for both processes. It is loaded once at
// startup and passed by value or pointer into constructors; nothing reads
// configuration from ambient state after that.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Server   struct {
		Addr         string `mapstructure:"addr"`
		WriteTimeout int    `mapstructure:"write_timeout_seconds"`
	} `mapstructure:"server"`
	DB struct {
		Driver   string `mapstructure:"driver"`
		Path     string `mapstructure:"path"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Gemini struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
	Identity struct {
		ServiceAccountJSON string `mapstructure:"service_account_json"`
		ServiceAccountFile string `mapstructure:"service_account_file"`
		ProjectID          string `mapstructure:"project_id"`
	} `mapstructure:"identity"`
	Auth struct {
		RequireToken bool `mapstructure:"require_token"`
	} `mapstructure:"auth"`
	Email struct {
		Sender   string `mapstructure:"sender"`
		Password string `mapstructure:"password"`
		SMTPHost string `mapstructure:"smtp_host"`
		SMTPPort int    `mapstructure:"smtp_port"`
	} `mapstructure:"email"`
	Slack struct {
		WebhookURL string `mapstructure:"webhook_url"`
	} `mapstructure:"slack"`
	Web   WebConfig `mapstructure:"web"`
	Panel struct {
		Addr       string `mapstructure:"addr"`
		BackendURL string `mapstructure:"backend_url"`
	} `mapstructure:"panel"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// WebConfig is the client-side identity service configuration used by the
// presentation shell.
type WebConfig struct {
	APIKey            string `mapstructure:"api_key"`
	AuthDomain        string `mapstructure:"auth_domain"`
	ProjectID         string `mapstructure:"project_id"`
	StorageBucket     string `mapstructure:"storage_bucket"`
	MessagingSenderID string `mapstructure:"messaging_sender_id"`
	AppID             string `mapstructure:"app_id"`
	MeasurementID     string `mapstructure:"measurement_id"`
}

// envBindings maps config keys to the environment variable names used by
// existing deployments.
var envBindings = map[string]string{
	"log_level":                     "LOG_LEVEL",
	"gemini.api_key":                "GOOGLE_API_KEY",
	"gemini.model":                  "GEMINI_MODEL",
	"identity.service_account_json": "FIREBASE_SERVICE_ACCOUNT_KEY_JSON",
	"identity.service_account_file": "FIREBASE_SERVICE_ACCOUNT_KEY_PATH",
	"identity.project_id":           "FIREBASE_PROJECT_ID",
	"email.sender":                  "SENDER_EMAIL",
	"email.password":                "SENDER_EMAIL_PASSWORD",
	"slack.webhook_url":             "SLACK_WEBHOOK_URL",
	"web.api_key":                   "FIREBASE_API_KEY",
	"web.auth_domain":               "FIREBASE_AUTH_DOMAIN",
	"web.project_id":                "FIREBASE_PROJECT_ID",
	"web.storage_bucket":            "FIREBASE_STORAGE_BUCKET",
	"web.messaging_sender_id":       "FIREBASE_MESSAGING_SENDER_ID",
	"web.app_id":                    "FIREBASE_APP_ID",
	"web.measurement_id":            "FIREBASE_MEASUREMENT_ID",
	"panel.backend_url":             "BACKEND_URL",
	"db.driver":                     "DB_DRIVER",
	"db.path":                       "DB_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.write_timeout_seconds", 180)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "workflows.db")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("gemini.model", "gemini-2.5-pro")
	v.SetDefault("identity.service_account_file", "serviceAccountKey.json")
	v.SetDefault("email.smtp_host", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 465)
	v.SetDefault("panel.addr", ":8501")
	v.SetDefault("panel.backend_url", "http://localhost:5000")
}

// LoadConfig loads the configuration from an optional config.yaml, an
// optional dotenv file and the environment. Environment variables win over
// dotenv entries, which win over the YAML file.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := loadDotEnv(envFile); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	config.Gemini.APIKey = strings.TrimSpace(config.Gemini.APIKey)
	config.Panel.BackendURL = strings.TrimRight(strings.TrimSpace(config.Panel.BackendURL), "/")

	return &config, nil
}

// loadDotEnv exports KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set.
func loadDotEnv(path string) error {
	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	for _, key := range ev.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, ev.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

// ErrMissingAPIKey is returned when the completion API key is not configured.
var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY not found in environment variables; " +
	"create a .env file containing GOOGLE_API_KEY='YOUR_API_KEY_HERE' or export it")

// ValidateServer checks the settings the backend cannot start without.
func (c *Config) ValidateServer() error {
	if c.Gemini.APIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	return nil
}

// ValidatePanel checks the client identity configuration the panel needs.
func (c *Config) ValidatePanel() error {
	var missing []string
	if c.Web.APIKey == "" {
		missing = append(missing, "FIREBASE_API_KEY")
	}
	if c.Web.AuthDomain == "" {
		missing = append(missing, "FIREBASE_AUTH_DOMAIN")
	}
	if c.Web.ProjectID == "" {
		missing = append(missing, "FIREBASE_PROJECT_ID")
	}
	if c.Web.AppID == "" {
		missing = append(missing, "FIREBASE_APP_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("identity client configuration is incomplete, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ServiceAccount returns the identity service-account payload, preferring the
// inline JSON over the key file. ok is false when neither is available.
func (c *Config) ServiceAccount() (data []byte, source string, ok bool) {
	if c.Identity.ServiceAccountJSON != "" {
		return []byte(c.Identity.ServiceAccountJSON), "environment", true
	}
	if c.Identity.ServiceAccountFile == "" {
		return nil, "", false
	}
	data, err := os.ReadFile(c.Identity.ServiceAccountFile)
	if err != nil {
		return nil, "", false
	}
	return data, c.Identity.ServiceAccountFile, true
}
