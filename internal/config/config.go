// Package config loads chatdesk runtime configuration.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// YAML file, a .env file in the working directory, and process environment
// variables. Environment names are flat (DB_HOST, MCP_SERVER_PORT, ...) so an
// existing deployment's .env keeps working unchanged.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Driver names accepted by DB_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Transport names accepted by MCP_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config is the full runtime configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Server   Server   `mapstructure:"server"`
	Log      Log      `mapstructure:"log"`
}

// Database selects and addresses the relational store.
type Database struct {
	Driver   string `mapstructure:"driver" validate:"oneof=sqlite mysql"`
	Path     string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	Host     string `mapstructure:"host" validate:"required_if=Driver mysql"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	Name     string `mapstructure:"name" validate:"required_if=Driver mysql"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Server describes the MCP server identity and its network front door.
type Server struct {
	Name      string `mapstructure:"name" validate:"required"`
	Version   string `mapstructure:"version" validate:"required"`
	Transport string `mapstructure:"transport" validate:"oneof=stdio http"`
	Host      string `mapstructure:"host" validate:"required"`
	Port      int    `mapstructure:"port" validate:"min=1,max=65535"`
}

// Log controls the process logger.
type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

// Addr returns the host:port the HTTP transport listens on.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DSN returns the go-sql-driver DSN for the MySQL driver.
func (d Database) DSN() string {
	c := mysql.NewConfig()
	c.User = d.Username
	c.Passwd = d.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	c.DBName = d.Name
	c.ParseTime = true
	c.Loc = time.UTC
	c.Collation = "utf8mb4_unicode_ci"
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"database.driver":   "DB_DRIVER",
	"database.path":     "DB_PATH",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.name":     "DB_DATABASE",
	"database.username": "DB_USERNAME",
	"database.password": "DB_PASSWORD",
	"server.name":       "MCP_SERVER_NAME",
	"server.version":    "MCP_SERVER_VERSION",
	"server.transport":  "MCP_TRANSPORT",
	"server.host":       "MCP_SERVER_HOST",
	"server.port":       "MCP_SERVER_PORT",
	"log.level":         "LOG_LEVEL",
	"log.pretty":        "LOG_PRETTY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "./data/chatdesk.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 8911)
	v.SetDefault("database.name", "mcp_chat")
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")

	v.SetDefault("server.name", "Chat Support MCP Server")
	v.SetDefault("server.version", "1.0.0")
	v.SetDefault("server.transport", TransportStdio)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8087)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load builds a Config. configFile may be empty, in which case only
// defaults, .env and the environment are consulted.
func Load(configFile string) (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Server.Transport = strings.ToLower(cfg.Server.Transport)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field in a readable form.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid configuration: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid configuration: %w", err)
}
