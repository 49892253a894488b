/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the application configuration from YAML, .env files
// and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tomoncle/workforce/database"
	"github.com/tomoncle/workforce/utils"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/application.yaml"

type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Logging  LoggingConfig   `yaml:"logging"`
	Database database.Config `yaml:"database"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig sets the base level, the console format ("text" or "json")
// and per-logger levels keyed by logger name.
type LoggingConfig struct {
	Level   string            `yaml:"level"`
	Format  string            `yaml:"format"`
	Loggers map[string]string `yaml:"loggers"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: *database.DefaultConfig(),
	}
}

// Load reads path, falling back to CONFIG_PATH and then DefaultPath. A
// missing file is only an error when the path was given explicitly.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = utils.EnvDefaultString("CONFIG_PATH", "")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Port = utils.EnvDefaultInt("SERVER_PORT", c.Server.Port)
	c.Logging.Level = utils.EnvDefaultString("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = utils.EnvDefaultString("CONSOLE_LOG_FORMAT", c.Logging.Format)
	c.Database.Init.Environment = utils.EnvDefaultString("APP_ENV", c.Database.Init.Environment)
	database.OverrideFromEnv(&c.Database.Connection)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if !database.IsSupportedType(c.Database.Connection.Type) {
		errs = append(errs, fmt.Errorf("database.connection.type must be one of %v, got %q",
			database.SupportedTypes(), c.Database.Connection.Type))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ApplyLogging pushes the logging section into the named logger registry.
func (c *Config) ApplyLogging() {
	utils.ConfigureConsoleLogFormat(c.Logging.Format)
	utils.ConfigureLogLevel(c.Logging.Level)
	for name, level := range c.Logging.Loggers {
		if !utils.SetLoggerLevel(strings.ToUpper(name), level) {
			utils.NewLogger(strings.ToUpper(name)).SetLevel(utils.ParseLogLevel(level))
		}
	}
}
