// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/go-rewrite/pkg/rewrite"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FILENAME is the name (without extension) of the kernel configuration file.
const FILENAME = "kernel"

// Config represents the complete kernel configuration.
type Config struct {
	Objects   ObjectsConfig   `yaml:"objects" mapstructure:"objects"`
	Reduction ReductionConfig `yaml:"reduction" mapstructure:"reduction"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// ObjectsConfig determines where and how object files are written.
type ObjectsConfig struct {
	// Directory holding object files (relative to the library root).
	Directory string `yaml:"directory" mapstructure:"directory"`
	// Extension of object files.
	Extension string `yaml:"extension" mapstructure:"extension"`
	// Compression level (fastest, default, better, best).
	Compression string `yaml:"compression" mapstructure:"compression"`
}

// ReductionConfig determines how terms are normalised.
type ReductionConfig struct {
	// Reduction strategy (outermost, innermost).
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Objects: ObjectsConfig{
			Directory:   ".",
			Extension:   ".lpo",
			Compression: "default",
		},
		Reduction: ReductionConfig{
			Strategy: "outermost",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load configuration from kernel.yaml, looked for in the given directory and
// then in $HOME/.go-rewrite.  Environment variables prefixed with REWRITE_
// (e.g. REWRITE_REDUCTION_STRATEGY) override the file.  If no configuration
// file exists, the defaults are used.
func Load(dir string) (*Config, error) {
	var (
		v   = viper.New()
		def = Default()
		cfg Config
	)
	// Set defaults
	v.SetDefault("objects.directory", def.Objects.Directory)
	v.SetDefault("objects.extension", def.Objects.Extension)
	v.SetDefault("objects.compression", def.Objects.Compression)
	v.SetDefault("reduction.strategy", def.Reduction.Strategy)
	v.SetDefault("logging.level", def.Logging.Level)
	// Configure viper
	v.SetConfigName(FILENAME)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	//
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".go-rewrite"))
	}
	//
	v.SetEnvPrefix("REWRITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		//
		if !errors.As(err, &notFound) {
			return nil, err
		}
	} else {
		log.Debugf("using configuration %s", v.ConfigFileUsed())
	}
	// Unmarshal into config struct
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	//
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	//
	return &cfg, nil
}

// Save writes the configuration to kernel.yaml in the given directory.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	//
	return os.WriteFile(filepath.Join(dir, FILENAME+".yaml"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.CompressionLevel(); err != nil {
		return err
	} else if _, err := c.Strategy(); err != nil {
		return &ConfigError{Field: "reduction.strategy", Message: err.Error()}
	} else if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return &ConfigError{Field: "logging.level", Message: err.Error()}
	} else if !strings.HasPrefix(c.Objects.Extension, ".") {
		return &ConfigError{Field: "objects.extension", Message: "extension must begin with \".\""}
	}
	//
	return nil
}

// CompressionLevel returns the configured compression level for object files.
func (c *Config) CompressionLevel() (zstd.EncoderLevel, error) {
	if ok, level := zstd.EncoderLevelFromString(c.Objects.Compression); ok {
		return level, nil
	}
	//
	return zstd.SpeedDefault, &ConfigError{Field: "objects.compression",
		Message: fmt.Sprintf("unknown compression level \"%s\"", c.Objects.Compression)}
}

// Strategy returns the configured reduction strategy.
func (c *Config) Strategy() (rewrite.Strategy, error) {
	return rewrite.ParseStrategy(c.Reduction.Strategy)
}

// Apply the logging configuration.
func (c *Config) Apply() {
	if level, err := log.ParseLevel(c.Logging.Level); err == nil {
		log.SetLevel(level)
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
