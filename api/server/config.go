/*
 * Copyright 2023 The RuleGo Authors.
 *
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

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefix of the environment variables overriding the config file,
// e.g. CALCAOP_SERVER_PORT=9091.
const EnvPrefix = "CALCAOP"

// Config server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Aspects AspectsConfig `mapstructure:"aspects"`
	Mqtt    MqttConfig    `mapstructure:"mqtt"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig http server settings
type ServerConfig struct {
	Port        int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogFile     string `mapstructure:"log_file"`
	CertFile    string `mapstructure:"cert_file" validate:"required_with=CertKeyFile"`
	CertKeyFile string `mapstructure:"cert_key_file" validate:"required_with=CertFile"`
}

// AspectsConfig where the aspect DSL comes from
type AspectsConfig struct {
	// File aspect DSL file; empty registers logging, validation and metrics
	File  string `mapstructure:"file"`
	Style string `mapstructure:"style" validate:"omitempty,oneof=combined discrete around"`
}

// MqttConfig optional mqtt endpoint
type MqttConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	Server               string        `mapstructure:"server" validate:"required_if=Enabled true"`
	Username             string        `mapstructure:"username"`
	Password             string        `mapstructure:"password"`
	ClientID             string        `mapstructure:"client_id"`
	Prefix               string        `mapstructure:"prefix"`
	QOS                  uint8         `mapstructure:"qos" validate:"lte=2"`
	CleanSession         bool          `mapstructure:"clean_session"`
	MaxReconnectInterval time.Duration `mapstructure:"max_reconnect_interval"`
}

// MetricsConfig periodic metrics report
type MetricsConfig struct {
	// Report cron spec, e.g. "@every 1m"; empty disables the report
	Report string `mapstructure:"report"`
}

var validate = validator.New()

// LoadConfig reads file (yaml, json or toml, optional) and the CALCAOP_
// environment variables, which take precedence, then validates the result.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server.port", 9090)
	v.SetDefault("aspects.style", "combined")
	v.SetDefault("mqtt.server", "tcp://127.0.0.1:1883")
	v.SetDefault("mqtt.prefix", "calcaop")
	v.SetDefault("mqtt.max_reconnect_interval", time.Minute)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// keys must be known to viper for Unmarshal to see their env values
	for _, key := range []string{"server.log_file", "server.cert_file", "server.cert_key_file",
		"aspects.file", "mqtt.enabled", "mqtt.username", "mqtt.password", "mqtt.client_id",
		"mqtt.qos", "mqtt.clean_session", "metrics.report"} {
		_ = v.BindEnv(key)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
