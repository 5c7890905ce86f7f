/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package config provides structures and functions for loading and managing server configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP server bind configuration.
type ServerConfig struct {
	Hostname       string   `yaml:"hostname"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GraphStoreConfig holds the property-graph store connection configuration.
type GraphStoreConfig struct {
	URI                 string `yaml:"uri"`
	Username            string `yaml:"username"`
	Password            string `yaml:"password"`
	Database            string `yaml:"database"`
	MaxConnectionPool   int    `yaml:"max_connection_pool"`
	MaxConnLifetimeSecs int    `yaml:"max_connection_lifetime_seconds"`
}

// EngineConfig holds the workflow engine's runtime tunables.
type EngineConfig struct {
	IterationMax      int `yaml:"iteration_max"`
	OutputWindowSize  int `yaml:"output_window_size"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config holds the complete configuration of the server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	GraphStore GraphStoreConfig `yaml:"graph_store"`
	Engine     EngineConfig     `yaml:"engine"`
	Log        LogConfig        `yaml:"log"`
}

// defaults applies the spec's recommended defaults for anything left unset.
func (c *Config) defaults() {
	if c.Engine.IterationMax <= 0 {
		c.Engine.IterationMax = 1000
	}
	if c.Engine.OutputWindowSize <= 0 {
		c.Engine.OutputWindowSize = 5
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.GraphStore.MaxConnectionPool <= 0 {
		c.GraphStore.MaxConnectionPool = 50
	}
	if c.GraphStore.MaxConnLifetimeSecs <= 0 {
		c.GraphStore.MaxConnLifetimeSecs = 3600
	}
}

// applyEnvOverrides overrides config fields with environment variables when present,
// following the teacher's os.Getenv fallback convention.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LUNA_GRAPHSTORE_URI"); v != "" {
		c.GraphStore.URI = v
	}
	if v := os.Getenv("LUNA_GRAPHSTORE_USERNAME"); v != "" {
		c.GraphStore.Username = v
	}
	if v := os.Getenv("LUNA_GRAPHSTORE_PASSWORD"); v != "" {
		c.GraphStore.Password = v
	}
	if v := os.Getenv("LUNA_GRAPHSTORE_DATABASE"); v != "" {
		c.GraphStore.Database = v
	}
	if v := os.Getenv("LUNA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("LUNA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// LoadConfig loads the configuration from the specified YAML file, applying environment
// overrides and defaults afterward.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()
	cfg.defaults()
	return &cfg, nil
}
