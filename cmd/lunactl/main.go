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

// Package main implements lunactl, an operator CLI for the workflow engine's
// graph store: schema bootstrap, workflow seeding, and session inspection
// (grounded on original_source/main.py's --init/--create-example/--run flags).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MitchMcQuinn/LUNA/internal/graphstore"
	"github.com/MitchMcQuinn/LUNA/internal/system/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lunactl",
	Short: "Operate the workflow engine's graph store",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "repository/conf/deployment.yaml",
		"Path to the deployment configuration file")

	rootCmd.AddCommand(ensureSchemaCmd, seedCmd, inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connectGraphStore loads the configuration at configPath and returns a ready
// graph store adapter.
func connectGraphStore() (graphstore.Store, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	provider, err := graphstore.GetProvider(cfg.GraphStore)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to graph store: %w", err)
	}
	return provider.GetAdapter(), nil
}
