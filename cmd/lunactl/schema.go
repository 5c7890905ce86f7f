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

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ensureSchemaCmd = &cobra.Command{
	Use:   "ensure-schema",
	Short: "Create the graph store's uniqueness constraints (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		graph, err := connectGraphStore()
		if err != nil {
			return err
		}
		if err := graph.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
		fmt.Println("Graph store schema is up to date")
		return nil
	},
}
