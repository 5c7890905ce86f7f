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
	"sort"

	"github.com/spf13/cobra"

	"github.com/MitchMcQuinn/LUNA/internal/session"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [session-id]",
	Short: "Print a session's step statuses and message history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graph, err := connectGraphStore()
		if err != nil {
			return err
		}
		sessions := session.New(graph)

		state, err := sessions.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to read session %s: %w", args[0], err)
		}

		fmt.Printf("SESSION: %s\n", state.ID)
		fmt.Println("\n=== WORKFLOW STEPS ===")
		stepIDs := make([]string, 0, len(state.Workflow))
		for id := range state.Workflow {
			stepIDs = append(stepIDs, id)
		}
		sort.Strings(stepIDs)
		for _, id := range stepIDs {
			st := state.Workflow[id]
			fmt.Printf("  %-24s %s", id, st.Status)
			if st.Error != "" {
				fmt.Printf("  error=%q", st.Error)
			}
			fmt.Println()
		}

		fmt.Println("\n=== MESSAGES ===")
		for _, m := range state.Data.Messages {
			fmt.Printf("  [%s] %v\n", m.Role, m.Content.ToAny())
		}
		return nil
	},
}
