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

var seedCmd = &cobra.Command{
	Use:   "seed [workflow.json]",
	Short: "Upsert a workflow definition's steps and edges into the graph store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadWorkflowDoc(args[0])
		if err != nil {
			return err
		}

		graph, err := connectGraphStore()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		for _, s := range doc.Steps {
			if err := graph.UpsertStep(ctx, s.toStep()); err != nil {
				return fmt.Errorf("failed to upsert step %s: %w", s.ID, err)
			}
		}

		byEdgeSource := make(map[string]int)
		for _, e := range doc.Edges {
			discoveryOrder := byEdgeSource[e.Source]
			byEdgeSource[e.Source]++
			if err := graph.UpsertEdge(ctx, e.Source, e.toEdge(discoveryOrder)); err != nil {
				return fmt.Errorf("failed to upsert edge %s -> %s: %w", e.Source, e.Target, err)
			}
		}

		fmt.Printf("Seeded %d step(s) and %d edge(s)\n", len(doc.Steps), len(doc.Edges))
		return nil
	},
}
