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
	"encoding/json"
	"fmt"
	"os"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
)

// workflowDoc is the on-disk shape of a workflow definition file: a flat list of
// steps and the NEXT edges connecting them, grounded on original_source/main.py's
// create_example_workflow() but expressed declaratively instead of as inline
// Cypher.
type workflowDoc struct {
	Steps []stepDoc `json:"steps"`
	Edges []edgeDoc `json:"edges"`
}

type stepDoc struct {
	ID          string      `json:"id"`
	Function    string      `json:"function"`
	Input       model.Value `json:"input"`
	Description string      `json:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

type edgeDoc struct {
	Source    string         `json:"source"`
	Target    string         `json:"target"`
	Condition []model.Clause `json:"condition,omitempty"`
	Operator  string         `json:"operator,omitempty"`
	Priority  int            `json:"priority,omitempty"`
}

// loadWorkflowDoc reads and decodes a workflow definition file.
func loadWorkflowDoc(path string) (*workflowDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}
	var doc workflowDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}
	return &doc, nil
}

func (d stepDoc) toStep() model.Step {
	return model.Step{
		ID:            d.ID,
		Function:      d.Function,
		InputTemplate: d.Input,
		Description:   d.Description,
		Tags:          d.Tags,
	}
}

func (d edgeDoc) toEdge(discoveryOrder int) model.Edge {
	operator := model.OperatorAND
	if d.Operator != "" {
		operator = model.EdgeOperator(d.Operator)
	}
	return model.Edge{
		TargetID:       d.Target,
		Condition:      d.Condition,
		Operator:       operator,
		Priority:       d.Priority,
		DiscoveryOrder: discoveryOrder,
	}
}
