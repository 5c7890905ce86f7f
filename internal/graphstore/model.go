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

package graphstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
)

// ErrStepNotFound is returned when a step id has no matching node.
var ErrStepNotFound = errors.New("step not found")

// ErrSessionNotFound is returned when a session id has no matching node.
var ErrSessionNotFound = errors.New("session not found")

// ErrVersionConflict is returned by Adapter.RunTransaction when the stored version no
// longer matches the version the caller read — another writer won the race
// (spec.md §4.B's optimistic concurrency).
var ErrVersionConflict = errors.New("session version conflict")

// stepFromRow builds a model.Step from a queryGetStep result row. It tolerates
// both the canonical `function` attribute and the legacy `utility` attribute,
// preferring function when both are present (spec.md §9 Open Question b).
func stepFromRow(row map[string]any) (model.Step, error) {
	id, _ := row["id"].(string)
	if id == "" {
		return model.Step{}, fmt.Errorf("step row missing id")
	}

	function, _ := row["function"].(string)
	if function == "" {
		function, _ = row["utility"].(string)
	}

	description, _ := row["description"].(string)

	var tags []string
	if raw, ok := row["tags"].([]any); ok {
		for _, t := range raw {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
	}

	inputTemplate := model.NewMap(nil)
	if raw, ok := row["input_template"].(string); ok && raw != "" {
		var decoded model.Value
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return model.Step{}, fmt.Errorf("step %s has malformed input_template: %w", id, err)
		}
		inputTemplate = decoded
	}

	return model.Step{
		ID:            id,
		Function:      function,
		InputTemplate: inputTemplate,
		Description:   description,
		Tags:          tags,
	}, nil
}

// edgeFromRow builds a model.Edge from a queryGetOutgoingEdges result row.
func edgeFromRow(row map[string]any, discoveryOrder int) (model.Edge, error) {
	targetID, _ := row["target_id"].(string)
	if targetID == "" {
		return model.Edge{}, fmt.Errorf("edge row missing target_id")
	}

	operator := model.OperatorAND
	if raw, ok := row["operator"].(string); ok && raw != "" {
		operator = model.EdgeOperator(raw)
	}

	priority := 0
	switch p := row["priority"].(type) {
	case int64:
		priority = int(p)
	case int:
		priority = p
	}

	var condition []model.Clause
	if raw, ok := row["condition"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &condition); err != nil {
			return model.Edge{}, fmt.Errorf("edge to %s has malformed condition: %w", targetID, err)
		}
	}

	return model.Edge{
		TargetID:       targetID,
		Condition:      condition,
		Operator:       operator,
		Priority:       priority,
		DiscoveryOrder: discoveryOrder,
	}, nil
}

// encodeInputTemplate serializes a step's input template for storage.
func encodeInputTemplate(v model.Value) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// encodeCondition serializes an edge's condition clause list for storage.
func encodeCondition(clauses []model.Clause) (string, error) {
	if len(clauses) == 0 {
		return "", nil
	}
	b, err := json.Marshal(clauses)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// encodeState serializes a session's state document for storage.
func encodeState(state *model.State) (string, error) {
	b, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeState deserializes a session's state document.
func decodeState(raw string) (*model.State, error) {
	var state model.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}
	return &state, nil
}
