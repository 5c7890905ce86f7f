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

package model

import (
	"encoding/json"
	"strings"
)

// EdgeOperator is the boolean operator combining an edge's clauses.
type EdgeOperator string

const (
	// OperatorAND is the default combination operator for an edge's clauses.
	OperatorAND EdgeOperator = "AND"
	// OperatorOR combines clauses with a logical OR.
	OperatorOR EdgeOperator = "OR"
)

// Step is a workflow graph node: a function reference and an input template.
// Edges and templates are persisted as serialized JSON strings by the Graph Store
// Adapter (spec.md §4.A); InputTemplate here is the already-decoded form.
type Step struct {
	ID            string
	Function      string
	InputTemplate Value
	Description   string
	Tags          []string
}

// Edge is a directed NEXT relationship between two steps.
type Edge struct {
	TargetID  string
	Condition []Clause
	Operator  EdgeOperator
	Priority  int
	// DiscoveryOrder breaks priority ties in the order outgoing edges were
	// returned by the Graph Store Adapter (spec.md §4.F step 4).
	DiscoveryOrder int
}

// Clause is one element of an edge's condition list (spec.md §4.D / §6.3).
type Clause struct {
	// Bare is set when the clause is a legacy bare reference string.
	Bare string
	// True holds the reference(s) that must be truthy for this clause to hold.
	True []string
	// False holds the reference(s) that must be falsy for this clause to hold.
	False []string
	// Operator combines True/False sub-conditions when both are present or when
	// either carries more than one reference. Defaults to AND.
	Operator EdgeOperator
}

// RootStepID is the distinguished root step id of a workflow.
const RootStepID = "root"

// UnmarshalJSON decodes the four clause shapes a NEXT edge's condition list may
// contain (spec.md §4.D / §6.3):
//
//	"step_id.path"                                    -> bare reference
//	{"true": "step_id.path"}                          -> single truthy requirement
//	{"false": ["a.path", "b.path"]}                    -> falsy requirement(s)
//	{"operator": "OR", "true": [...], "false": [...]} -> explicit combination
//
// When the same key appears twice in the source object, encoding/json keeps the
// last-decoded value, which gives last-wins semantics for free.
func (c *Clause) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*c = Clause{Bare: bare}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	clause := Clause{Operator: OperatorAND}
	if raw, ok := obj["operator"]; ok {
		var op string
		if err := json.Unmarshal(raw, &op); err == nil && op != "" {
			clause.Operator = EdgeOperator(strings.ToUpper(op))
		}
	}
	if raw, ok := obj["true"]; ok {
		clause.True = decodeRefList(raw)
	}
	if raw, ok := obj["false"]; ok {
		clause.False = decodeRefList(raw)
	}
	*c = clause
	return nil
}

// MarshalJSON encodes a Clause back into the shape UnmarshalJSON accepts: a bare
// string when Bare is set, otherwise an object carrying operator/true/false.
func (c Clause) MarshalJSON() ([]byte, error) {
	if c.Bare != "" {
		return json.Marshal(c.Bare)
	}
	obj := map[string]any{}
	if c.Operator != "" && c.Operator != OperatorAND {
		obj["operator"] = string(c.Operator)
	}
	if len(c.True) > 0 {
		obj["true"] = refListJSON(c.True)
	}
	if len(c.False) > 0 {
		obj["false"] = refListJSON(c.False)
	}
	return json.Marshal(obj)
}

// refListJSON collapses a single-element reference list back to a bare string,
// mirroring the flexibility decodeRefList accepts on the way in.
func refListJSON(refs []string) any {
	if len(refs) == 1 {
		return refs[0]
	}
	return refs
}

// decodeRefList accepts either a single reference string or a list of them.
func decodeRefList(raw json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return nil
}
