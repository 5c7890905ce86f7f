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

// Package condition evaluates a NEXT edge's condition list against a session's
// rolling outputs, per spec.md §4.D / §6.3.
package condition

import (
	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
	"github.com/MitchMcQuinn/LUNA/internal/flow/resolver"
)

// sentinel override references: manual test hooks that bypass resolution entirely.
const (
	sentinelTrue  = "1==1"
	sentinelFalse = "1==0"
)

// EvaluateEdge reports whether an edge should be followed, given a session's
// rolling outputs. An edge with no condition clauses is unconditional and always
// holds. Otherwise every clause is evaluated and combined with the edge's
// operator (default AND, spec.md §4.D).
func EvaluateEdge(edge model.Edge, outputs map[string][]model.Value) bool {
	if len(edge.Condition) == 0 {
		return true
	}
	op := edge.Operator
	if op == "" {
		op = model.OperatorAND
	}
	results := make([]bool, len(edge.Condition))
	for i, clause := range edge.Condition {
		results[i] = EvaluateClause(clause, outputs)
	}
	return combine(results, op)
}

// EvaluateClause evaluates one clause of an edge's condition list.
func EvaluateClause(clause model.Clause, outputs map[string][]model.Value) bool {
	if clause.Bare != "" {
		return truthy(clause.Bare, outputs)
	}

	op := clause.Operator
	if op == "" {
		op = model.OperatorAND
	}

	var results []bool
	for _, ref := range clause.True {
		results = append(results, truthy(ref, outputs))
	}
	for _, ref := range clause.False {
		results = append(results, !truthy(ref, outputs))
	}
	return combine(results, op)
}

// truthy resolves a bare reference path and reports its truthiness. An
// unresolvable reference is falsy, never an error (spec.md §4.D — "absent refs
// are falsy"). The "1==1"/"1==0" sentinels bypass resolution for manual overrides.
func truthy(ref string, outputs map[string][]model.Value) bool {
	switch ref {
	case sentinelTrue:
		return true
	case sentinelFalse:
		return false
	}
	val, ok := resolver.ResolvePath(ref, outputs)
	if !ok {
		return false
	}
	return val.Truthy()
}

// combine folds a set of boolean results with AND or OR. A vacuous AND (no
// results) holds; a vacuous OR does not.
func combine(results []bool, op model.EdgeOperator) bool {
	if op == model.OperatorOR {
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	}
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}
