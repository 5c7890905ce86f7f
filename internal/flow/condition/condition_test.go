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

package condition

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
)

func decodeClauses(t *testing.T, raw string) []model.Clause {
	var clauses []model.Clause
	require.NoError(t, json.Unmarshal([]byte(raw), &clauses))
	return clauses
}

func TestEvaluateEdge_NoConditionIsUnconditional(t *testing.T) {
	edge := model.Edge{TargetID: "next"}
	assert.True(t, EvaluateEdge(edge, nil))
}

func TestEvaluateClause_BareReferenceTruthy(t *testing.T) {
	clauses := decodeClauses(t, `["step.ok"]`)
	outputs := map[string][]model.Value{
		"step": {model.NewMap(map[string]model.Value{"ok": model.NewBool(true)})},
	}
	assert.True(t, EvaluateClause(clauses[0], outputs))
}

func TestEvaluateClause_AbsentReferenceIsFalsy(t *testing.T) {
	clauses := decodeClauses(t, `["step.missing"]`)
	assert.False(t, EvaluateClause(clauses[0], map[string][]model.Value{}))
}

func TestEvaluateClause_TrueKeyRequiresTruthy(t *testing.T) {
	clauses := decodeClauses(t, `[{"true": "step.ok"}]`)
	outputs := map[string][]model.Value{
		"step": {model.NewMap(map[string]model.Value{"ok": model.NewBool(false)})},
	}
	assert.False(t, EvaluateClause(clauses[0], outputs))
}

func TestEvaluateClause_FalseKeyNegates(t *testing.T) {
	clauses := decodeClauses(t, `[{"false": "step.ok"}]`)
	outputs := map[string][]model.Value{
		"step": {model.NewMap(map[string]model.Value{"ok": model.NewBool(false)})},
	}
	assert.True(t, EvaluateClause(clauses[0], outputs))
}

func TestEvaluateClause_ExplicitOperatorOR(t *testing.T) {
	clauses := decodeClauses(t, `[{"operator": "OR", "true": ["a.ok", "b.ok"]}]`)
	outputs := map[string][]model.Value{
		"a": {model.NewMap(map[string]model.Value{"ok": model.NewBool(false)})},
		"b": {model.NewMap(map[string]model.Value{"ok": model.NewBool(true)})},
	}
	assert.True(t, EvaluateClause(clauses[0], outputs))
}

func TestEvaluateClause_DefaultOperatorIsAND(t *testing.T) {
	clauses := decodeClauses(t, `[{"true": ["a.ok", "b.ok"]}]`)
	outputs := map[string][]model.Value{
		"a": {model.NewMap(map[string]model.Value{"ok": model.NewBool(true)})},
		"b": {model.NewMap(map[string]model.Value{"ok": model.NewBool(false)})},
	}
	assert.False(t, EvaluateClause(clauses[0], outputs))
}

func TestEvaluateClause_DuplicateKeysLastWins(t *testing.T) {
	clauses := decodeClauses(t, `[{"operator": "AND", "operator": "OR", "true": ["a.ok", "b.ok"]}]`)
	outputs := map[string][]model.Value{
		"a": {model.NewMap(map[string]model.Value{"ok": model.NewBool(true)})},
		"b": {model.NewMap(map[string]model.Value{"ok": model.NewBool(false)})},
	}
	assert.True(t, EvaluateClause(clauses[0], outputs), "last operator (OR) should win")
}

func TestEvaluateClause_Sentinels(t *testing.T) {
	clauses := decodeClauses(t, `["1==1", "1==0"]`)
	assert.True(t, EvaluateClause(clauses[0], nil))
	assert.False(t, EvaluateClause(clauses[1], nil))
}

func TestEvaluateEdge_CombinesClausesWithTopLevelOperator(t *testing.T) {
	edge := model.Edge{
		TargetID:  "next",
		Operator:  model.OperatorOR,
		Condition: decodeClauses(t, `["a.ok", "b.ok"]`),
	}
	outputs := map[string][]model.Value{
		"a": {model.NewMap(map[string]model.Value{"ok": model.NewBool(false)})},
		"b": {model.NewMap(map[string]model.Value{"ok": model.NewBool(true)})},
	}
	assert.True(t, EvaluateEdge(edge, outputs))
}
