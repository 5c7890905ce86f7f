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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
)

func TestStepFromRow_PrefersCanonicalFunctionAttribute(t *testing.T) {
	row := map[string]any{
		"id":       "greet",
		"function": "utils.reply.reply",
		"utility":  "legacy.name",
	}
	step, err := stepFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, "utils.reply.reply", step.Function)
}

func TestStepFromRow_FallsBackToLegacyUtilityAttribute(t *testing.T) {
	row := map[string]any{
		"id":      "greet",
		"utility": "legacy.name",
	}
	step, err := stepFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, "legacy.name", step.Function)
}

func TestStepFromRow_MissingIDIsError(t *testing.T) {
	_, err := stepFromRow(map[string]any{"function": "x"})
	assert.Error(t, err)
}

func TestStepFromRow_DecodesInputTemplate(t *testing.T) {
	row := map[string]any{
		"id":             "greet",
		"function":       "utils.reply.reply",
		"input_template": `{"message": "@{SESSION_ID}.root.name"}`,
	}
	step, err := stepFromRow(row)
	require.NoError(t, err)
	msg, ok := step.InputTemplate.Get("message")
	require.True(t, ok)
	text, _ := msg.Text()
	assert.Equal(t, "@{SESSION_ID}.root.name", text)
}

func TestEdgeFromRow_DefaultsOperatorToAND(t *testing.T) {
	edge, err := edgeFromRow(map[string]any{"target_id": "next"}, 0)
	require.NoError(t, err)
	assert.Equal(t, model.OperatorAND, edge.Operator)
	assert.Empty(t, edge.Condition)
}

func TestEdgeFromRow_DecodesConditionClauses(t *testing.T) {
	row := map[string]any{
		"target_id": "next",
		"condition": `["step.ok", {"true": "step.flag"}]`,
		"operator":  "OR",
		"priority":  int64(5),
	}
	edge, err := edgeFromRow(row, 2)
	require.NoError(t, err)
	assert.Equal(t, model.OperatorOR, edge.Operator)
	assert.Equal(t, 5, edge.Priority)
	assert.Equal(t, 2, edge.DiscoveryOrder)
	require.Len(t, edge.Condition, 2)
	assert.Equal(t, "step.ok", edge.Condition[0].Bare)
	assert.Equal(t, []string{"step.flag"}, edge.Condition[1].True)
}

func TestEncodeDecodeState_RoundTrips(t *testing.T) {
	state := model.NewState("sess-1", "greeting")
	state.AppendOutput("root", model.NewText("hello"), 5)
	state.Data.Messages = append(state.Data.Messages, model.Message{Role: "user", Content: model.NewText("hi")})

	encoded, err := encodeState(state)
	require.NoError(t, err)

	decoded, err := decodeState(encoded)
	require.NoError(t, err)
	assert.Equal(t, state.ID, decoded.ID)
	out, ok := decoded.LatestOutput("root")
	require.True(t, ok)
	text, _ := out.Text()
	assert.Equal(t, "hello", text)
	require.Len(t, decoded.Data.Messages, 1)
	assert.Equal(t, "user", decoded.Data.Messages[0].Role)
}
