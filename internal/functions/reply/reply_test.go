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

package reply

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
)

func TestDefinition_EmitsMessageIsTrue(t *testing.T) {
	def := Definition()
	assert.Equal(t, Name, def.Name)
	assert.True(t, def.EmitsMessage)
	assert.False(t, def.SuspendsExecution)
}

func TestReply_ExtractsMessageField(t *testing.T) {
	def := Definition()
	input := model.NewMap(map[string]model.Value{"message": model.NewText("hello")})
	out, err := def.Fn(context.Background(), input)
	require.NoError(t, err)
	text, _ := out.Text()
	assert.Equal(t, "hello", text)
}

func TestReply_FallsBackToWholeInputWhenNoMessageField(t *testing.T) {
	def := Definition()
	input := model.NewText("bare text")
	out, err := def.Fn(context.Background(), input)
	require.NoError(t, err)
	text, _ := out.Text()
	assert.Equal(t, "bare text", text)
}
