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

package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
)

func TestInvoke_EmptyFunctionNameIsTrivialSuccess(t *testing.T) {
	r := New()
	result, err := r.Invoke(context.Background(), "", model.NewMap(nil))
	require.NoError(t, err)
	assert.False(t, result.Suspends)
	m, ok := result.Output.Map()
	require.True(t, ok)
	assert.Empty(t, m)
}

func TestInvoke_UnregisteredFunctionIsFatal(t *testing.T) {
	r := New()
	_, err := r.Invoke(context.Background(), "does.not.exist", model.NewMap(nil))
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestInvoke_UnregisteredButPermittedFunctionIsTrivialSuccess(t *testing.T) {
	r := New()
	r.Permit("future.utility")

	result, err := r.Invoke(context.Background(), "future.utility", model.NewMap(nil))
	require.NoError(t, err)
	assert.False(t, result.Suspends)
	m, ok := result.Output.Map()
	require.True(t, ok)
	assert.Empty(t, m)
}

func TestInvoke_RegisteredFunctionRuns(t *testing.T) {
	r := New()
	r.Register(Definition{Name: "echo", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return input, nil
	}})

	input := model.NewText("hello")
	result, err := r.Invoke(context.Background(), "echo", input)
	require.NoError(t, err)
	assert.False(t, result.Suspends)
	text, _ := result.Output.Text()
	assert.Equal(t, "hello", text)
}

func TestInvoke_ReportsSuspendsExecutionFlagOnSuccess(t *testing.T) {
	r := New()
	r.Register(Definition{
		Name:              "utils.request.request",
		SuspendsExecution: true,
		Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
			return model.Null, nil
		},
	})

	result, err := r.Invoke(context.Background(), "utils.request.request", model.NewMap(nil))
	require.NoError(t, err)
	assert.True(t, result.Suspends)
}

func TestInvoke_ReportsEmitsMessageFlagOnSuccess(t *testing.T) {
	r := New()
	r.Register(Definition{
		Name:         "utils.reply.reply",
		EmitsMessage: true,
		Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
			return input, nil
		},
	})

	result, err := r.Invoke(context.Background(), "utils.reply.reply", model.NewText("hi"))
	require.NoError(t, err)
	assert.True(t, result.EmitsMessage)
}

func TestInvoke_PropagatesFunctionError(t *testing.T) {
	r := New()
	boom := errors.New("boom")
	r.Register(Definition{Name: "fails", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.Null, boom
	}})

	_, err := r.Invoke(context.Background(), "fails", model.NewMap(nil))
	assert.ErrorIs(t, err, boom)
}

func TestInvoke_SuspendsFlagSurvivesFunctionError(t *testing.T) {
	r := New()
	boom := errors.New("boom")
	r.Register(Definition{
		Name:              "flaky.request",
		SuspendsExecution: true,
		Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
			return model.Null, boom
		},
	})

	result, err := r.Invoke(context.Background(), "flaky.request", model.NewMap(nil))
	assert.ErrorIs(t, err, boom)
	assert.True(t, result.Suspends)
}

func TestRegister_ReplacesExistingDefinition(t *testing.T) {
	r := New()
	r.Register(Definition{Name: "name", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("v1"), nil
	}})
	r.Register(Definition{Name: "name", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("v2"), nil
	}})

	result, err := r.Invoke(context.Background(), "name", model.NewMap(nil))
	require.NoError(t, err)
	text, _ := result.Output.Text()
	assert.Equal(t, "v2", text)
}
