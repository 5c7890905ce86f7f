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

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
	"github.com/MitchMcQuinn/LUNA/internal/flow/registry"
	"github.com/MitchMcQuinn/LUNA/internal/graphstore"
	"github.com/MitchMcQuinn/LUNA/internal/session"
)

// newHarness wires a Fake graph store, a Session Store atop it, and an empty
// Registry into a fresh Engine, and starts a session with its root step active.
func newHarness(t *testing.T) (*Engine, *graphstore.Fake, *registry.Registry, *session.Store, string) {
	t.Helper()
	graph := graphstore.NewFake()
	functions := registry.New()
	sessions := session.New(graph)
	e := New(graph, sessions, functions, 50, 5)

	id, err := sessions.Create(context.Background(), "", nil)
	require.NoError(t, err)
	return e, graph, functions, sessions, id
}

func TestProcess_RunsRootStepThenStops(t *testing.T) {
	e, graph, functions, sessions, id := newHarness(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "greet"}))
	functions.Register(registry.Definition{Name: "greet", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("hi"), nil
	}})

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, state.Workflow[model.RootStepID].Status)
	out, ok := state.LatestOutput(model.RootStepID)
	require.True(t, ok)
	text, _ := out.Text()
	assert.Equal(t, "hi", text)

	reread, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, reread.Workflow[model.RootStepID].Status)
}

func TestProcess_AdvancesAcrossAnUnconditionalEdge(t *testing.T) {
	e, graph, functions, _, id := newHarness(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "first"}))
	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: "second", Function: "second"}))
	require.NoError(t, graph.UpsertEdge(ctx, model.RootStepID, model.Edge{TargetID: "second"}))

	functions.Register(registry.Definition{Name: "first", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("one"), nil
	}})
	functions.Register(registry.Definition{Name: "second", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("two"), nil
	}})

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, state.Workflow["second"].Status)
}

func TestProcess_ConditionalEdgeBlocksWhenFalsy(t *testing.T) {
	e, graph, functions, _, id := newHarness(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "gate"}))
	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: "second", Function: "second"}))
	require.NoError(t, graph.UpsertEdge(ctx, model.RootStepID, model.Edge{
		TargetID:  "second",
		Condition: []model.Clause{{Bare: "root.ok"}},
	}))

	functions.Register(registry.Definition{Name: "gate", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewMap(map[string]model.Value{"ok": model.NewBool(false)}), nil
	}})
	functions.Register(registry.Definition{Name: "second", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("should not run"), nil
	}})

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	_, exists := state.Workflow["second"]
	assert.False(t, exists, "second should never have been activated")
}

func TestProcess_UnresolvableInputMarksStepPending(t *testing.T) {
	e, graph, functions, _, id := newHarness(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertStep(ctx, model.Step{
		ID:            model.RootStepID,
		Function:      "needsInput",
		InputTemplate: model.NewText("@{SESSION_ID}.missing.field"),
	}))
	functions.Register(registry.Definition{Name: "needsInput", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("unreachable"), nil
	}})

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, state.Workflow[model.RootStepID].Status)
}

func TestProcess_PendingStepOnAnUnrelatedBranchIsPromotedOnceItsDataArrives(t *testing.T) {
	e, graph, functions, _, id := newHarness(t)
	ctx := context.Background()

	// root fans out to "a" and "b" with no edge between them. "a" needs "b"'s
	// output, which isn't written until "b" runs — a's resolve fails on its
	// first attempt and it is parked pending, with nothing but the pending
	// sweep left to ever notice "b" finishing and revive it.
	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "fanOut"}))
	require.NoError(t, graph.UpsertStep(ctx, model.Step{
		ID:            "a",
		Function:      "echo",
		InputTemplate: model.NewText("@{SESSION_ID}.b"),
	}))
	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: "b", Function: "echo"}))
	require.NoError(t, graph.UpsertEdge(ctx, model.RootStepID, model.Edge{TargetID: "a"}))
	require.NoError(t, graph.UpsertEdge(ctx, model.RootStepID, model.Edge{TargetID: "b"}))

	functions.Register(registry.Definition{Name: "fanOut", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.Null, nil
	}})
	functions.Register(registry.Definition{Name: "echo", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		if input.IsNull() {
			return model.NewText("b ran"), nil
		}
		return input, nil
	}})

	state, err := e.Process(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, model.StatusComplete, state.Workflow["b"].Status)
	require.Equal(t, model.StatusComplete, state.Workflow["a"].Status, "a should have been promoted out of pending once b completed")

	aOut, ok := state.LatestOutput("a")
	require.True(t, ok)
	text, _ := aOut.Text()
	assert.Equal(t, "b ran", text)
}

func TestProcess_MissingFunctionMarksStepError(t *testing.T) {
	e, graph, _, _, id := newHarness(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "does.not.exist"}))

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, state.Workflow[model.RootStepID].Status)
	assert.Equal(t, "Utility not found: does.not.exist", state.Workflow[model.RootStepID].Error)
}

func TestProcess_MissingStepMarksStepError(t *testing.T) {
	e, _, _, _, id := newHarness(t)
	ctx := context.Background()

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, state.Workflow[model.RootStepID].Status)
	assert.Equal(t, "Step not found", state.Workflow[model.RootStepID].Error)
}

func TestProcess_FunctionExceptionMarksStepError(t *testing.T) {
	e, graph, functions, _, id := newHarness(t)
	ctx := context.Background()
	boom := errors.New("boom")

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "explode"}))
	functions.Register(registry.Definition{Name: "explode", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.Null, boom
	}})

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, state.Workflow[model.RootStepID].Status)
	assert.Equal(t, "boom", state.Workflow[model.RootStepID].Error)
}

func TestProcess_ReactivatingAnErroredStepClearsItsError(t *testing.T) {
	e, graph, functions, sessions, id := newHarness(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "missing.fn"}))

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.StatusError, state.Workflow[model.RootStepID].Status)
	require.NotEmpty(t, state.Workflow[model.RootStepID].Error)

	_, err = sessions.Update(ctx, id, func(current *model.State) (*model.State, error) {
		current.Workflow[model.RootStepID] = model.StepState{Status: model.StatusActive}
		return current, nil
	})
	require.NoError(t, err)

	functions.Register(registry.Definition{Name: "missing.fn", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("recovered"), nil
	}})

	state, err = e.Process(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, state.Workflow[model.RootStepID].Status)
	assert.Empty(t, state.Workflow[model.RootStepID].Error)
}

func TestProcess_SuspendingFunctionStopsTheDriveLoop(t *testing.T) {
	e, graph, functions, _, id := newHarness(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "ask"}))
	functions.Register(registry.Definition{
		Name:              "ask",
		SuspendsExecution: true,
		EmitsMessage:      true,
		Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
			return model.NewText("what is your name?"), nil
		},
	})

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAwaitingInput, state.Workflow[model.RootStepID].Status)
	require.Len(t, state.Data.Messages, 1)
	assert.Equal(t, model.RoleAssistant, state.Data.Messages[0].Role)
}

func TestSubmitInput_ResumesASuspendedStepAndAdvances(t *testing.T) {
	e, graph, functions, _, id := newHarness(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "ask"}))
	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: "second", Function: "echoName"}))
	require.NoError(t, graph.UpsertEdge(ctx, model.RootStepID, model.Edge{TargetID: "second"}))

	functions.Register(registry.Definition{
		Name:              "ask",
		SuspendsExecution: true,
		Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
			return model.NewText("what is your name?"), nil
		},
	})
	functions.Register(registry.Definition{Name: "echoName", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return input, nil
	}})

	_, err := e.Process(ctx, id)
	require.NoError(t, err)

	state, err := e.SubmitInput(ctx, id, model.NewText("Ada"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, state.Workflow[model.RootStepID].Status)
	assert.Equal(t, model.StatusComplete, state.Workflow["second"].Status)

	rootOut, ok := state.LatestOutput(model.RootStepID)
	require.True(t, ok)
	name, _ := rootOut.Text()
	assert.Equal(t, "Ada", name)

	var userMessages int
	for _, m := range state.Data.Messages {
		if m.Role == model.RoleUser {
			userMessages++
		}
	}
	assert.Equal(t, 1, userMessages)
}

func TestSubmitInput_WithoutAnAwaitingStepIsAnError(t *testing.T) {
	e, _, _, _, id := newHarness(t)
	_, err := e.SubmitInput(context.Background(), id, model.NewText("hello"))
	assert.ErrorIs(t, err, ErrNoStepAwaitingInput)
}

func TestProcess_CyclicWorkflowExhaustsIterationLimit(t *testing.T) {
	graph := graphstore.NewFake()
	functions := registry.New()
	sessions := session.New(graph)
	e := New(graph, sessions, functions, 5, 5)
	ctx := context.Background()

	id, err := sessions.Create(ctx, "", nil)
	require.NoError(t, err)

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "loop"}))
	require.NoError(t, graph.UpsertEdge(ctx, model.RootStepID, model.Edge{TargetID: model.RootStepID}))
	functions.Register(registry.Definition{Name: "loop", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("again"), nil
	}})

	_, err = e.Process(ctx, id)
	assert.ErrorIs(t, err, ErrIterationLimitExceeded)
}

func TestProcess_MultipleSimultaneouslyActiveStepsAreDrivenDeterministically(t *testing.T) {
	e, graph, functions, _, id := newHarness(t)
	ctx := context.Background()

	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: model.RootStepID, Function: "fanout"}))
	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: "a", Function: "leaf"}))
	require.NoError(t, graph.UpsertStep(ctx, model.Step{ID: "b", Function: "leaf"}))
	require.NoError(t, graph.UpsertEdge(ctx, model.RootStepID, model.Edge{TargetID: "a"}))
	require.NoError(t, graph.UpsertEdge(ctx, model.RootStepID, model.Edge{TargetID: "b"}))

	functions.Register(registry.Definition{Name: "fanout", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.Null, nil
	}})
	functions.Register(registry.Definition{Name: "leaf", Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
		return model.NewText("done"), nil
	}})

	state, err := e.Process(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, state.Workflow["a"].Status)
	assert.Equal(t, model.StatusComplete, state.Workflow["b"].Status)
}
