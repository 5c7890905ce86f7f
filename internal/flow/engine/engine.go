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

// Package engine implements the workflow drive loop (spec.md §4.F): the
// per-step activate/resolve/dispatch/capture/advance cycle that moves a
// session's state document forward, and the submit_input resumption path that
// feeds external input back into a suspended step.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MitchMcQuinn/LUNA/internal/flow/condition"
	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
	"github.com/MitchMcQuinn/LUNA/internal/flow/registry"
	"github.com/MitchMcQuinn/LUNA/internal/flow/resolver"
	"github.com/MitchMcQuinn/LUNA/internal/graphstore"
	"github.com/MitchMcQuinn/LUNA/internal/session"
	"github.com/MitchMcQuinn/LUNA/internal/system/log"
	"github.com/MitchMcQuinn/LUNA/internal/system/utils"
)

const loggerComponentName = "Engine"

// ErrIterationLimitExceeded is returned when a single drive call advances the
// session iteration_max times without the workflow settling into a state with
// no active steps (spec.md §4.F safety bound).
var ErrIterationLimitExceeded = errors.New("iteration limit exceeded")

// ErrNoStepAwaitingInput is returned by SubmitInput when the session has no
// step currently suspended.
var ErrNoStepAwaitingInput = errors.New("no step is awaiting input")

// DefaultIterationMax is used when New is given a non-positive iterationMax.
const DefaultIterationMax = 1000

// Engine drives session state forward by repeatedly activating, resolving, and
// dispatching steps until the workflow has nothing left to do — either because
// every step has settled, or because one has suspended awaiting external input.
type Engine struct {
	graph            graphstore.Store
	sessions         *session.Store
	functions        *registry.Registry
	iterationMax     int
	outputWindowSize int

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New builds an Engine. graph supplies the static workflow definition (steps,
// edges); sessions supplies transactional access to per-session state;
// functions is the set of callable step implementations. iterationMax and
// outputWindowSize fall back to their spec-recommended defaults when
// non-positive.
func New(graph graphstore.Store, sessions *session.Store, functions *registry.Registry, iterationMax, outputWindowSize int) *Engine {
	if iterationMax <= 0 {
		iterationMax = DefaultIterationMax
	}
	if outputWindowSize <= 0 {
		outputWindowSize = model.OutputWindowSize
	}
	return &Engine{
		graph:            graph,
		sessions:         sessions,
		functions:        functions,
		iterationMax:     iterationMax,
		outputWindowSize: outputWindowSize,
		locks:            make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex guarding sessionID, creating it on first use.
// Every Process/SubmitInput call for a given session runs under this lock, so
// a session is never driven by two goroutines at once (spec.md §4.F —
// "non-reentrant per session").
func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	l, ok := e.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[sessionID] = l
	}
	return l
}

// Process drives sessionID forward until no step is active, a step has
// suspended awaiting input, or the iteration safety bound is reached.
func (e *Engine) Process(ctx context.Context, sessionID string) (*model.State, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return e.drive(ctx, sessionID)
}

// SubmitInput resumes the single step currently awaiting input: it records
// input as that step's latest output and as a user message, marks the step
// complete, evaluates its outgoing edges, and then resumes the drive loop.
func (e *Engine) SubmitInput(ctx context.Context, sessionID string, input model.Value) (*model.State, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	stepID, ok := state.AwaitingInputStep()
	if !ok {
		return nil, ErrNoStepAwaitingInput
	}

	edges, err := e.graph.GetOutgoingEdges(ctx, stepID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outgoing edges for %s: %w", stepID, err)
	}

	_, err = e.sessions.Update(ctx, sessionID, func(current *model.State) (*model.State, error) {
		st := current.Workflow[stepID]
		if st.Status != model.StatusAwaitingInput {
			return nil, fmt.Errorf("%w: step %s is no longer awaiting input", ErrNoStepAwaitingInput, stepID)
		}
		now := time.Now().Unix()
		current.AppendOutput(stepID, input, e.outputWindowSize)
		current.Data.Messages = append(current.Data.Messages, model.Message{
			Role:      model.RoleUser,
			Content:   input,
			Timestamp: now,
			ID:        utils.GenerateUUID(),
		})
		current.Workflow[stepID] = model.StepState{Status: model.StatusComplete, LastExecuted: now}
		current.LastEvaluated = now
		advance(current, edges)
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	return e.drive(ctx, sessionID)
}

// drive runs the activate/resolve/dispatch/capture/advance cycle for one
// active step at a time, re-reading session state between steps, until no
// step is active or the session's step graph proves cyclic enough to exhaust
// iterationMax. The caller must already hold the session's lock.
func (e *Engine) drive(ctx context.Context, sessionID string) (*model.State, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName), log.String("sessionID", sessionID))

	var state *model.State
	for i := 0; i < e.iterationMax; i++ {
		var err error
		state, err = e.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		stepID, ok := nextActiveStep(state)
		if !ok {
			promoted, err := e.promotePendingSteps(ctx, sessionID, state)
			if err != nil {
				return nil, err
			}
			if !promoted {
				return state, nil
			}
			continue
		}

		if err := e.runStep(ctx, sessionID, stepID); err != nil {
			logger.Error("step execution failed", log.String("stepID", stepID), log.Error(err))
			return nil, err
		}
	}

	logger.Warn("iteration limit exceeded", log.Int("iterationMax", e.iterationMax))
	return state, fmt.Errorf("%w: session %s", ErrIterationLimitExceeded, sessionID)
}

// runStep executes a single step's activate/resolve/dispatch/capture/advance
// cycle as one atomic session transaction. Graph reads (the step's own
// definition and its outgoing edges) are static workflow data and are read
// once, outside the transaction, before it opens.
func (e *Engine) runStep(ctx context.Context, sessionID, stepID string) error {
	step, stepErr := e.graph.GetStep(ctx, stepID)

	var edges []model.Edge
	var edgesErr error
	if stepErr == nil {
		edges, edgesErr = e.graph.GetOutgoingEdges(ctx, stepID)
	}

	_, err := e.sessions.Update(ctx, sessionID, func(current *model.State) (*model.State, error) {
		st := current.Workflow[stepID]
		if st.Status != model.StatusActive {
			// Lost the race to another driver of this session; nothing to do.
			return current, nil
		}
		now := time.Now().Unix()

		switch {
		case stepErr != nil:
			current.Workflow[stepID] = model.StepState{
				Status: model.StatusError,
				Error:  "Step not found",
			}
			return current, nil
		case edgesErr != nil:
			current.Workflow[stepID] = model.StepState{
				Status: model.StatusError,
				Error:  fmt.Sprintf("failed to load outgoing edges: %v", edgesErr),
			}
			return current, nil
		}

		input, ok := resolver.Resolve(step.InputTemplate, current.Data.Outputs)
		if !ok {
			current.Workflow[stepID] = model.StepState{Status: model.StatusPending}
			return current, nil
		}

		result, invokeErr := e.functions.Invoke(ctx, step.Function, input)
		if invokeErr != nil {
			current.Workflow[stepID] = model.StepState{
				Status:       model.StatusError,
				Error:        invokeErr.Error(),
				LastExecuted: now,
			}
			return current, nil
		}

		if result.EmitsMessage {
			current.Data.Messages = append(current.Data.Messages, model.Message{
				Role:      model.RoleAssistant,
				Content:   result.Output,
				Timestamp: now,
				ID:        utils.GenerateUUID(),
			})
		}

		current.AppendOutput(stepID, result.Output, e.outputWindowSize)
		current.LastEvaluated = now

		if result.Suspends {
			current.Workflow[stepID] = model.StepState{Status: model.StatusAwaitingInput, LastExecuted: now}
			return current, nil
		}

		current.Workflow[stepID] = model.StepState{Status: model.StatusComplete, LastExecuted: now}
		advance(current, edges)
		return current, nil
	})
	return err
}

// advance activates every edge target whose condition currently holds.
// Re-activating a step that previously errored clears its error, per the
// engine's re-activation policy: an error is a description of the step's last
// attempt, not a permanent tombstone.
func advance(state *model.State, edges []model.Edge) {
	for _, edge := range edges {
		if condition.EvaluateEdge(edge, state.Data.Outputs) {
			state.Workflow[edge.TargetID] = model.StepState{Status: model.StatusActive}
		}
	}
}

// promotePendingSteps re-checks every pending step's input template against
// the session's current outputs and activates any that have become
// resolvable. A step parked in pending has no outgoing edge pointing back at
// it, so nothing short of this sweep would ever notice that a sibling
// branch's completion filled in the data it was waiting on (spec.md §4.F
// step 2; grounded on the Python reference's practice of re-enqueuing every
// active-or-pending step each iteration rather than only steps an edge just
// activated). It reports whether it promoted anything, so drive knows
// whether to keep going or conclude the workflow has settled.
func (e *Engine) promotePendingSteps(ctx context.Context, sessionID string, state *model.State) (bool, error) {
	var ids []string
	for id, st := range state.Workflow {
		if st.Status == model.StatusPending {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return false, nil
	}
	sort.Strings(ids)

	promoted := false
	for _, id := range ids {
		step, err := e.graph.GetStep(ctx, id)
		if err != nil {
			continue
		}
		if _, ok := resolver.Resolve(step.InputTemplate, state.Data.Outputs); !ok {
			continue
		}

		if _, err := e.sessions.Update(ctx, sessionID, func(current *model.State) (*model.State, error) {
			if current.Workflow[id].Status != model.StatusPending {
				return current, nil
			}
			current.Workflow[id] = model.StepState{Status: model.StatusActive}
			return current, nil
		}); err != nil {
			return promoted, err
		}
		promoted = true
	}
	return promoted, nil
}

// nextActiveStep deterministically picks the lexicographically-first active
// step id, so that a workflow with several simultaneously-active steps is
// driven in a reproducible order.
func nextActiveStep(state *model.State) (string, bool) {
	var ids []string
	for id, st := range state.Workflow {
		if st.Status == model.StatusActive {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", false
	}
	sort.Strings(ids)
	return ids[0], true
}
