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
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
)

// edgeEntry pairs an edge with its source, for the fake's flat edge list.
type edgeEntry struct {
	sourceID string
	edge     model.Edge
}

// Fake is an in-memory Store used by package tests throughout the flow engine —
// it never touches a real Neo4j instance. Unlike Adapter it is not safe against
// truly concurrent callers racing on the same session; RunTransaction instead
// takes a coarse lock, which is sufficient for the single-goroutine-per-session
// usage the engine's own mutex already guarantees.
type Fake struct {
	mu       sync.Mutex
	steps    map[string]model.Step
	edges    []edgeEntry
	sessions map[string]*sessionRecord
}

type sessionRecord struct {
	state   *model.State
	version int64
}

// NewFake returns an empty in-memory Store.
func NewFake() *Fake {
	return &Fake{
		steps:    make(map[string]model.Step),
		sessions: make(map[string]*sessionRecord),
	}
}

var _ Store = (*Fake)(nil)

// EnsureSchema is a no-op on the fake; there is no schema to create.
func (f *Fake) EnsureSchema(ctx context.Context) error { return nil }

// Ping always succeeds on the fake.
func (f *Fake) Ping(ctx context.Context) error { return nil }

// GetStep returns the step registered under id via UpsertStep.
func (f *Fake) GetStep(ctx context.Context, id string) (model.Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step, ok := f.steps[id]
	if !ok {
		return model.Step{}, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	return step, nil
}

// GetOutgoingEdges returns every edge registered from id via UpsertEdge, sorted
// by priority ascending; ties keep insertion order, which the fake uses as its
// stand-in for Neo4j's discovery order.
func (f *Fake) GetOutgoingEdges(ctx context.Context, id string) ([]model.Edge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Edge
	for _, e := range f.edges {
		if e.sourceID == id {
			out = append(out, e.edge)
		}
	}
	for i := range out {
		out[i].DiscoveryOrder = i
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

// UpsertStep registers or replaces a step.
func (f *Fake) UpsertStep(ctx context.Context, step model.Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps[step.ID] = step
	return nil
}

// UpsertEdge registers or replaces a NEXT edge from sourceID to edge.TargetID.
func (f *Fake) UpsertEdge(ctx context.Context, sourceID string, edge model.Edge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.edges {
		if e.sourceID == sourceID && e.edge.TargetID == edge.TargetID {
			f.edges[i] = edgeEntry{sourceID: sourceID, edge: edge}
			return nil
		}
	}
	f.edges = append(f.edges, edgeEntry{sourceID: sourceID, edge: edge})
	return nil
}

// CreateSession creates a brand new session record.
func (f *Fake) CreateSession(ctx context.Context, state *model.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.sessions[state.ID]; exists {
		return fmt.Errorf("session already exists: %s", state.ID)
	}
	f.sessions[state.ID] = &sessionRecord{state: state.Clone(), version: 0}
	return nil
}

// ReadSessionState returns a clone of a session's current state.
func (f *Fake) ReadSessionState(ctx context.Context, sessionID string) (*model.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return rec.state.Clone(), nil
}

// RunTransaction applies mutate to the session's current state under the fake's
// single lock, mirroring the atomicity Adapter gets from Neo4j's node locking.
func (f *Fake) RunTransaction(ctx context.Context, sessionID string, mutate Mutator) (*model.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	next, err := mutate(rec.state.Clone())
	if err != nil {
		return nil, err
	}
	rec.state = next.Clone()
	rec.version++
	return next, nil
}
