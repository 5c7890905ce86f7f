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

// Package session implements the Session Store (spec.md §4.B): session creation
// with seed-data synthesis, uncached reads, and transactional updates delegated to
// the Graph Store Adapter. The store holds no cache of its own — every call
// round-trips through graphstore.Store, which is the single source of truth.
package session

import (
	"context"
	"fmt"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
	"github.com/MitchMcQuinn/LUNA/internal/graphstore"
	"github.com/MitchMcQuinn/LUNA/internal/system/log"
	"github.com/MitchMcQuinn/LUNA/internal/system/utils"
)

const loggerComponentName = "SessionStore"

// Mutator transforms a session's current state. See graphstore.Mutator.
type Mutator = graphstore.Mutator

// Store is the Session Store: it knows how to create, read, and transactionally
// update session state documents, but defers all persistence to a graphstore.Store.
type Store struct {
	graph graphstore.Store
}

// New returns a Session Store backed by graph.
func New(graph graphstore.Store) *Store {
	return &Store{graph: graph}
}

// Create starts a new session for workflowID, seeding its rolling outputs from
// seed: every top-level key of seed becomes a single-element output sequence
// under that key, and the entire seed payload is additionally stored as a
// single-element sequence under the reserved id "initial" (spec.md §3.2, §4.B) —
// so a step can reference either `@{SESSION_ID}.initial.field` for the whole
// payload or `@{SESSION_ID}.field` directly.
func (s *Store) Create(ctx context.Context, workflowID string, seed map[string]model.Value) (string, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	id := utils.GenerateUUID()
	state := model.NewState(id, workflowID)

	seedValue := model.NewMap(seed)
	state.Data.Outputs[model.InitialOutputsID] = []model.Value{seedValue}
	for key, value := range seed {
		state.Data.Outputs[key] = []model.Value{value}
	}

	if err := s.graph.CreateSession(ctx, state); err != nil {
		logger.Error("Failed to create session", log.Error(err))
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	logger.Debug("Created session", log.String("sessionID", id))
	return id, nil
}

// Get returns a session's current state document.
func (s *Store) Get(ctx context.Context, sessionID string) (*model.State, error) {
	return s.graph.ReadSessionState(ctx, sessionID)
}

// Update applies mutate to a session's state as an atomic read-modify-write,
// giving callers (principally the engine's drive loop) optimistic concurrency
// without needing to implement their own retry loop (spec.md §4.B).
func (s *Store) Update(ctx context.Context, sessionID string, mutate Mutator) (*model.State, error) {
	return s.graph.RunTransaction(ctx, sessionID, mutate)
}
