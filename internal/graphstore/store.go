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

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
)

// Store is the interface the engine, session store, and HTTP layer depend on.
// Adapter implements it against Neo4j; Fake implements it in memory for tests.
type Store interface {
	EnsureSchema(ctx context.Context) error
	GetStep(ctx context.Context, id string) (model.Step, error)
	GetOutgoingEdges(ctx context.Context, id string) ([]model.Edge, error)
	UpsertStep(ctx context.Context, step model.Step) error
	UpsertEdge(ctx context.Context, sourceID string, edge model.Edge) error
	CreateSession(ctx context.Context, state *model.State) error
	ReadSessionState(ctx context.Context, sessionID string) (*model.State, error)
	RunTransaction(ctx context.Context, sessionID string, mutate Mutator) (*model.State, error)
	Ping(ctx context.Context) error
}

var _ Store = (*Adapter)(nil)
