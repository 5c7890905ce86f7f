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

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
	"github.com/MitchMcQuinn/LUNA/internal/system/log"
)

const loggerComponentName = "GraphStoreAdapter"

// Mutator transforms a session's current state into its next state as part of a
// transactional read-modify-write (spec.md §4.A, §4.B). Returning an error aborts
// the transaction and leaves the stored state untouched.
type Mutator func(current *model.State) (*model.State, error)

// Adapter is the typed Graph Store Adapter: CRUD over the workflow graph (Step
// nodes, NEXT edges) and the per-session state document, backed by Neo4j.
type Adapter struct {
	driver   neo4j.DriverWithContext
	database string
}

func newAdapter(driver neo4j.DriverWithContext, database string) *Adapter {
	return &Adapter{driver: driver, database: database}
}

func (a *Adapter) newSession(ctx context.Context) neo4j.SessionWithContext {
	return a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.database})
}

// EnsureSchema creates the uniqueness constraints the adapter depends on. It is
// idempotent and safe to call on every startup (spec.md §12, grounded on
// original_source/main.py's init_database()).
func (a *Adapter) EnsureSchema(ctx context.Context) error {
	sess := a.newSession(ctx)
	defer sess.Close(ctx)

	for _, q := range queryEnsureConstraints {
		_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, q.Cypher, nil)
		})
		if err != nil {
			return fmt.Errorf("failed to apply schema query %s: %w", q.ID, err)
		}
	}
	return nil
}

// GetStep fetches a single step node by id.
func (a *Adapter) GetStep(ctx context.Context, id string) (model.Step, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	sess := a.newSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, queryGetStep.Cypher, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, ErrStepNotFound
		}
		return record.AsMap(), nil
	})
	if err != nil {
		if err == ErrStepNotFound {
			return model.Step{}, fmt.Errorf("%w: %s", ErrStepNotFound, id)
		}
		logger.Error("Failed to fetch step", log.String("stepID", id), log.Error(err))
		return model.Step{}, fmt.Errorf("failed to fetch step %s: %w", id, err)
	}

	row, _ := result.(map[string]any)
	return stepFromRow(row)
}

// GetOutgoingEdges fetches every NEXT edge leaving a step, preserving the order
// Neo4j returned them in as DiscoveryOrder (spec.md §4.F step 4).
func (a *Adapter) GetOutgoingEdges(ctx context.Context, id string) ([]model.Edge, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	sess := a.newSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, queryGetOutgoingEdges.Cypher, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		logger.Error("Failed to fetch outgoing edges", log.String("stepID", id), log.Error(err))
		return nil, fmt.Errorf("failed to fetch outgoing edges for %s: %w", id, err)
	}

	records, _ := result.([]*neo4j.Record)
	edges := make([]model.Edge, 0, len(records))
	for i, record := range records {
		edge, err := edgeFromRow(record.AsMap(), i)
		if err != nil {
			return nil, fmt.Errorf("failed to decode edge from %s: %w", id, err)
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// UpsertStep writes a step node, canonicalizing its function attribute
// (spec.md §9 Open Question b). Used by the seeding CLI and test fixtures, never
// by the drive loop itself.
func (a *Adapter) UpsertStep(ctx context.Context, step model.Step) error {
	template, err := encodeInputTemplate(step.InputTemplate)
	if err != nil {
		return fmt.Errorf("failed to encode input template for %s: %w", step.ID, err)
	}

	tags := make([]any, len(step.Tags))
	for i, t := range step.Tags {
		tags[i] = t
	}

	sess := a.newSession(ctx)
	defer sess.Close(ctx)

	_, err = sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, queryUpsertStep.Cypher, map[string]any{
			"id":             step.ID,
			"function":       step.Function,
			"input_template": template,
			"description":    step.Description,
			"tags":           tags,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to upsert step %s: %w", step.ID, err)
	}
	return nil
}

// UpsertEdge writes a NEXT edge from sourceID to edge.TargetID.
func (a *Adapter) UpsertEdge(ctx context.Context, sourceID string, edge model.Edge) error {
	condition, err := encodeCondition(edge.Condition)
	if err != nil {
		return fmt.Errorf("failed to encode condition for edge %s->%s: %w", sourceID, edge.TargetID, err)
	}
	operator := edge.Operator
	if operator == "" {
		operator = model.OperatorAND
	}

	sess := a.newSession(ctx)
	defer sess.Close(ctx)

	_, err = sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, queryUpsertEdge.Cypher, map[string]any{
			"source_id": sourceID,
			"target_id": edge.TargetID,
			"condition": condition,
			"operator":  string(operator),
			"priority":  edge.Priority,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to upsert edge %s->%s: %w", sourceID, edge.TargetID, err)
	}
	return nil
}

// CreateSession creates a brand new session node seeded with state.
func (a *Adapter) CreateSession(ctx context.Context, state *model.State) error {
	encoded, err := encodeState(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state %s: %w", state.ID, err)
	}

	sess := a.newSession(ctx)
	defer sess.Close(ctx)

	_, err = sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, queryCreateSession.Cypher, map[string]any{
			"id":    state.ID,
			"state": encoded,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create session %s: %w", state.ID, err)
	}
	return nil
}

// ReadSessionState reads a session's current state without holding any lock —
// suitable for GET /session/{id}, not for read-modify-write (use RunTransaction
// for that).
func (a *Adapter) ReadSessionState(ctx context.Context, sessionID string) (*model.State, error) {
	sess := a.newSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, queryReadSession.Cypher, map[string]any{"id": sessionID})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, ErrSessionNotFound
		}
		raw, _ := record.Get("state")
		stateJSON, _ := raw.(string)
		return stateJSON, nil
	})
	if err != nil {
		if err == ErrSessionNotFound {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}

	stateJSON, _ := result.(string)
	return decodeState(stateJSON)
}

// RunTransaction performs an atomic read-modify-write against a session node: it
// reads the session's current state and version inside a single Neo4j write
// transaction, applies mutate, and writes the result back in the same
// transaction. The write is a compare-and-swap on the version read, giving the
// Session Store's update() its optimistic concurrency: a transaction whose
// version no longer matches fails with ErrVersionConflict rather than silently
// overwriting, and is not retried (spec.md §4.A, §4.B).
func (a *Adapter) RunTransaction(ctx context.Context, sessionID string, mutate Mutator) (*model.State, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	sess := a.newSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		readRes, err := tx.Run(ctx, queryReadSession.Cypher, map[string]any{"id": sessionID})
		if err != nil {
			return nil, err
		}
		record, err := readRes.Single(ctx)
		if err != nil {
			return nil, ErrSessionNotFound
		}
		rawState, _ := record.Get("state")
		stateJSON, _ := rawState.(string)
		rawVersion, _ := record.Get("version")
		version, _ := rawVersion.(int64)

		current, err := decodeState(stateJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
		}

		next, err := mutate(current)
		if err != nil {
			return nil, err
		}

		encoded, err := encodeState(next)
		if err != nil {
			return nil, fmt.Errorf("failed to encode session %s: %w", sessionID, err)
		}

		writeRes, err := tx.Run(ctx, queryWriteSession.Cypher, map[string]any{
			"id":               sessionID,
			"state":            encoded,
			"expected_version": version,
		})
		if err != nil {
			return nil, err
		}
		if _, err := writeRes.Single(ctx); err != nil {
			return nil, ErrVersionConflict
		}
		return next, nil
	})
	if err != nil {
		if err == ErrSessionNotFound {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		logger.Error("Session transaction failed", log.String("sessionID", sessionID), log.Error(err))
		return nil, err
	}

	next, _ := result.(*model.State)
	return next, nil
}

// Ping verifies the graph store is reachable, for the health check handler.
func (a *Adapter) Ping(ctx context.Context) error {
	sess := a.newSession(ctx)
	defer sess.Close(ctx)

	_, err := sess.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, queryPing.Cypher, nil)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	return err
}
