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

// GraphQuery names a Cypher statement for logging, mirroring the relational
// store's named-query convention (spec.md §4.A — property graph, Cypher-like
// query semantics).
type GraphQuery struct {
	ID     string
	Cypher string
}

var (
	// queryEnsureConstraints creates the uniqueness constraints the adapter relies on.
	queryEnsureConstraints = []GraphQuery{
		{ID: "GSQ-SCHEMA-01", Cypher: "CREATE CONSTRAINT step_id_unique IF NOT EXISTS " +
			"FOR (s:Step) REQUIRE s.id IS UNIQUE"},
		{ID: "GSQ-SCHEMA-02", Cypher: "CREATE CONSTRAINT session_id_unique IF NOT EXISTS " +
			"FOR (s:Session) REQUIRE s.id IS UNIQUE"},
	}

	// queryGetStep fetches a single step node by id. The function attribute is read
	// preferentially; utility is tolerated for steps written before the canonical
	// rename (spec.md §9 Open Question b).
	queryGetStep = GraphQuery{
		ID: "GSQ-STEP-01",
		Cypher: "MATCH (s:Step {id: $id}) RETURN s.id AS id, s.function AS function, " +
			"s.utility AS utility, s.input_template AS input_template, " +
			"s.description AS description, s.tags AS tags",
	}

	// queryGetOutgoingEdges fetches every NEXT edge leaving a step, ordered by
	// priority ascending — lower priority runs first — per spec.md §3.1's
	// definition of priority and §4.F step 4 ("sort candidate activations by
	// edge priority ascending, break ties by edge discovery order").
	queryGetOutgoingEdges = GraphQuery{
		ID: "GSQ-EDGE-01",
		Cypher: "MATCH (s:Step {id: $id})-[e:NEXT]->(t:Step) RETURN t.id AS target_id, " +
			"e.condition AS condition, e.operator AS operator, e.priority AS priority " +
			"ORDER BY coalesce(e.priority, 0) ASC",
	}

	// queryUpsertStep creates or replaces a step node's attributes. function is always
	// written as the canonical attribute; any legacy utility attribute is cleared.
	queryUpsertStep = GraphQuery{
		ID: "GSQ-STEP-02",
		Cypher: "MERGE (s:Step {id: $id}) SET s.function = $function, s.utility = null, " +
			"s.input_template = $input_template, s.description = $description, s.tags = $tags",
	}

	// queryUpsertEdge creates or replaces a NEXT edge between two existing steps.
	queryUpsertEdge = GraphQuery{
		ID: "GSQ-EDGE-02",
		Cypher: "MATCH (s:Step {id: $source_id}), (t:Step {id: $target_id}) " +
			"MERGE (s)-[e:NEXT]->(t) SET e.condition = $condition, e.operator = $operator, " +
			"e.priority = $priority",
	}

	// queryCreateSession creates a new session node with its serialized state document.
	queryCreateSession = GraphQuery{
		ID: "GSQ-SESSION-01",
		Cypher: "CREATE (s:Session {id: $id, state: $state, version: 0, " +
			"created_at: timestamp()})",
	}

	// queryReadSession reads a session's serialized state and optimistic-concurrency version.
	queryReadSession = GraphQuery{
		ID: "GSQ-SESSION-02",
		Cypher: "MATCH (s:Session {id: $id}) RETURN s.state AS state, s.version AS version",
	}

	// queryWriteSession performs the compare-and-swap write central to the Session
	// Store's optimistic concurrency (spec.md §4.B): the SET only takes effect when
	// the read version still matches, and the row count tells the caller whether it did.
	queryWriteSession = GraphQuery{
		ID: "GSQ-SESSION-03",
		Cypher: "MATCH (s:Session {id: $id}) WHERE s.version = $expected_version " +
			"SET s.state = $state, s.version = $expected_version + 1 RETURN s.version AS version",
	}

	// queryPing is used by the health check to verify the graph store is reachable.
	queryPing = GraphQuery{ID: "GSQ-HEALTH-01", Cypher: "RETURN 1 AS ok"}
)
