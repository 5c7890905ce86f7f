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

package main

import (
	"context"
	"net/http"

	"github.com/MitchMcQuinn/LUNA/internal/flow/engine"
	"github.com/MitchMcQuinn/LUNA/internal/flow/registry"
	"github.com/MitchMcQuinn/LUNA/internal/flow/sessionapi"
	"github.com/MitchMcQuinn/LUNA/internal/functions/reply"
	"github.com/MitchMcQuinn/LUNA/internal/functions/request"
	"github.com/MitchMcQuinn/LUNA/internal/graphstore"
	"github.com/MitchMcQuinn/LUNA/internal/session"
	"github.com/MitchMcQuinn/LUNA/internal/system/config"
	"github.com/MitchMcQuinn/LUNA/internal/system/healthcheck"
	"github.com/MitchMcQuinn/LUNA/internal/system/log"
	"github.com/MitchMcQuinn/LUNA/internal/system/middleware"
)

// registerServices wires up the graph store, registry, engine, and HTTP routes,
// then registers them on mux.
func registerServices(ctx context.Context, logger *log.Logger, cfg *config.Config, mux *http.ServeMux) {
	provider, err := graphstore.GetProvider(cfg.GraphStore)
	if err != nil {
		logger.Fatal("Failed to connect to graph store", log.Error(err))
	}
	graph := provider.GetAdapter()

	if err := graph.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure graph store schema", log.Error(err))
	}

	functions := registry.New()
	functions.Register(reply.Definition())
	functions.Register(request.Definition())

	sessions := session.New(graph)
	exec := engine.New(graph, sessions, functions, cfg.Engine.IterationMax, cfg.Engine.OutputWindowSize)

	sessionapi.Initialize(mux, exec, sessions, cfg.Server.AllowedOrigins)
	registerHealthRoutes(mux, graph, cfg.Server.AllowedOrigins)
}

// registerHealthRoutes registers the combined, liveness, and readiness
// endpoints (spec.md §4.G).
func registerHealthRoutes(mux *http.ServeMux, graph graphstore.Store, allowedOrigins []string) {
	h := healthcheck.NewHandler(graph)
	opts := middleware.CORSOptions{AllowedOrigins: allowedOrigins, AllowedMethods: "GET"}

	mux.HandleFunc(middleware.WithCORS("GET /health", h.HandleHealth, opts))
	mux.HandleFunc(middleware.WithCORS("GET /health/live", h.HandleLiveness, opts))
	mux.HandleFunc(middleware.WithCORS("GET /health/ready", h.HandleReadiness, opts))
}
