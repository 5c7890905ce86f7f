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

// Package healthcheck provides the server's liveness and readiness endpoints.
package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MitchMcQuinn/LUNA/internal/system/constants"
	"github.com/MitchMcQuinn/LUNA/internal/system/log"
)

// Status is a service's up/down health state.
type Status string

const (
	// StatusUp means the service answered its check successfully.
	StatusUp Status = "UP"
	// StatusDown means the service's check failed.
	StatusDown Status = "DOWN"
)

// ServiceStatus is the health state of a single dependency.
type ServiceStatus struct {
	ServiceName string `json:"service_name"`
	Status      Status `json:"status"`
}

// ServerStatus is the aggregate health state returned by the readiness check.
type ServerStatus struct {
	Status        Status          `json:"status"`
	ServiceStatus []ServiceStatus `json:"dependencies"`
}

// Checker is satisfied by any dependency the readiness check should ping —
// graphstore.Store in particular.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler serves liveness and readiness requests against a single checked
// dependency, the graph store.
type Handler struct {
	graphStore Checker
}

// NewHandler returns a Handler that checks graphStore's readiness.
func NewHandler(graphStore Checker) *Handler {
	return &Handler{graphStore: graphStore}
}

// HandleLiveness always reports success: it answers "is the process up", not
// "are its dependencies up".
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// healthResponse is the body of the combined GET /health endpoint
// (spec.md §6.1 — "GET /health → {ok}").
type healthResponse struct {
	OK bool `json:"ok"`
}

// HandleHealth pings the graph store and reports {"ok": true/false}: the
// single combined health signal spec.md names, as distinct from the
// liveness/readiness split kubernetes-style probes expect.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckHandler"))

	ok := true
	if err := h.graphStore.Ping(r.Context()); err != nil {
		logger.Error("Graph store health check failed", log.Error(err))
		ok = false
	}

	w.Header().Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(healthResponse{OK: ok}); err != nil {
		logger.Error("Error encoding health response", log.Error(err))
	}
}

// HandleReadiness pings the graph store and reports 200 when it answers, 503
// otherwise.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckHandler"))

	status := StatusUp
	if err := h.graphStore.Ping(r.Context()); err != nil {
		logger.Error("Graph store readiness check failed", log.Error(err))
		status = StatusDown
	}

	server := ServerStatus{
		Status: status,
		ServiceStatus: []ServiceStatus{
			{ServiceName: "GraphStore", Status: status},
		},
	}

	w.Header().Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	if status != StatusUp {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(server); err != nil {
		logger.Error("Error encoding readiness response", log.Error(err))
	}
}
