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

package sessionapi

import (
	"net/http"

	"github.com/MitchMcQuinn/LUNA/internal/flow/engine"
	"github.com/MitchMcQuinn/LUNA/internal/session"
	"github.com/MitchMcQuinn/LUNA/internal/system/middleware"
)

// Initialize registers the session API's routes on mux.
func Initialize(mux *http.ServeMux, e *engine.Engine, sessions *session.Store, allowedOrigins []string) {
	h := newHandler(e, sessions)
	registerRoutes(mux, h, allowedOrigins)
}

func registerRoutes(mux *http.ServeMux, h *handler, allowedOrigins []string) {
	opts := middleware.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   "GET, POST",
		AllowedHeaders:   "Content-Type",
		AllowCredentials: true,
	}

	mux.HandleFunc(middleware.WithCORS("POST /session", h.HandleCreate, opts))
	mux.HandleFunc(middleware.WithCORS("POST /session/{id}/message", h.HandleMessage, opts))
	mux.HandleFunc(middleware.WithCORS("GET /session/{id}", h.HandleGet, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /session", noContent, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /session/{id}/message", noContent, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /session/{id}", noContent, opts))
}

func noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
