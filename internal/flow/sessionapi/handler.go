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

// Package sessionapi exposes the workflow engine over HTTP: creating sessions,
// submitting input to a suspended step, and reading a session's current state
// (spec.md §7).
package sessionapi

import (
	"errors"
	"net/http"

	"github.com/MitchMcQuinn/LUNA/internal/flow/engine"
	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
	"github.com/MitchMcQuinn/LUNA/internal/graphstore"
	"github.com/MitchMcQuinn/LUNA/internal/session"
	"github.com/MitchMcQuinn/LUNA/internal/system/error/serviceerror"
	"github.com/MitchMcQuinn/LUNA/internal/system/log"
	"github.com/MitchMcQuinn/LUNA/internal/system/utils"
)

const loggerComponentName = "SessionAPIHandler"

// handler serves the session HTTP surface.
type handler struct {
	engine   *engine.Engine
	sessions *session.Store
}

// newHandler builds a handler against the given engine and session store.
func newHandler(e *engine.Engine, sessions *session.Store) *handler {
	return &handler{engine: e, sessions: sessions}
}

// HandleCreate serves POST /session: it seeds a new session and immediately
// drives it forward until it settles or suspends.
func (h *handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	req, err := utils.DecodeJSONBody[createRequest](r)
	if err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	id, err := h.sessions.Create(r.Context(), req.WorkflowID, seedToValues(req.InitialData))
	if err != nil {
		writeError(w, logger, http.StatusInternalServerError, "session_creation_failed", err)
		return
	}

	state, err := h.engine.Process(r.Context(), id)
	if err != nil {
		logger.Error("Processing failed after session creation", log.String("sessionID", id), log.Error(err))
		writeError(w, logger, http.StatusInternalServerError, "session_processing_failed", err)
		return
	}

	writeJSON(w, logger, http.StatusOK, toResponse(state))
}

// HandleMessage serves POST /session/{id}/message: it feeds input to the
// session's currently-suspended step and resumes the drive loop.
func (h *handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	id := r.PathValue("id")
	req, err := utils.DecodeJSONBody[messageRequest](r)
	if err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	state, err := h.engine.SubmitInput(r.Context(), id, model.FromAny(req.Input))
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNoStepAwaitingInput):
			writeError(w, logger, http.StatusBadRequest, "not_awaiting_input", err)
		case errors.Is(err, graphstore.ErrSessionNotFound):
			writeError(w, logger, http.StatusNotFound, "session_not_found", err)
		default:
			writeError(w, logger, http.StatusInternalServerError, "session_processing_failed", err)
		}
		return
	}

	writeJSON(w, logger, http.StatusOK, toResponse(state))
}

// HandleGet serves GET /session/{id}: a read-only snapshot of the session's
// current state.
func (h *handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	id := r.PathValue("id")
	state, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, graphstore.ErrSessionNotFound) {
			writeError(w, logger, http.StatusNotFound, "session_not_found", err)
			return
		}
		writeError(w, logger, http.StatusInternalServerError, "session_read_failed", err)
		return
	}

	writeJSON(w, logger, http.StatusOK, toResponse(state))
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, statusCode int, v any) {
	if err := utils.WriteJSON(w, statusCode, v); err != nil {
		logger.Error("Error encoding response", log.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *log.Logger, statusCode int, code string, err error) {
	errType := serviceerror.ServerErrorType
	if statusCode < http.StatusInternalServerError {
		errType = serviceerror.ClientErrorType
	}
	logger.Error("Request failed", log.String("code", code), log.Error(err))
	if encodeErr := utils.WriteJSON(w, statusCode, serviceerror.ServiceError{
		Code:  code,
		Type:  errType,
		Error: err.Error(),
	}); encodeErr != nil {
		logger.Error("Error encoding error response", log.Error(encodeErr))
	}
}
