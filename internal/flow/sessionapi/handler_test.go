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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowengine "github.com/MitchMcQuinn/LUNA/internal/flow/engine"
	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
	"github.com/MitchMcQuinn/LUNA/internal/flow/registry"
	"github.com/MitchMcQuinn/LUNA/internal/graphstore"
	"github.com/MitchMcQuinn/LUNA/internal/session"
)

func newTestHandler(t *testing.T) (*handler, *graphstore.Fake) {
	t.Helper()
	graph := graphstore.NewFake()
	functions := registry.New()
	functions.Register(registry.Definition{
		Name:              "ask",
		SuspendsExecution: true,
		Fn: func(ctx context.Context, input model.Value) (model.Value, error) {
			return model.NewText("what is your name?"), nil
		},
	})
	require.NoError(t, graph.UpsertStep(context.Background(), model.Step{ID: model.RootStepID, Function: "ask"}))

	sessions := session.New(graph)
	e := flowengine.New(graph, sessions, functions, 50, 5)
	return newHandler(e, sessions), graph
}

func mux(t *testing.T) (http.HandlerFunc, http.HandlerFunc, http.HandlerFunc) {
	h, _ := newTestHandler(t)
	return h.HandleCreate, h.HandleMessage, h.HandleGet
}

func TestHandleCreate_SeedsAndDrivesToAwaitingInput(t *testing.T) {
	create, _, _ := mux(t)

	r := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"workflow_id":"greeting","initial_data":{"locale":"en"}}`))
	w := httptest.NewRecorder()
	create(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, statusAwaitingInput, resp.Status)
	require.NotNil(t, resp.AwaitingInput)
	assert.Equal(t, model.RootStepID, resp.AwaitingInput.StepID)
	assert.Equal(t, "what is your name?", resp.AwaitingInput.Prompt)
	assert.NotEmpty(t, resp.SessionID)
}

func TestHandleCreate_RejectsMalformedBody(t *testing.T) {
	create, _, _ := mux(t)

	r := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`not json`))
	w := httptest.NewRecorder()
	create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMessage_ResumesAndReturns200(t *testing.T) {
	h, _ := newTestHandler(t)

	createW := httptest.NewRecorder()
	h.HandleCreate(createW, httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{}`)))
	var created response
	require.NoError(t, json.Unmarshal(createW.Body.Bytes(), &created))

	r := httptest.NewRequest(http.MethodPost, "/session/"+created.SessionID+"/message", strings.NewReader(`{"input":"Ada"}`))
	r.SetPathValue("id", created.SessionID)
	w := httptest.NewRecorder()
	h.HandleMessage(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, statusComplete, resp.Status)
}

func TestHandleMessage_UnknownSessionIs404(t *testing.T) {
	_, handleMessage, _ := mux(t)

	r := httptest.NewRequest(http.MethodPost, "/session/nope/message", strings.NewReader(`{"input":"x"}`))
	r.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	handleMessage(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGet_ReturnsCurrentState(t *testing.T) {
	h, _ := newTestHandler(t)

	createW := httptest.NewRecorder()
	h.HandleCreate(createW, httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{}`)))
	var created response
	require.NoError(t, json.Unmarshal(createW.Body.Bytes(), &created))

	r := httptest.NewRequest(http.MethodGet, "/session/"+created.SessionID, nil)
	r.SetPathValue("id", created.SessionID)
	w := httptest.NewRecorder()
	h.HandleGet(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.SessionID, resp.SessionID)
}

func TestHandleGet_UnknownSessionIs404(t *testing.T) {
	_, _, handleGet := mux(t)

	r := httptest.NewRequest(http.MethodGet, "/session/nope", nil)
	r.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	handleGet(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
