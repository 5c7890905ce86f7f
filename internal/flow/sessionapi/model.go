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

import "github.com/MitchMcQuinn/LUNA/internal/flow/model"

// createRequest is the body of POST /session (spec.md §4.B, §6.1 —
// `{workflow_id, initial_data?}`).
type createRequest struct {
	WorkflowID  string         `json:"workflow_id"`
	InitialData map[string]any `json:"initial_data"`
}

// messageRequest is the body of POST /session/{id}/message.
type messageRequest struct {
	Input any `json:"input"`
}

// status is the coarse, session-wide status derived from its steps' individual
// statuses (spec.md §3.2, §7).
type status string

const (
	statusAwaitingInput status = "awaiting_input"
	statusError         status = "error"
	statusActive        status = "active"
	statusComplete      status = "complete"
)

// messageDTO is the wire shape of a model.Message.
type messageDTO struct {
	Role      string `json:"role"`
	Content   any    `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// awaitingInputDTO is the payload carried by a suspended session's
// awaiting_input field: the prompt and optional options passed to the
// input-request function (spec.md §6.1, §8 scenario 3).
type awaitingInputDTO struct {
	StepID  string `json:"step_id"`
	Prompt  any    `json:"prompt"`
	Options any    `json:"options,omitempty"`
}

// response is the body returned by every session endpoint (spec.md §7).
type response struct {
	SessionID     string            `json:"session_id,omitempty"`
	Status        status            `json:"status"`
	Messages      []messageDTO      `json:"messages"`
	AwaitingInput *awaitingInputDTO `json:"awaiting_input,omitempty"`
}

// toResponse projects a session's state document into the wire response
// shape, computing its coarse status from the individual step statuses.
func toResponse(state *model.State) response {
	messages := make([]messageDTO, len(state.Data.Messages))
	for i, m := range state.Data.Messages {
		messages[i] = messageDTO{Role: m.Role, Content: m.Content.ToAny(), Timestamp: m.Timestamp}
	}

	resp := response{
		SessionID: state.ID,
		Status:    sessionStatus(state),
		Messages:  messages,
	}
	if stepID, ok := state.AwaitingInputStep(); ok {
		resp.AwaitingInput = toAwaitingInput(state, stepID)
	}
	return resp
}

// toAwaitingInput projects the suspended step's latest output into the
// {prompt, options} shape the API promises. A map output carrying a "prompt"
// field surfaces its "options" field alongside it; any other output (a bare
// text value, for instance) becomes the prompt outright.
func toAwaitingInput(state *model.State, stepID string) *awaitingInputDTO {
	output, ok := state.LatestOutput(stepID)
	if !ok {
		return &awaitingInputDTO{StepID: stepID}
	}

	if prompt, ok := output.Get("prompt"); ok {
		dto := &awaitingInputDTO{StepID: stepID, Prompt: prompt.ToAny()}
		if options, ok := output.Get("options"); ok {
			dto.Options = options.ToAny()
		}
		return dto
	}

	return &awaitingInputDTO{StepID: stepID, Prompt: output.ToAny()}
}

// sessionStatus summarizes a session's per-step statuses into one coarse
// value: a step awaiting input takes priority (it is the only status that
// demands caller action), then a step in error, then any still-active step,
// and finally complete once nothing is left to do.
func sessionStatus(state *model.State) status {
	var sawActive, sawError bool
	for _, st := range state.Workflow {
		switch st.Status {
		case model.StatusAwaitingInput:
			return statusAwaitingInput
		case model.StatusError:
			sawError = true
		case model.StatusActive:
			sawActive = true
		}
	}
	if sawError {
		return statusError
	}
	if sawActive {
		return statusActive
	}
	return statusComplete
}

// seedToValues converts a decoded JSON initial_data map into the model.Value
// form the session store expects.
func seedToValues(initialData map[string]any) map[string]model.Value {
	values := make(map[string]model.Value, len(initialData))
	for k, v := range initialData {
		values[k] = model.FromAny(v)
	}
	return values
}
