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

// Package request implements the "utils.request.request" built-in: a step
// function that suspends the drive loop until a caller supplies input via
// submit_input (spec.md §4.F, §6.4). It carries no special-case engine
// behavior of its own — suspension is purely a consequence of the
// SuspendsExecution capability flag on its registry.Definition.
package request

import (
	"context"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
	"github.com/MitchMcQuinn/LUNA/internal/flow/registry"
)

// Name is the function name a step's function attribute must match to dispatch
// here.
const Name = "utils.request.request"

// Definition returns the registry entry for the request function. Its resolved
// input — a map carrying a "prompt" field and an optional "options" field, or a
// bare text value used as the prompt directly — passes through unchanged: it
// becomes both the step's output and the assistant message, and the session
// API projects its "prompt" and "options" fields (or the bare text, as the
// prompt) into the suspended session's awaiting_input payload. Discarding anything but "prompt" here would strand "options"
// with nowhere left to travel to.
func Definition() registry.Definition {
	return registry.Definition{
		Name:              Name,
		SuspendsExecution: true,
		EmitsMessage:      true,
		Fn:                request,
	}
}

func request(ctx context.Context, input model.Value) (model.Value, error) {
	return input, nil
}
