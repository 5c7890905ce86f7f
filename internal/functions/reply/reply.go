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

// Package reply implements the "utils.reply.reply" built-in: a step function
// whose sole job is to surface a resolved value to the user as an assistant
// message (spec.md §6.4).
package reply

import (
	"context"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
	"github.com/MitchMcQuinn/LUNA/internal/flow/registry"
)

// Name is the function name a step's function attribute must match to dispatch
// here.
const Name = "utils.reply.reply"

// Definition returns the registry entry for the reply function. A step using it
// is expected to resolve its input template to either a map carrying a
// "message" field or a bare text value; either way the resolved message becomes
// both the step's output and the appended assistant message.
func Definition() registry.Definition {
	return registry.Definition{
		Name:         Name,
		EmitsMessage: true,
		Fn:           reply,
	}
}

func reply(ctx context.Context, input model.Value) (model.Value, error) {
	if message, ok := input.Get("message"); ok {
		return message, nil
	}
	return input, nil
}
