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

// Package utils provides small HTTP and id helpers shared across the system module.
package utils

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MitchMcQuinn/LUNA/internal/system/constants"
)

// GetAllowedOrigin returns the first entry of allowedOrigins that occurs as a
// substring of requestOrigin, for the caller to echo back in an
// Access-Control-Allow-Origin header, or "" when none does. It is a substring
// match, not an exact comparison.
func GetAllowedOrigin(allowedOrigins []string, requestOrigin string) string {
	for _, allowed := range allowedOrigins {
		if strings.Contains(requestOrigin, allowed) {
			return allowed
		}
	}
	return ""
}

// DecodeJSONBody decodes the JSON request body into a value of type T.
func DecodeJSONBody[T any](r *http.Request) (T, error) {
	var v T
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

// WriteJSON writes v as a JSON response body with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}
