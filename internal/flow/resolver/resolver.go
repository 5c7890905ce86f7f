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

// Package resolver implements the variable-reference template language described in
// spec.md §4.C / §6.2: plain, defaulted, and indexed references of the form
// `@{SESSION_ID}.step_id[idx].field…|default`, resolved against a session's rolling
// per-step output sequences.
package resolver

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/MitchMcQuinn/LUNA/internal/flow/model"
)

const sentinel = "@{SESSION_ID}."

// Resolve substitutes every reference found in tmpl against outputs and returns the
// resolved value together with whether resolution fully succeeded. A false return
// means at least one required (no-default) reference was unresolvable; per spec.md
// §4.C resolution is then all-or-nothing and the caller (the engine) should mark the
// owning step `pending` rather than use the partial result.
//
// Resolve is pure: it never mutates outputs, and the returned Value shares no
// mutable state with tmpl or outputs (model.Value is itself immutable from the
// resolver's point of view; composite values are rebuilt, not aliased).
func Resolve(tmpl model.Value, outputs map[string][]model.Value) (model.Value, bool) {
	switch tmpl.Kind() {
	case model.KindText:
		s, _ := tmpl.Text()
		return resolveString(s, outputs)
	case model.KindList:
		items, _ := tmpl.List()
		out := make([]model.Value, len(items))
		for i, item := range items {
			rv, ok := Resolve(item, outputs)
			if !ok {
				return model.Null, false
			}
			out[i] = rv
		}
		return model.NewList(out), true
	case model.KindMap:
		fields, _ := tmpl.Map()
		out := make(map[string]model.Value, len(fields))
		for k, item := range fields {
			rv, ok := Resolve(item, outputs)
			if !ok {
				return model.Null, false
			}
			out[k] = rv
		}
		return model.NewMap(out), true
	default:
		return tmpl, true
	}
}

// reference is one `@{SESSION_ID}.path[|default]` occurrence found in a string.
type reference struct {
	start, end int
	path       string
	hasDefault bool
	def        string
}

// scanReferences finds every `@{SESSION_ID}.` occurrence in s and determines the
// extent of its path and optional default, per the grammar in spec.md §6.2 (a
// default is "any text not containing @{").
func scanReferences(s string) []reference {
	var refs []reference
	offset := 0
	for {
		idx := strings.Index(s[offset:], sentinel)
		if idx < 0 {
			break
		}
		start := offset + idx
		pathStart := start + len(sentinel)
		rest := s[pathStart:]

		// The path is a run of identifier, '.', '-' and '[index]' characters;
		// trailing dots are sentence punctuation, not an empty segment.
		pathEnd := 0
		for pathEnd < len(rest) {
			c := rest[pathEnd]
			if !(c == '_' || c == '-' || c == '.' || c == '[' || c == ']' ||
				c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
				break
			}
			pathEnd++
		}
		for pathEnd > 0 && rest[pathEnd-1] == '.' {
			pathEnd--
		}
		hasDefault := pathEnd < len(rest) && rest[pathEnd] == '|'

		path := rest[:pathEnd]
		end := pathStart + pathEnd
		var def string
		if hasDefault {
			defRest := rest[pathEnd+1:]
			defEnd := len(defRest)
			if nextAt := strings.Index(defRest, "@{"); nextAt >= 0 {
				defEnd = nextAt
			}
			def = defRest[:defEnd]
			end = pathStart + pathEnd + 1 + defEnd
		}

		refs = append(refs, reference{start: start, end: end, path: path, hasDefault: hasDefault, def: def})
		offset = end
	}
	return refs
}

// resolveString resolves every reference embedded in s. When s is exactly one bare
// reference, the native resolved type is preserved; otherwise every reference is
// stringified and spliced into the surrounding text (spec.md §4.C, §8).
func resolveString(s string, outputs map[string][]model.Value) (model.Value, bool) {
	refs := scanReferences(s)
	if len(refs) == 0 {
		return model.NewText(s), true
	}

	if len(refs) == 1 && refs[0].start == 0 && refs[0].end == len(s) {
		return resolveReference(refs[0], outputs)
	}

	var sb strings.Builder
	last := 0
	for _, ref := range refs {
		sb.WriteString(s[last:ref.start])
		val, ok := resolveReference(ref, outputs)
		if !ok {
			return model.Null, false
		}
		sb.WriteString(stringify(val))
		last = ref.end
	}
	sb.WriteString(s[last:])
	return model.NewText(sb.String()), true
}

// resolveReference resolves a single parsed reference's path, falling back to its
// literal default when the path is absent.
func resolveReference(ref reference, outputs map[string][]model.Value) (model.Value, bool) {
	val, ok := ResolvePath(ref.path, outputs)
	if ok {
		return val, true
	}
	if ref.hasDefault {
		return model.NewText(ref.def), true
	}
	return model.Null, false
}

// segment is one dot-separated path component, optionally carrying a bracketed index.
type segment struct {
	name    string
	index   int
	hasIndex bool
}

func parseSegment(raw string) (segment, bool) {
	open := strings.IndexByte(raw, '[')
	if open < 0 {
		return segment{name: raw}, true
	}
	if !strings.HasSuffix(raw, "]") {
		return segment{}, false
	}
	name := raw[:open]
	idxStr := raw[open+1 : len(raw)-1]
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return segment{}, false
	}
	return segment{name: name, index: idx, hasIndex: true}, true
}

// ResolvePath navigates a dot-separated path — the same grammar used inside a
// reference, but without the `@{SESSION_ID}.` sentinel or a default — against a
// session's rolling outputs. The condition evaluator uses this directly, since
// edge clause references are bare paths rather than template-embedded references.
// The first segment selects a step's output sequence (and, if indexed, a specific
// entry within it — unindexed defaults to the latest, index -1); subsequent
// segments navigate into that value's fields and list elements.
func ResolvePath(path string, outputs map[string][]model.Value) (model.Value, bool) {
	parts := strings.Split(path, ".")
	first, ok := parseSegment(parts[0])
	if !ok {
		return model.Null, false
	}

	sequence, exists := outputs[first.name]
	if !exists || len(sequence) == 0 {
		return model.Null, false
	}

	idx := -1
	if first.hasIndex {
		idx = first.index
	}
	cur, ok := indexSequence(sequence, idx)
	if !ok {
		return model.Null, false
	}

	for _, raw := range parts[1:] {
		seg, ok := parseSegment(raw)
		if !ok {
			return model.Null, false
		}
		child, exists := cur.Get(seg.name)
		if !exists {
			return model.Null, false
		}
		cur = child
		if seg.hasIndex {
			child, exists = cur.Index(seg.index)
			if !exists {
				return model.Null, false
			}
			cur = child
		}
	}

	return cur, true
}

func indexSequence(sequence []model.Value, i int) (model.Value, bool) {
	n := len(sequence)
	if i < 0 {
		i = n + i
	}
	if i < 0 || i >= n {
		return model.Null, false
	}
	return sequence[i], true
}

// stringify renders a resolved Value for splicing into surrounding text: text values
// pass through raw, everything else (including null) is JSON-encoded.
func stringify(v model.Value) string {
	if s, ok := v.Text(); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
