// Copyright 2025 The Quantfold Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package threads

import (
	"encoding/json"
	"fmt"
	"time"
)

// ToolKind is the closed set of tool calls the coordinator can execute
// locally. Dispatch is an exhaustive switch over this enum rather than a
// mutable name-to-handler map.
type ToolKind int

const (
	// ToolKindUnknown marks a tool name with no local handler.
	ToolKindUnknown ToolKind = iota

	// ToolKindCurrentDate returns the current date, for time-sensitive
	// financial questions (fiscal quarters, filing deadlines).
	ToolKindCurrentDate
)

// ToolNameCurrentDate is the provider-facing name of ToolKindCurrentDate.
const ToolNameCurrentDate = "current_date"

// ParseToolKind maps a provider tool name to a ToolKind.
func ParseToolKind(name string) ToolKind {
	switch name {
	case ToolNameCurrentDate:
		return ToolKindCurrentDate
	default:
		return ToolKindUnknown
	}
}

// ExecuteToolCall runs one pending tool call and returns its output. An
// unrecognized tool name yields an error output for that call instead of an
// error: the run as a whole must not be aborted by one bad call.
func ExecuteToolCall(call ToolCall, now func() time.Time) ToolOutput {
	if now == nil {
		now = time.Now
	}

	switch ParseToolKind(call.Name) {
	case ToolKindCurrentDate:
		return toolOutputJSON(call.ID, map[string]any{
			"date": now().UTC().Format("2006-01-02"),
		})
	case ToolKindUnknown:
		return toolOutputJSON(call.ID, map[string]any{
			"error": fmt.Sprintf("unknown tool: %s", call.Name),
		})
	default:
		// Unreachable as long as the switch covers every ToolKind.
		return toolOutputJSON(call.ID, map[string]any{
			"error": fmt.Sprintf("unhandled tool kind for %s", call.Name),
		})
	}
}

func toolOutputJSON(toolCallID string, v map[string]any) ToolOutput {
	b, err := json.Marshal(v)
	if err != nil {
		// A map[string]any of strings cannot fail to marshal.
		b = []byte(`{"error":"failed to encode tool output"}`)
	}
	return ToolOutput{ToolCallID: toolCallID, Output: string(b)}
}
