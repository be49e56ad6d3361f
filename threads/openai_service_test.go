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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	beta   string
	body   map[string]any
}

// newRecordingService starts a server answering every request with response
// and returns the service under test plus the captured request.
func newRecordingService(t *testing.T, response string) (*OpenAIService, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded.method = r.Method
		recorded.path = r.URL.Path
		recorded.beta = r.Header.Get("OpenAI-Beta")
		if b, err := io.ReadAll(r.Body); err == nil && len(b) > 0 {
			_ = json.Unmarshal(b, &recorded.body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	client := openai.NewClient(
		option.WithBaseURL(server.URL),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	return NewOpenAIService(client), recorded
}

func TestOpenAIServiceCreateConversation(t *testing.T) {
	ctx := t.Context()

	t.Run("plain conversation", func(t *testing.T) {
		service, recorded := newRecordingService(t, `{"id": "thread_abc"}`)

		id, err := service.CreateConversation(ctx, ConversationOptions{})
		require.NoError(t, err)
		assert.Equal(t, "thread_abc", id)
		assert.Equal(t, http.MethodPost, recorded.method)
		assert.Equal(t, "/threads", recorded.path)
		assert.Equal(t, "assistants=v2", recorded.beta)
		assert.NotContains(t, recorded.body, "tool_resources")
	})

	t.Run("scoped to vector stores", func(t *testing.T) {
		service, recorded := newRecordingService(t, `{"id": "thread_abc"}`)

		_, err := service.CreateConversation(ctx, ConversationOptions{VectorStoreIDs: []string{"vs_1"}})
		require.NoError(t, err)

		resources, ok := recorded.body["tool_resources"].(map[string]any)
		require.True(t, ok)
		fileSearch, ok := resources["file_search"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []any{"vs_1"}, fileSearch["vector_store_ids"])
	})
}

func TestOpenAIServiceRuns(t *testing.T) {
	ctx := t.Context()

	t.Run("start run", func(t *testing.T) {
		service, recorded := newRecordingService(t, `{"id": "run_1", "thread_id": "thread_abc", "status": "queued"}`)

		runID, err := service.StartRun(ctx, "thread_abc", "asst_1")
		require.NoError(t, err)
		assert.Equal(t, "run_1", runID)
		assert.Equal(t, "/threads/thread_abc/runs", recorded.path)
		assert.Equal(t, "asst_1", recorded.body["assistant_id"])
	})

	t.Run("get run with required action", func(t *testing.T) {
		service, recorded := newRecordingService(t, `{
			"id": "run_1",
			"thread_id": "thread_abc",
			"status": "requires_action",
			"required_action": {
				"type": "submit_tool_outputs",
				"submit_tool_outputs": {
					"tool_calls": [
						{"id": "call_1", "type": "function", "function": {"name": "current_date", "arguments": "{}"}}
					]
				}
			}
		}`)

		run, err := service.GetRun(ctx, "thread_abc", "run_1")
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, recorded.method)
		assert.Equal(t, "/threads/thread_abc/runs/run_1", recorded.path)
		assert.Equal(t, RunStatusRequiresAction, run.Status)
		require.Len(t, run.ToolCalls, 1)
		assert.Equal(t, "call_1", run.ToolCalls[0].ID)
		assert.Equal(t, "current_date", run.ToolCalls[0].Name)
	})

	t.Run("get failed run", func(t *testing.T) {
		service, _ := newRecordingService(t, `{
			"id": "run_1",
			"thread_id": "thread_abc",
			"status": "failed",
			"last_error": {"code": "server_error", "message": "boom"}
		}`)

		run, err := service.GetRun(ctx, "thread_abc", "run_1")
		require.NoError(t, err)
		assert.Equal(t, RunStatusFailed, run.Status)
		require.NotNil(t, run.LastError)
		assert.Equal(t, "server_error", run.LastError.Code)
		assert.Equal(t, "boom", run.LastError.Message)
	})

	t.Run("submit tool outputs", func(t *testing.T) {
		service, recorded := newRecordingService(t, `{"id": "run_1", "thread_id": "thread_abc", "status": "in_progress"}`)

		outputs := []ToolOutput{{ToolCallID: "call_1", Output: `{"date":"2025-01-02"}`}}
		require.NoError(t, service.SubmitToolOutputs(ctx, "thread_abc", "run_1", outputs))
		assert.Equal(t, "/threads/thread_abc/runs/run_1/submit_tool_outputs", recorded.path)

		submitted, ok := recorded.body["tool_outputs"].([]any)
		require.True(t, ok)
		require.Len(t, submitted, 1)
		first, ok := submitted[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "call_1", first["tool_call_id"])
	})
}

func TestOpenAIServiceListMessages(t *testing.T) {
	service, recorded := newRecordingService(t, `{
		"data": [
			{"id": "msg_2", "role": "assistant", "content": [
				{"type": "text", "text": {"value": "the answer"}},
				{"type": "image_file", "image_file": {"file_id": "file_1"}}
			]},
			{"id": "msg_1", "role": "user", "content": [
				{"type": "text", "text": {"value": "the question"}}
			]}
		]
	}`)

	messages, err := service.ListMessages(t.Context(), "thread_abc")
	require.NoError(t, err)
	assert.Equal(t, "/threads/thread_abc/messages", recorded.path)

	require.Len(t, messages, 2)
	assert.Equal(t, RoleAssistant, messages[0].Role)
	require.Len(t, messages[0].Content, 2)
	assert.Equal(t, ContentBlockText, messages[0].Content[0].Type)
	assert.Equal(t, "the answer", messages[0].Content[0].Text)
	assert.Equal(t, ContentBlockFile, messages[0].Content[1].Type)
	assert.Equal(t, "file_1", messages[0].Content[1].FileID)
	assert.Equal(t, RoleUser, messages[1].Role)
}

func TestOpenAIServiceCreateAgent(t *testing.T) {
	service, recorded := newRecordingService(t, `{"id": "asst_1"}`)

	schema := map[string]any{"type": "object"}
	id, err := service.CreateAgent(t.Context(), AgentDefinition{
		Name:               "questions_agent",
		Description:        "formulates questions",
		Model:              "gpt-4o",
		Instructions:       "ask questions",
		ResponseSchemaName: "questions_output",
		ResponseSchema:     schema,
		FileSearch:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, "asst_1", id)
	assert.Equal(t, "/assistants", recorded.path)

	assert.Equal(t, "gpt-4o", recorded.body["model"])
	assert.Equal(t, "questions_agent", recorded.body["name"])
	assert.Equal(t, []any{map[string]any{"type": "file_search"}}, recorded.body["tools"])

	format, ok := recorded.body["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	jsonSchema, ok := format["json_schema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "questions_output", jsonSchema["name"])
	assert.Equal(t, true, jsonSchema["strict"])
}
