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
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIService implements Service against the OpenAI Assistants v2
// endpoints. The SDK has no typed surface for these paths, so requests go
// through the client's raw path helpers with the assistants beta header.
type OpenAIService struct {
	client openai.Client
}

// NewOpenAIService wraps an openai client.
func NewOpenAIService(client openai.Client) *OpenAIService {
	return &OpenAIService{client: client}
}

func assistantsBeta() option.RequestOption {
	return option.WithHeader("OpenAI-Beta", "assistants=v2")
}

// Wire shapes for the Assistants v2 REST payloads.

type wireThread struct {
	ID string `json:"id"`
}

type wireToolResources struct {
	FileSearch *wireFileSearchResources `json:"file_search,omitempty"`
}

type wireFileSearchResources struct {
	VectorStoreIDs []string `json:"vector_store_ids"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireRequiredAction struct {
	Type              string `json:"type"`
	SubmitToolOutputs struct {
		ToolCalls []wireToolCall `json:"tool_calls"`
	} `json:"submit_tool_outputs"`
}

type wireRunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wireRun struct {
	ID             string              `json:"id"`
	ThreadID       string              `json:"thread_id"`
	Status         string              `json:"status"`
	RequiredAction *wireRequiredAction `json:"required_action"`
	LastError      *wireRunError       `json:"last_error"`
}

type wireContentBlock struct {
	Type string `json:"type"`
	Text *struct {
		Value string `json:"value"`
	} `json:"text"`
	ImageFile *struct {
		FileID string `json:"file_id"`
	} `json:"image_file"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

type wireMessage struct {
	ID      string             `json:"id"`
	Role    string             `json:"role"`
	Content []wireContentBlock `json:"content"`
}

type wireMessageList struct {
	Data []wireMessage `json:"data"`
}

type wireAssistant struct {
	ID string `json:"id"`
}

func (s *OpenAIService) CreateConversation(ctx context.Context, opts ConversationOptions) (string, error) {
	body := map[string]any{}
	if len(opts.VectorStoreIDs) > 0 {
		body["tool_resources"] = wireToolResources{
			FileSearch: &wireFileSearchResources{VectorStoreIDs: opts.VectorStoreIDs},
		}
	}

	var thread wireThread
	err := s.client.Post(ctx, "/threads", body, &thread, assistantsBeta())
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return thread.ID, nil
}

func (s *OpenAIService) PostMessage(ctx context.Context, conversationID string, role Role, text string) error {
	body := map[string]any{
		"role":    string(role),
		"content": text,
	}
	var message wireMessage
	err := s.client.Post(ctx, fmt.Sprintf("/threads/%s/messages", conversationID), body, &message, assistantsBeta())
	if err != nil {
		return fmt.Errorf("failed to post message to thread %s: %w", conversationID, err)
	}
	return nil
}

func (s *OpenAIService) StartRun(ctx context.Context, conversationID, agentID string) (string, error) {
	body := map[string]any{"assistant_id": agentID}
	var run wireRun
	err := s.client.Post(ctx, fmt.Sprintf("/threads/%s/runs", conversationID), body, &run, assistantsBeta())
	if err != nil {
		return "", fmt.Errorf("failed to start run on thread %s: %w", conversationID, err)
	}
	return run.ID, nil
}

func (s *OpenAIService) GetRun(ctx context.Context, conversationID, runID string) (Run, error) {
	var run wireRun
	err := s.client.Get(ctx, fmt.Sprintf("/threads/%s/runs/%s", conversationID, runID), nil, &run, assistantsBeta())
	if err != nil {
		return Run{}, fmt.Errorf("failed to retrieve run %s: %w", runID, err)
	}
	return run.toRun(), nil
}

func (s *OpenAIService) SubmitToolOutputs(ctx context.Context, conversationID, runID string, outputs []ToolOutput) error {
	body := map[string]any{"tool_outputs": outputs}
	var run wireRun
	err := s.client.Post(ctx, fmt.Sprintf("/threads/%s/runs/%s/submit_tool_outputs", conversationID, runID), body, &run, assistantsBeta())
	if err != nil {
		return fmt.Errorf("failed to submit tool outputs for run %s: %w", runID, err)
	}
	return nil
}

func (s *OpenAIService) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	var list wireMessageList
	err := s.client.Get(ctx, fmt.Sprintf("/threads/%s/messages", conversationID), nil, &list, assistantsBeta())
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of thread %s: %w", conversationID, err)
	}

	messages := make([]Message, 0, len(list.Data))
	for _, m := range list.Data {
		messages = append(messages, m.toMessage())
	}
	return messages, nil
}

func (s *OpenAIService) CreateAgent(ctx context.Context, def AgentDefinition) (string, error) {
	body := map[string]any{
		"model":        def.Model,
		"name":         def.Name,
		"instructions": def.Instructions,
	}
	if def.Description != "" {
		body["description"] = def.Description
	}
	if def.FileSearch {
		body["tools"] = []map[string]any{{"type": "file_search"}}
	}
	if def.ResponseSchema != nil {
		body["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   def.ResponseSchemaName,
				"schema": def.ResponseSchema,
				"strict": true,
			},
		}
	}

	var assistant wireAssistant
	err := s.client.Post(ctx, "/assistants", body, &assistant, assistantsBeta())
	if err != nil {
		return "", fmt.Errorf("failed to create assistant %s: %w", def.Name, err)
	}
	return assistant.ID, nil
}

func (r wireRun) toRun() Run {
	run := Run{
		ID:             r.ID,
		ConversationID: r.ThreadID,
		Status:         RunStatus(r.Status),
	}
	if r.RequiredAction != nil && r.RequiredAction.Type == "submit_tool_outputs" {
		for _, call := range r.RequiredAction.SubmitToolOutputs.ToolCalls {
			run.ToolCalls = append(run.ToolCalls, ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
	}
	if r.LastError != nil {
		run.LastError = &RunError{Code: r.LastError.Code, Message: r.LastError.Message}
	}
	return run
}

func (m wireMessage) toMessage() Message {
	message := Message{
		ID:   m.ID,
		Role: Role(m.Role),
	}
	for _, block := range m.Content {
		switch {
		case block.Type == "text" && block.Text != nil:
			message.Content = append(message.Content, ContentBlock{
				Type: ContentBlockText,
				Text: block.Text.Value,
			})
		case block.Type == "image_file" && block.ImageFile != nil:
			message.Content = append(message.Content, ContentBlock{
				Type:   ContentBlockFile,
				FileID: block.ImageFile.FileID,
			})
		case block.Type == "image_url" && block.ImageURL != nil:
			message.Content = append(message.Content, ContentBlock{
				Type: ContentBlockURL,
				URL:  block.ImageURL.URL,
			})
		}
	}
	return message
}
