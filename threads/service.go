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

import "context"

// Service is the thread/run-based conversational provider consumed by the
// run coordinator and the analysis stages.
type Service interface {
	// CreateConversation opens a new, empty conversation and returns its id.
	CreateConversation(ctx context.Context, opts ConversationOptions) (string, error)

	// PostMessage appends a text message to the conversation.
	PostMessage(ctx context.Context, conversationID string, role Role, text string) error

	// StartRun begins a new run of the given agent against the conversation
	// and returns the run id.
	StartRun(ctx context.Context, conversationID, agentID string) (string, error)

	// GetRun retrieves the current state of a run, including any pending
	// tool calls and the last-error detail for failed runs.
	GetRun(ctx context.Context, conversationID, runID string) (Run, error)

	// SubmitToolOutputs submits the outputs for all pending tool calls of a
	// run in one batch.
	SubmitToolOutputs(ctx context.Context, conversationID, runID string, outputs []ToolOutput) error

	// ListMessages returns the conversation's messages, newest first.
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)

	// CreateAgent provisions a role-specialized agent and returns its id.
	CreateAgent(ctx context.Context, def AgentDefinition) (string, error)
}
