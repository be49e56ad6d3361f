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

// Package threads implements the conversational thread/run protocol: an
// ordered, append-only message history per conversation, and asynchronous
// agent turns ("runs") driven to a terminal status by a polling coordinator.
package threads

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentBlockType discriminates the kinds of content a message can carry.
type ContentBlockType string

const (
	ContentBlockText ContentBlockType = "text"
	ContentBlockFile ContentBlockType = "file"
	ContentBlockURL  ContentBlockType = "url"
)

// ContentBlock is one element of a message's ordered content list.
// Exactly one of Text, FileID or URL is meaningful, selected by Type.
type ContentBlock struct {
	Type   ContentBlockType
	Text   string
	FileID string
	URL    string
}

// Message is an immutable entry in a conversation.
type Message struct {
	ID      string
	Role    Role
	Content []ContentBlock
}

// RunStatus is the polled state of a run. Completed and Failed are absorbing:
// a run never leaves them.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
)

// IsTerminal reports whether the status is absorbing.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// ToolCall is a pending function invocation requested by a run that reached
// the requires_action status. Arguments is the raw JSON argument object.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolOutput is the result of executing one tool call. Output is a JSON
// document; for unrecognized tool names it carries an error object instead
// of aborting the run.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// RunError is the provider's last-error detail for a failed run.
type RunError struct {
	Code    string
	Message string
}

// Run is one asynchronous agent turn against a conversation.
type Run struct {
	ID             string
	ConversationID string
	Status         RunStatus
	ToolCalls      []ToolCall // pending calls, only set when Status is requires_action
	LastError      *RunError  // only set when Status is failed
}

// ConversationOptions configures a new conversation. VectorStoreIDs scopes
// the conversation's file search to the given knowledge stores.
type ConversationOptions struct {
	VectorStoreIDs []string
}

// AgentDefinition describes a role-specialized agent to provision on the
// provider: its model, instructions and, optionally, a JSON response schema
// the agent's replies must conform to.
type AgentDefinition struct {
	Name         string
	Description  string
	Model        string
	Instructions string

	// ResponseSchemaName and ResponseSchema, when set, constrain the agent's
	// output to the given JSON schema. A nil schema means free text.
	ResponseSchemaName string
	ResponseSchema     map[string]any

	// FileSearch enables the provider-side retrieval tool for this agent.
	FileSearch bool
}
