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

// Package threadstesting provides scripted in-memory fakes of the
// conversational service and the stateless generator, for driving the run
// coordinator and the pipeline in tests without a provider or real delays.
package threadstesting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantfold/analyst-go/threads"
)

// RunScript describes the behavior of one run, consumed by StartRun calls in
// FIFO order.
type RunScript struct {
	// Statuses are returned by successive GetRun calls, one per call; the
	// last status repeats once the slice is exhausted.
	Statuses []threads.RunStatus

	// ToolCalls are attached to every requires_action status.
	ToolCalls []threads.ToolCall

	// Reply is appended to the conversation as the assistant's message the
	// first time a completed status is observed.
	Reply string

	// ReplyBlocks, when set, is used instead of Reply as the assistant
	// message content.
	ReplyBlocks []threads.ContentBlock

	// LastError is attached to failed statuses.
	LastError *threads.RunError

	// Err, when set, is returned as a transport error by GetRun after the
	// scripted statuses are exhausted.
	Err error
}

// StartedRun records one StartRun invocation.
type StartedRun struct {
	ConversationID string
	AgentID        string
	RunID          string
}

// FakeConversation is the recorded state of one conversation.
type FakeConversation struct {
	ID       string
	Options  threads.ConversationOptions
	Messages []threads.Message // oldest first
}

type fakeRun struct {
	script         RunScript
	step           int
	conversationID string
	replied        bool
	getRunCalls    int
}

// FakeService is an in-memory threads.Service whose run lifecycles are fully
// scripted.
type FakeService struct {
	mu            sync.Mutex
	scripts       []RunScript
	conversations map[string]*FakeConversation
	runs          map[string]*fakeRun

	// ConversationIDs lists created conversations in order.
	ConversationIDs []string

	// StartedRuns lists StartRun invocations in order.
	StartedRuns []StartedRun

	// SubmittedOutputs records every SubmitToolOutputs batch per run id.
	SubmittedOutputs map[string][][]threads.ToolOutput

	// CreatedAgents records CreateAgent definitions in order.
	CreatedAgents []threads.AgentDefinition
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		conversations:    make(map[string]*FakeConversation),
		runs:             make(map[string]*fakeRun),
		SubmittedOutputs: make(map[string][][]threads.ToolOutput),
	}
}

// AddRunScript enqueues the behavior for the next started run.
func (s *FakeService) AddRunScript(script RunScript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = append(s.scripts, script)
}

// CompletedRunScript is a convenience script: one in_progress poll, then
// completed with the given assistant reply.
func CompletedRunScript(reply string) RunScript {
	return RunScript{
		Statuses: []threads.RunStatus{threads.RunStatusInProgress, threads.RunStatusCompleted},
		Reply:    reply,
	}
}

// FailedRunScript is a convenience script: a run that fails with the given
// provider error detail.
func FailedRunScript(code, message string) RunScript {
	return RunScript{
		Statuses:  []threads.RunStatus{threads.RunStatusFailed},
		LastError: &threads.RunError{Code: code, Message: message},
	}
}

// Conversation returns the recorded conversation state.
func (s *FakeService) Conversation(id string) *FakeConversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations[id]
}

// GetRunCalls reports how many times GetRun was invoked for the run.
func (s *FakeService) GetRunCalls(runID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[runID]; ok {
		return run.getRunCalls
	}
	return 0
}

func (s *FakeService) CreateConversation(_ context.Context, opts threads.ConversationOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := "conv_" + uuid.NewString()
	s.conversations[id] = &FakeConversation{ID: id, Options: opts}
	s.ConversationIDs = append(s.ConversationIDs, id)
	return id, nil
}

func (s *FakeService) PostMessage(_ context.Context, conversationID string, role threads.Role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("unknown conversation %s", conversationID)
	}
	conv.Messages = append(conv.Messages, threads.Message{
		ID:      "msg_" + uuid.NewString(),
		Role:    role,
		Content: []threads.ContentBlock{{Type: threads.ContentBlockText, Text: text}},
	})
	return nil
}

func (s *FakeService) StartRun(_ context.Context, conversationID, agentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return "", fmt.Errorf("unknown conversation %s", conversationID)
	}

	script := CompletedRunScript("")
	if len(s.scripts) > 0 {
		script = s.scripts[0]
		s.scripts = s.scripts[1:]
	}

	runID := "run_" + uuid.NewString()
	s.runs[runID] = &fakeRun{script: script, conversationID: conversationID}
	s.StartedRuns = append(s.StartedRuns, StartedRun{
		ConversationID: conversationID,
		AgentID:        agentID,
		RunID:          runID,
	})
	return runID, nil
}

func (s *FakeService) GetRun(_ context.Context, conversationID, runID string) (threads.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return threads.Run{}, fmt.Errorf("unknown run %s", runID)
	}
	run.getRunCalls++

	if run.step >= len(run.script.Statuses) {
		if run.script.Err != nil {
			return threads.Run{}, run.script.Err
		}
	}

	idx := run.step
	if idx >= len(run.script.Statuses) {
		idx = len(run.script.Statuses) - 1
	}
	if idx < 0 {
		return threads.Run{}, fmt.Errorf("run %s has no scripted statuses", runID)
	}
	status := run.script.Statuses[idx]
	run.step++

	result := threads.Run{
		ID:             runID,
		ConversationID: conversationID,
		Status:         status,
	}
	switch status {
	case threads.RunStatusRequiresAction:
		result.ToolCalls = run.script.ToolCalls
	case threads.RunStatusFailed:
		result.LastError = run.script.LastError
	case threads.RunStatusCompleted:
		if !run.replied {
			run.replied = true
			s.appendReplyLocked(run)
		}
	}
	return result, nil
}

func (s *FakeService) appendReplyLocked(run *fakeRun) {
	conv := s.conversations[run.conversationID]
	if conv == nil {
		return
	}
	content := run.script.ReplyBlocks
	if content == nil {
		content = []threads.ContentBlock{{Type: threads.ContentBlockText, Text: run.script.Reply}}
	}
	conv.Messages = append(conv.Messages, threads.Message{
		ID:      "msg_" + uuid.NewString(),
		Role:    threads.RoleAssistant,
		Content: content,
	})
}

func (s *FakeService) SubmitToolOutputs(_ context.Context, _ string, runID string, outputs []threads.ToolOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("unknown run %s", runID)
	}
	s.SubmittedOutputs[runID] = append(s.SubmittedOutputs[runID], outputs)
	return nil
}

func (s *FakeService) ListMessages(_ context.Context, conversationID string) ([]threads.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil, fmt.Errorf("unknown conversation %s", conversationID)
	}

	// Newest first, matching the provider contract.
	messages := make([]threads.Message, 0, len(conv.Messages))
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		messages = append(messages, conv.Messages[i])
	}
	return messages, nil
}

func (s *FakeService) CreateAgent(_ context.Context, def threads.AgentDefinition) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CreatedAgents = append(s.CreatedAgents, def)
	return "agent_" + uuid.NewString(), nil
}

// NoWait is a threads.WaitFunc that returns immediately, for tests.
func NoWait(ctx context.Context, _ time.Duration) error { return ctx.Err() }
