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
	"log/slog"
	"strings"
	"time"
)

// WaitFunc blocks for the given duration or until the context is done.
// Injectable so tests can drive the poll loop without real delays.
type WaitFunc func(ctx context.Context, d time.Duration) error

// SleepWait is the default WaitFunc.
func SleepWait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Attachment is a non-text content block of a completed run's final message.
type Attachment struct {
	Type   ContentBlockType
	FileID string
	URL    string
}

// AwaitResult is the outcome of a run that completed successfully.
type AwaitResult struct {
	// Message is the newest message in the conversation after completion.
	Message Message

	// Text is the concatenated text content of Message.
	Text string

	// Attachments are the file and URL content blocks of Message.
	Attachments []Attachment
}

// RunCoordinator drives one run at a time through the polling state machine
// to a terminal outcome, executing pending tool calls along the way.
//
// Polling is fixed-interval; there is no backoff and no per-call timeout. A
// run that never leaves in_progress polls until the caller's context ends.
type RunCoordinator struct {
	service  Service
	interval time.Duration
	wait     WaitFunc
	logger   *slog.Logger
	now      func() time.Time
}

// RunCoordinatorParams configures a RunCoordinator.
type RunCoordinatorParams struct {
	// Service is the conversational provider. Required.
	Service Service

	// PollInterval is the fixed delay between status polls.
	// Defaults to 5 seconds.
	PollInterval time.Duration

	// Wait overrides the sleep between polls. Defaults to SleepWait.
	Wait WaitFunc

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Now overrides the clock used by local tool handlers.
	Now func() time.Time
}

// DefaultPollInterval is used when RunCoordinatorParams leaves
// PollInterval unset.
const DefaultPollInterval = 5 * time.Second

// NewRunCoordinator creates a RunCoordinator.
func NewRunCoordinator(params RunCoordinatorParams) *RunCoordinator {
	c := &RunCoordinator{
		service:  params.Service,
		interval: params.PollInterval,
		wait:     params.Wait,
		logger:   params.Logger,
		now:      params.Now,
	}
	if c.interval <= 0 {
		c.interval = DefaultPollInterval
	}
	if c.wait == nil {
		c.wait = SleepWait
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// AwaitRun polls the run until it reaches a terminal status.
//
// queued/in_progress sleep and re-poll; requires_action executes every
// pending tool call and submits all outputs in one batch; completed returns
// the newest message split into text and attachments; failed returns a
// RunFailureError with the provider's last-error detail. Any transport error
// while polling propagates immediately.
func (c *RunCoordinator) AwaitRun(ctx context.Context, conversationID, runID string) (*AwaitResult, error) {
	started := time.Now()

	for {
		run, err := c.service.GetRun(ctx, conversationID, runID)
		if err != nil {
			return nil, err
		}

		switch run.Status {
		case RunStatusQueued, RunStatusInProgress:
			if err := c.wait(ctx, c.interval); err != nil {
				return nil, err
			}

		case RunStatusRequiresAction:
			if err := c.submitToolOutputs(ctx, run); err != nil {
				return nil, err
			}

		case RunStatusCompleted:
			c.logger.Debug("run completed",
				slog.String("run_id", runID),
				slog.Duration("elapsed", time.Since(started)))
			return c.collectResult(ctx, conversationID)

		case RunStatusFailed:
			failure := NewRunFailureError(run)
			c.logger.Error("run failed",
				slog.String("run_id", runID),
				slog.String("code", failure.Code),
				slog.String("message", failure.Message))
			return nil, failure

		default:
			return nil, fmt.Errorf("run %s reported unexpected status %q", runID, run.Status)
		}
	}
}

func (c *RunCoordinator) submitToolOutputs(ctx context.Context, run Run) error {
	outputs := make([]ToolOutput, 0, len(run.ToolCalls))
	for _, call := range run.ToolCalls {
		c.logger.Debug("executing tool call",
			slog.String("run_id", run.ID),
			slog.String("tool", call.Name))
		outputs = append(outputs, ExecuteToolCall(call, c.now))
	}
	return c.service.SubmitToolOutputs(ctx, run.ConversationID, run.ID, outputs)
}

func (c *RunCoordinator) collectResult(ctx context.Context, conversationID string) (*AwaitResult, error) {
	messages, err := c.service.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("conversation %s has no messages after run completion", conversationID)
	}

	last := messages[0] // newest first
	result := &AwaitResult{Message: last}

	var text strings.Builder
	for _, block := range last.Content {
		switch block.Type {
		case ContentBlockText:
			text.WriteString(block.Text)
		case ContentBlockFile:
			result.Attachments = append(result.Attachments, Attachment{Type: block.Type, FileID: block.FileID})
		case ContentBlockURL:
			result.Attachments = append(result.Attachments, Attachment{Type: block.Type, URL: block.URL})
		}
	}
	result.Text = text.String()
	return result, nil
}
