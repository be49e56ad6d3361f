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

package analyst

import (
	"context"

	"github.com/quantfold/analyst-go/threads"
)

// stageRunner is the deterministic composition every thread-based stage
// shares: open a conversation, send the input as a user message, start a run
// naming the stage's agent, and await the run's final text.
type stageRunner struct {
	service     threads.Service
	coordinator *threads.RunCoordinator
}

func (r stageRunner) exchange(ctx context.Context, opts threads.ConversationOptions, agentID, input string) (string, error) {
	conversationID, err := r.service.CreateConversation(ctx, opts)
	if err != nil {
		return "", err
	}

	if err := r.service.PostMessage(ctx, conversationID, threads.RoleUser, input); err != nil {
		return "", err
	}

	runID, err := r.service.StartRun(ctx, conversationID, agentID)
	if err != nil {
		return "", err
	}

	result, err := r.coordinator.AwaitRun(ctx, conversationID, runID)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
