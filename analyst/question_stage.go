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

// QuestionStage derives the grounding questions from an outline document.
// The question-count bound is carried by the agent's instructions; the stage
// validates shape, not size.
type QuestionStage struct {
	runner  stageRunner
	agentID string
}

// NewQuestionStage creates the stage.
func NewQuestionStage(service threads.Service, coordinator *threads.RunCoordinator, agentID string) *QuestionStage {
	return &QuestionStage{
		runner:  stageRunner{service: service, coordinator: coordinator},
		agentID: agentID,
	}
}

// Run formulates the question set for the outline.
func (s *QuestionStage) Run(ctx context.Context, outline string) (QuestionSet, error) {
	reply, err := s.runner.exchange(ctx, threads.ConversationOptions{}, s.agentID, outline)
	if err != nil {
		return QuestionSet{}, err
	}
	return DecodeStageOutput[QuestionSet](reply)
}
