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
	"fmt"

	"github.com/quantfold/analyst-go/threads"
)

// ReviewStage critiques a draft. Its verdict either asks clarifying
// questions or declares the draft complete via last_questions.
type ReviewStage struct {
	runner  stageRunner
	agentID string
}

// NewReviewStage creates the stage.
func NewReviewStage(service threads.Service, coordinator *threads.RunCoordinator, agentID string) *ReviewStage {
	return &ReviewStage{
		runner:  stageRunner{service: service, coordinator: coordinator},
		agentID: agentID,
	}
}

// Run reviews the draft in the context of the original request and outline.
func (s *ReviewStage) Run(ctx context.Context, request, outline, draft string) (ReviewVerdict, error) {
	input := fmt.Sprintf("%s\n\n%s\n\n%s", request, outline, draft)

	reply, err := s.runner.exchange(ctx, threads.ConversationOptions{}, s.agentID, input)
	if err != nil {
		return ReviewVerdict{}, err
	}
	return DecodeStageOutput[ReviewVerdict](reply)
}
