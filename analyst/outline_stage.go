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
	"strings"

	"github.com/quantfold/analyst-go/threads"
)

// OutlineStage turns the user's analysis request into an outline document.
// The output is a structured-JSON string treated as opaque text downstream;
// it is only required to be non-empty.
type OutlineStage struct {
	runner  stageRunner
	agentID string
}

// NewOutlineStage creates the stage.
func NewOutlineStage(service threads.Service, coordinator *threads.RunCoordinator, agentID string) *OutlineStage {
	return &OutlineStage{
		runner:  stageRunner{service: service, coordinator: coordinator},
		agentID: agentID,
	}
}

// Run produces the outline document for the request.
func (s *OutlineStage) Run(ctx context.Context, request string) (string, error) {
	outline, err := s.runner.exchange(ctx, threads.ConversationOptions{}, s.agentID, request)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(outline) == "" {
		return "", NewSchemaError("outline agent returned an empty document")
	}
	return outline, nil
}
