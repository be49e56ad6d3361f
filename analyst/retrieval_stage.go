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
	"errors"
	"log/slog"
	"strings"

	"github.com/quantfold/analyst-go/threads"
)

// RetrievalStage answers questions against a knowledge store. Each question
// gets a fresh, isolated conversation scoped to that single store, and
// questions run strictly sequentially.
type RetrievalStage struct {
	runner  stageRunner
	agentID string
}

// NewRetrievalStage creates the stage.
func NewRetrievalStage(service threads.Service, coordinator *threads.RunCoordinator, agentID string) *RetrievalStage {
	return &RetrievalStage{
		runner:  stageRunner{service: service, coordinator: coordinator},
		agentID: agentID,
	}
}

// Answer grounds one question against the store.
func (s *RetrievalStage) Answer(ctx context.Context, storeID, question string) (AnswerRecord, error) {
	opts := threads.ConversationOptions{VectorStoreIDs: []string{storeID}}
	answer, err := s.runner.exchange(ctx, opts, s.agentID, question)
	if err != nil {
		return AnswerRecord{}, err
	}
	return AnswerRecord{Question: question, Answer: answer}, nil
}

// AnswerAll processes questions one at a time, in order. Blank questions are
// skipped. A failed run is absorbed locally: the question is recorded with
// the no-response placeholder and the batch continues. Any other error
// aborts the batch.
func (s *RetrievalStage) AnswerAll(ctx context.Context, storeID string, questions []string) ([]AnswerRecord, error) {
	records := make([]AnswerRecord, 0, len(questions))

	for _, question := range questions {
		if strings.TrimSpace(question) == "" {
			Logger().Debug("skipping empty question")
			continue
		}

		record, err := s.Answer(ctx, storeID, question)
		if err != nil {
			var failure threads.RunFailureError
			if errors.As(err, &failure) {
				Logger().Warn("retrieval run failed, recording placeholder answer",
					slog.String("question", question),
					slog.String("detail", failure.Message))
				records = append(records, AnswerRecord{Question: question, Answer: NoResponsePlaceholder})
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
