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

// Package analyst produces long-form analysis documents by coordinating
// role-specialized conversational agents over a grounded-retrieval knowledge
// store: outline, question formulation, per-question retrieval, iterative
// drafting and review, bounded by a token budget.
package analyst

import "context"

// QuestionSet is the schema-constrained output of the question-formulation
// and review stages. Size bounds are enforced by the agents' instructions,
// not by runtime assertion.
type QuestionSet struct {
	Questions []string `json:"questions" jsonschema_description:"A list of straightforward, single-part questions."`
}

// ReviewVerdict is the review stage's output. LastQuestions true is the sole
// positive termination signal of the review loop.
type ReviewVerdict struct {
	Questions     []string `json:"questions" jsonschema_description:"Clarifying questions about unclear or unsupported points."`
	LastQuestions bool     `json:"last_questions" jsonschema_description:"Indicates whether these are the last questions (true) or not (false)."`
}

// AnswerRecord is one question/answer pair grounded against the knowledge
// store. Records are append-only: once produced, never mutated or removed.
type AnswerRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NoResponsePlaceholder is recorded as the answer for a question whose
// retrieval run failed; the batch continues instead of aborting.
const NoResponsePlaceholder = "No response received"

// TranscriptStore persists AnswerRecords as they are produced. It is an
// observer: persistence failures are logged by the pipeline, never fatal.
type TranscriptStore interface {
	// Append stores one record under the pipeline run id.
	Append(ctx context.Context, runID string, record AnswerRecord) error

	// Records returns all records of a pipeline run in insertion order.
	Records(ctx context.Context, runID string) ([]AnswerRecord, error)

	// Close releases the underlying storage.
	Close() error
}
