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

package analyst_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/analyst-go/analyst"
	"github.com/quantfold/analyst-go/threads"
	"github.com/quantfold/analyst-go/threadstesting"
)

func newStageCoordinator(service threads.Service) *threads.RunCoordinator {
	return threads.NewRunCoordinator(threads.RunCoordinatorParams{
		Service: service,
		Wait:    threadstesting.NoWait,
	})
}

func TestOutlineStage(t *testing.T) {
	ctx := t.Context()

	t.Run("returns the agent's reply", func(t *testing.T) {
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.CompletedRunScript(`{"sections": ["revenue", "margins"]}`))

		stage := analyst.NewOutlineStage(service, newStageCoordinator(service), "asst_outline")
		outline, err := stage.Run(ctx, "Analyze ACME's Q3 report")
		require.NoError(t, err)
		assert.Equal(t, `{"sections": ["revenue", "margins"]}`, outline)

		// The request travels as the user message of a fresh conversation.
		require.Len(t, service.ConversationIDs, 1)
		conv := service.Conversation(service.ConversationIDs[0])
		require.NotEmpty(t, conv.Messages)
		assert.Equal(t, threads.RoleUser, conv.Messages[0].Role)
		assert.Equal(t, "Analyze ACME's Q3 report", conv.Messages[0].Content[0].Text)
		assert.Equal(t, "asst_outline", service.StartedRuns[0].AgentID)
	})

	t.Run("empty outline is an error", func(t *testing.T) {
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.CompletedRunScript("  \n "))

		stage := analyst.NewOutlineStage(service, newStageCoordinator(service), "asst_outline")
		_, err := stage.Run(ctx, "Analyze ACME's Q3 report")
		require.ErrorContains(t, err, "empty document")
	})
}

func TestQuestionStage(t *testing.T) {
	ctx := t.Context()

	t.Run("decodes the question set", func(t *testing.T) {
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.CompletedRunScript(`{"questions": ["What was total revenue?"]}`))

		stage := analyst.NewQuestionStage(service, newStageCoordinator(service), "asst_questions")
		set, err := stage.Run(ctx, "the outline")
		require.NoError(t, err)
		assert.Equal(t, []string{"What was total revenue?"}, set.Questions)
	})

	t.Run("malformed reply is an error", func(t *testing.T) {
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.CompletedRunScript("Sure! Here are some questions."))

		stage := analyst.NewQuestionStage(service, newStageCoordinator(service), "asst_questions")
		_, err := stage.Run(ctx, "the outline")
		require.Error(t, err)
	})
}

func TestRetrievalStage(t *testing.T) {
	ctx := t.Context()

	t.Run("each question gets a fresh conversation scoped to the store", func(t *testing.T) {
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.CompletedRunScript("Revenue was $12M."))
		service.AddRunScript(threadstesting.CompletedRunScript("Margin was 38%."))

		stage := analyst.NewRetrievalStage(service, newStageCoordinator(service), "asst_retrieval")
		records, err := stage.AnswerAll(ctx, "vs_1", []string{
			"What was total revenue?",
			"What was gross margin?",
		})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Revenue was $12M.", records[0].Answer)
		assert.Equal(t, "Margin was 38%.", records[1].Answer)

		require.Len(t, service.ConversationIDs, 2)
		for _, id := range service.ConversationIDs {
			assert.Equal(t, []string{"vs_1"}, service.Conversation(id).Options.VectorStoreIDs)
		}
	})

	t.Run("blank questions are skipped", func(t *testing.T) {
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.CompletedRunScript("An answer."))

		stage := analyst.NewRetrievalStage(service, newStageCoordinator(service), "asst_retrieval")
		records, err := stage.AnswerAll(ctx, "vs_1", []string{"", "  ", "A real question?"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "A real question?", records[0].Question)
	})

	t.Run("a failed run records the placeholder and the batch continues", func(t *testing.T) {
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.CompletedRunScript("First answer."))
		service.AddRunScript(threadstesting.FailedRunScript("server_error", "boom"))
		service.AddRunScript(threadstesting.CompletedRunScript("Third answer."))

		stage := analyst.NewRetrievalStage(service, newStageCoordinator(service), "asst_retrieval")
		records, err := stage.AnswerAll(ctx, "vs_1", []string{"one?", "two?", "three?"})
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "First answer.", records[0].Answer)
		assert.Equal(t, analyst.NoResponsePlaceholder, records[1].Answer)
		assert.Equal(t, "two?", records[1].Question)
		assert.Equal(t, "Third answer.", records[2].Answer)
	})

	t.Run("a transport error aborts the batch", func(t *testing.T) {
		transportErr := errors.New("connection reset")
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.RunScript{
			Statuses: []threads.RunStatus{threads.RunStatusInProgress},
			Err:      transportErr,
		})

		stage := analyst.NewRetrievalStage(service, newStageCoordinator(service), "asst_retrieval")
		_, err := stage.AnswerAll(ctx, "vs_1", []string{"one?", "two?"})
		require.ErrorIs(t, err, transportErr)
	})
}

func TestReviewStage(t *testing.T) {
	ctx := t.Context()

	t.Run("verdict with clarifying questions", func(t *testing.T) {
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.CompletedRunScript(
			`{"questions": ["What about cash flow?"], "last_questions": false}`))

		stage := analyst.NewReviewStage(service, newStageCoordinator(service), "asst_review")
		verdict, err := stage.Run(ctx, "the request", "the outline", "the draft")
		require.NoError(t, err)
		assert.False(t, verdict.LastQuestions)
		assert.Equal(t, []string{"What about cash flow?"}, verdict.Questions)

		// Reviewer input carries request, outline and draft.
		conv := service.Conversation(service.ConversationIDs[0])
		assert.Equal(t, "the request\n\nthe outline\n\nthe draft", conv.Messages[0].Content[0].Text)
	})

	t.Run("approval verdict", func(t *testing.T) {
		service := threadstesting.NewFakeService()
		service.AddRunScript(threadstesting.CompletedRunScript(`{"questions": [], "last_questions": true}`))

		stage := analyst.NewReviewStage(service, newStageCoordinator(service), "asst_review")
		verdict, err := stage.Run(ctx, "r", "o", "d")
		require.NoError(t, err)
		assert.True(t, verdict.LastQuestions)
	})
}

func TestDraftSynthesizer(t *testing.T) {
	ctx := t.Context()

	t.Run("returns the generated draft", func(t *testing.T) {
		generator := threadstesting.NewFakeGenerator("# Analysis\n\nRevenue grew.")
		synthesizer := analyst.NewDraftSynthesizer(generator, analyst.WriterSystemInstruction, analyst.DefaultGenerationConfig())

		draft, err := synthesizer.Synthesize(ctx, "combined context")
		require.NoError(t, err)
		assert.Equal(t, "# Analysis\n\nRevenue grew.", draft)

		require.Len(t, generator.Calls, 1)
		assert.Equal(t, analyst.WriterSystemInstruction, generator.Calls[0].SystemInstruction)
		assert.Equal(t, "combined context", generator.Calls[0].Prompt)
	})

	t.Run("blank generation is an EmptyResponseError", func(t *testing.T) {
		generator := threadstesting.NewFakeGenerator("   ")
		synthesizer := analyst.NewDraftSynthesizer(generator, analyst.WriterSystemInstruction, analyst.DefaultGenerationConfig())

		_, err := synthesizer.Synthesize(ctx, "combined context")
		require.ErrorContains(t, err, "empty response")
	})
}
