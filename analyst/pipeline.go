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
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/quantfold/analyst-go/knowledge"
	"github.com/quantfold/analyst-go/threads"
)

// Request is one document-analysis job.
type Request struct {
	// Prompt is the user's analysis request.
	Prompt string

	// DocumentPaths are the source files to ingest into the knowledge store.
	DocumentPaths []string

	// StoreName names the knowledge store; a default is used when empty.
	StoreName string
}

// Result is the pipeline's produced artifact. Persistence is the caller's
// responsibility.
type Result struct {
	// Draft is the final draft document text.
	Draft string

	// CombinedContext is the full supporting context the draft was
	// synthesized from: request, outline and the complete Q&A transcript.
	CombinedContext string
}

// Dependencies are the external collaborators of a Pipeline.
type Dependencies struct {
	// Service is the conversational thread/run provider. Required.
	Service threads.Service

	// Knowledge is the retrieval store service. Required.
	Knowledge knowledge.Store

	// Generator is the stateless generation service. Required.
	Generator Generator

	// Counter measures combined-context tokens. Defaults to a tiktoken
	// counter with the default encoding.
	Counter TokenCounter

	// Transcripts optionally persists AnswerRecords as they are produced.
	Transcripts TranscriptStore

	// Wait overrides the coordinator's sleep between polls, for tests.
	Wait threads.WaitFunc
}

// Pipeline sequences the analysis stages and the review/termination loop.
//
// One invocation owns all of its state; running multiple invocations of the
// same Pipeline value concurrently is not supported.
type Pipeline struct {
	config      Config
	knowledge   knowledge.Store
	outline     *OutlineStage
	questions   *QuestionStage
	retrieval   *RetrievalStage
	review      *ReviewStage
	synthesizer *DraftSynthesizer
	budget      *TokenBudgetGuard
	transcripts TranscriptStore
}

// DefaultStoreName is used when Request.StoreName is empty.
const DefaultStoreName = "search_agent_knowledge_store"

// NewPipeline validates the configuration and wires the stages.
func NewPipeline(cfg Config, deps Dependencies) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Service == nil {
		return nil, NewConfigurationError("a threads.Service is required")
	}
	if deps.Knowledge == nil {
		return nil, NewConfigurationError("a knowledge.Store is required")
	}
	if deps.Generator == nil {
		return nil, NewConfigurationError("a Generator is required")
	}

	counter := deps.Counter
	if counter == nil {
		c, err := NewTiktokenCounter("")
		if err != nil {
			return nil, ConfigurationErrorf("failed to load default token encoding: %w", err)
		}
		counter = c
	}

	coordinator := threads.NewRunCoordinator(threads.RunCoordinatorParams{
		Service:      deps.Service,
		PollInterval: cfg.pollInterval(),
		Wait:         deps.Wait,
		Logger:       Logger(),
	})

	return &Pipeline{
		config:      cfg,
		knowledge:   deps.Knowledge,
		outline:     NewOutlineStage(deps.Service, coordinator, cfg.Agents.Outline),
		questions:   NewQuestionStage(deps.Service, coordinator, cfg.Agents.Questions),
		retrieval:   NewRetrievalStage(deps.Service, coordinator, cfg.Agents.Retrieval),
		review:      NewReviewStage(deps.Service, coordinator, cfg.Agents.Review),
		synthesizer: NewDraftSynthesizer(deps.Generator, cfg.WriterSystemInstruction, cfg.Generation),
		budget:      NewTokenBudgetGuard(counter, cfg.tokenLimit(), cfg.tokenBuffer()),
		transcripts: deps.Transcripts,
	}, nil
}

// Run executes the full analysis: ingest, outline, questions, answers,
// draft, then the review loop until the reviewer is satisfied or the token
// budget is exhausted. Any stage failure aborts the run with no partial
// result; only single-question retrieval failures are absorbed.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, NewConfigurationError("analysis request prompt must not be empty")
	}

	logger := Logger()
	runID := uuid.NewString()

	// INGEST
	storeName := req.StoreName
	if storeName == "" {
		storeName = DefaultStoreName
	}
	storeID, err := p.knowledge.Create(ctx, storeName)
	if err != nil {
		return nil, IngestionErrorf("failed to create knowledge store: %w", err)
	}
	if len(req.DocumentPaths) > 0 {
		if err := p.knowledge.Ingest(ctx, storeID, req.DocumentPaths); err != nil {
			return nil, IngestionErrorf("failed to ingest documents: %w", err)
		}
	}
	logger.Info("knowledge store ready",
		slog.String("store_id", storeID),
		slog.Int("documents", len(req.DocumentPaths)))

	// OUTLINE
	outline, err := p.outline.Run(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}
	logger.Info("outline produced", slog.Int("length", len(outline)))

	// QUESTIONS
	questionSet, err := p.questions.Run(ctx, outline)
	if err != nil {
		return nil, err
	}
	logger.Info("questions formulated", slog.Int("count", len(questionSet.Questions)))

	// ANSWER
	records, err := p.retrieval.AnswerAll(ctx, storeID, questionSet.Questions)
	if err != nil {
		return nil, err
	}
	p.persistRecords(ctx, runID, records)

	// DRAFT
	combined := buildCombinedContext(req.Prompt, outline, records)
	draft, err := p.synthesizer.Synthesize(ctx, combined)
	if err != nil {
		return nil, err
	}
	logger.Info("initial draft synthesized", slog.Int("length", len(draft)))

	// REVIEW_LOOP
	for iteration := 1; ; iteration++ {
		verdict, err := p.review.Run(ctx, req.Prompt, outline, draft)
		if err != nil {
			return nil, err
		}

		if verdict.LastQuestions {
			logger.Info("review passed", slog.Int("iteration", iteration))
			return &Result{Draft: draft, CombinedContext: combined}, nil
		}
		logger.Info("reviewer asked clarifying questions",
			slog.Int("iteration", iteration),
			slog.Int("count", len(verdict.Questions)))

		newRecords, err := p.retrieval.AnswerAll(ctx, storeID, verdict.Questions)
		if err != nil {
			return nil, err
		}
		p.persistRecords(ctx, runID, newRecords)

		// Records are only ever appended; the combined context is rebuilt
		// from the full accumulated transcript.
		records = append(records, newRecords...)
		combined = buildCombinedContext(req.Prompt, outline, records)

		if !p.budget.OverBudget(combined) {
			draft, err = p.synthesizer.Synthesize(ctx, combined)
			if err != nil {
				return nil, err
			}
			continue
		}

		// Budget exhausted: synthesize exactly once more and return without
		// a further review pass.
		logger.Warn("token budget exceeded, synthesizing final draft",
			slog.Int("iteration", iteration))
		draft, err = p.synthesizer.Synthesize(ctx, combined)
		if err != nil {
			return nil, err
		}
		return &Result{Draft: draft, CombinedContext: combined}, nil
	}
}

func (p *Pipeline) persistRecords(ctx context.Context, runID string, records []AnswerRecord) {
	if p.transcripts == nil {
		return
	}
	for _, record := range records {
		if err := p.transcripts.Append(ctx, runID, record); err != nil {
			Logger().Error("failed to persist answer record",
				slog.String("run_id", runID),
				slog.String("error", err.Error()))
		}
	}
}

// buildCombinedContext assembles the draft synthesizer input. The original
// request is always its literal prefix.
func buildCombinedContext(request, outline string, records []AnswerRecord) string {
	var sb strings.Builder
	sb.WriteString(request)
	sb.WriteString("\n\n")
	sb.WriteString(outline)
	sb.WriteString("\n\nQuestions and Answers:\n")
	for _, record := range records {
		_, _ = fmt.Fprintf(&sb, "Q: %s\nA: %s\n", record.Question, record.Answer)
	}
	return sb.String()
}
