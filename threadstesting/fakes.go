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

package threadstesting

import (
	"context"
	"fmt"
	"sync"

	"github.com/quantfold/analyst-go/analyst"
)

// GenerateCall records one Generate invocation.
type GenerateCall struct {
	SystemInstruction string
	Prompt            string
	Config            analyst.GenerationConfig
}

// FakeGenerator is a scripted analyst.Generator. Replies are consumed in
// order; once exhausted the last reply repeats.
type FakeGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error

	// Calls records every Generate invocation in order.
	Calls []GenerateCall
}

// NewFakeGenerator creates a generator producing the given replies in order.
func NewFakeGenerator(replies ...string) *FakeGenerator {
	return &FakeGenerator{replies: replies}
}

// FailWith makes every subsequent Generate call return err.
func (g *FakeGenerator) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *FakeGenerator) Generate(_ context.Context, systemInstruction, prompt string, cfg analyst.GenerationConfig) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls = append(g.Calls, GenerateCall{
		SystemInstruction: systemInstruction,
		Prompt:            prompt,
		Config:            cfg,
	})
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", nil
	}
	reply := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return reply, nil
}

// FakeKnowledgeStore is an in-memory knowledge.Store.
type FakeKnowledgeStore struct {
	mu sync.Mutex

	// CreatedNames lists Create invocations in order.
	CreatedNames []string

	// Ingested maps store id to every ingested path, in order.
	Ingested map[string][]string

	// CreateErr, when set, is returned by Create.
	CreateErr error

	// IngestErr, when set, is returned by Ingest.
	IngestErr error
}

// NewFakeKnowledgeStore creates an empty FakeKnowledgeStore.
func NewFakeKnowledgeStore() *FakeKnowledgeStore {
	return &FakeKnowledgeStore{Ingested: make(map[string][]string)}
}

func (s *FakeKnowledgeStore) Create(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	s.CreatedNames = append(s.CreatedNames, name)
	return fmt.Sprintf("vs_fake_%d", len(s.CreatedNames)), nil
}

func (s *FakeKnowledgeStore) Ingest(_ context.Context, storeID string, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.IngestErr != nil {
		return s.IngestErr
	}
	s.Ingested[storeID] = append(s.Ingested[storeID], paths...)
	return nil
}

type appendedRecord struct {
	runID  string
	record analyst.AnswerRecord
}

// FakeTranscriptStore is an in-memory analyst.TranscriptStore.
type FakeTranscriptStore struct {
	mu       sync.Mutex
	appended []appendedRecord

	// AppendErr, when set, is returned by Append.
	AppendErr error

	// Closed reports whether Close was called.
	Closed bool
}

// NewFakeTranscriptStore creates an empty FakeTranscriptStore.
func NewFakeTranscriptStore() *FakeTranscriptStore {
	return &FakeTranscriptStore{}
}

func (s *FakeTranscriptStore) Append(_ context.Context, runID string, record analyst.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.appended = append(s.appended, appendedRecord{runID: runID, record: record})
	return nil
}

func (s *FakeTranscriptStore) Records(_ context.Context, runID string) ([]analyst.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []analyst.AnswerRecord
	for _, a := range s.appended {
		if a.runID == runID {
			records = append(records, a.record)
		}
	}
	return records, nil
}

// AllRecords returns every appended record regardless of run id.
func (s *FakeTranscriptStore) AllRecords() []analyst.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]analyst.AnswerRecord, 0, len(s.appended))
	for _, a := range s.appended {
		records = append(records, a.record)
	}
	return records
}

// RunIDs returns the distinct run ids seen by Append, in first-seen order.
func (s *FakeTranscriptStore) RunIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	seen := make(map[string]bool)
	for _, a := range s.appended {
		if !seen[a.runID] {
			seen[a.runID] = true
			ids = append(ids, a.runID)
		}
	}
	return ids
}

func (s *FakeTranscriptStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}
