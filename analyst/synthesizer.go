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

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
)

// GenerationConfig configures the stateless generation calls.
type GenerationConfig struct {
	Model       string
	Temperature param.Opt[float64]
	TopP        param.Opt[float64]
	MaxTokens   param.Opt[int64]
}

// DefaultGenerationConfig is the standard writer configuration.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Model:       "gpt-4o",
		Temperature: param.NewOpt(1.0),
		TopP:        param.NewOpt(0.95),
		MaxTokens:   param.NewOpt[int64](16384),
	}
}

// Generator is the stateless generation service: every call is a fresh
// session seeded only with the system instruction and the prompt.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string, cfg GenerationConfig) (string, error)
}

// OpenAIGenerator implements Generator over chat completions.
type OpenAIGenerator struct {
	client openai.Client
}

// NewOpenAIGenerator wraps an openai client.
func NewOpenAIGenerator(client openai.Client) *OpenAIGenerator {
	return &OpenAIGenerator{client: client}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, systemInstruction, prompt string, cfg GenerationConfig) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(prompt),
		},
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

// DraftSynthesizer turns the accumulated combined context into a draft
// document. It keeps no state between calls: each synthesis opens a fresh
// generation session seeded with the fixed writer instruction only.
type DraftSynthesizer struct {
	generator         Generator
	systemInstruction string
	config            GenerationConfig
}

// NewDraftSynthesizer creates a synthesizer.
func NewDraftSynthesizer(generator Generator, systemInstruction string, cfg GenerationConfig) *DraftSynthesizer {
	if cfg.Model == "" {
		cfg = DefaultGenerationConfig()
	}
	return &DraftSynthesizer{
		generator:         generator,
		systemInstruction: systemInstruction,
		config:            cfg,
	}
}

// Synthesize produces a draft from the combined context. It fails with
// EmptyResponseError when the provider returns no usable text.
func (s *DraftSynthesizer) Synthesize(ctx context.Context, combinedContext string) (string, error) {
	text, err := s.generator.Generate(ctx, s.systemInstruction, combinedContext, s.config)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", NewEmptyResponseError("draft synthesizer returned an empty response")
	}
	return text, nil
}
