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

import "github.com/pkoukk/tiktoken-go"

// TokenCounter measures the token length of a candidate context string.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with a local tiktoken encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// DefaultEncoding is the vocabulary used when none is specified.
const DefaultEncoding = "cl100k_base"

// NewTiktokenCounter loads the named encoding, or DefaultEncoding when name
// is empty.
func NewTiktokenCounter(name string) (*TiktokenCounter, error) {
	if name == "" {
		name = DefaultEncoding
	}
	encoding, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// TokenBudgetGuard decides when the combined context has exhausted the
// configured token budget, triggering the review loop's forced termination.
type TokenBudgetGuard struct {
	counter TokenCounter
	limit   int
	buffer  int
}

// NewTokenBudgetGuard creates a guard with the given limit and safety buffer.
func NewTokenBudgetGuard(counter TokenCounter, limit, buffer int) *TokenBudgetGuard {
	return &TokenBudgetGuard{counter: counter, limit: limit, buffer: buffer}
}

// OverBudget reports whether the text has reached limit minus buffer tokens.
func (g *TokenBudgetGuard) OverBudget(text string) bool {
	return g.counter.Count(text) >= g.limit-g.buffer
}
