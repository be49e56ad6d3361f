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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordCounter counts whitespace-separated words, for deterministic tests.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func TestTokenBudgetGuard(t *testing.T) {
	guard := NewTokenBudgetGuard(wordCounter{}, 10, 3)

	assert.False(t, guard.OverBudget("one two three"))
	assert.False(t, guard.OverBudget("one two three four five six"))
	// The effective threshold is limit minus buffer, reached inclusively.
	assert.True(t, guard.OverBudget("one two three four five six seven"))
	assert.True(t, guard.OverBudget(strings.Repeat("word ", 100)))
}

func TestTiktokenCounter(t *testing.T) {
	counter, err := NewTiktokenCounter("")
	require.NoError(t, err)

	assert.Equal(t, 0, counter.Count(""))
	assert.Positive(t, counter.Count("hello world"))
	// More text never counts fewer tokens.
	short := counter.Count("quarterly revenue")
	long := counter.Count("quarterly revenue grew twelve percent year over year")
	assert.Greater(t, long, short)
}

func TestNewTiktokenCounterUnknownEncoding(t *testing.T) {
	_, err := NewTiktokenCounter("no_such_encoding")
	require.Error(t, err)
}
