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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/analyst-go/analyst"
	"github.com/quantfold/analyst-go/threadstesting"
)

func TestFinancialRoles(t *testing.T) {
	roles := analyst.FinancialRoles()

	// Schema-constrained stages carry a response schema; free-form ones don't.
	assert.Nil(t, roles.Outline.ResponseSchema)
	assert.NotNil(t, roles.Questions.ResponseSchema)
	assert.Nil(t, roles.Retrieval.ResponseSchema)
	assert.NotNil(t, roles.Review.ResponseSchema)

	// Only the retrieval agent searches the knowledge store.
	assert.False(t, roles.Outline.FileSearch)
	assert.False(t, roles.Questions.FileSearch)
	assert.True(t, roles.Retrieval.FileSearch)
	assert.False(t, roles.Review.FileSearch)
}

func TestResearchRoles(t *testing.T) {
	roles := analyst.ResearchRoles()
	assert.NotEqual(t, analyst.FinancialRoles().Outline.Instructions, roles.Outline.Instructions)
	assert.NotNil(t, roles.Questions.ResponseSchema)
}

func TestProvisionAgents(t *testing.T) {
	service := threadstesting.NewFakeService()

	ids, err := analyst.ProvisionAgents(t.Context(), service, analyst.FinancialRoles())
	require.NoError(t, err)

	assert.NotEmpty(t, ids.Outline)
	assert.NotEmpty(t, ids.Questions)
	assert.NotEmpty(t, ids.Retrieval)
	assert.NotEmpty(t, ids.Review)

	require.Len(t, service.CreatedAgents, 4)
	assert.Equal(t, "outline_agent", service.CreatedAgents[0].Name)
	assert.Equal(t, "formulate_questions_agent", service.CreatedAgents[1].Name)
	assert.Equal(t, "knowledge_store_search_agent", service.CreatedAgents[2].Name)
	assert.Equal(t, "reviewer_agent", service.CreatedAgents[3].Name)
}
