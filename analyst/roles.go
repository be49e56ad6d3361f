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

	"github.com/quantfold/analyst-go/threads"
)

// Roles bundles the four role-specialized agent definitions of a pipeline
// variant (financial or general research).
type Roles struct {
	Outline   threads.AgentDefinition
	Questions threads.AgentDefinition
	Retrieval threads.AgentDefinition
	Review    threads.AgentDefinition
}

const financialOutlinePrompt = "You are an expert at planning comprehensive financial analyses of a " +
	"company's quarterly report. The user provides a company name, reporting period and any special " +
	"focus. Produce a structured outline covering executive summary, revenue analysis, cost and " +
	"expense breakdown, profitability, balance sheet highlights, cash flow, notable one-time items, " +
	"risks, growth outlook and conclusion. Another agent will formulate questions for each section " +
	"to gather the data needed to complete the analysis. Use json object response format."

const financialQuestionsPrompt = "You are an expert at generating direct, finance-focused questions. " +
	"You will receive an outline for a company's financial analysis. For each outline section, create " +
	"questions that gather the essential facts from the quarterly report. Each question must be " +
	"straightforward and targeted. Do not ask more than 13 questions. Do not assume prior knowledge. " +
	"Follow the json schema response format provided."

const researchQuestionsPrompt = "You are an expert at formulating research questions. You will " +
	"receive an outline. For each bullet point, create at least one straightforward question that " +
	"gathers the facts needed to satisfy that point. Avoid complex or multi-part questions. Limit " +
	"yourself to a total of 15 questions. Do not assume any prior knowledge. Follow the json schema " +
	"response format provided."

const retrievalPrompt = "Answer the questions only with data available in the knowledge store. " +
	"Perform semantic searches to locate relevant passages, then summarize or quote only what is " +
	"found, without introducing external information. Cite page or section references if available. " +
	"If an answer cannot be found, state that the information is not in the store."

const reviewPrompt = "You are an expert reviewer who critiques analysis documents. You are extremely " +
	"detail-oriented and inquisitive. You receive the user's original prompt, the outline and the " +
	"completed analysis. Check whether the analysis fully addresses the prompt and covers each " +
	"outline section with sufficient detail. If any point is unclear, incomplete or insufficiently " +
	"supported, ask up to 4 direct, clarifying questions, each focused on what is missing. If the " +
	"analysis is unquestionably complete, ask zero questions and set last_questions to true. Do not " +
	"request information the data explicitly states is unavailable. No multi-part questions. Follow " +
	"the json schema response format provided."

// WriterSystemInstruction seeds the stateless draft synthesizer.
const WriterSystemInstruction = "You are an expert analyst. You will receive a user prompt, a " +
	"structured outline and a set of Q&A data grounded on the source documents. Use only the Q&A " +
	"data provided to compose a coherent, in-depth analysis that addresses every item in the " +
	"outline. If a Q&A indicates data was not found for a topic, include a brief note instead. Do " +
	"not introduce external or speculative data. Return the final analysis in Markdown format only."

// questionSchemaName is the provider-side name for both question-producing
// response formats.
const questionSchemaName = "research_questions_output"

// FinancialRoles returns the agent definitions for quarterly-report analysis.
// It panics if schema reflection fails, which would be a programming error.
func FinancialRoles() Roles {
	return buildRoles(financialOutlinePrompt, financialQuestionsPrompt)
}

// ResearchRoles returns the agent definitions for general research papers.
func ResearchRoles() Roles {
	const outlinePrompt = "You are an expert at planning research papers. The user provides a topic " +
		"and requirements. Create a detailed, specific outline with clear headings, subheadings and " +
		"supporting points. Another agent will formulate questions for each section to gather the " +
		"facts needed to fill the outline. Use json object response format."
	return buildRoles(outlinePrompt, researchQuestionsPrompt)
}

func buildRoles(outlinePrompt, questionsPrompt string) Roles {
	questionSchema, err := ReflectSchema[QuestionSet](false)
	if err != nil {
		panic(err)
	}
	reviewSchema, err := ReflectSchema[ReviewVerdict](false)
	if err != nil {
		panic(err)
	}

	return Roles{
		Outline: threads.AgentDefinition{
			Name:         "outline_agent",
			Description:  "An agent that outlines an analysis document.",
			Model:        "gpt-4o",
			Instructions: outlinePrompt,
		},
		Questions: threads.AgentDefinition{
			Name:               "formulate_questions_agent",
			Description:        "An agent that formulates questions from an outline.",
			Model:              "gpt-4o",
			Instructions:       questionsPrompt,
			ResponseSchemaName: questionSchemaName,
			ResponseSchema:     questionSchema,
		},
		Retrieval: threads.AgentDefinition{
			Name:         "knowledge_store_search_agent",
			Description:  "An agent that searches a knowledge store for answers to questions.",
			Model:        "gpt-4o-mini",
			Instructions: retrievalPrompt,
			FileSearch:   true,
		},
		Review: threads.AgentDefinition{
			Name:               "reviewer_agent",
			Description:        "An expert reviewer that provides feedback as clarifying questions.",
			Model:              "gpt-4o",
			Instructions:       reviewPrompt,
			ResponseSchemaName: questionSchemaName,
			ResponseSchema:     reviewSchema,
		},
	}
}

// ProvisionAgents creates the four agents on the provider and returns their
// ids, for callers without pre-provisioned agents.
func ProvisionAgents(ctx context.Context, service threads.Service, roles Roles) (AgentIDs, error) {
	var ids AgentIDs
	var err error

	if ids.Outline, err = service.CreateAgent(ctx, roles.Outline); err != nil {
		return AgentIDs{}, err
	}
	if ids.Questions, err = service.CreateAgent(ctx, roles.Questions); err != nil {
		return AgentIDs{}, err
	}
	if ids.Retrieval, err = service.CreateAgent(ctx, roles.Retrieval); err != nil {
		return AgentIDs{}, err
	}
	if ids.Review, err = service.CreateAgent(ctx, roles.Review); err != nil {
		return AgentIDs{}, err
	}
	return ids, nil
}
