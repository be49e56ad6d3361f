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
	"time"
)

// Default token budget: the combined context is considered over budget once
// it reaches TokenLimit minus TokenBuffer tokens.
const (
	DefaultTokenLimit  = 65536
	DefaultTokenBuffer = 5000
)

// Poll intervals for the run coordinator. Development mode polls faster.
const (
	DevelopmentPollInterval = 2 * time.Second
	ProductionPollInterval  = 5 * time.Second
)

// AgentIDs holds the provider ids of the four role-specialized agents.
type AgentIDs struct {
	Outline   string
	Questions string
	Retrieval string
	Review    string
}

// Config is the immutable pipeline configuration. It is constructed once by
// the caller and passed into constructors; there is no global mutable
// configuration and no import-time environment lookup.
type Config struct {
	// Agents are the provisioned agent ids, one per stage.
	Agents AgentIDs

	// WriterSystemInstruction seeds every draft synthesis call.
	WriterSystemInstruction string

	// Generation configures the stateless draft generation calls.
	Generation GenerationConfig

	// TokenLimit and TokenBuffer define the review loop's forced-termination
	// budget. Zero values take the defaults.
	TokenLimit  int
	TokenBuffer int

	// PollInterval overrides the run coordinator's fixed polling interval.
	// When zero, Development selects between the two defaults.
	PollInterval time.Duration

	// Development selects the faster default poll interval.
	Development bool
}

// Validate reports every missing required field as one ConfigurationError.
func (c Config) Validate() error {
	var missing []string
	if c.Agents.Outline == "" {
		missing = append(missing, "Agents.Outline")
	}
	if c.Agents.Questions == "" {
		missing = append(missing, "Agents.Questions")
	}
	if c.Agents.Retrieval == "" {
		missing = append(missing, "Agents.Retrieval")
	}
	if c.Agents.Review == "" {
		missing = append(missing, "Agents.Review")
	}
	if c.WriterSystemInstruction == "" {
		missing = append(missing, "WriterSystemInstruction")
	}
	if len(missing) > 0 {
		return ConfigurationErrorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) tokenLimit() int {
	if c.TokenLimit > 0 {
		return c.TokenLimit
	}
	return DefaultTokenLimit
}

func (c Config) tokenBuffer() int {
	if c.TokenBuffer > 0 {
		return c.TokenBuffer
	}
	return DefaultTokenBuffer
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	if c.Development {
		return DevelopmentPollInterval
	}
	return ProductionPollInterval
}
