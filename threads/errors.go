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

package threads

import "fmt"

// RunFailureError is returned when a run reaches the failed status. It
// carries the provider's last-error detail and aborts the caller's stage.
type RunFailureError struct {
	RunID          string
	ConversationID string
	Code           string
	Message        string
}

func (err RunFailureError) Error() string {
	if err.Code == "" {
		return fmt.Sprintf("run %s failed: %s", err.RunID, err.Message)
	}
	return fmt.Sprintf("run %s failed (%s): %s", err.RunID, err.Code, err.Message)
}

// NewRunFailureError builds a RunFailureError from a failed run.
func NewRunFailureError(run Run) RunFailureError {
	err := RunFailureError{
		RunID:          run.ID,
		ConversationID: run.ConversationID,
	}
	if run.LastError != nil {
		err.Code = run.LastError.Code
		err.Message = run.LastError.Message
	} else {
		err.Message = "no error detail reported"
	}
	return err
}
