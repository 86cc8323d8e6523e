// Copyright 2025 walteh LLC
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

package copyjob

import (
	"time"

	"gitlab.com/tozd/go/errors"
)

// 📊 State is the lifecycle state of a copy job
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

var (
	// ErrNotFound is returned for job IDs the registry does not know
	ErrNotFound = errors.Base("job not found")
	// ErrAlreadyTerminal is returned when cancelling a job that already finished
	ErrAlreadyTerminal = errors.Base("job already terminal")
	// ErrNotTerminal is returned when removing a job that is still queued or running
	ErrNotTerminal = errors.Base("job not terminal")
	// ErrInvalidRequest wraps every submission validation failure
	ErrInvalidRequest = errors.Base("invalid copy request")
)

// IsTerminal reports whether no further transitions are possible
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

func (s State) String() string {
	return string(s)
}

// canTransition enforces the job state machine edges.
// queued -> cancelled covers a job cancelled before its first iteration.
func canTransition(from, to State) bool {
	switch from {
	case StateQueued:
		return to == StateRunning || to == StateCancelled
	case StateRunning:
		return to == StateCompleted || to == StateFailed || to == StateCancelled
	default:
		return false
	}
}

// 📸 Snapshot is a point-in-time copy of a job's observable fields
type Snapshot struct {
	ID              ID        `json:"id"`
	Label           string    `json:"label"`
	TargetRoot      string    `json:"target_root"`
	State           State     `json:"state"`
	TotalFiles      int       `json:"total_files"`
	FilesCompleted  int       `json:"files_completed"`
	Error           string    `json:"error,omitempty"`
	CancelRequested bool      `json:"cancel_requested"`
	SubmittedAt     time.Time `json:"submitted_at"`
	StartedAt       time.Time `json:"started_at,omitempty"`
	FinishedAt      time.Time `json:"finished_at,omitempty"`
}

// Percent returns the completed share of the job in the range [0, 100]
func (s Snapshot) Percent() float64 {
	if s.TotalFiles == 0 {
		return 0
	}
	return float64(s.FilesCompleted) / float64(s.TotalFiles) * 100
}
