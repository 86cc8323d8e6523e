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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	all := []State{StateQueued, StateRunning, StateCompleted, StateFailed, StateCancelled}

	allowed := map[State][]State{
		StateQueued:  {StateRunning, StateCancelled},
		StateRunning: {StateCompleted, StateFailed, StateCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, canTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestStateIsTerminal(t *testing.T) {
	assert.False(t, StateQueued.IsTerminal())
	assert.False(t, StateRunning.IsTerminal())
	assert.True(t, StateCompleted.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.True(t, StateCancelled.IsTerminal())
}

func TestSnapshotPercent(t *testing.T) {
	assert.Equal(t, 0.0, Snapshot{}.Percent())
	assert.Equal(t, 50.0, Snapshot{TotalFiles: 4, FilesCompleted: 2}.Percent())
	assert.Equal(t, 100.0, Snapshot{TotalFiles: 3, FilesCompleted: 3}.Percent())
}
