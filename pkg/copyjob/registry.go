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
	"fmt"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"
)

type entry struct {
	job         *Job
	submittedAt time.Time
}

// 🗂️ Registry owns every submitted job until it is pruned or removed.
// Callers only ever get snapshots out of it.
type Registry struct {
	mu      sync.RWMutex
	nextSeq uint64
	entries map[ID]*entry
	order   []ID
	now     func() time.Time
}

// 🏭 NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[ID]*entry),
		now:     time.Now,
	}
}

// Register assigns the job a fresh ID and stores it
func (r *Registry) Register(job *Job) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	id := ID(fmt.Sprintf("job-%d", r.nextSeq))
	now := r.now()
	job.id = id
	job.submittedAt = now

	r.entries[id] = &entry{job: job, submittedAt: now}
	r.order = append(r.order, id)
	return id
}

func (r *Registry) lookup(id ID) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, errors.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.job, nil
}

// Get returns a snapshot of the job
func (r *Registry) Get(id ID) (Snapshot, error) {
	job, err := r.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return job.Snapshot(), nil
}

// 🛑 Cancel requests cancellation of a queued or running job. Asking again
// before the job stops is a no-op.
func (r *Registry) Cancel(id ID) error {
	job, err := r.lookup(id)
	if err != nil {
		return err
	}
	if job.currentState().IsTerminal() {
		return errors.Errorf("%w: %s", ErrAlreadyTerminal, id)
	}
	job.requestCancel()
	return nil
}

// List returns snapshots in submission order
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].job.Snapshot())
	}
	return out
}

// ActiveCount returns how many jobs are queued or running
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.entries {
		if !e.job.currentState().IsTerminal() {
			n++
		}
	}
	return n
}

// 🧹 Prune drops terminal jobs that finished more than olderThan ago and
// returns how many were removed. Queued and running jobs always stay.
func (r *Registry) Prune(olderThan time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-olderThan)
	kept := r.order[:0]
	removed := 0
	for _, id := range r.order {
		if r.entries[id].job.finishedBefore(cutoff) {
			delete(r.entries, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	clear(r.order[len(kept):])
	r.order = kept
	return removed
}

// Remove drops one terminal job
func (r *Registry) Remove(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return errors.Errorf("%w: %s", ErrNotFound, id)
	}
	if !e.job.currentState().IsTerminal() {
		return errors.Errorf("%w: %s", ErrNotTerminal, id)
	}

	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
