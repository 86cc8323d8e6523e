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

package status

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/camorg/pkg/copyjob"
	"gitlab.com/tozd/go/errors"
)

// 📄 Row is the tracked view of one job
type Row struct {
	ID        copyjob.ID
	Label     string
	State     copyjob.State
	Completed int
	Total     int
	LastFile  string
	Error     string
}

// 📊 Totals sums up every tracked job
type Totals struct {
	Jobs      int
	Completed int
	Failed    int
	Cancelled int
	Active    int
	Files     int
}

// 📈 Tracker implements copyjob.Notifier and keeps one Row per job
type Tracker struct {
	logger    *zerolog.Logger
	formatter FileFormatter

	mu    sync.RWMutex
	rows  map[copyjob.ID]*Row
	order []copyjob.ID
}

var _ copyjob.Notifier = (*Tracker)(nil)

// 🏭 New creates a tracker that logs through logger
func New(logger *zerolog.Logger) *Tracker {
	return &Tracker{
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		rows:      make(map[copyjob.ID]*Row),
	}
}

// WithFormatter swaps the message formatter
func (t *Tracker) WithFormatter(f FileFormatter) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.formatter = f
	return t
}

// row returns the row for id, creating it in first-seen order. Callers hold mu.
func (t *Tracker) row(id copyjob.ID, label string) *Row {
	r, ok := t.rows[id]
	if !ok {
		r = &Row{ID: id, Label: label, State: copyjob.StateQueued}
		t.rows[id] = r
		t.order = append(t.order, id)
	}
	return r
}

// JobStateChanged implements copyjob.Notifier
func (t *Tracker) JobStateChanged(ev copyjob.StateEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.row(ev.JobID, ev.Label)
	r.State = ev.To
	if ev.To == copyjob.StateFailed {
		r.Error = ev.Reason
	}

	msg := t.formatter.FormatJobState(ev.Label, ev.To, ev.Reason)
	e := t.logger.Info()
	if ev.To == copyjob.StateFailed {
		e = t.logger.Error().Str("error", t.formatter.FormatError(errors.New(ev.Reason)))
	}
	e.Str("job", string(ev.JobID)).Str("state", ev.To.String()).Msg(msg)
}

// JobProgressed implements copyjob.Notifier
func (t *Tracker) JobProgressed(ev copyjob.ProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.row(ev.JobID, ev.Label)
	r.Completed = ev.FilesCompleted
	r.Total = ev.TotalFiles
	r.LastFile = ev.Destination

	t.logger.Info().
		Str("job", string(ev.JobID)).
		Int("processed", ev.FilesCompleted).
		Int("total", ev.TotalFiles).
		Msg(t.formatter.FormatProgress(ev.FilesCompleted, ev.TotalFiles))
}

// Seed records a job before any event arrives, so queued jobs show a total
func (t *Tracker) Seed(snap copyjob.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.row(snap.ID, snap.Label)
	if r.Total == 0 {
		r.Total = snap.TotalFiles
	}
}

// 📋 Rows returns copies of every row in first-seen order
func (t *Tracker) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Row, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.rows[id])
	}
	return out
}

// Get returns the row of one job
func (t *Tracker) Get(id copyjob.ID) (Row, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.rows[id]
	if !ok {
		return Row{}, false
	}
	return *r, true
}

// Totals sums up the tracked rows
func (t *Tracker) Totals() Totals {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var tot Totals
	for _, r := range t.rows {
		tot.Jobs++
		tot.Files += r.Completed
		switch r.State {
		case copyjob.StateCompleted:
			tot.Completed++
		case copyjob.StateFailed:
			tot.Failed++
		case copyjob.StateCancelled:
			tot.Cancelled++
		default:
			tot.Active++
		}
	}
	return tot
}
