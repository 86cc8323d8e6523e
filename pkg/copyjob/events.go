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
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// 🔄 StateEvent is emitted on every lifecycle transition
type StateEvent struct {
	JobID  ID
	Label  string
	From   State
	To     State
	Reason string
}

// 📈 ProgressEvent is emitted after each successfully copied file
type ProgressEvent struct {
	JobID          ID
	Label          string
	FilesCompleted int
	TotalFiles     int
	Source         string
	Destination    string
}

// 📢 Notifier receives job events.
//
// Methods are called on the job's own goroutine, so implementations must be
// safe for concurrent use and should hand off to their own goroutine for
// anything slow.
type Notifier interface {
	JobStateChanged(ev StateEvent)
	JobProgressed(ev ProgressEvent)
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) JobStateChanged(StateEvent)  {}
func (NopNotifier) JobProgressed(ProgressEvent) {}

// 📡 MultiNotifier broadcasts events to several notifiers in order
type MultiNotifier struct {
	mu        sync.RWMutex
	notifiers []Notifier
}

// NewMultiNotifier creates a broadcaster, nil entries are skipped
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, n := range notifiers {
		m.Add(n)
	}
	return m
}

// Add registers another notifier
func (m *MultiNotifier) Add(n Notifier) {
	if n == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifiers = append(m.notifiers, n)
}

func (m *MultiNotifier) list() []Notifier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Notifier(nil), m.notifiers...)
}

func (m *MultiNotifier) JobStateChanged(ev StateEvent) {
	for _, n := range m.list() {
		n.JobStateChanged(ev)
	}
}

func (m *MultiNotifier) JobProgressed(ev ProgressEvent) {
	for _, n := range m.list() {
		n.JobProgressed(ev)
	}
}

// EventKind tells which field of an Event is set
type EventKind int

const (
	EventState EventKind = iota
	EventProgress
)

// Event is the channel form of a job event
type Event struct {
	Kind     EventKind
	State    StateEvent
	Progress ProgressEvent
}

// 📬 ChannelNotifier forwards events to a channel for hosts that marshal
// them onto their own goroutine. Sends block while the buffer is full until
// the host drains Events or calls Close.
type ChannelNotifier struct {
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewChannelNotifier creates a notifier with the given buffer size
func NewChannelNotifier(buffer int) *ChannelNotifier {
	return &ChannelNotifier{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// Events returns the receive side of the event channel
func (c *ChannelNotifier) Events() <-chan Event {
	return c.ch
}

// Close releases blocked senders and closes the channel, later events are
// dropped
func (c *ChannelNotifier) Close() {
	c.closeOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// send holds the read lock so ch stays open while it is in use, done
// unblocks it once Close starts
func (c *ChannelNotifier) send(ev Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- ev:
	case <-c.done:
	}
}

func (c *ChannelNotifier) JobStateChanged(ev StateEvent) {
	c.send(Event{Kind: EventState, State: ev})
}

func (c *ChannelNotifier) JobProgressed(ev ProgressEvent) {
	c.send(Event{Kind: EventProgress, Progress: ev})
}

// 📝 LogNotifier writes events to a zerolog logger
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier uses the logger carried by ctx
func NewLogNotifier(ctx context.Context) *LogNotifier {
	return &LogNotifier{logger: *zerolog.Ctx(ctx)}
}

func (l *LogNotifier) JobStateChanged(ev StateEvent) {
	e := l.logger.Info()
	if ev.To == StateFailed {
		e = l.logger.Error()
	}
	e.Str("job", string(ev.JobID)).
		Str("label", ev.Label).
		Str("from", ev.From.String()).
		Str("to", ev.To.String()).
		Str("reason", ev.Reason).
		Msg("job state changed")
}

func (l *LogNotifier) JobProgressed(ev ProgressEvent) {
	l.logger.Debug().
		Str("job", string(ev.JobID)).
		Int("completed", ev.FilesCompleted).
		Int("total", ev.TotalFiles).
		Str("destination", ev.Destination).
		Msg("file copied")
}
