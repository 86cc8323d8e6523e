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

package log

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/camorg/pkg/copyjob"
	"github.com/walteh/camorg/pkg/plan"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	typeWidth   = 15 // Width for file type
	statusWidth = 15 // Width for status text
)

// 🎯 FileOperation is one line of console output for a file
type FileOperation struct {
	Path     string // Destination path relative to the label folder
	Type     string // Extension folder
	Status   string // Progress text
	IsFailed bool   // Whether the copy failed
}

// 📦 JobOperation is the header of a copy job
type JobOperation struct {
	ID          copyjob.ID
	Label       string
	Destination string
}

// 🎯 Logger renders copy job events on a console and mirrors them to zerolog.
// It implements copyjob.Notifier and serializes output from concurrent jobs.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	jobs    map[copyjob.ID]JobOperation
}

var _ copyjob.Notifier = (*Logger)(nil)

// 🏭 NewWithLogger writes to console and mirrors every line to zlog
func NewWithLogger(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		jobs:    make(map[copyjob.ID]JobOperation),
	}
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	symbol := '✓'
	symbolColor := color.FgGreen
	if op.IsFailed {
		symbol = '✗'
		symbolColor = color.FgRed
	}

	typeColor := color.FgBlue
	if op.Type == plan.NoExtensionDir {
		typeColor = color.FgYellow
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(typeColor).Sprint(fmt.Sprintf("%-*s", typeWidth, op.Type)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// logFileOperation prints one file line, l.mu must be held
func (l *Logger) logFileOperation(op FileOperation) {
	fmt.Fprintln(l.console, l.formatFileOperation(op))

	l.zlog.Debug().
		Str("file", op.Path).
		Str("type", op.Type).
		Str("status", op.Status).
		Bool("is_failed", op.IsFailed).
		Msg("file operation")
}

// startJobOperation prints the header of a job, l.mu must be held
func (l *Logger) startJobOperation(op JobOperation) {
	l.jobs[op.ID] = op

	fmt.Fprintf(l.console, "[copying %s]\n",
		color.New(color.FgCyan).Sprint(op.Destination))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Label),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(string(op.ID)))

	l.zlog.Info().
		Str("job", string(op.ID)).
		Str("label", op.Label).
		Str("destination", op.Destination).
		Msg("starting copy job")
}

// 📡 JobStateChanged implements copyjob.Notifier
func (l *Logger) JobStateChanged(ev copyjob.StateEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ev.To {
	case copyjob.StateRunning:
		return
	case copyjob.StateCompleted:
		l.printLine("✅", color.FgGreen, fmt.Sprintf("%s finished", ev.Label))
		l.zlog.Info().Str("job", string(ev.JobID)).Str("label", ev.Label).Msg("copy job complete")
	case copyjob.StateFailed:
		l.printLine("❌", color.FgRed, fmt.Sprintf("%s failed: %s", ev.Label, ev.Reason))
		l.zlog.Error().Str("job", string(ev.JobID)).Str("label", ev.Label).Str("reason", ev.Reason).Msg("copy job failed")
	case copyjob.StateCancelled:
		l.printLine("⚠️ ", color.FgYellow, fmt.Sprintf("%s cancelled", ev.Label))
		l.zlog.Warn().Str("job", string(ev.JobID)).Str("label", ev.Label).Str("reason", ev.Reason).Msg("copy job cancelled")
	}

	if ev.To.IsTerminal() {
		delete(l.jobs, ev.JobID)
	}
}

// 📈 JobProgressed implements copyjob.Notifier. The first progress of a job
// prints its header.
func (l *Logger) JobProgressed(ev copyjob.ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	op, ok := l.jobs[ev.JobID]
	if !ok {
		op = JobOperation{ID: ev.JobID, Label: ev.Label, Destination: labelDir(ev.Destination)}
		l.startJobOperation(op)
	}

	rel, err := filepath.Rel(op.Destination, ev.Destination)
	if err != nil {
		rel = filepath.Base(ev.Destination)
	}

	l.logFileOperation(FileOperation{
		Path:   rel,
		Type:   filepath.Base(filepath.Dir(ev.Destination)),
		Status: fmt.Sprintf("%d/%d", ev.FilesCompleted, ev.TotalFiles),
	})
}

// labelDir strips the extension folder and file name from a destination
func labelDir(dest string) string {
	return filepath.Dir(filepath.Dir(dest))
}

func (l *Logger) printLine(symbol string, c color.Attribute, msg string) {
	fmt.Fprintf(l.console, "%s %s\n", symbol, color.New(c).Sprint(msg))
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("camorg")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printLine("✅", color.FgGreen, msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printLine("⚠️ ", color.FgYellow, msg)
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printLine("❌", color.FgRed, msg)
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printLine("ℹ️ ", color.FgCyan, msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
