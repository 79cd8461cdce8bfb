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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 10 // Width for status text
)

// 🎯 FileOperation represents a copied file for logging
type FileOperation struct {
	Path       string // Destination path relative to the destination root
	Status     string // Operation status
	Size       int64  // Bytes copied
	IsNew      bool   // Whether the file did not exist before
	IsModified bool   // Whether the file content changed
	IsSkipped  bool   // Whether the file was excluded
}

// 📦 ProjectOperation represents a project being copied
type ProjectOperation struct {
	Name        string // Project name
	Ref         string // Optional ref
	Job         string // Optional job
	Source      string // Source root
	Destination string // Destination root
}

// 📊 ProjectSummary is one row of the end-of-run table
type ProjectSummary struct {
	Name    string
	Outcome string
	Files   int
	Detail  string
}

// 🎯 Logger prints progress lines to the console and mirrors them into zerolog
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentOp  *ProjectOperation
	operations []FileOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context. Without one, console lines
// are discarded and only the context's zerolog logger sees them.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return New(io.Discard, *zerolog.Ctx(ctx))
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	case op.IsNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	return fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	l.zlog.Debug().
		Str("file", op.Path).
		Str("status", op.Status).
		Int64("size", op.Size).
		Msg("file operation")
}

// 📝 StartProject starts a new project operation
func (l *Logger) StartProject(ctx context.Context, op ProjectOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.operations = nil

	line := fmt.Sprintf("%s %s",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name))
	if op.Ref != "" {
		line += fmt.Sprintf(" %s %s",
			color.New(color.Faint).Sprint("•"),
			color.New(color.FgYellow).Sprint(op.Ref))
	}
	if op.Job != "" {
		line += " " + color.New(color.Faint).Sprintf("(%s)", op.Job)
	}
	fmt.Fprintln(l.console, line)

	l.zlog.Debug().
		Str("project", op.Name).
		Str("ref", op.Ref).
		Str("job", op.Job).
		Str("source", op.Source).
		Str("destination", op.Destination).
		Msg("starting project")
}

// 📝 EndProject ends the current project operation
func (l *Logger) EndProject(ctx context.Context, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	if err != nil {
		l.line("❌", color.FgRed, fmt.Sprintf("%s: %v", l.currentOp.Name, err))
		l.zlog.Error().Err(err).Str("project", l.currentOp.Name).Msg("project failed")
	} else {
		l.line("✅", color.FgGreen, fmt.Sprintf("%s: %d files", l.currentOp.Name, len(l.operations)))
		l.zlog.Debug().Str("project", l.currentOp.Name).Int("files", len(l.operations)).Msg("project complete")
	}

	l.currentOp = nil
	l.operations = nil
}

// 📊 Summary prints the end-of-run table
func (l *Logger) Summary(rows []ProjectSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{{"project", "outcome", "files", "detail"}}
	for _, r := range rows {
		data = append(data, []string{r.Name, r.Outcome, fmt.Sprintf("%d", r.Files), r.Detail})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		l.zlog.Error().Err(err).Msg("rendering summary")
		return
	}
	fmt.Fprintf(l.console, "\n%s\n", table)
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
	name := color.New(color.Bold, color.FgCyan).Sprint("artcopy")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// line writes one console message, the caller holds mu
func (l *Logger) line(symbol string, attr color.Attribute, msg string) {
	fmt.Fprintf(l.console, "%s %s\n", symbol, color.New(attr).Sprint(msg))
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.line("⚠️ ", color.FgYellow, msg)
	l.zlog.Warn().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.line("ℹ️ ", color.FgCyan, msg)
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

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.line("✅", color.FgGreen, msg)
	l.zlog.Info().Msg(msg)
}
