// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag is the passive diagnostic channel of the generator core. The
// core never configures logging on its own; the caller injects a Sink and
// decides what to do with the events.
package diag

import (
	"fmt"
	"io"
	"sync"
)

type Level int8

const (
	Off Level = iota
	Error
	Warn
	Info
	Debug
	Trace
)

var levelNames = [...]string{"off", "error", "warn", "info", "debug", "trace"}

func (l Level) String() string {
	if l < Off || l > Trace {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts the names accepted by the -l command line option.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return Off, fmt.Errorf("unknown log level %s", s)
}

// Event is one structured diagnostic record. Entity, if not empty, names the
// peripheral/register/field the event refers to.
type Event struct {
	Level  Level
	Entity string
	Msg    string
}

// Sink receives diagnostic events. Implementations must be safe for use
// from multiple goroutines: peripheral emission may run concurrently.
type Sink interface {
	Event(e Event)
}

type discard struct{}

func (discard) Event(Event) {}

// Discard returns a Sink that drops every event.
func Discard() Sink { return discard{} }

// Writer returns a Sink printing events at or below max to w, one per line.
func Writer(w io.Writer, max Level) Sink {
	return &writer{w: w, max: max}
}

type writer struct {
	mu  sync.Mutex
	w   io.Writer
	max Level
}

func (s *writer) Event(e Event) {
	if e.Level > s.max || e.Level == Off {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Entity != "" {
		fmt.Fprintf(s.w, "[%s] %s: %s\n", e.Level, e.Entity, e.Msg)
	} else {
		fmt.Fprintf(s.w, "[%s] %s\n", e.Level, e.Msg)
	}
}

func Warnf(s Sink, entity, format string, args ...any) {
	s.Event(Event{Warn, entity, fmt.Sprintf(format, args...)})
}

func Infof(s Sink, entity, format string, args ...any) {
	s.Event(Event{Info, entity, fmt.Sprintf(format, args...)})
}

func Debugf(s Sink, entity, format string, args ...any) {
	s.Event(Event{Debug, entity, fmt.Sprintf(format, args...)})
}
