// Package ui defines where components send human-readable diagnostics.
package ui

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink receives debug messages from emulated components. source names the
// component that produced msg.
type Sink interface {
	ShowDebugMessage(source, msg string)
}

// LogSink forwards messages to a logrus logger as warnings tagged with the
// component name.
type LogSink struct {
	log logrus.FieldLogger
}

// NewLogSink creates a sink writing to log, or to the standard logrus
// logger when log is nil.
func NewLogSink(log logrus.FieldLogger) *LogSink {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogSink{log: log}
}

// ShowDebugMessage logs msg.
func (s *LogSink) ShowDebugMessage(source, msg string) {
	s.log.WithField("component", source).Warn(strings.TrimRight(msg, "\n"))
}

// Discard drops every message.
type Discard struct{}

// ShowDebugMessage does nothing.
func (Discard) ShowDebugMessage(string, string) {}

// Message is one recorded diagnostic.
type Message struct {
	Source string
	Text   string
}

// Recorder keeps messages in memory. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// ShowDebugMessage records msg.
func (r *Recorder) ShowDebugMessage(source, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Source: source, Text: msg})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Texts returns the recorded message texts.
func (r *Recorder) Texts() []string {
	msgs := r.Messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

// Reset forgets all recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
