/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package txlog records who changed which model, for audit views.
package txlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suparena/eventgraph/models"
)

// Type is the kind of change an entry records.
type Type string

const (
	TypeCreate Type = "CREATE"
	TypeUpdate Type = "UPDATE"
	TypeDelete Type = "DELETE"
)

// Entry is one recorded change.
type Entry struct {
	ID        string    `json:"id"`
	CreatedBy models.ID `json:"createdBy"`
	Type      Type      `json:"type"`
	Model     string    `json:"model"`
	TimeStamp time.Time `json:"timeStamp"`
}

// Recorder stores entries and returns the most recent ones, newest first.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, n int) ([]Entry, error)
}

// stamp fills the id and timestamp of e when unset.
func stamp(e Entry, now func() time.Time) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.TimeStamp.IsZero() {
		e.TimeStamp = now().UTC()
	}
	return e
}

// Log records through a Recorder without ever failing the caller.
type Log struct {
	recorder Recorder
	logger   *zap.Logger
}

// NewLog wraps recorder.
func NewLog(recorder Recorder, logger *zap.Logger) *Log {
	return &Log{recorder: recorder, logger: logger}
}

// Record stores an entry. Failures are logged and swallowed.
func (l *Log) Record(ctx context.Context, viewer models.ID, t Type, model string) {
	err := l.recorder.Record(ctx, Entry{CreatedBy: viewer, Type: t, Model: model})
	if err != nil {
		l.logger.Error("transaction log write failed",
			zap.String("model", model), zap.String("type", string(t)), zap.Error(err))
	}
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(ctx context.Context, n int) ([]Entry, error) {
	return l.recorder.Recent(ctx, n)
}

// Memory keeps the last Capacity entries in process.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
	now     func() time.Time
}

// DefaultCapacity bounds the in-memory and Redis logs.
const DefaultCapacity = 1000

// NewMemory returns a ring holding up to capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{entries: make([]Entry, capacity), now: time.Now}
}

// Record stores e, evicting the oldest entry when full.
func (m *Memory) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e = stamp(e, m.now)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.next] = e
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (m *Memory) Recent(_ context.Context, n int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := m.next
	if m.full {
		size = len(m.entries)
	}
	if n <= 0 || n > size {
		n = size
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (m.next - i + len(m.entries)) % len(m.entries)
		out = append(out, m.entries[idx])
	}
	return out, nil
}
