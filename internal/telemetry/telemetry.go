// Package telemetry writes structured run events as JSON lines.
//
// Events describe sizes, timings and outcomes only. Raw user text, tool
// arguments and tool payloads are never written.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const EventsFile = "events.jsonl"

// Emitter appends events to a JSONL sink. A nil *Emitter discards everything.
type Emitter struct {
	log    zerolog.Logger
	closer io.Closer
}

// New returns an Emitter writing one JSON object per line to w.
func New(w io.Writer) *Emitter {
	return &Emitter{log: zerolog.New(zerolog.SyncWriter(w))}
}

// Open appends to <dir>/events.jsonl, creating dir as needed.
func Open(dir string) (*Emitter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, EventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	e := New(f)
	e.closer = f
	return e, nil
}

// Emit writes one event. The turn id carried by ctx, if any, is added as
// turn_id; fields must not contain the keys "time" or "event".
func (e *Emitter) Emit(ctx context.Context, name string, fields map[string]any) {
	if e == nil {
		return
	}
	ev := e.log.Log().
		Str("time", time.Now().UTC().Format(time.RFC3339Nano)).
		Str("event", name)
	if id, ok := TurnIDFromContext(ctx); ok {
		ev = ev.Str("turn_id", id)
	}
	ev.Fields(fields).Send()
}

func (e *Emitter) Close() error {
	if e == nil || e.closer == nil {
		return nil
	}
	return e.closer.Close()
}
