package relay

import (
	"log/slog"
	"sync"
)

// Options configures a Relay.
type Options struct {
	Logger    *slog.Logger
	QueueSize int // per sink, default DefaultQueueSize
}

// Relay turns live view stream data into access units and fans them out to
// sinks.
type Relay struct {
	mu  sync.Mutex
	asm *Assembler
	fan *Fanout

	// OnUnit, when set, observes every assembled access unit before it is
	// published. It runs on the Write goroutine.
	OnUnit func(u *AccessUnit)
}

// New creates a relay with no sinks.
func New(opts Options) *Relay {
	return &Relay{
		asm: NewAssembler(),
		fan: NewFanout(opts.Logger, opts.QueueSize),
	}
}

// Write consumes one chunk of Annex B stream data. data is not retained, so
// Write can be handed memory that is only valid during a native callback.
func (r *Relay) Write(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.asm.Push(data) {
		if r.OnUnit != nil {
			r.OnUnit(u)
		}
		r.fan.Publish(u)
	}
}

// AddSink starts forwarding to sink at the next keyframe.
func (r *Relay) AddSink(sink Sink) { r.fan.Add(sink) }

// RemoveSink stops forwarding to sink and closes it.
func (r *Relay) RemoveSink(sink Sink) error { return r.fan.Remove(sink) }

// Stats returns per-sink counters.
func (r *Relay) Stats() []SinkStats { return r.fan.Stats() }

// Close closes every sink.
func (r *Relay) Close() error { return r.fan.Close() }
