package relay

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the number of access units buffered per sink.
const DefaultQueueSize = 60

// ErrSinkNotFound is returned when removing a sink that was never added.
var ErrSinkNotFound = errors.New("relay: sink not found")

// SinkStats reports delivery counters for one sink.
type SinkStats struct {
	Name    string
	Sent    uint64
	Dropped uint64
	Errors  uint64
}

type subscriber struct {
	sink    Sink
	ch      chan *AccessUnit
	done    chan struct{}
	waitKey bool // guarded by Fanout.mu

	sent    atomic.Uint64
	dropped atomic.Uint64
	errors  atomic.Uint64
}

// Fanout delivers access units to sinks, one goroutine per sink. Publish
// never blocks: a sink whose queue is full loses the unit and resumes at the
// next keyframe.
type Fanout struct {
	log   *slog.Logger
	queue int

	mu     sync.Mutex
	subs   []*subscriber
	closed bool
}

// NewFanout creates a fanout. A nil logger uses slog.Default; a
// non-positive queue selects DefaultQueueSize.
func NewFanout(logger *slog.Logger, queue int) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	if queue <= 0 {
		queue = DefaultQueueSize
	}
	return &Fanout{log: logger, queue: queue}
}

// Add starts delivering to sink, beginning with the next keyframe.
func (f *Fanout) Add(sink Sink) {
	s := &subscriber{
		sink:    sink,
		ch:      make(chan *AccessUnit, f.queue),
		done:    make(chan struct{}),
		waitKey: true,
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = sink.Close()
		return
	}
	f.subs = append(f.subs, s)
	f.mu.Unlock()

	go f.run(s)
	f.log.Info("sink added", "sink", sink.Name())
}

func (f *Fanout) run(s *subscriber) {
	defer close(s.done)
	for u := range s.ch {
		if err := s.sink.WriteUnit(u); err != nil {
			if s.errors.Add(1) == 1 {
				f.log.Warn("sink write failed", "sink", s.sink.Name(), "error", err)
			}
			continue
		}
		s.sent.Add(1)
	}
}

// Publish hands u to every sink. Sinks share u and must not modify it.
func (f *Fanout) Publish(u *AccessUnit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	key := u.IsKeyframe()
	for _, s := range f.subs {
		if s.waitKey {
			if !key {
				continue
			}
			s.waitKey = false
		}
		select {
		case s.ch <- u:
		default:
			s.dropped.Add(1)
			s.waitKey = true
		}
	}
}

// Remove stops delivering to sink, waits for its queue to drain and closes it.
func (f *Fanout) Remove(sink Sink) error {
	f.mu.Lock()
	var s *subscriber
	for i, sub := range f.subs {
		if sub.sink == sink {
			s = sub
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			break
		}
	}
	f.mu.Unlock()
	if s == nil {
		return ErrSinkNotFound
	}
	return f.stop(s)
}

func (f *Fanout) stop(s *subscriber) error {
	close(s.ch)
	<-s.done
	f.log.Info("sink removed", "sink", s.sink.Name(), "sent", s.sent.Load(), "dropped", s.dropped.Load())
	return s.sink.Close()
}

// Stats returns per-sink counters.
func (f *Fanout) Stats() []SinkStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SinkStats, 0, len(f.subs))
	for _, s := range f.subs {
		out = append(out, SinkStats{
			Name:    s.sink.Name(),
			Sent:    s.sent.Load(),
			Dropped: s.dropped.Load(),
			Errors:  s.errors.Load(),
		})
	}
	return out
}

// Close removes every sink. Later Publish calls are ignored.
func (f *Fanout) Close() error {
	f.mu.Lock()
	subs := f.subs
	f.subs = nil
	f.closed = true
	f.mu.Unlock()

	var errs []error
	for _, s := range subs {
		if err := f.stop(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
