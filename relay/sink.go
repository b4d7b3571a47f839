package relay

import (
	"fmt"
	"net/url"
	"sort"
	"sync"
)

// Sink consumes access units. WriteUnit is called from a single goroutine
// per sink and must not retain u after returning.
type Sink interface {
	Name() string
	WriteUnit(u *AccessUnit) error
	Close() error
}

// SinkFactory opens a sink for a parsed URL.
type SinkFactory func(u *url.URL) (Sink, error)

// sinkRegistry holds sink factories keyed by URL scheme.
type sinkRegistry struct {
	factories map[string]SinkFactory
	mu        sync.RWMutex
}

var globalSinks = &sinkRegistry{
	factories: make(map[string]SinkFactory),
}

// RegisterSink registers a sink factory for a URL scheme.
func RegisterSink(scheme string, factory SinkFactory) {
	globalSinks.mu.Lock()
	defer globalSinks.mu.Unlock()
	globalSinks.factories[scheme] = factory
}

// SinkSchemes returns the registered URL schemes in sorted order.
func SinkSchemes() []string {
	globalSinks.mu.RLock()
	defer globalSinks.mu.RUnlock()
	schemes := make([]string, 0, len(globalSinks.factories))
	for s := range globalSinks.factories {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// OpenSink opens a sink for rawURL, e.g. rtp://127.0.0.1:5004 or
// rtmp://localhost:1935/live/stream.
func OpenSink(rawURL string) (Sink, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("relay: parse sink url: %w", err)
	}
	globalSinks.mu.RLock()
	factory, ok := globalSinks.factories[u.Scheme]
	globalSinks.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("relay: sink not available: %q", u.Scheme)
	}
	return factory(u)
}
