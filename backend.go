package edge

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"sync/atomic"
)

// Backend bundles the native SDK services. SDK, Cloud and Media are
// process-wide singletons; NewLiveview creates one streaming object per call.
type Backend struct {
	Name        string
	SDK         ESDK
	Cloud       CloudAPI
	Media       MediaManager
	NewLiveview func() Liveview

	// Close, when set, tears the services down on Shutdown.
	Close func() error
}

// BackendFactory constructs a backend.
type BackendFactory func() (*Backend, error)

// EnvBackend names the backend used when none was installed explicitly.
const EnvBackend = "EDGE_SDK_BACKEND"

// backendRegistry holds backend factories and the active backend.
type backendRegistry struct {
	factories map[string]BackendFactory
	mu        sync.Mutex
	active    atomic.Pointer[Backend]
}

var globalBackends = &backendRegistry{
	factories: make(map[string]BackendFactory),
}

// RegisterBackend registers a backend factory under name.
func RegisterBackend(name string, factory BackendFactory) {
	globalBackends.mu.Lock()
	defer globalBackends.mu.Unlock()
	globalBackends.factories[name] = factory
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	globalBackends.mu.Lock()
	defer globalBackends.mu.Unlock()
	names := make([]string, 0, len(globalBackends.factories))
	for name := range globalBackends.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UseBackend constructs the named backend and installs it, shutting down
// any backend that was active.
func UseBackend(name string) error {
	globalBackends.mu.Lock()
	factory, ok := globalBackends.factories[name]
	globalBackends.mu.Unlock()
	if !ok {
		return fmt.Errorf("edge: backend not registered: %q", name)
	}
	b, err := factory()
	if err != nil {
		return fmt.Errorf("edge: create backend %q: %w", name, err)
	}
	if b.Name == "" {
		b.Name = name
	}
	return Install(b)
}

// Install makes b the active backend, shutting down the previous one.
func Install(b *Backend) error {
	globalBackends.mu.Lock()
	defer globalBackends.mu.Unlock()
	old := globalBackends.active.Swap(b)
	return closeBackend(old)
}

// Shutdown tears down the active backend. The next facade call constructs
// a fresh one lazily.
func Shutdown() error {
	globalBackends.mu.Lock()
	defer globalBackends.mu.Unlock()
	return closeBackend(globalBackends.active.Swap(nil))
}

// ActiveBackend returns the active backend, constructing it on first use.
func ActiveBackend() *Backend {
	if b := globalBackends.active.Load(); b != nil {
		return b
	}
	globalBackends.mu.Lock()
	defer globalBackends.mu.Unlock()
	if b := globalBackends.active.Load(); b != nil {
		return b
	}
	b := globalBackends.construct()
	if b != nil {
		globalBackends.active.Store(b)
	}
	return b
}

// construct builds the backend named by EnvBackend, or the only registered
// one. Caller holds mu.
func (r *backendRegistry) construct() *Backend {
	name := os.Getenv(EnvBackend)
	if name == "" && len(r.factories) == 1 {
		for n := range r.factories {
			name = n
		}
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil
	}
	b, err := factory()
	if err != nil || b == nil {
		return nil
	}
	if b.Name == "" {
		b.Name = name
	}
	return b
}

func closeBackend(b *Backend) error {
	if b == nil || b.Close == nil {
		return nil
	}
	return b.Close()
}

func sdk() ESDK {
	if b := ActiveBackend(); b != nil {
		return b.SDK
	}
	return nil
}

func cloud() CloudAPI {
	if b := ActiveBackend(); b != nil {
		return b.Cloud
	}
	return nil
}

func mediaManager() MediaManager {
	if b := ActiveBackend(); b != nil {
		return b.Media
	}
	return nil
}

// Releaser is implemented by native objects that hold resources beyond
// their facade reference. Release runs once the last reference is gone.
// Objects whose Close has another meaning, such as a files reader closing
// one descriptor, implement Releaser instead of io.Closer.
type Releaser interface {
	Release()
}

// releaseNative is the release func for shared native objects.
func releaseNative[T any](v T) {
	switch x := any(v).(type) {
	case Releaser:
		x.Release()
	case io.Closer:
		_ = x.Close()
	}
}
