// Package observability provides hooks for metrics and tracing.
//
// Library packages emit events through the registered hooks; the defaults
// are no-ops. A binary registers real implementations once at startup:
//
//	func main() {
//	    c := prom.NewCollector()
//	    observability.SetProjectHooks(c)
//	    observability.SetStoreHooks(c)
//	    // ... run application
//	}
//
// Libraries call hooks around their work:
//
//	start := time.Now()
//	observability.Project().OnGenerateStart(ctx, lang, blocks)
//	code, err := gen.Generate(lang)
//	observability.Project().OnGenerateComplete(ctx, lang, len(code), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Project Hooks
// =============================================================================

// ProjectHooks receives events from project operations.
type ProjectHooks interface {
	// Code generation events
	OnGenerateStart(ctx context.Context, language string, blocks int)
	OnGenerateComplete(ctx context.Context, language string, size int, duration time.Duration, err error)

	// Snapshot events. op is one of "load", "save", "import" or "export".
	OnSnapshotStart(ctx context.Context, op string)
	OnSnapshotComplete(ctx context.Context, op string, blocks int, duration time.Duration, err error)

	// OnDrop records the end of a drag session.
	OnDrop(ctx context.Context, state, target string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from persistence backends.
type StoreHooks interface {
	// OnStoreRead records a load. found is false for a missing key.
	OnStoreRead(ctx context.Context, backend string, size int, found bool, duration time.Duration, err error)

	// OnStoreWrite records a save.
	OnStoreWrite(ctx context.Context, backend string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopProjectHooks is a no-op implementation of ProjectHooks.
type NoopProjectHooks struct{}

func (NoopProjectHooks) OnGenerateStart(context.Context, string, int) {}
func (NoopProjectHooks) OnGenerateComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopProjectHooks) OnSnapshotStart(context.Context, string)                              {}
func (NoopProjectHooks) OnSnapshotComplete(context.Context, string, int, time.Duration, error) {}
func (NoopProjectHooks) OnDrop(context.Context, string, string)                               {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreRead(context.Context, string, int, bool, time.Duration, error) {}
func (NoopStoreHooks) OnStoreWrite(context.Context, string, int, time.Duration, error)      {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	projectHooks ProjectHooks = NoopProjectHooks{}
	storeHooks   StoreHooks   = NoopStoreHooks{}
	hooksMu      sync.RWMutex
)

// SetProjectHooks registers custom project hooks.
// This should be called once at application startup.
func SetProjectHooks(h ProjectHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		projectHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Project returns the registered project hooks.
func Project() ProjectHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return projectHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	projectHooks = NoopProjectHooks{}
	storeHooks = NoopStoreHooks{}
}
