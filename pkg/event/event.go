// Package event provides a simple synchronous/async event dispatcher used to
// fan out domain events such as order.placed and order.status_updated.
package event

import (
	"sync"

	"github.com/shashiranjanraj/tomato/pkg/workerpool"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	pool     *workerpool.Pool
)

// UsePool routes FireAsync through a bounded worker pool instead of raw
// goroutines. Call once at boot; pass nil to revert.
func UsePool(p *workerpool.Pool) {
	mu.Lock()
	defer mu.Unlock()
	pool = p
}

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
func Fire(event string, payload interface{}) {
	for _, h := range snapshot(event) {
		h(payload)
	}
}

// FireAsync dispatches the event to all listeners without waiting for them to
// complete. With a pool configured the fan-out is bounded; a listener that
// cannot be scheduled because the pool is saturated runs on its own goroutine.
func FireAsync(event string, payload interface{}) {
	mu.RLock()
	p := pool
	mu.RUnlock()

	for _, h := range snapshot(event) {
		h := h
		if p != nil {
			if err := p.Submit(func() { h(payload) }); err == nil {
				continue
			}
		}
		go h(payload)
	}
}

func snapshot(event string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	return hs
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
