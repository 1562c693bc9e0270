package controllers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/tomato/app/services"
	"github.com/shashiranjanraj/tomato/pkg/event"
	"github.com/shashiranjanraj/tomato/pkg/sse"
	"github.com/shashiranjanraj/tomato/pkg/ws"
)

// OrderFeed pushes order lifecycle events to connected admin dashboards,
// over a WebSocket or an SSE stream.
type OrderFeed struct {
	hub *ws.Hub

	mu      sync.Mutex
	streams map[chan []byte]struct{}
}

func NewOrderFeed() *OrderFeed {
	f := &OrderFeed{
		hub:     ws.NewHub(),
		streams: map[chan []byte]struct{}{},
	}
	go f.hub.Run()

	for _, name := range []string{
		services.EventOrderPlaced,
		services.EventOrderPaid,
		services.EventOrderStatusUpdated,
	} {
		name := name
		event.Listen(name, func(payload interface{}) {
			f.broadcast(name, payload)
		})
	}
	return f
}

// Serve upgrades the connection and attaches it to the hub. Admin only.
func (f *OrderFeed) Serve(w http.ResponseWriter, r *http.Request) {
	ws.Upgrade(w, r, f.hub)
}

// ServeSSE streams the same feed over Server-Sent Events. Admin only.
func (f *OrderFeed) ServeSSE(w http.ResponseWriter, r *http.Request) {
	stream := sse.New(w, r)
	if stream == nil {
		return
	}

	ch := make(chan []byte, 16)
	f.mu.Lock()
	f.streams[ch] = struct{}{}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		delete(f.streams, ch)
		f.mu.Unlock()
	}()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			stream.Comment("keepalive")
		case msg := <-ch:
			stream.SendRaw(string(msg))
		}
		if stream.IsClosed() {
			return
		}
	}
}

func (f *OrderFeed) broadcast(name string, payload interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"event": name,
		"data":  payload,
	})
	if err != nil {
		return
	}
	f.hub.Broadcast <- msg

	f.mu.Lock()
	for ch := range f.streams {
		select {
		case ch <- msg:
		default: // slow consumer, drop
		}
	}
	f.mu.Unlock()
}
