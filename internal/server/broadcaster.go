package server

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Broadcaster fans Event values out to all active GET /events subscribers.
// Slow clients miss frames rather than block the webhook handler.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

func newBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan []byte]struct{})}
}

// subscribe returns a channel of ready-to-write SSE frames.
// The caller must call unsubscribe when the connection closes.
func (b *Broadcaster) subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

func (b *Broadcaster) send(evt Event) {
	frame, err := sseFrame(evt)
	if err != nil {
		slog.Warn("server: failed to marshal event", "type", evt.Type, "error", err)
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- frame:
		default:
		}
	}
}

// sseFrame renders evt in the event-stream wire format: "data: <json>\n\n".
func sseFrame(evt Event) ([]byte, error) {
	raw, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(raw)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, raw...)
	return append(frame, '\n', '\n'), nil
}
