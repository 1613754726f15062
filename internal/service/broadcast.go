package service

import "sync"

// BroadcastHub signals live subscribers (dashboard sessions) that a
// fresh status is available for a device. Pushes are non-blocking: a
// subscriber that lags simply coalesces signals.
type BroadcastHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan struct{}]struct{}
}

func NewBroadcastHub() *BroadcastHub {
	return &BroadcastHub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in a device's status updates. The
// returned cancel func must be called when the subscriber goes away.
func (h *BroadcastHub) Subscribe(deviceID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[deviceID] == nil {
		h.subs[deviceID] = make(map[chan struct{}]struct{})
	}
	h.subs[deviceID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[deviceID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, deviceID)
			}
		}
	}
	return ch, cancel
}

// Push signals every subscriber of the device. It never blocks on a
// slow subscriber.
func (h *BroadcastHub) Push(deviceID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[deviceID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount reports how many live subscribers a device has.
func (h *BroadcastHub) SubscriberCount(deviceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[deviceID])
}
