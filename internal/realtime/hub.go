// Package realtime implements the in-process broadcast fabric: named groups
// of subscribers, non-blocking fan-out, and the group-send primitive the
// workflow engine publishes into.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_subscribers",
		Help: "Number of connected real-time subscribers",
	})

	messagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_messages_published_total",
			Help: "Total messages published to realtime groups",
		},
		[]string{"group"},
	)

	messagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_messages_dropped_total",
		Help: "Messages dropped because a subscriber buffer was full",
	})
)

// subscriberBuffer bounds the per-connection queue. Delivery is best-effort:
// a subscriber that cannot keep up loses messages rather than blocking the
// publishing request.
const subscriberBuffer = 32

// Subscriber is one connected listener. It belongs to the global group plus
// any region groups it requested, and must be deregistered through the hub on
// every exit path.
type Subscriber struct {
	ch chan []byte
}

// C is the subscriber's outbound message stream.
func (s *Subscriber) C() <-chan []byte {
	return s.ch
}

// Hub is the subscriber registry and group-send primitive. Groups are opaque
// names; the hub never interprets them. All methods are safe for concurrent
// use, and publishing never blocks.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{groups: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber. The caller joins it to groups and
// must call Unsubscribe when the connection ends.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan []byte, subscriberBuffer)}
	subscribersGauge.Inc()
	return sub
}

// Join adds the subscriber to a named group, creating the group on first use.
func (h *Hub) Join(group string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Subscriber]struct{})
		h.groups[group] = members
	}
	members[sub] = struct{}{}
}

// Leave removes the subscriber from one group, dropping the group when empty.
func (h *Hub) Leave(group string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(group, sub)
}

func (h *Hub) leaveLocked(group string, sub *Subscriber) {
	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, sub)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Unsubscribe removes the subscriber from every group it joined and releases
// it. Required on all connection exit paths, normal or not.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for group := range h.groups {
		h.leaveLocked(group, sub)
	}
	subscribersGauge.Dec()
}

// Publish marshals the payload once and fans it out to the group without
// blocking: a full subscriber buffer drops that subscriber's copy. Delivery
// is at-least-once, best-effort; there is no ordering guarantee across
// independently published payloads.
func (h *Hub) Publish(group string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("group", group).Msg("failed to marshal realtime payload")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	messagesPublished.WithLabelValues(group).Inc()
	for sub := range h.groups[group] {
		select {
		case sub.ch <- data:
		default:
			messagesDropped.Inc()
		}
	}
}

// GroupSize reports the current membership of a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
