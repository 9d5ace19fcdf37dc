package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sentinelcore/inehss/internal/core"
	"github.com/sentinelcore/inehss/internal/realtime"
)

// Live is the real-time event feed endpoint. Every connection joins the
// global events group; clients opt into region groups with control messages.
type Live struct {
	hub *realtime.Hub
}

func NewLive(hub *realtime.Hub) *Live {
	return &Live{hub: hub}
}

// clientMsg is a control message sent by a connected client.
type clientMsg struct {
	Type   string `json:"type"`
	Region string `json:"region"`
}

// Connect upgrades to WebSocket and serves the live feed until the client
// goes away.
func (h *Live) Connect(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Origin differs from Host when proxied through the dashboard.
	})
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer ws.CloseNow()

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)
	h.hub.Join(core.GroupEventsLive, sub)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// All frames, broadcast and control replies alike, leave through one
	// writer goroutine; the socket permits only a single concurrent writer.
	out := make(chan []byte, 8)
	send := func(v any) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		select {
		case out <- data:
		case <-ctx.Done():
		}
	}

	go func() {
		defer cancel()
		for {
			var data []byte
			select {
			case <-ctx.Done():
				return
			case data = <-out:
			case data = <-sub.C():
			}
			if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}()

	send(map[string]string{
		"type":    "connection_established",
		"message": "Connected to live events feed",
	})

	// Reader: handle client control messages until the connection drops.
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			return
		}

		var msg clientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed input gets an error notice; the connection stays up.
			send(map[string]string{"type": "error", "message": "invalid message"})
			continue
		}

		switch msg.Type {
		case "ping":
			send(map[string]any{
				"type":      "pong",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		case "subscribe_region":
			if msg.Region == "" {
				send(map[string]string{"type": "error", "message": "region is required"})
				continue
			}
			h.hub.Join(core.RegionGroupPrefix+msg.Region, sub)
			send(map[string]string{
				"type":   "subscribed",
				"region": msg.Region,
			})
		default:
			send(map[string]string{"type": "error", "message": "unknown message type"})
		}
	}
}
