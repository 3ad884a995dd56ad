package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"festquiz/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub pushes every shown question to connected websocket spectators, e.g. a
// big-screen display or the players' phones.
type Hub struct {
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	last        *domain.QuestionBroadcast
	subscribers map[chan domain.QuestionBroadcast]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subscribers: make(map[chan domain.QuestionBroadcast]struct{}),
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// QuestionShown fans the broadcast out to every subscriber. Slow subscribers
// lose their stale question rather than blocking the quiz.
func (h *Hub) QuestionShown(_ context.Context, b domain.QuestionBroadcast) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = &b
	for ch := range h.subscribers {
		select {
		case ch <- b:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- b
		}
	}
	return nil
}

// Subscribers returns the number of connected spectators.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) subscribe() (<-chan domain.QuestionBroadcast, func()) {
	ch := make(chan domain.QuestionBroadcast, 1)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	if h.last != nil {
		ch <- *h.last
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// ServeWS upgrades the request and streams question broadcasts until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.subscribe()
	defer cancel()

	closed := make(chan struct{})
	// Spectators never send anything meaningful; reading only detects disconnects.
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Debug().Str("remote", r.RemoteAddr).Msg("spectator connected")
	for {
		select {
		case b, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(outboundMessage[domain.QuestionBroadcast]{Type: "question", Payload: b}); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				return
			}
		case <-closed:
			log.Debug().Str("remote", r.RemoteAddr).Msg("spectator disconnected")
			return
		}
	}
}
