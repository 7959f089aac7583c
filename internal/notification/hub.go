package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultBuffer = 16

// Hub は購読者の登録簿。Publishは決してブロックしない。
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscriber
	closed bool

	buffer int
	logger zerolog.Logger
}

type Option func(*Hub)

func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[string]*Subscriber),
		buffer: defaultBuffer,
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Subscribe は常に成功する。Close後は閉じた購読を返す。
func (h *Hub) Subscribe() *Subscriber {
	s := newSubscriber(uuid.NewString(), h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.close(ClosedByCompletion)
		return s
	}
	h.subs[s.id] = s
	n := len(h.subs)
	h.mu.Unlock()

	h.logger.Debug().Str("subscriber", s.id).Int("subscribers", n).Msg("subscribed")
	return s
}

// Unsubscribe はクライアント側の正常終了
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.remove(s, ClosedByCompletion)
}

// Expire は無通信タイムアウト
func (h *Hub) Expire(s *Subscriber) {
	h.remove(s, ClosedByTimeout)
}

// Drop は送信側（トランスポート）で書けなかったとき
func (h *Hub) Drop(s *Subscriber) {
	h.remove(s, ClosedBySendFailure)
}

// Publish は今いる購読者に1回ずつ送る。送れなかった購読者は外す。
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	snapshot := make([]*Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		snapshot = append(snapshot, s)
	}
	h.mu.RUnlock()

	for _, s := range snapshot {
		if !s.offer(ev) {
			h.remove(s, ClosedBySendFailure)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// RunHeartbeat はctxが終わるまでintervalごとにheartbeatを流す
func (h *Hub) RunHeartbeat(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.Publish(Heartbeat())
		}
	}
}

// Close は全購読を閉じる。以降のPublishは何もしない。
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[string]*Subscriber)
	h.mu.Unlock()

	for _, s := range subs {
		s.close(ClosedByCompletion)
	}
}

func (h *Hub) remove(s *Subscriber, reason CloseReason) {
	if s == nil {
		return
	}
	h.mu.Lock()
	if cur, ok := h.subs[s.id]; ok && cur == s {
		delete(h.subs, s.id)
	}
	h.mu.Unlock()

	if s.close(reason) {
		h.logger.Debug().Str("subscriber", s.id).Stringer("reason", reason).Msg("subscriber closed")
	}
}
