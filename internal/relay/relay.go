package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bookstore/internal/notification"

	"github.com/rs/zerolog"
)

// Message はブローカーに流す1件
type Message struct {
	// order_created / order_deleted / stock_update
	Type string
	// orderId か bookId（パーティション・ルーティング用）
	Key  string
	Body []byte
}

type Sink interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

type envelope struct {
	Event string          `json:"event"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
}

// Encode はheartbeatを流さない（ok=false）
func Encode(ev notification.Event) (Message, bool, error) {
	if ev.Type == notification.EventHeartbeat {
		return Message{}, false, nil
	}

	data, err := ev.Payload()
	if err != nil {
		return Message{}, false, fmt.Errorf("encode %s payload: %w", ev.Type, err)
	}
	body, err := json.Marshal(envelope{Event: ev.Name(), Type: string(ev.Type), Data: data})
	if err != nil {
		return Message{}, false, err
	}

	var key string
	switch p := ev.Data.(type) {
	case notification.OrderPayload:
		key = p.OrderID
	case notification.StockPayload:
		key = p.BookID
	}
	return Message{Type: string(ev.Type), Key: key, Body: body}, true, nil
}

// Run はhubの購読者として動いて、イベントをsinkへ中継する。ctxが終わるまで戻らない。
// ハブが詰まりで切った場合は購読し直す（その間のイベントは失われる）。
func Run(ctx context.Context, hub *notification.Hub, sink Sink, logger zerolog.Logger) error {
	for {
		sub := hub.Subscribe()
		err := pump(ctx, sub, sink, logger)
		hub.Unsubscribe(sub)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		if sub.Reason() == notification.ClosedByCompletion {
			//hubが閉じた
			return nil
		}
		logger.Warn().Stringer("reason", sub.Reason()).Msg("relay subscriber dropped, resubscribing")
	}
}

func pump(ctx context.Context, sub *notification.Subscriber, sink Sink, logger zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			return nil
		case ev := <-sub.Events():
			msg, ok, err := Encode(ev)
			if err != nil {
				logger.Error().Err(err).Msg("relay encode")
				continue
			}
			if !ok {
				continue
			}
			if err := sink.Send(ctx, msg); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Warn().Err(err).Str("type", msg.Type).Str("key", msg.Key).Msg("relay send failed")
			}
		}
	}
}

// MultiSink は全部に送る
type MultiSink []Sink

func (m MultiSink) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
