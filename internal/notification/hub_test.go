package notification_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookstore/internal/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, s *notification.Subscriber) notification.Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return notification.Event{}
	}
}

func TestHub_PublishReachesEverySubscriber(t *testing.T) {
	h := notification.NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	require.Equal(t, 2, h.Len())

	h.Publish(notification.OrderCreated("o-1"))

	for _, s := range []*notification.Subscriber{a, b} {
		ev := recv(t, s)
		assert.Equal(t, "order_update", ev.Name())
		assert.Equal(t, notification.OrderPayload{OrderID: "o-1"}, ev.Data)
	}
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	h := notification.NewHub()
	assert.NotPanics(t, func() { h.Publish(notification.StockUpdated("b1", 3)) })
}

func TestHub_UnsubscribeIsCompletion(t *testing.T) {
	h := notification.NewHub()
	s := h.Subscribe()

	h.Unsubscribe(s)

	assert.Equal(t, 0, h.Len())
	assert.True(t, s.Closed())
	assert.Equal(t, notification.ClosedByCompletion, s.Reason())

	//閉じた後は何も届かない
	h.Publish(notification.OrderDeleted("o-1"))
	assert.Len(t, s.Events(), 0)
}

func TestHub_ExpireIsTimeout(t *testing.T) {
	h := notification.NewHub()
	s := h.Subscribe()

	h.Expire(s)
	//2回目の理由は残らない
	h.Unsubscribe(s)

	assert.Equal(t, notification.ClosedByTimeout, s.Reason())
	assert.Equal(t, 0, h.Len())
}

func TestHub_FullBufferDropsSubscriberOnly(t *testing.T) {
	h := notification.NewHub(notification.WithBuffer(1))
	slow := h.Subscribe()
	fast := h.Subscribe()

	h.Publish(notification.StockUpdated("b1", 1))
	_ = recv(t, fast)

	//slowはバッファが埋まったまま
	h.Publish(notification.StockUpdated("b1", 2))

	assert.Equal(t, notification.ClosedBySendFailure, slow.Reason())
	assert.False(t, fast.Closed())
	assert.Equal(t, 1, h.Len())

	ev := recv(t, fast)
	assert.Equal(t, notification.StockPayload{BookID: "b1", NewStock: 2}, ev.Data)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	h := notification.NewHub(notification.WithBuffer(1))
	for i := 0; i < 10; i++ {
		h.Subscribe()
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(notification.Heartbeat())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked")
	}
	assert.Equal(t, 0, h.Len())
}

func TestHub_ConcurrentSubscribePublish(t *testing.T) {
	h := notification.NewHub(notification.WithBuffer(64))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := h.Subscribe()
			h.Unsubscribe(s)
		}()
		go func() {
			defer wg.Done()
			h.Publish(notification.OrderCreated("o"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Len())
}

func TestHub_CloseClosesEveryone(t *testing.T) {
	h := notification.NewHub()
	a := h.Subscribe()

	h.Close()

	assert.Equal(t, notification.ClosedByCompletion, a.Reason())
	late := h.Subscribe()
	assert.True(t, late.Closed())
	assert.Equal(t, 0, h.Len())
}

func TestHub_RunHeartbeat(t *testing.T) {
	h := notification.NewHub()
	s := h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.RunHeartbeat(ctx, 10*time.Millisecond)

	ev := recv(t, s)
	assert.Equal(t, "heartbeat", ev.Name())
	data, err := ev.Payload()
	require.NoError(t, err)
	assert.Equal(t, "ping", string(data))
}

func TestEvent_Payload(t *testing.T) {
	data, err := notification.StockUpdated("978-1", 7).Payload()
	require.NoError(t, err)
	assert.JSONEq(t, `{"bookId":"978-1","newStock":7}`, string(data))

	data, err = notification.OrderDeleted("o-9").Payload()
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderId":"o-9"}`, string(data))
}
