package notification

import "encoding/json"

type EventType string

const (
	EventOrderCreated EventType = "order_created"
	EventOrderDeleted EventType = "order_deleted"
	EventStockUpdate  EventType = "stock_update"
	EventHeartbeat    EventType = "heartbeat"
)

// SSEで送るイベント名
const (
	wireOrderUpdate = "order_update"
	heartbeatData   = "ping"
)

type Event struct {
	Type EventType
	Data any
}

type OrderPayload struct {
	OrderID string `json:"orderId"`
}

type StockPayload struct {
	BookID   string `json:"bookId"`
	NewStock int64  `json:"newStock"`
}

func OrderCreated(orderID string) Event {
	return Event{Type: EventOrderCreated, Data: OrderPayload{OrderID: orderID}}
}

func OrderDeleted(orderID string) Event {
	return Event{Type: EventOrderDeleted, Data: OrderPayload{OrderID: orderID}}
}

func StockUpdated(bookID string, newStock int64) Event {
	return Event{Type: EventStockUpdate, Data: StockPayload{BookID: bookID, NewStock: newStock}}
}

func Heartbeat() Event {
	return Event{Type: EventHeartbeat, Data: heartbeatData}
}

// Name はクライアントに見えるイベント名。作成も削除も order_update。
func (e Event) Name() string {
	switch e.Type {
	case EventOrderCreated, EventOrderDeleted:
		return wireOrderUpdate
	default:
		return string(e.Type)
	}
}

// Payload はdata行に載せる中身
func (e Event) Payload() ([]byte, error) {
	if s, ok := e.Data.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(e.Data)
}
