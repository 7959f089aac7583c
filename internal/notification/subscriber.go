package notification

import "sync"

type CloseReason int

const (
	NotClosed CloseReason = iota
	ClosedByCompletion
	ClosedByTimeout
	ClosedBySendFailure
)

func (r CloseReason) String() string {
	switch r {
	case ClosedByCompletion:
		return "completion"
	case ClosedByTimeout:
		return "timeout"
	case ClosedBySendFailure:
		return "send-failure"
	default:
		return "open"
	}
}

// Subscriber は1本の購読。閉じたら戻らない。
// eventsはcloseしない（Publishと競合するため）。Done()で終わりを見る。
type Subscriber struct {
	id     string
	events chan Event
	done   chan struct{}

	once   sync.Once
	mu     sync.Mutex
	reason CloseReason
}

func newSubscriber(id string, buffer int) *Subscriber {
	return &Subscriber{
		id:     id,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

func (s *Subscriber) ID() string { return s.id }

func (s *Subscriber) Events() <-chan Event { return s.events }

func (s *Subscriber) Done() <-chan struct{} { return s.done }

func (s *Subscriber) Reason() CloseReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *Subscriber) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// 最初の理由だけ残る
func (s *Subscriber) close(reason CloseReason) bool {
	closed := false
	s.once.Do(func() {
		s.mu.Lock()
		s.reason = reason
		s.mu.Unlock()
		close(s.done)
		closed = true
	})
	return closed
}

// 非ブロッキング送信。バッファが埋まっていればfalse
func (s *Subscriber) offer(ev Event) bool {
	if s.Closed() {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}
