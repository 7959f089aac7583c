package propagation

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull = errors.New("propagation queue full")
	ErrStopped   = errors.New("propagator stopped")
)

// Failure は1冊分の反映失敗。注文の呼び出し元には返らない。
type Failure struct {
	OrderID  string
	Kind     Kind
	BookID   string
	Strategy model.StockUpdateStrategy
	Quantity int64
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("propagate %s order=%s book=%s %s %d: %v",
		f.Kind, f.OrderID, f.BookID, f.Strategy, f.Quantity, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

type FailureHandler interface {
	HandleFailure(ctx context.Context, f *Failure)
}

type FailureHandlerFunc func(ctx context.Context, f *Failure)

func (fn FailureHandlerFunc) HandleFailure(ctx context.Context, f *Failure) { fn(ctx, f) }

// LogFailures はログに残すだけ
func LogFailures(logger zerolog.Logger) FailureHandler {
	return FailureHandlerFunc(func(_ context.Context, f *Failure) {
		logger.Error().
			Err(f.Err).
			Str("order_id", f.OrderID).
			Str("kind", string(f.Kind)).
			Str("book_id", f.BookID).
			Str("strategy", string(f.Strategy)).
			Int64("quantity", f.Quantity).
			Msg("stock propagation failed")
	})
}

// StoreFailures は手動対応用にDBへ残す
func StoreFailures(failures repo.PropagationFailureRepository, logger zerolog.Logger) FailureHandler {
	return FailureHandlerFunc(func(ctx context.Context, f *Failure) {
		err := failures.Create(ctx, model.PropagationFailure{
			OrderID:  f.OrderID,
			JobKind:  string(f.Kind),
			BookID:   f.BookID,
			Strategy: f.Strategy,
			Quantity: f.Quantity,
			Reason:   f.Err.Error(),
		})
		if err != nil {
			logger.Error().Err(err).Str("order_id", f.OrderID).Str("book_id", f.BookID).Msg("store propagation failure")
		}
	})
}

// NotifyFailures はchに流す。受け手が詰まっていたら捨てる
func NotifyFailures(ch chan<- *Failure) FailureHandler {
	return FailureHandlerFunc(func(_ context.Context, f *Failure) {
		select {
		case ch <- f:
		default:
		}
	})
}
