package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore/internal/domain/model"
	"bookstore/internal/notification"
	"bookstore/internal/propagation"
	repo "bookstore/internal/repository"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("bookstore/usecase")

// 在庫反映は非同期（fire-and-forget）
type StockPropagator interface {
	Submit(job propagation.Job)
}

type OrderMetrics interface {
	OrderCreated()
	OrderDeleted()
}

type OrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	propagator StockPropagator
	pub        EventPublisher
	metrics    OrderMetrics
	logger     zerolog.Logger
}

// DI（metricsはnilでよい）
func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	propagator StockPropagator,
	pub EventPublisher,
	metrics OrderMetrics,
	logger zerolog.Logger,
) *OrderUsecase {
	if metrics == nil {
		metrics = noopOrderMetrics{}
	}
	return &OrderUsecase{
		tx:         tx,
		orders:     orders,
		propagator: propagator,
		pub:        pub,
		metrics:    metrics,
		logger:     logger,
	}
}

type OrderLineInput struct {
	BookID   string
	Quantity int64
}

type CreateOrderInput struct {
	Lines []OrderLineInput
}

type OrderLineOutput struct {
	BookID   string `json:"bookId"`
	Quantity int64  `json:"quantity"`
}

type OrderOutput struct {
	ID    string            `json:"id"`
	Books []OrderLineOutput `json:"books"`
}

// CreateOrder は在庫を確認して注文を保存する。
// 在庫の反映は保存後に非同期で行う（ここでは書かない）。
func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (OrderOutput, error) {
	ctx, span := tracer.Start(ctx, "usecase.CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.Int("order.lines", len(in.Lines)))

	//在庫を見る前に全行チェック
	if err := validateLines(in.Lines); err != nil {
		span.SetStatus(codes.Error, "invalid argument")
		return OrderOutput{}, err
	}

	var (
		created model.Order
		changes []propagation.Change
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		seen := make(map[string]struct{}, len(in.Lines))
		lines := make([]model.OrderLine, 0, len(in.Lines))
		changes = make([]propagation.Change, 0, len(in.Lines))

		//入力順に見る。最初のエラーで止める
		for _, l := range in.Lines {
			b, err := r.Books().FindByID(ctx, l.BookID)
			if errors.Is(err, repo.ErrNotFound) {
				return &BookNotFoundError{BookID: l.BookID}
			}
			if err != nil {
				return fmt.Errorf("find book %s: %w", l.BookID, err)
			}

			if _, dup := seen[l.BookID]; dup {
				return &DuplicateBookError{BookID: l.BookID}
			}
			seen[l.BookID] = struct{}{}

			if l.Quantity > b.Stock {
				return &InsufficientStockError{BookID: l.BookID, Requested: l.Quantity, Available: b.Stock}
			}

			lines = append(lines, model.OrderLine{BookID: l.BookID, Quantity: l.Quantity})
			changes = append(changes, propagation.Change{
				BookID:   l.BookID,
				Quantity: l.Quantity,
				Target:   b.Stock - l.Quantity,
			})
		}

		o, err := r.Orders().Create(ctx, model.Order{Lines: lines})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		created = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order failed")
		return OrderOutput{}, err
	}
	span.SetAttributes(attribute.String("order.id", created.ID))

	//order_update を先に流してから在庫反映を投げる
	u.metrics.OrderCreated()
	u.pub.Publish(notification.OrderCreated(created.ID))
	u.propagator.Submit(propagation.ReserveJob(created.ID, changes))

	u.logger.Info().Str("order_id", created.ID).Int("lines", len(created.Lines)).Msg("order created")
	return toOrderOutput(created), nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID string) (OrderOutput, error) {
	if strings.TrimSpace(orderID) == "" {
		return OrderOutput{}, &OrderNotFoundError{OrderID: orderID}
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, &OrderNotFoundError{OrderID: orderID}
	}
	if err != nil {
		return OrderOutput{}, fmt.Errorf("find order %s: %w", orderID, err)
	}
	return toOrderOutput(o), nil
}

func (u *OrderUsecase) ListOrders(ctx context.Context) ([]OrderOutput, error) {
	orders, err := u.orders.List(ctx)
	if err != nil {
		return []OrderOutput{}, fmt.Errorf("list orders: %w", err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

// DeleteOrder は注文を消して在庫を戻す。無ければ何もしない。
func (u *OrderUsecase) DeleteOrder(ctx context.Context, orderID string) error {
	//読んで消すまでを同じTxで。消せた呼び出しだけが在庫を戻す
	var o model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		found, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			return err
		}
		o = found
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete order %s: %w", orderID, err)
	}

	//在庫戻し
	changes := make([]propagation.Change, 0, len(o.Lines))
	for _, l := range o.Lines {
		changes = append(changes, propagation.Change{BookID: l.BookID, Quantity: l.Quantity})
	}

	u.metrics.OrderDeleted()
	u.pub.Publish(notification.OrderDeleted(orderID))
	u.propagator.Submit(propagation.RestockJob(orderID, changes))

	u.logger.Info().Str("order_id", orderID).Msg("order deleted")
	return nil
}

func validateLines(lines []OrderLineInput) error {
	invalid := &InvalidArgumentError{}
	for i, l := range lines {
		if strings.TrimSpace(l.BookID) == "" {
			invalid.Add(fmt.Sprintf("books[%d].bookId", i), "must not be blank")
		}
		if l.Quantity <= 0 {
			invalid.Add(fmt.Sprintf("books[%d].quantity", i), "must be > 0")
		}
	}
	if len(invalid.Fields) > 0 {
		return invalid
	}
	return nil
}

func toOrderOutput(o model.Order) OrderOutput {
	books := make([]OrderLineOutput, 0, len(o.Lines))
	for _, l := range o.Lines {
		books = append(books, OrderLineOutput{BookID: l.BookID, Quantity: l.Quantity})
	}
	return OrderOutput{ID: o.ID, Books: books}
}

type noopOrderMetrics struct{}

func (noopOrderMetrics) OrderCreated() {}
func (noopOrderMetrics) OrderDeleted() {}
