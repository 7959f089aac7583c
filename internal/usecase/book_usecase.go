package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore/internal/domain/model"
	"bookstore/internal/notification"
	repo "bookstore/internal/repository"
)

type EventPublisher interface {
	Publish(ev notification.Event)
}

// 在庫台帳（書籍と在庫数）
type BookUsecase struct {
	books       repo.BookRepository
	adjustments repo.StockAdjustmentRepository
	failures    repo.PropagationFailureRepository
	pub         EventPublisher
}

// DI
func NewBookUsecase(
	books repo.BookRepository,
	adjustments repo.StockAdjustmentRepository,
	failures repo.PropagationFailureRepository,
	pub EventPublisher,
) *BookUsecase {
	return &BookUsecase{
		books:       books,
		adjustments: adjustments,
		failures:    failures,
		pub:         pub,
	}
}

// /books_stock の形
type BookStockOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

func (u *BookUsecase) ListBooks(ctx context.Context) ([]model.Book, error) {
	books, err := u.books.List(ctx)
	if err != nil {
		return []model.Book{}, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

func (u *BookUsecase) GetBook(ctx context.Context, isbn string) (model.Book, error) {
	if strings.TrimSpace(isbn) == "" {
		return model.Book{}, NewInvalidArgument("bookId", "must not be blank")
	}

	b, err := u.books.FindByID(ctx, isbn)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Book{}, &BookNotFoundError{BookID: isbn}
	}
	if err != nil {
		return model.Book{}, fmt.Errorf("find book %s: %w", isbn, err)
	}
	return b, nil
}

func (u *BookUsecase) ListBookStocks(ctx context.Context) ([]BookStockOutput, error) {
	books, err := u.ListBooks(ctx)
	if err != nil {
		return []BookStockOutput{}, err
	}
	out := make([]BookStockOutput, 0, len(books))
	for _, b := range books {
		out = append(out, toBookStockOutput(b))
	}
	return out, nil
}

func (u *BookUsecase) GetBookStock(ctx context.Context, isbn string) (BookStockOutput, error) {
	b, err := u.GetBook(ctx, isbn)
	if err != nil {
		return BookStockOutput{}, err
	}
	return toBookStockOutput(b), nil
}

// UpdateBookStock はstrategyを適用して結果の在庫数を返す。
// SUBTRACTの結果が負になってもそのまま書く。
func (u *BookUsecase) UpdateBookStock(ctx context.Context, isbn string, qty int64, strategy model.StockUpdateStrategy) (int64, error) {
	if qty < 0 {
		return 0, NewInvalidArgument("quantity", "must be >= 0")
	}
	if !strategy.Valid() {
		return 0, NewInvalidArgument("strategy", "must be one of REPLACE, ADD, SUBTRACT")
	}

	stock, err := u.books.UpdateStock(ctx, isbn, qty, strategy)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, &BookNotFoundError{BookID: isbn}
	}
	if err != nil {
		return 0, fmt.Errorf("update stock %s: %w", isbn, err)
	}
	return stock, nil
}

// DecreaseBookStockIfEnough は在庫が足りるときだけ減らす
func (u *BookUsecase) DecreaseBookStockIfEnough(ctx context.Context, isbn string, qty int64) (int64, error) {
	if qty <= 0 {
		return 0, NewInvalidArgument("quantity", "must be > 0")
	}

	stock, ok, err := u.books.DecreaseStockIfEnough(ctx, isbn, qty)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, &BookNotFoundError{BookID: isbn}
	}
	if err != nil {
		return 0, fmt.Errorf("decrease stock %s: %w", isbn, err)
	}
	if !ok {
		return stock, &InsufficientStockError{BookID: isbn, Requested: qty, Available: stock}
	}
	return stock, nil
}

type AdjustStockInput struct {
	AdminUserID string
	BookID      string
	Quantity    int64
	Strategy    string
	Reason      string
}

type AdjustStockOutput struct {
	BookID        string `json:"bookId"`
	PreviousStock int64  `json:"previousStock"`
	NewStock      int64  `json:"newStock"`
}

// AdjustStock は管理者の手動調整。履歴を残してstock_updateを流す
func (u *BookUsecase) AdjustStock(ctx context.Context, in AdjustStockInput) (AdjustStockOutput, error) {
	invalid := &InvalidArgumentError{}
	strategy, ok := model.ParseStockUpdateStrategy(in.Strategy)
	if !ok {
		invalid.Add("strategy", "must be one of REPLACE, ADD, SUBTRACT")
	}
	if in.Quantity < 0 {
		invalid.Add("quantity", "must be >= 0")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		invalid.Add("reason", "required")
	}
	if len(invalid.Fields) > 0 {
		return AdjustStockOutput{}, invalid
	}

	//変更前の在庫（before）
	before, err := u.GetBook(ctx, in.BookID)
	if err != nil {
		return AdjustStockOutput{}, err
	}

	after, err := u.UpdateBookStock(ctx, in.BookID, in.Quantity, strategy)
	if err != nil {
		return AdjustStockOutput{}, err
	}

	//履歴を作成（差分）
	if err := u.adjustments.Create(ctx, model.StockAdjustment{
		BookID:      in.BookID,
		AdminUserID: in.AdminUserID,
		Strategy:    strategy,
		Quantity:    in.Quantity,
		Delta:       after - before.Stock,
		Reason:      reason,
	}); err != nil {
		return AdjustStockOutput{}, fmt.Errorf("record stock adjustment %s: %w", in.BookID, err)
	}

	u.pub.Publish(notification.StockUpdated(in.BookID, after))

	return AdjustStockOutput{
		BookID:        in.BookID,
		PreviousStock: before.Stock,
		NewStock:      after,
	}, nil
}

func (u *BookUsecase) ListAdjustments(ctx context.Context, isbn string, limit int) ([]model.StockAdjustment, error) {
	adjs, err := u.adjustments.ListByBookID(ctx, isbn, limit)
	if err != nil {
		return []model.StockAdjustment{}, fmt.Errorf("list stock adjustments %s: %w", isbn, err)
	}
	return adjs, nil
}

func (u *BookUsecase) ListPropagationFailures(ctx context.Context, f repo.PropagationFailureFilter) ([]model.PropagationFailure, error) {
	out, err := u.failures.List(ctx, f)
	if err != nil {
		return []model.PropagationFailure{}, fmt.Errorf("list propagation failures: %w", err)
	}
	if out == nil {
		out = []model.PropagationFailure{}
	}
	return out, nil
}

// 起動時の初期データ
func (u *BookUsecase) SeedBooks(ctx context.Context, books []model.Book) error {
	invalid := &InvalidArgumentError{}
	for i, b := range books {
		if strings.TrimSpace(b.ISBN) == "" {
			invalid.Add(fmt.Sprintf("books[%d].isbn", i), "must not be blank")
		}
		if b.Stock < 0 {
			invalid.Add(fmt.Sprintf("books[%d].stock", i), "must be >= 0")
		}
	}
	if len(invalid.Fields) > 0 {
		return invalid
	}
	if err := u.books.Seed(ctx, books); err != nil {
		return fmt.Errorf("seed books: %w", err)
	}
	return nil
}

func toBookStockOutput(b model.Book) BookStockOutput {
	return BookStockOutput{ID: b.ISBN, Name: b.Title, Quantity: b.Stock}
}
