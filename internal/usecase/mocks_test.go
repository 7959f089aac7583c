package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"bookstore/internal/domain/model"
	"bookstore/internal/notification"
	"bookstore/internal/propagation"
	repo "bookstore/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders repo.OrderRepository
	books  repo.BookRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository { return r.orders }
func (r *TxReposMock) Books() repo.BookRepository   { return r.books }

type BookRepoMock struct{ mock.Mock }

func (m *BookRepoMock) List(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]model.Book)
	return books, args.Error(1)
}

func (m *BookRepoMock) FindByID(ctx context.Context, isbn string) (model.Book, error) {
	args := m.Called(ctx, isbn)
	b, _ := args.Get(0).(model.Book)
	return b, args.Error(1)
}

func (m *BookRepoMock) UpdateStock(ctx context.Context, isbn string, qty int64, strategy model.StockUpdateStrategy) (int64, error) {
	args := m.Called(ctx, isbn, qty, strategy)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookRepoMock) DecreaseStockIfEnough(ctx context.Context, isbn string, qty int64) (int64, bool, error) {
	args := m.Called(ctx, isbn, qty)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *BookRepoMock) Seed(ctx context.Context, books []model.Book) error {
	args := m.Called(ctx, books)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, o model.Order) (model.Order, error) {
	args := m.Called(ctx, o)
	created, _ := args.Get(0).(model.Order)
	return created, args.Error(1)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type AdjustmentRepoMock struct{ mock.Mock }

func (m *AdjustmentRepoMock) Create(ctx context.Context, adj model.StockAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

func (m *AdjustmentRepoMock) ListByBookID(ctx context.Context, isbn string, limit int) ([]model.StockAdjustment, error) {
	args := m.Called(ctx, isbn, limit)
	adjs, _ := args.Get(0).([]model.StockAdjustment)
	return adjs, args.Error(1)
}

type FailureRepoMock struct{ mock.Mock }

func (m *FailureRepoMock) Create(ctx context.Context, f model.PropagationFailure) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *FailureRepoMock) List(ctx context.Context, filter repo.PropagationFailureFilter) ([]model.PropagationFailure, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]model.PropagationFailure)
	return out, args.Error(1)
}

type PropagatorMock struct{ mock.Mock }

func (m *PropagatorMock) Submit(job propagation.Job) {
	m.Called(job)
}

// 呼ばれた順番を残す
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type recordingPublisher struct {
	log    *callLog
	mu     sync.Mutex
	events []notification.Event
}

func (p *recordingPublisher) Publish(ev notification.Event) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	if p.log != nil {
		p.log.add("publish:" + string(ev.Type))
	}
}

func (p *recordingPublisher) Events() []notification.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notification.Event(nil), p.events...)
}

func assertErrContains(t *testing.T, err error, substr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), substr), "error=%q want contains %q", err.Error(), substr)
	}
}
