package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type OrderRepository interface {
	// 明細ごと保存する
	Create(ctx context.Context, order model.Order) (model.Order, error)
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	// 消した行が無ければ ErrNotFound
	Delete(ctx context.Context, orderID string) error
}
