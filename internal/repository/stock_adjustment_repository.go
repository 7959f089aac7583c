package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

// 在庫調整履歴の保存・一覧
type StockAdjustmentRepository interface {
	Create(ctx context.Context, adj model.StockAdjustment) error
	ListByBookID(ctx context.Context, isbn string, limit int) ([]model.StockAdjustment, error)
}
