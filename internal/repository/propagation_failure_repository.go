package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type PropagationFailureFilter struct {
	OrderID string
	BookID  string
	Limit   int
	Offset  int
}

// 在庫反映の失敗記録（手動対応用）
type PropagationFailureRepository interface {
	Create(ctx context.Context, f model.PropagationFailure) error
	List(ctx context.Context, filter PropagationFailureFilter) ([]model.PropagationFailure, error)
}
