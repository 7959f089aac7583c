package repository

import (
	"context"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type propagationFailureGormRepository struct {
	db *gorm.DB
}

func NewPropagationFailureGormRepository(db *gorm.DB) repo.PropagationFailureRepository {
	return &propagationFailureGormRepository{db: db}
}

func (r *propagationFailureGormRepository) Create(ctx context.Context, f model.PropagationFailure) error {
	if err := r.db.WithContext(ctx).Create(&f).Error; err != nil {
		return err
	}
	return nil
}

func (r *propagationFailureGormRepository) List(ctx context.Context, filter repo.PropagationFailureFilter) ([]model.PropagationFailure, error) {
	q := r.db.WithContext(ctx).Model(&model.PropagationFailure{})

	if filter.OrderID != "" {
		q = q.Where("order_id = ?", filter.OrderID)
	}
	if filter.BookID != "" {
		q = q.Where("book_id = ?", filter.BookID)
	}

	//新しい順
	q = q.Order("id DESC")

	// limit/offset
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	q = q.Limit(limit).Offset(filter.Offset)

	var out []model.PropagationFailure
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
