package repository

import (
	"context"

	"bookstore/internal/domain/model"

	"gorm.io/gorm"
)

type StockAdjustmentGormRepository struct {
	db *gorm.DB
}

func NewStockAdjustmentGormRepository(db *gorm.DB) *StockAdjustmentGormRepository {
	return &StockAdjustmentGormRepository{db: db}
}

// 調整履歴作成
func (r *StockAdjustmentGormRepository) Create(ctx context.Context, adj model.StockAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}

// 新しい順
func (r *StockAdjustmentGormRepository) ListByBookID(ctx context.Context, isbn string, limit int) ([]model.StockAdjustment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var adjs []model.StockAdjustment
	err := r.db.WithContext(ctx).
		Where("book_id = ?", isbn).
		Order("id desc").
		Limit(limit).
		Find(&adjs).Error
	if err != nil {
		return []model.StockAdjustment{}, err
	}
	return adjs, nil
}
