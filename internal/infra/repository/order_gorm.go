package repository

import (
	"context"
	"errors"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

// 注文と明細を保存してIDを採番する
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	lines := make([]model.OrderLine, len(order.Lines))
	for i, l := range order.Lines {
		l.OrderID = order.ID
		l.Position = i
		lines[i] = l
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//明細はassociationに任せない（重複を握りつぶされるため）
		if err := tx.Omit("Lines").Create(&order).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.Order{}, repo.ErrDuplicate
	}
	if err != nil {
		return model.Order{}, err
	}

	order.Lines = lines
	return order, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		Where("id = ?", orderID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 古い順
func (r *OrderGormRepository) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		Order("created_at asc").
		Order("id asc").
		Find(&orders).Error
	if err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderLine{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", orderID).Delete(&model.Order{})
		if res.Error != nil {
			return res.Error
		}
		//先に別の削除が通っていた
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
