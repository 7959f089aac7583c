package repository

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookGormRepository struct {
	db *gorm.DB
}

func NewBookGormRepository(db *gorm.DB) *BookGormRepository {
	return &BookGormRepository{db: db}
}

// ISBN順で全件
func (r *BookGormRepository) List(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := r.db.WithContext(ctx).Order("isbn asc").Find(&books).Error; err != nil {
		return []model.Book{}, err
	}
	return books, nil
}

func (r *BookGormRepository) FindByID(ctx context.Context, isbn string) (model.Book, error) {
	var b model.Book
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Book{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Book{}, err
	}
	return b, nil
}

// 1行のUPDATEで反映して、同じtxで結果を読む
func (r *BookGormRepository) UpdateStock(ctx context.Context, isbn string, qty int64, strategy model.StockUpdateStrategy) (int64, error) {
	var value interface{}
	switch strategy {
	case model.StockReplace:
		value = qty
	case model.StockAdd:
		value = gorm.Expr("stock + ?", qty)
	case model.StockSubtract:
		value = gorm.Expr("stock - ?", qty)
	default:
		return 0, fmt.Errorf("unknown stock update strategy %q", strategy)
	}

	var stock int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Book{}).
			Where("isbn = ?", isbn).
			Update("stock", value)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		var b model.Book
		if err := tx.Select("isbn", "stock").Where("isbn = ?", isbn).First(&b).Error; err != nil {
			return err
		}
		stock = b.Stock
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// 在庫が足りるときだけ減らす
func (r *BookGormRepository) DecreaseStockIfEnough(ctx context.Context, isbn string, qty int64) (int64, bool, error) {
	var (
		stock int64
		ok    bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Book{}).
			Where("isbn = ? AND stock >= ?", isbn, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		ok = res.RowsAffected > 0

		//足りなかったときも現在値を返す（存在しないならErrNotFound）
		var b model.Book
		err := tx.Select("isbn", "stock").Where("isbn = ?", isbn).First(&b).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}
		stock = b.Stock
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return stock, ok, nil
}

// 初期データ投入。既にあるISBNは触らない
func (r *BookGormRepository) Seed(ctx context.Context, books []model.Book) error {
	if len(books) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&books).Error
}
