package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

// 書籍在庫（Stock Ledger）の永続化の約束。
// 行単位の書き込みの原子性だけに頼る。ロックやバージョンは持たない。
type BookRepository interface {
	List(ctx context.Context) ([]model.Book, error)
	FindByID(ctx context.Context, isbn string) (model.Book, error)

	// strategyを適用して結果の在庫を返す
	UpdateStock(ctx context.Context, isbn string, qty int64, strategy model.StockUpdateStrategy) (int64, error)

	// 在庫が足りるときだけ減算（足りないなら false）
	DecreaseStockIfEnough(ctx context.Context, isbn string, qty int64) (int64, bool, error)

	// 既にあるISBNはそのまま
	Seed(ctx context.Context, books []model.Book) error
}
