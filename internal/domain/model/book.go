package model

import (
	"strings"
	"time"
)

// 在庫の更新方法
type StockUpdateStrategy string

const (
	//現在値を置き換える
	StockReplace StockUpdateStrategy = "REPLACE"
	//現在値に足す
	StockAdd StockUpdateStrategy = "ADD"
	//現在値から引く
	StockSubtract StockUpdateStrategy = "SUBTRACT"
)

// ParseStockUpdateStrategy は大文字小文字を区別しない。
func ParseStockUpdateStrategy(s string) (StockUpdateStrategy, bool) {
	st := StockUpdateStrategy(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", false
	}
	return st, true
}

func (s StockUpdateStrategy) Valid() bool {
	switch s {
	case StockReplace, StockAdd, StockSubtract:
		return true
	}
	return false
}

// Apply は現在値にstrategyを適用した結果を返す。
func (s StockUpdateStrategy) Apply(current int64, qty int64) int64 {
	switch s {
	case StockAdd:
		return current + qty
	case StockSubtract:
		return current - qty
	default:
		return qty
	}
}

// 書籍と在庫（ISBNがID）
type Book struct {
	ISBN        string    `gorm:"primaryKey;type:varchar(64)" json:"isbn"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Author      string    `gorm:"type:varchar(255);not null;default:''" json:"author"`
	PublishYear int       `gorm:"not null;default:0" json:"publishYear"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	CoverURL    string    `gorm:"type:text;not null;default:''" json:"coverUrl"`
	Stock       int64     `gorm:"not null" json:"stock"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}
