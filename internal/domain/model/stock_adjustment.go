package model

import "time"

//管理者による在庫調整の履歴

type StockAdjustment struct {
	ID          int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	BookID      string              `gorm:"type:varchar(64);not null;index" json:"bookId"`
	AdminUserID string              `gorm:"type:varchar(64);not null;index" json:"adminUserId"`
	Strategy    StockUpdateStrategy `gorm:"type:varchar(20);not null" json:"strategy"`
	Quantity    int64               `gorm:"not null" json:"quantity"`
	Delta       int64               `gorm:"not null" json:"delta"`
	Reason      string              `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt   time.Time           `gorm:"not null;autoCreateTime" json:"createdAt"`
}
