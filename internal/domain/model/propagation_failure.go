package model

import "time"

// 非同期の在庫反映が失敗した記録。
// 自動リトライはしないので、ここを見て手動で直す。
type PropagationFailure struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//元になった注文
	OrderID string `gorm:"type:varchar(36);not null;index" json:"orderId"`

	//reserve / restock
	JobKind string `gorm:"type:varchar(20);not null" json:"jobKind"`

	BookID string `gorm:"type:varchar(64);not null;index" json:"bookId"`

	Strategy StockUpdateStrategy `gorm:"type:varchar(20);not null" json:"strategy"`
	Quantity int64               `gorm:"not null" json:"quantity"`
	Reason   string              `gorm:"type:text;not null" json:"reason"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
