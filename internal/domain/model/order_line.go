package model

// 注文明細。(order_id, book_id)で一意なので同じ本は1行だけ。
type OrderLine struct {
	OrderID  string `gorm:"primaryKey;type:varchar(36)" json:"-"`
	BookID   string `gorm:"primaryKey;type:varchar(64)" json:"bookId"`
	Position int    `gorm:"not null" json:"-"`
	Quantity int64  `gorm:"not null" json:"quantity"`
}
