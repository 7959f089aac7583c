package model

import "time"

type Order struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	// 明細は注文が所有する（明細から注文への参照は持たない）
	Lines     []OrderLine `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE" json:"books"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime;index" json:"-"`
}

// BookIDs は明細の順番どおりに返す。
func (o Order) BookIDs() []string {
	ids := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		ids = append(ids, l.BookID)
	}
	return ids
}
