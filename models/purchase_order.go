package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrder struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	ProductName  string    `gorm:"default:MToken" json:"productName"`
	StoreID      string    `gorm:"column:store_id;type:char(36);not null" json:"storeId"`
	Store        *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Amount       float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	PurchaseDate string    `gorm:"type:date" json:"purchaseDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
