package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MTokenSerialNumber is one allocated inventory token. SerialNumber is always
// stored uppercase; the unique index is the authoritative guard against
// duplicate allocation.
type MTokenSerialNumber struct {
	ID              string    `gorm:"type:char(36);primaryKey" json:"id"`
	SerialNumber    string    `gorm:"uniqueIndex;not null" json:"serialNumber"`
	PurchaseOrderID string    `gorm:"column:purchase_order_id;type:char(36);not null" json:"purchaseOrderId"`
	StoreID         string    `gorm:"column:store_id;type:char(36);not null" json:"storeId"`
	Store           *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	PurchaseDate    string    `gorm:"type:date" json:"purchaseDate"`
	IsUsed          bool      `gorm:"default:false" json:"isUsed"`
	UsedInLeadID    string    `gorm:"column:used_in_lead_id;type:char(36)" json:"usedInLeadId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (m *MTokenSerialNumber) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
