package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	LeadID    string    `gorm:"column:lead_id;type:char(36);index" json:"lead_id"`
	UserID    string    `gorm:"column:user_id;type:char(36);index" json:"user_id"`
	IsViewed  bool      `gorm:"default:false" json:"is_viewed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
