package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// View is an immutable analytics event recorded when an order is published.
// Append-only: there is no update or delete path.
type View struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   string    `json:"order_id" gorm:"type:uuid;index;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"index;not null"`
}

// BeforeCreate assigns a UUID primary key
func (v *View) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
