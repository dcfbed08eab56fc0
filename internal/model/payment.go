package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is a provider transaction record for an order. Status is the
// provider-defined string, stored as-is.
type Payment struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   string    `json:"order_id" gorm:"type:uuid;index;not null"`
	Provider  string    `json:"provider" gorm:"type:varchar(32);not null"`
	InvoiceID string    `json:"invoice_id" gorm:"type:varchar(255);index;not null"`
	Amount    float64   `json:"amount" gorm:"type:numeric(12,2);not null"`
	Status    string    `json:"status" gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Order *Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}

// BeforeCreate assigns a UUID primary key
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
