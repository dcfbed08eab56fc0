package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel is a Telegram channel belonging to exactly one tenant.
type Channel struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     string    `json:"tenant_id" gorm:"type:uuid;index;not null"`
	Username     string    `json:"username" gorm:"type:varchar(255);index;not null"`
	SlotDuration int       `json:"slot_duration" gorm:"default:3600;not null"` // seconds
	PricePerSlot float64   `json:"price_per_slot" gorm:"type:numeric(12,2);default:1000;not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Slots  []Slot  `json:"slots,omitempty" gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	Orders []Order `json:"orders,omitempty" gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID primary key
func (c *Channel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
