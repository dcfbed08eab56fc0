package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents a channel owner account. Every tenant-owned row in the
// system is reachable only through its tenant id.
type Tenant struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	TelegramID   int64     `json:"telegram_id" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	RevenueShare float64   `json:"revenue_share" gorm:"type:numeric(5,4);default:0.2;not null"`
	Meta         JSONMap   `json:"meta,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Channels []Channel `json:"channels,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	APIKeys  []APIKey  `json:"api_keys,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID primary key
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
