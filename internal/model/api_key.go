package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIKey is a tenant-scoped credential for programmatic access. Only the
// SHA-256 hash of the secret is stored; the raw value is returned once at
// creation time.
type APIKey struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"type:uuid;index;not null"`
	KeyHash   string    `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name      *string   `json:"name" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// BeforeCreate assigns a UUID primary key
func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}
