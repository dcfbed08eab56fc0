package store

import (
	"github.com/denisok-ai/LytSlot/internal/model"
	"gorm.io/gorm"
)

// AdminStore reads across all tenants. It is constructed only by handlers
// behind the admin guard; nothing else may hold one.
type AdminStore struct {
	db *gorm.DB
}

// ListChannels returns every channel of every tenant.
func (as *AdminStore) ListChannels() ([]model.Channel, error) {
	var channels []model.Channel
	err := as.db.Order("created_at").Find(&channels).Error
	return channels, err
}

// TenantRevenue is one per-tenant revenue row for the admin report.
type TenantRevenue struct {
	TenantID string  `json:"tenant_id"`
	Revenue  float64 `json:"revenue"`
}

// Revenue is a placeholder report: payments are not aggregated yet.
func (as *AdminStore) Revenue() (float64, []TenantRevenue, error) {
	return 0, []TenantRevenue{}, nil
}
