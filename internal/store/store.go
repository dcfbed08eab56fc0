package store

import (
	"github.com/denisok-ai/LytSlot/internal/model"
	"gorm.io/gorm"
)

// Store wraps the database handle. All tenant-owned data is reached through
// ForTenant, which returns a repository that filters every query by tenant.
// Admin returns the unfiltered repository and must only be reachable behind
// the admin guard.
type Store struct {
	db *gorm.DB
}

// New creates a Store around an initialized database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the raw handle for readiness checks and migrations.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ForTenant returns a repository whose every query is filtered to rows
// owned by the given tenant. The filter cannot be forgotten per-query: it
// is applied inside each repository method.
func (s *Store) ForTenant(tenantID string) *TenantStore {
	return &TenantStore{db: s.db, tenantID: tenantID}
}

// Admin returns the repository without tenant filtering.
func (s *Store) Admin() *AdminStore {
	return &AdminStore{db: s.db}
}

// FindTenantByTelegramID looks a tenant up by its telegram id. Not tenant
// scoped: it runs before any token exists.
func (s *Store) FindTenantByTelegramID(telegramID int64) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := s.db.Where("telegram_id = ?", telegramID).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindOrCreateTenant returns the tenant for a telegram id, creating it with
// the given display name on first login.
func (s *Store) FindOrCreateTenant(telegramID int64, name string) (*model.Tenant, error) {
	tenant, err := s.FindTenantByTelegramID(telegramID)
	if err == nil {
		return tenant, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	tenant = &model.Tenant{TelegramID: telegramID, Name: name}
	if err := s.db.Create(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// ResolveOrderForJob loads an order with its channel and owning tenant,
// without tenant filtering. Background jobs run outside any request and use
// this to re-establish their own tenant context from the order's ancestry.
func (s *Store) ResolveOrderForJob(orderID string) (*model.Order, error) {
	var order model.Order
	err := s.db.Preload("Channel").Preload("Channel.Tenant").
		Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
