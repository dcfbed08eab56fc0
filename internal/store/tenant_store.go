package store

import (
	"time"

	"github.com/denisok-ai/LytSlot/internal/model"
	"gorm.io/gorm"
)

// TenantStore is the repository for one tenant. Every method filters by the
// tenant the repository was constructed for: channels and api-keys carry the
// tenant id directly, slots and orders are reachable only through the
// tenant's channels, views only through the tenant's orders. A row belonging
// to another tenant behaves exactly like an absent row
// (gorm.ErrRecordNotFound).
type TenantStore struct {
	db       *gorm.DB
	tenantID string
}

// TenantID returns the tenant this repository is pinned to.
func (ts *TenantStore) TenantID() string {
	return ts.tenantID
}

// tenantChannelIDs is the subquery every transitive filter goes through.
func (ts *TenantStore) tenantChannelIDs() *gorm.DB {
	return ts.db.Model(&model.Channel{}).Select("id").Where("tenant_id = ?", ts.tenantID)
}

func (ts *TenantStore) tenantOrderIDs() *gorm.DB {
	return ts.db.Model(&model.Order{}).Select("id").Where("channel_id IN (?)", ts.tenantChannelIDs())
}

// --- Channels ---

func (ts *TenantStore) ListChannels() ([]model.Channel, error) {
	var channels []model.Channel
	err := ts.db.Where("tenant_id = ?", ts.tenantID).Order("created_at").Find(&channels).Error
	return channels, err
}

func (ts *TenantStore) GetChannel(id string) (*model.Channel, error) {
	var channel model.Channel
	err := ts.db.Where("id = ? AND tenant_id = ?", id, ts.tenantID).First(&channel).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// CreateChannel inserts a channel owned by this tenant. The tenant id is
// forced; a caller-supplied value is ignored.
func (ts *TenantStore) CreateChannel(channel *model.Channel) error {
	channel.TenantID = ts.tenantID
	return ts.db.Create(channel).Error
}

func (ts *TenantStore) SaveChannel(channel *model.Channel) error {
	if channel.TenantID != ts.tenantID {
		return gorm.ErrRecordNotFound
	}
	return ts.db.Save(channel).Error
}

// --- Slots ---

func (ts *TenantStore) ListSlots(channelID string, from, to *time.Time) ([]model.Slot, error) {
	q := ts.db.Where("channel_id = ?", channelID).
		Where("channel_id IN (?)", ts.tenantChannelIDs())
	if from != nil {
		q = q.Where("datetime >= ?", *from)
	}
	if to != nil {
		q = q.Where("datetime <= ?", *to)
	}
	var slots []model.Slot
	err := q.Order("datetime").Find(&slots).Error
	return slots, err
}

func (ts *TenantStore) GetSlot(id string) (*model.Slot, error) {
	var slot model.Slot
	err := ts.db.Where("id = ? AND channel_id IN (?)", id, ts.tenantChannelIDs()).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// CreateSlot inserts a slot after verifying the target channel belongs to
// this tenant.
func (ts *TenantStore) CreateSlot(slot *model.Slot) error {
	if _, err := ts.GetChannel(slot.ChannelID); err != nil {
		return err
	}
	if slot.Status == "" {
		slot.Status = model.SlotStatusFree
	}
	return ts.db.Create(slot).Error
}

func (ts *TenantStore) SaveSlot(slot *model.Slot) error {
	if _, err := ts.GetSlot(slot.ID); err != nil {
		return err
	}
	return ts.db.Save(slot).Error
}

// --- Orders ---

func (ts *TenantStore) ListOrders() ([]model.Order, error) {
	var orders []model.Order
	err := ts.db.Where("channel_id IN (?)", ts.tenantChannelIDs()).
		Order("created_at").Find(&orders).Error
	return orders, err
}

func (ts *TenantStore) GetOrder(id string) (*model.Order, error) {
	var order model.Order
	err := ts.db.Where("id = ? AND channel_id IN (?)", id, ts.tenantChannelIDs()).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder inserts an order after verifying both the channel and the slot
// are reachable under this tenant.
func (ts *TenantStore) CreateOrder(order *model.Order) error {
	if _, err := ts.GetChannel(order.ChannelID); err != nil {
		return err
	}
	if _, err := ts.GetSlot(order.SlotID); err != nil {
		return err
	}
	return ts.db.Create(order).Error
}

// UpdateOrderStatus overwrites the status field of a tenant-reachable
// order. No transition legality is enforced.
func (ts *TenantStore) UpdateOrderStatus(id, status string) error {
	res := ts.db.Model(&model.Order{}).
		Where("id = ? AND channel_id IN (?)", id, ts.tenantChannelIDs()).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (ts *TenantStore) SaveOrder(order *model.Order) error {
	if _, err := ts.GetOrder(order.ID); err != nil {
		return err
	}
	return ts.db.Save(order).Error
}

// --- Payments ---

func (ts *TenantStore) ListPayments(orderID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := ts.db.Where("order_id = ? AND order_id IN (?)", orderID, ts.tenantOrderIDs()).
		Order("created_at").Find(&payments).Error
	return payments, err
}

func (ts *TenantStore) CreatePayment(payment *model.Payment) error {
	if _, err := ts.GetOrder(payment.OrderID); err != nil {
		return err
	}
	return ts.db.Create(payment).Error
}

// --- Views ---

// CreateView appends an analytics event for an order of this tenant.
func (ts *TenantStore) CreateView(view *model.View) error {
	if _, err := ts.GetOrder(view.OrderID); err != nil {
		return err
	}
	return ts.db.Create(view).Error
}

// --- API keys ---

func (ts *TenantStore) ListAPIKeys() ([]model.APIKey, error) {
	var keys []model.APIKey
	err := ts.db.Where("tenant_id = ?", ts.tenantID).Order("created_at DESC").Find(&keys).Error
	return keys, err
}

func (ts *TenantStore) CreateAPIKey(key *model.APIKey) error {
	key.TenantID = ts.tenantID
	return ts.db.Create(key).Error
}

func (ts *TenantStore) DeleteAPIKey(id string) error {
	res := ts.db.Where("id = ? AND tenant_id = ?", id, ts.tenantID).Delete(&model.APIKey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
