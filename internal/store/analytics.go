package store

import (
	"sort"
	"time"

	"github.com/denisok-ai/LytSlot/internal/model"
)

// DayViews is one (day, count) aggregation row.
type DayViews struct {
	Date  string `json:"date"` // YYYY-MM-DD (UTC)
	Views int64  `json:"views"`
}

// Summary holds tenant-wide counters. RevenueTotal is a placeholder and is
// not computed from payments.
type Summary struct {
	ChannelsCount int64   `json:"channels_count"`
	OrdersCount   int64   `json:"orders_count"`
	ViewsTotal    int64   `json:"views_total"`
	RevenueTotal  float64 `json:"revenue_total"`
}

// ViewsByDay aggregates view events by calendar day (UTC) over [from, to],
// optionally restricted to one channel. Defaults are applied by the caller.
// Grouping happens in application code so the query stays portable across
// the postgres and sqlite backends.
func (ts *TenantStore) ViewsByDay(from, to time.Time, channelID string) ([]DayViews, error) {
	orderIDs := ts.tenantOrderIDs()
	if channelID != "" {
		orderIDs = ts.db.Model(&model.Order{}).Select("id").
			Where("channel_id = ?", channelID).
			Where("channel_id IN (?)", ts.tenantChannelIDs())
	}

	var views []model.View
	err := ts.db.Where("order_id IN (?)", orderIDs).
		Where("timestamp >= ? AND timestamp < ?", from, to.Add(24*time.Hour)).
		Find(&views).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, v := range views {
		counts[v.Timestamp.UTC().Format("2006-01-02")]++
	}

	out := make([]DayViews, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayViews{Date: day, Views: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// GetSummary returns tenant-wide counts of channels, orders and views.
func (ts *TenantStore) GetSummary() (*Summary, error) {
	var s Summary
	if err := ts.db.Model(&model.Channel{}).
		Where("tenant_id = ?", ts.tenantID).Count(&s.ChannelsCount).Error; err != nil {
		return nil, err
	}
	if err := ts.db.Model(&model.Order{}).
		Where("channel_id IN (?)", ts.tenantChannelIDs()).Count(&s.OrdersCount).Error; err != nil {
		return nil, err
	}
	if err := ts.db.Model(&model.View{}).
		Where("order_id IN (?)", ts.tenantOrderIDs()).Count(&s.ViewsTotal).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
