package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses. Any status may follow any other via the update endpoint;
// legality of a transition is not enforced here.
const (
	OrderStatusDraft     = "draft"
	OrderStatusPaid      = "paid"
	OrderStatusMarked    = "marked"
	OrderStatusScheduled = "scheduled"
	OrderStatusPublished = "published"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists every known order status.
var OrderStatuses = []string{
	OrderStatusDraft,
	OrderStatusPaid,
	OrderStatusMarked,
	OrderStatusScheduled,
	OrderStatusPublished,
	OrderStatusCancelled,
}

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is an advertiser's booking of one slot on one channel.
type Order struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	AdvertiserID int64     `json:"advertiser_id" gorm:"index;not null"`
	ChannelID    string    `json:"channel_id" gorm:"type:uuid;index;not null"`
	SlotID       string    `json:"slot_id" gorm:"type:uuid;index;not null"`
	Content      JSONMap   `json:"content" gorm:"type:jsonb;not null"`
	Erid         *string   `json:"erid" gorm:"type:varchar(255)"`
	Status       string    `json:"status" gorm:"type:varchar(16);default:draft;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Channel  *Channel  `json:"channel,omitempty" gorm:"foreignKey:ChannelID"`
	Slot     *Slot     `json:"slot,omitempty" gorm:"foreignKey:SlotID"`
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a UUID primary key
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
