package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slot statuses
const (
	SlotStatusFree     = "free"
	SlotStatusReserved = "reserved"
	SlotStatusPaid     = "paid"
	SlotStatusBlocked  = "blocked"
)

// Slot is a bookable time unit on a channel.
type Slot struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	ChannelID string    `json:"channel_id" gorm:"type:uuid;index;not null"`
	StartsAt  time.Time `json:"datetime" gorm:"column:datetime;index;not null"`
	Status    string    `json:"status" gorm:"type:varchar(16);default:free;not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Channel *Channel `json:"channel,omitempty" gorm:"foreignKey:ChannelID"`
}

// BeforeCreate assigns a UUID primary key
func (s *Slot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
