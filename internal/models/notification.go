package models

import (
	"time"
)

// Notification is a fan-out record consumed externally by a push
// delivery mechanism. The core only writes and lists them.
type Notification struct {
	BaseModel
	RecipientID string     `gorm:"size:36;index;not null" json:"recipientId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Message     string     `gorm:"type:text" json:"message"`
	Severity    Severity   `gorm:"size:10;default:'low'" json:"severity"`
	Read        bool       `gorm:"column:is_read;default:false;index" json:"read"`
	ReadAt      *time.Time `json:"readAt,omitempty"`

	// Relations
	Recipient User `gorm:"foreignKey:RecipientID" json:"-"`
}
