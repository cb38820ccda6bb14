package models

import (
	"time"
)

// InvitationType mirrors the care-team slot the invitation fills.
type InvitationType string

const (
	InvitationTypeCaretaker InvitationType = "caretaker"
	InvitationTypeDoctor    InvitationType = "doctor"
)

// InvitationStatus only moves forward; expired pending invitations are
// deleted by the daily sweep rather than transitioned.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// Invitation asks a provider (by email) to join a patient's care team.
type Invitation struct {
	BaseModel
	SenderID       string           `gorm:"size:36;index;not null" json:"senderId"`
	RecipientEmail string           `gorm:"size:255;index;not null" json:"recipientEmail"`
	Type           InvitationType   `gorm:"size:20;not null" json:"type"`
	Status         InvitationStatus `gorm:"size:20;default:'pending'" json:"status"`
	Message        string           `gorm:"type:text" json:"message"`
	ExpiresAt      time.Time        `gorm:"index" json:"expiresAt"`

	// Relations
	Sender User `gorm:"foreignKey:SenderID" json:"-"`
}

// Expired reports whether the invitation is past its expiry at the
// given instant.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
