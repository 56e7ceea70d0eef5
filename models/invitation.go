package models

import "time"

const InvitationTable = "crm_stream_invitations"

type InviteStatus string

const (
	InvitePending   InviteStatus = "pending"
	InviteAccepted  InviteStatus = "accepted"
	InviteExpired   InviteStatus = "expired"
	InviteCancelled InviteStatus = "cancelled"
)

// Resolved reports whether the status is terminal. Only pending invitations
// can still be accepted or cancelled.
func (s InviteStatus) Resolved() bool { return s != InvitePending }

// StreamInvitation is a single-use, time-bound offer of a membership.
// Acceptance is a one-way pending -> accepted transition guarded in the
// repo by a conditional update, so concurrent redemptions cannot both win.
type StreamInvitation struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	StreamID string `gorm:"type:uuid;index;not null" json:"streamId"`
	Email    string `gorm:"size:255;index;not null" json:"email"`
	Role     Role   `gorm:"size:20;not null;default:'member'" json:"role"`

	// Permissions snapshot applied to the membership on acceptance.
	Perms BoardPerms `gorm:"serializer:json" json:"perms,omitempty"`

	Token      string       `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Status     InviteStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	InvitedBy  string       `gorm:"type:uuid;not null" json:"invitedBy"`
	ExpiresAt  time.Time    `gorm:"index;not null" json:"expiresAt"`
	AcceptedAt *time.Time   `json:"acceptedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (StreamInvitation) TableName() string { return InvitationTable }

// Acceptable reports whether the invitation can still be redeemed at t.
func (i *StreamInvitation) Acceptable(t time.Time) bool {
	return i.Status == InvitePending && i.AcceptedAt == nil && t.Before(i.ExpiresAt)
}
