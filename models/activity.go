package models

import "time"

// ActivityLog records membership-affecting actions on a stream for auditing:
// invites issued/cancelled, members joined/removed, role changes, deletion.
type ActivityLog struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	StreamID   string    `gorm:"type:uuid;index;not null" json:"streamId"`
	Action     string    `gorm:"size:40;not null" json:"action"`
	ActorID    string    `gorm:"type:uuid" json:"actorId"`
	ActorEmail string    `gorm:"size:255" json:"actorEmail"`
	Detail     *string   `gorm:"size:500" json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ActivityLog) TableName() string { return "crm_activity_log" }
