package models

import "time"

const ProspectTable = "crm_prospects"

type ProspectStatus string

const (
	ProspectNew       ProspectStatus = "new"
	ProspectContacted ProspectStatus = "contacted"
	ProspectReplied   ProspectStatus = "replied"
	ProspectConverted ProspectStatus = "converted"
	ProspectDead      ProspectStatus = "dead"
)

func (s ProspectStatus) Valid() bool {
	switch s {
	case ProspectNew, ProspectContacted, ProspectReplied, ProspectConverted, ProspectDead:
		return true
	}
	return false
}

// Prospect lives on the outreach board until converted into a customer.
type Prospect struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	StreamID string `gorm:"type:uuid;index;not null" json:"streamId"`

	Name    string         `gorm:"size:200;not null" json:"name"`
	Company string         `gorm:"size:200" json:"company,omitempty"`
	Email   string         `gorm:"size:255" json:"email,omitempty"`
	Status  ProspectStatus `gorm:"size:20;not null;default:'new'" json:"status"`
	Notes   string         `gorm:"size:2000" json:"notes,omitempty"`

	LastContactedAt *time.Time `json:"lastContactedAt,omitempty"`

	CreatedBy string    `gorm:"type:uuid" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Prospect) TableName() string { return ProspectTable }
