package models

import "time"

const DealTable = "crm_deals"

type DealStage string

const (
	StageLead       DealStage = "lead"
	StageQualified  DealStage = "qualified"
	StageProposal   DealStage = "proposal"
	StageNegotiable DealStage = "negotiation"
	StageWon        DealStage = "won"
	StageLost       DealStage = "lost"
)

func (s DealStage) Valid() bool {
	switch s {
	case StageLead, StageQualified, StageProposal, StageNegotiable, StageWon, StageLost:
		return true
	}
	return false
}

type Deal struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	StreamID string `gorm:"type:uuid;index;not null" json:"streamId"`

	Title      string     `gorm:"size:200;not null" json:"title"`
	CustomerID *string    `gorm:"type:uuid;index" json:"customerId,omitempty"`
	Stage      DealStage  `gorm:"size:20;not null;default:'lead'" json:"stage"`
	ValueCents int64      `gorm:"not null;default:0" json:"valueCents"`
	Currency   string     `gorm:"size:3;not null;default:'USD'" json:"currency"`
	CloseDate  *time.Time `json:"closeDate,omitempty"`
	Notes      string     `gorm:"size:2000" json:"notes,omitempty"`

	CreatedBy string    `gorm:"type:uuid" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Deal) TableName() string { return DealTable }
