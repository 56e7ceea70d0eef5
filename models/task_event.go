package models

import "time"

const TaskTable = "crm_tasks"
const EventTable = "crm_events"

type TaskStatus string

const (
	TaskOpen TaskStatus = "open"
	TaskDone TaskStatus = "done"
)

type Task struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	StreamID string `gorm:"type:uuid;index;not null" json:"streamId"`

	Title      string     `gorm:"size:200;not null" json:"title"`
	Status     TaskStatus `gorm:"size:20;not null;default:'open'" json:"status"`
	AssigneeID *string    `gorm:"type:uuid;index" json:"assigneeId,omitempty"`
	DueAt      *time.Time `gorm:"index" json:"dueAt,omitempty"`
	DoneAt     *time.Time `json:"doneAt,omitempty"`
	Notes      string     `gorm:"size:2000" json:"notes,omitempty"`

	CreatedBy string    `gorm:"type:uuid" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Task) TableName() string { return TaskTable }

// Event is a calendar entry on the stream's calendar board.
type Event struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	StreamID string `gorm:"type:uuid;index;not null" json:"streamId"`

	Title    string    `gorm:"size:200;not null" json:"title"`
	Location string    `gorm:"size:200" json:"location,omitempty"`
	StartsAt time.Time `gorm:"index;not null" json:"startsAt"`
	EndsAt   time.Time `gorm:"not null" json:"endsAt"`
	AllDay   bool      `gorm:"not null;default:false" json:"allDay"`
	Notes    string    `gorm:"size:2000" json:"notes,omitempty"`

	CreatedBy string    `gorm:"type:uuid" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Event) TableName() string { return EventTable }
