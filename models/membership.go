package models

import "time"

const MembershipTable = "crm_stream_memberships"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// CanInvite reports whether the role may issue, cancel, or list invitations
// and manage other memberships.
func (r Role) CanInvite() bool { return r == RoleOwner || r == RoleAdmin }

// Board names the functional areas permissions apply to.
type Board string

const (
	BoardOutreach  Board = "outreach"
	BoardDeals     Board = "deals"
	BoardCustomers Board = "customers"
	BoardTasks     Board = "tasks"
	BoardCalendar  Board = "calendar"
)

var AllBoards = []Board{BoardOutreach, BoardDeals, BoardCustomers, BoardTasks, BoardCalendar}

// PermLevel is ordered: none < view < edit. Comparisons rely on the ordering.
type PermLevel int

const (
	PermNone PermLevel = iota
	PermView
	PermEdit
)

func (p PermLevel) String() string {
	switch p {
	case PermView:
		return "view"
	case PermEdit:
		return "edit"
	default:
		return "none"
	}
}

func ParsePermLevel(s string) (PermLevel, bool) {
	switch s {
	case "none":
		return PermNone, true
	case "view":
		return PermView, true
	case "edit":
		return PermEdit, true
	}
	return PermNone, false
}

// DefaultLevel is the role-derived fallback when a membership carries no
// explicit override for a board.
func (r Role) DefaultLevel(Board) PermLevel {
	switch r {
	case RoleOwner, RoleAdmin:
		return PermEdit
	case RoleMember:
		return PermEdit
	case RoleViewer:
		return PermView
	}
	return PermNone
}

// BoardPerms holds per-board overrides, keyed by board name. Stored as a
// JSON column; levels use the string form so rows stay readable in psql.
type BoardPerms map[Board]string

// StreamMembership links a user to a stream. One row per (stream, user)
// pair, enforced by a unique index.
type StreamMembership struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	StreamID string `gorm:"type:uuid;uniqueIndex:idx_stream_user;not null" json:"streamId"`
	UserID   string `gorm:"type:uuid;uniqueIndex:idx_stream_user;index;not null" json:"userId"`
	Role     Role   `gorm:"size:20;not null;default:'member'" json:"role"`

	Perms BoardPerms `gorm:"serializer:json" json:"perms,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (StreamMembership) TableName() string { return MembershipTable }

// EffectiveLevel resolves the member's level on a board: explicit override
// first, role default otherwise.
func (m *StreamMembership) EffectiveLevel(b Board) PermLevel {
	if m.Perms != nil {
		if s, ok := m.Perms[b]; ok {
			if lvl, ok := ParsePermLevel(s); ok {
				return lvl
			}
		}
	}
	return m.Role.DefaultLevel(b)
}

// HasPermission reports whether the effective level meets the requirement.
func (m *StreamMembership) HasPermission(b Board, required PermLevel) bool {
	return m.EffectiveLevel(b) >= required
}
