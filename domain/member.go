package domain

import "time"

// Role of a member inside a family. Managers (admin, parent) review
// submissions and redemptions; children submit and contribute.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// IsManager reports whether the role may review tasks and redemptions.
func (r Role) IsManager() bool {
	return r == RoleAdmin || r == RoleParent
}

// Member represents a family member identity.
type Member struct {
	ID          string    `json:"id"`
	FamilyID    string    `json:"family_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Role        Role      `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (m *Member) IsActiveMember() bool {
	return m != nil && m.IsActive
}
