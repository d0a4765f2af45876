package user

import (
	"strings"
	"time"
)

const (
	// DefaultRole is assigned when a user is created without a role.
	DefaultRole = "owner"
	// DefaultGroup is assigned when a user is created without a group.
	DefaultGroup = "coregroup"
	// MaxFirebaseUIDLength is the storage width of the firebase_uid column.
	MaxFirebaseUIDLength = 128
)

// Auditable carries the identifier and lifecycle timestamps shared by persisted records.
type Auditable struct {
	ID        int64     // ID is the unique identifier of the record
	CreatedAt time.Time // CreatedAt is set once when the record is inserted
	UpdatedAt time.Time // UpdatedAt is refreshed on every write
}

// User represents a user profile in the system.
// Optional attributes are pointers; nil means the value is absent (NULL in storage).
type User struct {
	Auditable

	FirebaseUID string // FirebaseUID links the profile to its identity provider account
	Email       string // Email is the unique email address of the user
	FirstName   string
	LastName    string
	Phone       *string
	Position    *string

	// Social links
	Facebook *string
	Twitter  *string
	Github   *string
	Dribbble *string

	// Address details
	Location *string
	State    *string
	Pin      *string
	Zip      *string
	TaxNo    *string

	Role  string // Role defaults to DefaultRole
	Group string // Group defaults to DefaultGroup
}

// ApplyDefaults fills role and group when they were not supplied.
func (u *User) ApplyDefaults() {
	if strings.TrimSpace(u.Role) == "" {
		u.Role = DefaultRole
	}
	if strings.TrimSpace(u.Group) == "" {
		u.Group = DefaultGroup
	}
}

// FullName returns the first and last name joined by a space.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
