package user

import (
	"strings"
	"time"

	domain "user-profile-service/internal/domain/user"
)

// OptionalFields holds the nullable profile attributes shared by create and update requests.
// A nil field is left untouched; an empty string clears the stored value.
type OptionalFields struct {
	Phone    *string
	Position *string
	Facebook *string
	Twitter  *string
	Github   *string
	Dribbble *string
	Location *string
	State    *string
	Pin      *string
	Zip      *string
	TaxNo    *string
}

func (o OptionalFields) applyTo(u *domain.User) {
	assign := func(dst **string, src *string) {
		if src != nil {
			*dst = domain.StringPtr(strings.TrimSpace(*src))
		}
	}
	assign(&u.Phone, o.Phone)
	assign(&u.Position, o.Position)
	assign(&u.Facebook, o.Facebook)
	assign(&u.Twitter, o.Twitter)
	assign(&u.Github, o.Github)
	assign(&u.Dribbble, o.Dribbble)
	assign(&u.Location, o.Location)
	assign(&u.State, o.State)
	assign(&u.Pin, o.Pin)
	assign(&u.Zip, o.Zip)
	assign(&u.TaxNo, o.TaxNo)
}

// addTo records the sent optional fields in p.
func (o OptionalFields) addTo(p domain.Patch) {
	fields := []struct {
		field domain.Field
		value *string
	}{
		{domain.FieldPhone, o.Phone},
		{domain.FieldPosition, o.Position},
		{domain.FieldFacebook, o.Facebook},
		{domain.FieldTwitter, o.Twitter},
		{domain.FieldGithub, o.Github},
		{domain.FieldDribbble, o.Dribbble},
		{domain.FieldLocation, o.Location},
		{domain.FieldState, o.State},
		{domain.FieldPin, o.Pin},
		{domain.FieldZip, o.Zip},
		{domain.FieldTaxNo, o.TaxNo},
	}
	for _, f := range fields {
		if f.value != nil {
			p.Set(f.field, domain.StringPtr(strings.TrimSpace(*f.value)))
		}
	}
}

// CreateUserRequest represents the request payload for creating a new user.
// Role and Group fall back to the domain defaults when empty.
type CreateUserRequest struct {
	FirebaseUID string `validate:"required,max=128"`
	Email       string `validate:"required,email"`
	FirstName   string `validate:"required"`
	LastName    string `validate:"required"`
	Role        string
	Group       string
	OptionalFields
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	User User
}

// UpdateUserRequest represents a partial update of an existing user.
// Nil fields keep their stored value.
type UpdateUserRequest struct {
	ID        int64   `validate:"gt=0"`
	Email     *string `validate:"omitempty,email"`
	FirstName *string
	LastName  *string
	Role      *string
	Group     *string
	OptionalFields
}

// UpdateUserResponse represents the response payload after updating a user.
type UpdateUserResponse struct {
	User User
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// GetUserByFirebaseUIDRequest looks a user up by the identity provider uid.
type GetUserByFirebaseUIDRequest struct {
	FirebaseUID string
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User User
}

// ListUsersRequest represents the request payload for listing users.
// It supports pagination and search functionality.
type ListUsersRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *domain.Pagination
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID          int64
	FirebaseUID string
	Email       string
	FirstName   string
	LastName    string
	Phone       *string
	Position    *string
	Facebook    *string
	Twitter     *string
	Github      *string
	Dribbble    *string
	Location    *string
	State       *string
	Pin         *string
	Zip         *string
	TaxNo       *string
	Role        string
	Group       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func toUserDTO(u *domain.User) User {
	return User{
		ID:          u.ID,
		FirebaseUID: u.FirebaseUID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Position:    u.Position,
		Facebook:    u.Facebook,
		Twitter:     u.Twitter,
		Github:      u.Github,
		Dribbble:    u.Dribbble,
		Location:    u.Location,
		State:       u.State,
		Pin:         u.Pin,
		Zip:         u.Zip,
		TaxNo:       u.TaxNo,
		Role:        u.Role,
		Group:       u.Group,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
