package handler

import (
	"time"

	"user-profile-service/internal/usecase/user"
)

// ProfileFields are the optional profile attributes accepted by create and update.
// Sending an empty string on update clears the stored value.
type ProfileFields struct {
	Phone    *string `json:"phone,omitempty"`
	Position *string `json:"position,omitempty"`
	Facebook *string `json:"facebook,omitempty"`
	Twitter  *string `json:"twitter,omitempty"`
	Github   *string `json:"github,omitempty"`
	Dribbble *string `json:"dribbble,omitempty"`
	Location *string `json:"location,omitempty"`
	State    *string `json:"state,omitempty"`
	Pin      *string `json:"pin,omitempty"`
	Zip      *string `json:"zip,omitempty"`
	TaxNo    *string `json:"tax_no,omitempty"`
}

func (p ProfileFields) toUsecase() user.OptionalFields {
	return user.OptionalFields{
		Phone:    p.Phone,
		Position: p.Position,
		Facebook: p.Facebook,
		Twitter:  p.Twitter,
		Github:   p.Github,
		Dribbble: p.Dribbble,
		Location: p.Location,
		State:    p.State,
		Pin:      p.Pin,
		Zip:      p.Zip,
		TaxNo:    p.TaxNo,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user
type CreateUserRequest struct {
	FirebaseUID string `json:"firebase_uid" binding:"required,max=128"`
	Email       string `json:"email" binding:"required,email"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Role        string `json:"role,omitempty"`
	Group       string `json:"group,omitempty"`
	ProfileFields
}

// UpdateUserRequest represents the HTTP request body for a partial user update
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      *string `json:"role,omitempty"`
	Group     *string `json:"group,omitempty"`
	ProfileFields
}

// UserResponse represents the HTTP response for user data.
// Absent optional fields are rendered as null.
type UserResponse struct {
	ID          int64     `json:"id"`
	FirebaseUID string    `json:"firebase_uid"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       *string   `json:"phone"`
	Position    *string   `json:"position"`
	Facebook    *string   `json:"facebook"`
	Twitter     *string   `json:"twitter"`
	Github      *string   `json:"github"`
	Dribbble    *string   `json:"dribbble"`
	Location    *string   `json:"location"`
	State       *string   `json:"state"`
	Pin         *string   `json:"pin"`
	Zip         *string   `json:"zip"`
	TaxNo       *string   `json:"tax_no"`
	Role        string    `json:"role"`
	Group       string    `json:"group"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
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

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}
