package user

import (
	"context"

	domain "user-profile-service/internal/domain/user"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, SQLite, a caching decorator) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)                               // Create a new user
	GetByID(ctx context.Context, id int64) (*domain.User, error)                             // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error)                      // Retrieve user by email, nil if absent
	GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error)                  // Retrieve user by firebase uid, nil if absent
	Update(ctx context.Context, id int64, patch domain.Patch) (int64, error)                 // Apply a column patch to an existing user
	Delete(ctx context.Context, id int64) (int64, error)                                     // Delete user by ID
	List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) // List users with search and total count
}

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error)
	GetUserByFirebaseUID(ctx context.Context, in GetUserByFirebaseUIDRequest) (*GetUserResponse, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
}
