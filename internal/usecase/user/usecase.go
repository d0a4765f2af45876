package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-profile-service/internal/domain/user"
	pkgerrors "user-profile-service/pkg/errors"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Service implements the business logic for user profile operations.
// It provides a clean separation between the transport layer and data layer.
type Service struct {
	repo     Repository          // Repository for data access, possibly cache-backed
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

var _ Usecase = (*Service)(nil)

// New creates a new Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return snakeCase(f.Name)
	})
	return &Service{repo: r, log: log, validate: v}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError("", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	if len(validationErrors) == 1 {
		return pkgerrors.NewValidationError(validationErrors[0].Field(), messages[0])
	}
	return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
}

// snakeCase turns a Go field name such as FirebaseUID into firebase_uid.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ensureEmailAvailable returns AlreadyExistsError when another user owns email.
func (uc *Service) ensureEmailAvailable(ctx context.Context, email string, selfID int64) error {
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		uc.log.Error("failed to check existing email", zap.String("email", email), zap.Error(err))
		return pkgerrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil && existing.ID != selfID {
		uc.log.Warn("email already exists", zap.String("email", email), zap.Int64("existing_id", existing.ID))
		return pkgerrors.NewAlreadyExistsError("user", "email already exists")
	}
	return nil
}

// CreateUser creates a new user after validating the request and checking
// email and firebase uid uniqueness. Role and group defaults are applied here
// and again by the storage column defaults.
func (uc *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	in.FirebaseUID = strings.TrimSpace(in.FirebaseUID)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	uc.log.Info("creating user", zap.String("firebase_uid", in.FirebaseUID), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := uc.ensureEmailAvailable(ctx, in.Email, 0); err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetByFirebaseUID(ctx, in.FirebaseUID)
	if err != nil {
		uc.log.Error("failed to check existing firebase uid", zap.String("firebase_uid", in.FirebaseUID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to validate firebase uid uniqueness", err)
	}
	if existing != nil {
		uc.log.Warn("firebase uid already exists", zap.String("firebase_uid", in.FirebaseUID))
		return nil, pkgerrors.NewAlreadyExistsError("user", "firebase uid already exists")
	}

	u := &domain.User{
		FirebaseUID: in.FirebaseUID,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Role:        strings.TrimSpace(in.Role),
		Group:       strings.TrimSpace(in.Group),
	}
	in.OptionalFields.applyTo(u)
	u.ApplyDefaults()

	if _, err := uc.repo.Create(ctx, u); err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return &CreateUserResponse{User: toUserDTO(u)}, nil
}

// UpdateUser applies a partial update to an existing user.
// Only the sent attributes are written; required attributes may be changed but never cleared.
func (uc *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	uc.log.Info("updating user", zap.Int64("id", in.ID))

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		in.Email = &email
	}
	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	patch := domain.Patch{}
	required := []struct {
		field domain.Field
		value *string
	}{
		{domain.FieldEmail, in.Email},
		{domain.FieldFirstName, in.FirstName},
		{domain.FieldLastName, in.LastName},
		{domain.FieldRole, in.Role},
		{domain.FieldGroup, in.Group},
	}
	for _, r := range required {
		if r.value == nil {
			continue
		}
		v := strings.TrimSpace(*r.value)
		if v == "" {
			uc.log.Warn("update would clear required field", zap.Int64("id", in.ID), zap.String("field", string(r.field)))
			return nil, pkgerrors.NewValidationError(string(r.field), "cannot be empty")
		}
		patch.Set(r.field, &v)
	}
	in.OptionalFields.addTo(patch)

	if in.Email != nil {
		if err := uc.ensureEmailAvailable(ctx, *in.Email, in.ID); err != nil {
			return nil, err
		}
	}

	if _, err := uc.repo.Update(ctx, in.ID, patch); err != nil {
		uc.log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	updated, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to reload user after update", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return &UpdateUserResponse{User: toUserDTO(updated)}, nil
}

// DeleteUser deletes a user after validating the user ID.
func (uc *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	uc.log.Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		uc.log.Warn("delete user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.NewValidationError("id", "invalid user id")
	}

	id, err := uc.repo.Delete(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return &DeleteUserResponse{ID: id}, nil
}

// GetUser retrieves a user by ID after validating the request.
func (uc *Service) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	if in.ID <= 0 {
		uc.log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.NewValidationError("id", "invalid user id")
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return &GetUserResponse{User: toUserDTO(u)}, nil
}

// GetUserByFirebaseUID retrieves the profile linked to an identity provider account.
func (uc *Service) GetUserByFirebaseUID(ctx context.Context, in GetUserByFirebaseUIDRequest) (*GetUserResponse, error) {
	uid := strings.TrimSpace(in.FirebaseUID)
	if uid == "" || len(uid) > domain.MaxFirebaseUIDLength {
		uc.log.Warn("get user by firebase uid validation failed", zap.Int("length", len(uid)))
		return nil, pkgerrors.NewValidationError("firebase_uid", "invalid firebase uid")
	}

	u, err := uc.repo.GetByFirebaseUID(ctx, uid)
	if err != nil {
		uc.log.Error("failed to get user by firebase uid", zap.String("firebase_uid", uid), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: firebase_uid=%s", uid))
	}
	return &GetUserResponse{User: toUserDTO(u)}, nil
}

// ListUsers retrieves a paginated list of users with optional search functionality.
func (uc *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Page <= 0 {
		in.Page = defaultPage
	}
	if in.Limit <= 0 {
		in.Limit = defaultLimit
	}
	if in.Limit > maxLimit {
		in.Limit = maxLimit
	}

	uc.log.Info("listing users", zap.String("query", in.Query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	domainUsers, total, err := uc.repo.List(ctx, in.Query, in.Page, in.Limit)
	if err != nil {
		uc.log.Error("failed to list users", zap.String("query", in.Query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit), zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = toUserDTO(&domainUsers[i])
	}

	return &ListUsersResponse{
		Users:      users,
		Pagination: domain.NewPagination(total, in.Page, in.Limit),
	}, nil
}
