package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-profile-service/internal/domain/user"
	pkgerrors "user-profile-service/pkg/errors"
	"user-profile-service/pkg/security"
)

// searchColumns are matched case-insensitively by List.
var searchColumns = []string{"first_name", "last_name", "email", "position"}

// UserRepoPG implements the Repository interface using GORM.
// It runs against PostgreSQL in production and SQLite in local setups and tests.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// Create inserts a new user into the database.
// On success the generated ID, timestamps and column defaults are copied back into u.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := toSchema(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		err = classifyConstraint(err)
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	*u = *model.toDomain()

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update writes only the columns named by patch and refreshes updated_at.
// Columns outside the patch keep whatever value is stored, including writes made by other clients.
// Returns a NotFoundError when no row has the given ID.
func (r *UserRepoPG) Update(ctx context.Context, id int64, patch user.Patch) (int64, error) {
	if id <= 0 {
		return 0, pkgerrors.NewValidationError("id", "invalid user id")
	}

	values := make(map[string]any, len(patch)+1)
	for field, value := range patch {
		if _, ok := patchableColumns[field]; !ok {
			return 0, pkgerrors.NewValidationError(string(field), "field cannot be updated")
		}
		if value == nil {
			values[string(field)] = nil
			continue
		}
		values[string(field)] = *value
	}
	values[columnUpdatedAt] = r.db.NowFunc()

	result := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		err := classifyConstraint(result.Error)
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", id))
		return 0, fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected == 0 {
		r.log.Warn("user not found for update", zap.Int64("id", id))
		return 0, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
	}

	r.log.Info("user updated in db", zap.Int64("id", id), zap.Int("columns", len(patch)))
	return id, nil
}

// Delete removes a user from the database by ID.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, pkgerrors.NewValidationError("id", "invalid user id")
	}

	result := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if result.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(result.Error), zap.Int64("id", id))
		return 0, fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Warn("user not found for delete", zap.Int64("id", id))
		return 0, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return id, nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves a user from the database by their email address.
// Returns nil without error when no user has the email.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getByColumn(ctx, columnEmail, email)
}

// GetByFirebaseUID retrieves a user by the identity provider uid.
// Returns nil without error when no user has the uid.
func (r *UserRepoPG) GetByFirebaseUID(ctx context.Context, uid string) (*user.User, error) {
	return r.getByColumn(ctx, columnFirebaseUID, uid)
}

func (r *UserRepoPG) getByColumn(ctx context.Context, column, value string) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Where(column+" = ?", value).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by "+column, zap.String(column, value))
			return nil, nil
		}
		r.log.Error("failed to get user by "+column+" from db", zap.Error(err), zap.String(column, value))
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return model.toDomain(), nil
}

// List retrieves a page of users matching query together with the total match count.
// The query is validated and its LIKE wildcards are escaped before use.
func (r *UserRepoPG) List(ctx context.Context, query string, page, limit int64) ([]user.User, int64, error) {
	cleaned, err := security.ValidateSearchQuery(query)
	if err != nil {
		r.log.Warn("invalid search query", zap.String("query", query), zap.Error(err))
		return nil, 0, pkgerrors.NewValidationError("query", "invalid search query: "+err.Error())
	}
	if page < 1 {
		page = 1
	}

	tx := r.db.WithContext(ctx).Model(&UserSchema{})
	if cleaned != "" {
		pattern := "%" + strings.ToLower(security.SanitizeSearchString(cleaned)) + "%"
		conditions := make([]string, len(searchColumns))
		args := make([]any, len(searchColumns))
		for i, column := range searchColumns {
			conditions[i] = "LOWER(" + column + `) LIKE ? ESCAPE '\'`
			args[i] = pattern
		}
		tx = tx.Where(strings.Join(conditions, " OR "), args...)
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err), zap.String("query", cleaned))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	// pages past the last one are empty and never reach the offset arithmetic
	if limit > 0 && page-1 > total/limit {
		return []user.User{}, total, nil
	}

	var models []UserSchema
	if err := tx.Order("id ASC").Offset(int((page - 1) * limit)).Limit(int(limit)).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", cleaned), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *models[i].toDomain()
	}

	return users, total, nil
}
