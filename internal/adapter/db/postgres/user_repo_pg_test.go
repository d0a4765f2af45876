package postgres

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-profile-service/internal/domain/user"
	pkgerrors "user-profile-service/pkg/errors"
	"user-profile-service/pkg/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.NewGormLoggerWithConfig(zaptest.NewLogger(t), 0.2, "warn"),
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: opens its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, AutoMigrate(db))
	return db
}

func setupTestRepo(t *testing.T) *UserRepoPG {
	return NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
}

func newTestUser(n int) *user.User {
	return &user.User{
		FirebaseUID: fmt.Sprintf("firebase-uid-%d", n),
		Email:       fmt.Sprintf("user%d@example.com", n),
		FirstName:   fmt.Sprintf("First%d", n),
		LastName:    fmt.Sprintf("Last%d", n),
	}
}

func TestUserRepoPG_Create_StoresFieldsVerbatim(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	u := &user.User{
		FirebaseUID: "uid-verbatim",
		Email:       "Ada.Lovelace@example.com",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Phone:       user.StringPtr("+44 20 7946 0000"),
		Position:    user.StringPtr("Analyst"),
		Github:      user.StringPtr("https://github.com/ada"),
		Zip:         user.StringPtr("SW1A"),
		TaxNo:       user.StringPtr("GB123"),
		Role:        "admin",
		Group:       "analytics",
	}

	id, err := repo.Create(ctx, u)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "uid-verbatim", stored.FirebaseUID)
	assert.Equal(t, "Ada.Lovelace@example.com", stored.Email)
	assert.Equal(t, "Ada", stored.FirstName)
	assert.Equal(t, "Lovelace", stored.LastName)
	assert.Equal(t, "+44 20 7946 0000", user.StringValue(stored.Phone))
	assert.Equal(t, "Analyst", user.StringValue(stored.Position))
	assert.Equal(t, "https://github.com/ada", user.StringValue(stored.Github))
	assert.Equal(t, "SW1A", user.StringValue(stored.Zip))
	assert.Equal(t, "GB123", user.StringValue(stored.TaxNo))
	assert.Equal(t, "admin", stored.Role)
	assert.Equal(t, "analytics", stored.Group)
}

func TestUserRepoPG_Create_AppliesColumnDefaults(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, newTestUser(1))
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, user.DefaultRole, stored.Role)
	assert.Equal(t, user.DefaultGroup, stored.Group)
}

func TestUserRepoPG_Create_OptionalFieldsAcceptNull(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, newTestUser(1))
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	for name, field := range map[string]*string{
		"phone":    stored.Phone,
		"position": stored.Position,
		"facebook": stored.Facebook,
		"twitter":  stored.Twitter,
		"github":   stored.Github,
		"dribbble": stored.Dribbble,
		"location": stored.Location,
		"state":    stored.State,
		"pin":      stored.Pin,
		"zip":      stored.Zip,
		"tax_no":   stored.TaxNo,
	} {
		assert.Nil(t, field, name)
	}
}

func TestUserRepoPG_Create_UniqueViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *user.User)
		column string
	}{
		{
			name:   "duplicate firebase uid",
			mutate: func(u *user.User) { u.Email = "other@example.com" },
			column: "firebase_uid",
		},
		{
			name:   "duplicate email",
			mutate: func(u *user.User) { u.FirebaseUID = "other-uid" },
			column: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupTestRepo(t)
			ctx := context.Background()

			_, err := repo.Create(ctx, newTestUser(1))
			require.NoError(t, err)

			dup := newTestUser(1)
			tt.mutate(dup)
			_, err = repo.Create(ctx, dup)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsUniqueViolation(err), "got %v", err)

			var ce *pkgerrors.ConstraintError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.column, ce.Column)
		})
	}
}

func TestUserRepoPG_Create_NotNullViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *user.User)
		column string
	}{
		{"missing firebase uid", func(u *user.User) { u.FirebaseUID = "" }, "firebase_uid"},
		{"missing email", func(u *user.User) { u.Email = "" }, "email"},
		{"missing first name", func(u *user.User) { u.FirstName = "" }, "first_name"},
		{"missing last name", func(u *user.User) { u.LastName = "" }, "last_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupTestRepo(t)

			u := newTestUser(1)
			tt.mutate(u)
			_, err := repo.Create(context.Background(), u)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsNotNullViolation(err), "got %v", err)

			var ce *pkgerrors.ConstraintError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.column, ce.Column)
		})
	}
}

func TestUserRepoPG_Create_NilUser(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Create(context.Background(), nil)
	assert.EqualError(t, err, "user cannot be nil")
}

func TestUserRepoPG_GetByID_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	u, err := repo.GetByID(context.Background(), 42)
	assert.Nil(t, u)
	var nf *pkgerrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUserRepoPG_GetByEmailAndFirebaseUID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, newTestUser(7))
	require.NoError(t, err)

	byEmail, err := repo.GetByEmail(ctx, "user7@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, id, byEmail.ID)

	byUID, err := repo.GetByFirebaseUID(ctx, "firebase-uid-7")
	require.NoError(t, err)
	require.NotNil(t, byUID)
	assert.Equal(t, id, byUID.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.GetByFirebaseUID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepoPG_Update(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	u := newTestUser(1)
	u.Phone = user.StringPtr("555-0100")
	id, err := repo.Create(ctx, u)
	require.NoError(t, err)

	patch := user.Patch{}
	patch.Set(user.FieldFirstName, user.StringPtr("Grace"))
	patch.Set(user.FieldPhone, nil)
	patch.Set(user.FieldTwitter, user.StringPtr("@grace"))
	patch.Set(user.FieldGroup, user.StringPtr("research"))
	_, err = repo.Update(ctx, id, patch)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Grace", stored.FirstName)
	assert.Equal(t, "Last1", stored.LastName)
	assert.Nil(t, stored.Phone)
	assert.Equal(t, "@grace", user.StringValue(stored.Twitter))
	assert.Equal(t, "research", stored.Group)
	assert.Equal(t, user.DefaultRole, stored.Role)
	assert.Equal(t, u.CreatedAt.Unix(), stored.CreatedAt.Unix())
	assert.False(t, stored.UpdatedAt.Before(u.UpdatedAt))
}

func TestUserRepoPG_Update_KeepsConcurrentWrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, newTestUser(1))
	require.NoError(t, err)

	// another client writes a column after this one read the row
	require.NoError(t, db.Model(&UserSchema{}).Where("id = ?", id).Update("phone", "555-0100").Error)

	patch := user.Patch{}
	patch.Set(user.FieldFirstName, user.StringPtr("Grace"))
	_, err = repo.Update(ctx, id, patch)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Grace", stored.FirstName)
	assert.Equal(t, "555-0100", user.StringValue(stored.Phone))
}

func TestUserRepoPG_Update_Violations(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestUser(1))
	require.NoError(t, err)
	second := newTestUser(2)
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	_, err = repo.Update(ctx, second.ID, user.Patch{user.FieldEmail: user.StringPtr("user1@example.com")})
	assert.True(t, pkgerrors.IsUniqueViolation(err), "got %v", err)

	_, err = repo.Update(ctx, second.ID, user.Patch{user.FieldLastName: nil})
	assert.True(t, pkgerrors.IsNotNullViolation(err), "got %v", err)
}

func TestUserRepoPG_Update_RejectsImmutableColumns(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, newTestUser(1))
	require.NoError(t, err)

	_, err = repo.Update(ctx, id, user.Patch{user.Field("firebase_uid"): user.StringPtr("other")})
	var ve *pkgerrors.ValidationError
	require.ErrorAs(t, err, &ve)

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid-1", stored.FirebaseUID)
}

func TestUserRepoPG_Update_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Update(context.Background(), 99, user.Patch{user.FieldFirstName: user.StringPtr("Grace")})
	var nf *pkgerrors.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = repo.Update(context.Background(), 0, user.Patch{})
	var ve *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUserRepoPG_List_PagePastEnd(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := repo.Create(ctx, newTestUser(i))
		require.NoError(t, err)
	}

	for _, page := range []int64{3, math.MaxInt64} {
		users, total, err := repo.List(ctx, "", page, 2)
		require.NoError(t, err)
		assert.Empty(t, users, "page %d", page)
		assert.Equal(t, int64(3), total)
	}

	users, _, err := repo.List(ctx, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "firebase-uid-3", users[0].FirebaseUID)
}

func TestUserRepoPG_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, newTestUser(1))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, deleted)

	_, err = repo.GetByID(ctx, id)
	var nf *pkgerrors.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = repo.Delete(ctx, id)
	assert.ErrorAs(t, err, &nf)

	_, err = repo.Delete(ctx, 0)
	var ve *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUserRepoPG_List_SQLInjectionProtection(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	seed := []*user.User{
		{FirebaseUID: "u1", Email: "john@example.com", FirstName: "John", LastName: "Doe"},
		{FirebaseUID: "u2", Email: "jane@example.com", FirstName: "Jane", LastName: "Smith"},
		{FirebaseUID: "u3", Email: "admin@example.com", FirstName: "Admin", LastName: "User", Position: user.StringPtr("Executive Director")},
	}
	for _, u := range seed {
		_, err := repo.Create(ctx, u)
		require.NoError(t, err)
	}

	tests := []struct {
		name        string
		query       string
		expectError bool
		expectCount int
	}{
		{name: "valid search query", query: "john", expectCount: 1},
		{name: "empty search query", query: "", expectCount: 3},
		{name: "search by position", query: "executive", expectCount: 1},
		{name: "valid email search", query: "example.com", expectCount: 3},
		{name: "no match", query: "john.doe+test@example.com", expectCount: 0},
		{name: "SQL injection attempt - UNION", query: "john UNION SELECT * FROM users", expectError: true},
		{name: "SQL injection attempt - OR condition", query: "john OR 1=1", expectError: true},
		{name: "SQL injection attempt - DROP", query: "john; DROP TABLE users", expectError: true},
		{name: "SQL injection attempt - comment", query: "john --", expectError: true},
		{name: "XSS attempt", query: "<script>alert('xss')</script>", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(ctx, tt.query, 1, 10)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid search query")
				var ve *pkgerrors.ValidationError
				assert.ErrorAs(t, err, &ve)
				assert.Nil(t, users)
				return
			}
			require.NoError(t, err)
			assert.Len(t, users, tt.expectCount)
			assert.Equal(t, int64(tt.expectCount), total)
		})
	}
}

func TestUserRepoPG_List_WildcardEscaping(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	seed := []*user.User{
		{FirebaseUID: "u1", Email: "john%test@example.com", FirstName: "John%Test", LastName: "A"},
		{FirebaseUID: "u2", Email: "jane_test@example.com", FirstName: "Jane_Test", LastName: "B"},
		{FirebaseUID: "u3", Email: "janextest@example.com", FirstName: "Admin", LastName: "C"},
	}
	for _, u := range seed {
		_, err := repo.Create(ctx, u)
		require.NoError(t, err)
	}

	tests := []struct {
		name        string
		query       string
		expectCount int
	}{
		{"percent literal", "John%Test", 1},
		{"underscore literal does not match any character", "jane_test", 1},
		{"percent is not a wildcard", "john%", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, _, err := repo.List(ctx, tt.query, 1, 10)
			require.NoError(t, err)
			assert.Len(t, users, tt.expectCount)
		})
	}
}

func TestUserRepoPG_List_CaseInsensitiveAndPaged(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := repo.Create(ctx, newTestUser(i))
		require.NoError(t, err)
	}

	users, total, err := repo.List(ctx, "FIRST", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, users, 2)
	assert.Equal(t, "First3", users[0].FirstName)
	assert.Equal(t, "First4", users[1].FirstName)

	users, total, err = repo.List(ctx, "first", 3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, users, 1)
}
