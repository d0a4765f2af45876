package postgres

import (
	"time"

	"gorm.io/gorm"

	"user-profile-service/internal/domain/user"
)

const (
	usersTable        = "users"
	firebaseUIDIndex  = "idx_users_firebase_uid"
	emailIndex        = "idx_users_email"
	columnFirebaseUID = "firebase_uid"
	columnEmail       = "email"
	columnUpdatedAt   = "updated_at"
)

// patchableColumns are the columns a partial update may write.
// firebase_uid and the audit columns are not among them.
var patchableColumns = map[user.Field]struct{}{
	user.FieldEmail:     {},
	user.FieldFirstName: {},
	user.FieldLastName:  {},
	user.FieldPhone:     {},
	user.FieldPosition:  {},
	user.FieldFacebook:  {},
	user.FieldTwitter:   {},
	user.FieldGithub:    {},
	user.FieldDribbble:  {},
	user.FieldLocation:  {},
	user.FieldState:     {},
	user.FieldPin:       {},
	user.FieldZip:       {},
	user.FieldTaxNo:     {},
	user.FieldRole:      {},
	user.FieldGroup:     {},
}

// AuditableSchema holds the primary key and audit timestamps embedded by every table schema.
type AuditableSchema struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// UserSchema represents the database schema for the users table.
// Required columns are pointers so an omitted value reaches the engine as NULL
// and is rejected by the NOT NULL constraint instead of being stored as "".
type UserSchema struct {
	AuditableSchema

	FirebaseUID *string `gorm:"column:firebase_uid;size:128;not null;uniqueIndex:idx_users_firebase_uid"`
	Email       *string `gorm:"column:email;not null;uniqueIndex:idx_users_email"`
	FirstName   *string `gorm:"column:first_name;not null"`
	LastName    *string `gorm:"column:last_name;not null"`
	Phone       *string `gorm:"column:phone"`
	Position    *string `gorm:"column:position"`

	Facebook *string `gorm:"column:facebook"`
	Twitter  *string `gorm:"column:twitter"`
	Github   *string `gorm:"column:github"`
	Dribbble *string `gorm:"column:dribbble"`

	Location *string `gorm:"column:location"`
	State    *string `gorm:"column:state"`
	Pin      *string `gorm:"column:pin"`
	Zip      *string `gorm:"column:zip"`
	TaxNo    *string `gorm:"column:tax_no"`

	Role  *string `gorm:"column:role;not null;default:'owner'"`
	Group *string `gorm:"column:group;not null;default:'coregroup'"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return usersTable
}

// AutoMigrate creates or updates the users table and its indexes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

// toSchema maps a domain user to its storage row.
// Empty required strings become NULL; role and group become NULL so the column default applies.
func toSchema(u *user.User) UserSchema {
	return UserSchema{
		AuditableSchema: AuditableSchema{
			ID:        u.ID,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		},
		FirebaseUID: user.StringPtr(u.FirebaseUID),
		Email:       user.StringPtr(u.Email),
		FirstName:   user.StringPtr(u.FirstName),
		LastName:    user.StringPtr(u.LastName),
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
		Role:        user.StringPtr(u.Role),
		Group:       user.StringPtr(u.Group),
	}
}

// toDomain maps a storage row to a domain user.
func (m *UserSchema) toDomain() *user.User {
	return &user.User{
		Auditable: user.Auditable{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		FirebaseUID: user.StringValue(m.FirebaseUID),
		Email:       user.StringValue(m.Email),
		FirstName:   user.StringValue(m.FirstName),
		LastName:    user.StringValue(m.LastName),
		Phone:       m.Phone,
		Position:    m.Position,
		Facebook:    m.Facebook,
		Twitter:     m.Twitter,
		Github:      m.Github,
		Dribbble:    m.Dribbble,
		Location:    m.Location,
		State:       m.State,
		Pin:         m.Pin,
		Zip:         m.Zip,
		TaxNo:       m.TaxNo,
		Role:        user.StringValue(m.Role),
		Group:       user.StringValue(m.Group),
	}
}
