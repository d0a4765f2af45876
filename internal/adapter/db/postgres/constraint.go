package postgres

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "user-profile-service/pkg/errors"
)

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
)

// sqliteConstraintPattern matches messages such as "UNIQUE constraint failed: users.email".
var sqliteConstraintPattern = regexp.MustCompile(`(UNIQUE|NOT NULL) constraint failed: (\w+)\.(\w+)`)

// indexColumns maps named unique indexes back to the column they guard.
var indexColumns = map[string]string{
	firebaseUIDIndex: columnFirebaseUID,
	emailIndex:       columnEmail,
}

// classifyConstraint converts driver integrity errors into a *pkgerrors.ConstraintError.
// Any other error is returned unchanged.
func classifyConstraint(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			column := indexColumns[pgErr.ConstraintName]
			if column == "" {
				column = columnFromDetail(pgErr.Detail)
			}
			return pkgerrors.NewConstraintError(pkgerrors.UniqueViolation, tableOr(pgErr.TableName), column, err)
		case pgNotNullViolation:
			return pkgerrors.NewConstraintError(pkgerrors.NotNullViolation, tableOr(pgErr.TableName), pgErr.ColumnName, err)
		}
		return err
	}

	if m := sqliteConstraintPattern.FindStringSubmatch(err.Error()); m != nil {
		kind := pkgerrors.UniqueViolation
		if m[1] == "NOT NULL" {
			kind = pkgerrors.NotNullViolation
		}
		return pkgerrors.NewConstraintError(kind, m[2], m[3], err)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.NewConstraintError(pkgerrors.UniqueViolation, usersTable, "", err)
	}

	return err
}

// columnFromDetail extracts the column from a detail like `Key (email)=(a@b.c) already exists.`
func columnFromDetail(detail string) string {
	start := strings.Index(detail, "(")
	end := strings.Index(detail, ")")
	if start < 0 || end <= start+1 {
		return ""
	}
	return detail[start+1 : end]
}

func tableOr(table string) string {
	if table == "" {
		return usersTable
	}
	return table
}
