package errors

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Patterns for pulling structure out of PgError.Detail text.
var (
	// "Key (standard_job_id, country_code)=(J1, UK) already exists."
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// "... is still referenced from table "job_posting"."
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
	// "... is not present in table "standard_job"."
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// MapDBError converts storage-layer errors into AppErrors: no-rows sentinels
// become not_found, unique violations conflict, foreign key violations
// foreign_key, CHECK and NOT NULL violations validation, and context errors
// timeout or canceled. Anything unrecognized is returned as-is.
func MapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	// The pgx-native and database/sql paths use different no-rows sentinels.
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return uniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return foreignKeyViolation(pgErr)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return constraintViolation(pgErr)
	}
	return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
}

// uniqueViolation maps duplicate-key errors to conflict. The statistics
// table's (standard_job_id, country_code) key is the one constraint expected
// to trip this in normal operation.
func uniqueViolation(pgErr *pgconn.PgError) error {
	appErr := Wrap(pgErr, ErrCodeConflict, "A record already exists for this key.")

	// ColumnName is the most reliable source; the Detail text also names
	// multi-column keys.
	appErr.Field = pgErr.ColumnName
	if appErr.Field == "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			appErr.Field = m[1]
		}
	}
	return appErr
}

// foreignKeyViolation distinguishes deleting a still-referenced parent from
// inserting a child whose parent is missing, based on the Detail text.
func foreignKeyViolation(pgErr *pgconn.PgError) error {
	var message string
	switch {
	case len(reReferencedFrom.FindStringSubmatch(pgErr.Detail)) == 2:
		table := reReferencedFrom.FindStringSubmatch(pgErr.Detail)[1]
		message = "Cannot delete because this item is in use by " + tableLabel(table) + "."
	case len(reNotPresent.FindStringSubmatch(pgErr.Detail)) == 2:
		table := reNotPresent.FindStringSubmatch(pgErr.Detail)[1]
		message = "Cannot complete operation because the referenced " + tableLabel(table) + " does not exist."
	case pgErr.TableName != "":
		message = "Cannot complete operation because this item is in use by " + tableLabel(pgErr.TableName) + "."
	default:
		message = "Cannot complete operation because this item is in use."
	}
	return Wrap(pgErr, ErrCodeForeignKey, message)
}

func constraintViolation(pgErr *pgconn.PgError) error {
	if pgErr.ColumnName != "" {
		appErr := Wrap(pgErr, ErrCodeValidation, "This field has an invalid value.")
		appErr.Field = pgErr.ColumnName
		return appErr
	}
	return Wrap(pgErr, ErrCodeValidation, "Invalid data. Please check your input.")
}

// tableLabel turns a table name into the label shown in error messages.
func tableLabel(table string) string {
	switch strings.ToLower(strings.TrimSpace(table)) {
	case "standard_job_family":
		return "Standard Job Family"
	case "standard_job":
		return "Standard Job"
	case "job_posting":
		return "Job Posting"
	case "job_posting_stats":
		return "Days-to-Hire Statistics"
	}
	return titleCase(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(table)), "_", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-'a'+'A') + w[1:]
		}
	}
	return strings.Join(words, " ")
}
