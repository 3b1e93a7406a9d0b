package errors

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if got := MapDBError(nil); got != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", got)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	err := MapDBError(context.DeadlineExceeded)
	if !IsTimeout(err) {
		t.Errorf("MapDBError(DeadlineExceeded) should be Timeout, got %v", GetCode(err))
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("mapped timeout should preserve the cause chain")
	}

	err = MapDBError(context.Canceled)
	if !IsCanceled(err) {
		t.Errorf("MapDBError(Canceled) should be Canceled, got %v", GetCode(err))
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	err := MapDBError(pgx.ErrNoRows)
	if !IsNotFound(err) {
		t.Errorf("MapDBError(pgx.ErrNoRows) should be NotFound, got %v", GetCode(err))
	}

	err = MapDBError(sql.ErrNoRows)
	if !IsNotFound(err) {
		t.Errorf("MapDBError(sql.ErrNoRows) should be NotFound, got %v", GetCode(err))
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name: "stats key violation with Detail",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "job_posting_stats_standard_job_id_country_code_key",
				Detail:         `Key (standard_job_id, country_code)=(job-1, World) already exists.`,
			},
			wantField: "standard_job_id, country_code",
		},
		{
			name: "violation with column name metadata",
			pgErr: &pgconn.PgError{
				Code:       pgerrcode.UniqueViolation,
				ColumnName: "id",
			},
			wantField: "id",
		},
		{
			name: "violation with no usable metadata",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "job_posting_stats_pkey",
			},
			wantField: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsConflict(err) {
				t.Errorf("MapDBError() should be Conflict, got %v", GetCode(err))
			}
			if field := GetField(err); field != tt.wantField {
				t.Errorf("MapDBError() field = %q, want %q", field, tt.wantField)
			}
		})
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name        string
		pgErr       *pgconn.PgError
		wantMessage string
	}{
		{
			name: "missing parent standard job",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (standard_job_id)=(job-x) is not present in table "standard_job".`,
			},
			wantMessage: "referenced Standard Job does not exist",
		},
		{
			name: "family still referenced by jobs",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (id)=(fam-1) is still referenced from table "standard_job".`,
			},
			wantMessage: "in use by Standard Job",
		},
		{
			name: "table name metadata fallback",
			pgErr: &pgconn.PgError{
				Code:      pgerrcode.ForeignKeyViolation,
				TableName: "job_posting",
			},
			wantMessage: "in use by Job Posting",
		},
		{
			name: "no metadata at all",
			pgErr: &pgconn.PgError{
				Code: pgerrcode.ForeignKeyViolation,
			},
			wantMessage: "this item is in use",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsForeignKey(err) {
				t.Errorf("MapDBError() should be ForeignKey, got %v", GetCode(err))
			}
			var appErr *AppError
			if !errors.As(err, &appErr) {
				t.Fatal("expected AppError")
			}
			if !strings.Contains(appErr.Message, tt.wantMessage) {
				t.Errorf("MapDBError() message = %q, want substring %q", appErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapDBError_NotNullViolation(t *testing.T) {
	err := MapDBError(&pgconn.PgError{
		Code:       pgerrcode.NotNullViolation,
		ColumnName: "standard_job_id",
	})
	if !IsValidation(err) {
		t.Errorf("MapDBError(NotNull) should be Validation, got %v", GetCode(err))
	}
	if field := GetField(err); field != "standard_job_id" {
		t.Errorf("MapDBError() field = %q, want standard_job_id", field)
	}
}

func TestMapDBError_CheckViolation(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.CheckViolation})
	if !IsValidation(err) {
		t.Errorf("MapDBError(Check) should be Validation, got %v", GetCode(err))
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
	if !IsInternal(err) {
		t.Errorf("MapDBError(unknown pg code) should be Internal, got %v", GetCode(err))
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	plain := errors.New("dial tcp: connection refused")
	if got := MapDBError(plain); !errors.Is(got, plain) {
		t.Errorf("MapDBError(plain) = %v, want the original error", got)
	}
}

func TestTableLabel(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"standard_job", "Standard Job"},
		{"standard_job_family", "Standard Job Family"},
		{"job_posting", "Job Posting"},
		{"job_posting_stats", "Days-to-Hire Statistics"},
		{"some_other_table", "Some Other Table"},
	}

	for _, tt := range tests {
		if got := tableLabel(tt.table); got != tt.want {
			t.Errorf("tableLabel(%q) = %q, want %q", tt.table, got, tt.want)
		}
	}
}
