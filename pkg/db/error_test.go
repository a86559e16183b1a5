package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: ReasonDeadlineExceeded},
		{name: "lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: ReasonLockTimeout},
		{name: "serialization", err: fmt.Errorf("apply: %w", &pgconn.PgError{Code: "40001"}), want: ReasonSerializationFailure},
		{name: "unique_gorm", err: gorm.ErrDuplicatedKey, want: ReasonUniqueViolation},
		{name: "unique_sqlite", err: errors.New("UNIQUE constraint failed: payment_notifications.delivery_id"), want: ReasonUniqueViolation},
		{name: "other_pg", err: &pgconn.PgError{Code: "42P01"}, want: ReasonDB},
		{name: "not_found", err: gorm.ErrRecordNotFound, want: ReasonUnknown},
		{name: "unknown", err: errors.New("boom"), want: ReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyError(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("serialization failure should be retryable")
	}
	if IsRetryable(gorm.ErrDuplicatedKey) {
		t.Fatalf("unique violation should not be retryable")
	}
}
