package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Low-cardinality store failure reasons used as metric labels.
const (
	ReasonDeadlineExceeded     = "deadline_exceeded"
	ReasonLockTimeout          = "db_lock_timeout"
	ReasonSerializationFailure = "serialization_failure"
	ReasonUniqueViolation      = "unique_violation"
	ReasonDB                   = "db"
	ReasonUnknown              = "unknown"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || hasPGCode(err, "23505") {
		return true
	}

	msg := err.Error()
	// PostgreSQL without pgconn wrapping
	if strings.Contains(msg, "duplicate key value violates unique constraint") {
		return true
	}
	// MySQL 1062
	if strings.Contains(msg, "Error 1062") {
		return true
	}
	// SQLite 2067
	return strings.Contains(msg, "UNIQUE constraint failed")
}

// ClassifyError maps a store error to one of the Reason* constants.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonDeadlineExceeded
	case hasPGCode(err, "55P03"):
		return ReasonLockTimeout
	case hasPGCode(err, "40001"):
		return ReasonSerializationFailure
	case IsDuplicateKeyErr(err):
		return ReasonUniqueViolation
	case isDBError(err):
		return ReasonDB
	default:
		return ReasonUnknown
	}
}

// IsRetryable reports whether a redelivery of the same work may succeed.
func IsRetryable(err error) bool {
	switch ClassifyError(err) {
	case ReasonDeadlineExceeded, ReasonLockTimeout, ReasonSerializationFailure:
		return true
	default:
		return false
	}
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidField) ||
		errors.Is(err, gorm.ErrInvalidData) ||
		errors.Is(err, gorm.ErrMissingWhereClause) ||
		errors.Is(err, gorm.ErrUnsupportedDriver) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}
