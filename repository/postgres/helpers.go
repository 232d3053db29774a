package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// Durations are stored as whole seconds; the catalog never needs
// sub-second cooldowns or bomb limits.
func durationToSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func secondsToDuration(s int64) time.Duration {
	return time.Duration(s) * time.Second
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
