package sqlstore

import (
	"time"
)

// timeLayout is fixed width so that TEXT timestamps in SQLite sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTimeForDB formats a time.Time value in UTC for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTimeFromDB parses a timestamp read back from the database.
// Postgres TIMESTAMPTZ columns arrive through database/sql as RFC3339Nano strings.
func ParseTimeFromDB(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
