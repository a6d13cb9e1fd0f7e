package sqlite

import (
	"database/sql"
	"time"

	"doitnow/internal/adapter/database"
)

// TimeLayout is fixed width so that text comparison orders chronologically.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

func FormatTime(t time.Time) string {
	return database.Normalize(t).Format(TimeLayout)
}

func FormatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return FormatTime(*t)
}

func ParseTime(value string) (time.Time, error) {
	return time.Parse(TimeLayout, value)
}

func ParseNullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}

	t, err := ParseTime(value.String)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
