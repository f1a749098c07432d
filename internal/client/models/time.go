package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/timex"
)

// UnixTime is a second-precision UTC timestamp. It is stored as an INTEGER
// column and travels as an RFC3339 string in JSON.
type UnixTime int64

// NewUnixTime truncates t to whole seconds.
func NewUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

func (u UnixTime) Time() time.Time {
	return time.Unix(int64(u), 0).UTC()
}

func (u UnixTime) String() string {
	return timex.FormatTimestamp(u.Time())
}

func (u UnixTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON accepts an ISO8601 string or integer Unix seconds.
func (u *UnixTime) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*u = UnixTime(int64(value))
	case string:
		t, err := timex.ParseTimestamp(value)
		if err != nil {
			return err
		}
		*u = NewUnixTime(t)
	default:
		return fmt.Errorf("invalid timestamp %s", string(b))
	}
	return nil
}

func (u UnixTime) Value() (driver.Value, error) {
	return int64(u), nil
}

// Scan reads INTEGER seconds; text columns holding digits or an ISO8601
// timestamp are accepted as well.
func (u *UnixTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u = 0
	case int64:
		*u = UnixTime(v)
	case time.Time:
		*u = NewUnixTime(v)
	case []byte:
		return u.scanText(string(v))
	case string:
		return u.scanText(v)
	default:
		return fmt.Errorf("cannot scan %T into UnixTime", src)
	}
	return nil
}

func (u *UnixTime) scanText(s string) error {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*u = UnixTime(n)
		return nil
	}
	t, err := timex.ParseTimestamp(s)
	if err != nil {
		return err
	}
	*u = NewUnixTime(t)
	return nil
}
