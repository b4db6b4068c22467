package types

import (
	"fmt"
	"time"

	"github.com/tatipharma/pharmabi/api"
)

// Date is a flag that accepts a calendar date or an RFC3339 timestamp. Dates
// are read as midnight UTC.
type Date struct {
	time.Time
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func (d *Date) Set(raw string) error {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
}

func (d *Date) String() string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d *Date) Type() string {
	return "date"
}

// APITime returns the date as an api.Time, or nil when it is not set.
func (d *Date) APITime() *api.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := api.Time(d.Time)
	return &t
}

// EndOfDay returns the last instant of the day of d, for inclusive ranges
// given as dates.
func (d *Date) EndOfDay() *api.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	if d.Time != d.Truncate(24*time.Hour) {
		return d.APITime()
	}
	t := api.Time(d.Add(24*time.Hour - time.Second))
	return &t
}
