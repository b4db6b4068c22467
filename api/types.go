package api

import (
	"strings"
	"time"
)

// Time is a timestamp sent by the backend. The backend sends RFC3339 values
// for some fields and zone-less values for others; zone-less values are read
// as UTC.
type Time time.Time

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t Time) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return []byte("null"), nil
	}
	s := time.Time(t).UTC().Format(time.RFC3339)
	return []byte(`"` + s + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		return nil
	}
	s := strings.Trim(string(data), `"`)

	var err error
	for _, layout := range timeLayouts {
		var tmp time.Time
		tmp, err = time.Parse(layout, s)
		if err == nil {
			*t = Time(tmp.UTC())
			return nil
		}
	}
	return err
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) String() string {
	return time.Time(t).Format(time.RFC3339)
}

func (t Time) Format(layout string) string {
	return time.Time(t).Format(layout)
}

// Date formats t as a calendar date, or returns "" for the zero value.
func (t Time) Date() string {
	if t.IsZero() {
		return ""
	}
	return time.Time(t).Format("2006-01-02")
}

// Row is an analytics record whose shape is not fixed by the backend.
type Row map[string]any
