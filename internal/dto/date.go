package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yukikurage/survey-api/internal/constants"
)

// Date is a calendar date transported as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(constants.DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		d.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	return d.UnmarshalText([]byte(raw))
}

// UnmarshalText parses the YYYY-MM-DD layout.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := time.Parse(constants.DateLayout, string(text))
	if err != nil {
		return fmt.Errorf("date must use the %s layout: %w", constants.DateLayout, err)
	}
	d.Time = parsed
	return nil
}
