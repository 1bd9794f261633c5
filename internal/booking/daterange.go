package booking

import (
	"errors"
	"time"
)

// DateLayout is the wire and storage format for rental dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvertedRange     = errors.New("end date must be the same or after start date")
)

// DateRange is an inclusive calendar-day interval. Both endpoints count as
// rental days, so a single-day rental has Start == End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseRange parses two date strings and validates the resulting range.
func ParseRange(startStr, endStr string) (DateRange, error) {
	start, err := time.ParseInLocation(DateLayout, startStr, time.UTC)
	if err != nil {
		return DateRange{}, ErrInvalidDateFormat
	}

	end, err := time.ParseInLocation(DateLayout, endStr, time.UTC)
	if err != nil {
		return DateRange{}, ErrInvalidDateFormat
	}

	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}

	return r, nil
}

func (r DateRange) Validate() error {
	if r.End.Before(r.Start) {
		return ErrInvertedRange
	}
	return nil
}

// Days returns the inclusive day count, never less than 1 for a valid range.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Overlaps reports whether the two inclusive ranges share at least one
// calendar day. Adjacent ranges sharing a boundary day DO overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// Contains reports whether day falls inside the range, endpoints included.
func (r DateRange) Contains(day time.Time) bool {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) StartString() string {
	return r.Start.Format(DateLayout)
}

func (r DateRange) EndString() string {
	return r.End.Format(DateLayout)
}
