package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/justsurfingit/job-application-tracker/internal/models"
)

// DateLayout is the layout accepted by ParseDateRange.
const DateLayout = "2006-01-02"

var ErrInvertedRange = errors.New("end date is before start date")

// DateRange is an inclusive range of calendar days. Only the date portion of
// each bound is used. A zero bound leaves that side open.
type DateRange struct {
	Start time.Time `json:"start,omitzero"`
	End   time.Time `json:"end,omitzero"`
}

// ParseDateRange parses two optional YYYY-MM-DD strings in loc.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	var r DateRange
	var err error
	if start != "" {
		if r.Start, err = time.ParseInLocation(DateLayout, start, loc); err != nil {
			return DateRange{}, fmt.Errorf("start: %w", err)
		}
	}
	if end != "" {
		if r.End, err = time.ParseInLocation(DateLayout, end, loc); err != nil {
			return DateRange{}, fmt.Errorf("end: %w", err)
		}
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return DateRange{}, ErrInvertedRange
	}
	return r, nil
}

// Filter keeps the applications whose applied date, seen in the reporting
// timezone, falls inside r. The bounds are taken as calendar dates in their
// own location. Input order is preserved.
func (a *Aggregator) Filter(apps []models.Application, r DateRange) []models.Application {
	lo, hi := -1, -1
	if !r.Start.IsZero() {
		lo = civilDay(r.Start)
	}
	if !r.End.IsZero() {
		hi = civilDay(r.End)
	}

	out := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		d := civilDay(app.AppliedDate.In(a.loc))
		if lo >= 0 && d < lo {
			continue
		}
		if hi >= 0 && d > hi {
			continue
		}
		out = append(out, app)
	}
	return out
}

// civilDay packs a date as YYYYMMDD so days compare as integers.
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
