// Package dates implements calendar-date parsing and the human-readable
// distance labels shown next to event dates.
package dates

import (
	"fmt"
	"time"

	"github.com/vdhoang/botui/internal/apperr"
)

// ISO is the wire format for event dates.
const ISO = "2006-01-02"

// ParseISO parses a YYYY-MM-DD date into a UTC midnight time.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(ISO, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: parse %q: %w", s, apperr.ErrInvalidDate)
	}
	return t, nil
}

// Midnight strips the time-of-day component, keeping the calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Distance describes how far an event date lies from today.
type Distance struct {
	Label         string `json:"label"`
	DateFormatted string `json:"dateFormatted"` // DD/MM/YYYY
	IsPast        bool   `json:"isPast"`
	DaysDelta     int    `json:"daysDelta"` // signed whole days, negative = past
}

// Describe computes the display label for an event date relative to today.
//
// Future (or same-day) events get a flat day count. Past events get a true
// calendar-field breakdown (years, months, days) because "2 năm 3 tháng"
// reads better than a four-digit day count once an event recedes.
func Describe(event, today time.Time) Distance {
	event = Midnight(event)
	today = Midnight(today)

	d := Distance{
		DateFormatted: fmt.Sprintf("%02d/%02d/%04d", event.Day(), int(event.Month()), event.Year()),
		DaysDelta:     wholeDays(today, event),
	}

	if event.Before(today) {
		d.IsPast = true
		d.Label = pastLabel(event, today)
		return d
	}

	switch d.DaysDelta {
	case 0:
		d.Label = "Hôm nay"
	case 1:
		d.Label = "Ngày mai"
	default:
		d.Label = fmt.Sprintf("Cách %d ngày", d.DaysDelta)
	}
	return d
}

// pastLabel builds the "Đã qua X năm Y tháng Z ngày" breakdown. Years are
// counted first, then whole months, then leftover days; intermediate
// anchors that land past the end of a month clamp to that month's last
// day instead of rolling over.
func pastLabel(event, today time.Time) string {
	years := today.Year() - event.Year()
	anchor := shiftMonthsClamped(event, 12*years)
	if anchor.After(today) {
		years--
		anchor = shiftMonthsClamped(event, 12*years)
	}

	months := (today.Year()-anchor.Year())*12 + int(today.Month()) - int(anchor.Month())
	anchor = shiftMonthsClamped(event, 12*years+months)
	if anchor.After(today) {
		months--
		anchor = shiftMonthsClamped(event, 12*years+months)
	}

	days := wholeDays(anchor, today)

	label := ""
	if years > 0 {
		label += fmt.Sprintf(" %d năm", years)
	}
	if months > 0 {
		label += fmt.Sprintf(" %d tháng", months)
	}
	if days > 0 {
		label += fmt.Sprintf(" %d ngày", days)
	}
	if label == "" {
		return "Hôm nay"
	}
	return "Đã qua" + label
}

// shiftMonthsClamped adds months to t, clamping the day-of-month to the
// target month's last valid day (31 Jan + 1 month = 28/29 Feb, never 2/3 Mar).
func shiftMonthsClamped(t time.Time, months int) time.Time {
	total := t.Year()*12 + int(t.Month()) - 1 + months
	year, month := total/12, time.Month(total%12+1)
	day := t.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// wholeDays returns the whole-day difference to - from. Both arguments must
// already be UTC midnights, so the division is exact.
func wholeDays(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
