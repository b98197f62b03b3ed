package lunar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vdhoang/botui/internal/dates"
	"github.com/vdhoang/botui/internal/models"
)

// rolloverThreshold decides when an occurrence counts as "already passed this
// year" and the next year's occurrence should be shown instead. The value is
// deliberate: events between roughly 165 and 200 days in the past keep showing
// this year's date, so changing it shifts which occurrence users see.
const rolloverThreshold = -200

// ParseEvents projects a raw lunar-events text block onto the solar calendar.
//
// Each line has the form "day/month: name" (lunar day first). Malformed lines
// produce no entry and no error; the text block is the single source of truth
// and entries are re-derived on every call. The result is sorted ascending by
// DaysLeft, so the most imminent (or most recently passed) events come first.
func ParseEvents(text string, today time.Time) []models.LunarEvent {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	today = dates.Midnight(today)

	var events []models.LunarEvent
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ev, ok := parseLine(line, today)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DaysLeft < events[j].DaysLeft
	})
	return events
}

func parseLine(line string, today time.Time) (models.LunarEvent, bool) {
	parts := strings.Split(line, ":")
	if len(parts) < 2 {
		return models.LunarEvent{}, false
	}
	dateParts := strings.Split(strings.TrimSpace(parts[0]), "/")
	if len(dateParts) != 2 {
		return models.LunarEvent{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(dateParts[0]))
	if err != nil {
		return models.LunarEvent{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(dateParts[1]))
	if err != nil {
		return models.LunarEvent{}, false
	}

	sm, sd, err := ToSolar(today.Year(), month, day)
	if err != nil {
		return models.LunarEvent{}, false
	}
	occurrence := time.Date(today.Year(), time.Month(sm), sd, 0, 0, 0, 0, time.UTC)
	daysLeft := int(occurrence.Sub(today) / (24 * time.Hour))

	// Deep enough in the past that next year's occurrence is the relevant one.
	if daysLeft < rolloverThreshold {
		if sm2, sd2, err := ToSolar(today.Year()+1, month, day); err == nil {
			sm, sd = sm2, sd2
			occurrence = time.Date(today.Year()+1, time.Month(sm), sd, 0, 0, 0, 0, time.UTC)
			daysLeft = int(occurrence.Sub(today) / (24 * time.Hour))
		}
	}

	return models.LunarEvent{
		LunarDate: fmt.Sprintf("%d/%d", day, month),
		SolarDate: fmt.Sprintf("%d/%d", sd, sm),
		EventName: strings.TrimSpace(parts[1]),
		DaysLeft:  daysLeft,
		DaysText:  daysText(daysLeft),
	}, true
}

// daysText is the flat-day label scheme for lunar occurrences. Unlike memory
// records, past occurrences keep a flat day count instead of the
// year/month/day breakdown.
func daysText(daysLeft int) string {
	switch {
	case daysLeft == 0:
		return "Hôm nay"
	case daysLeft == 1:
		return "Ngày mai"
	case daysLeft > 1:
		return fmt.Sprintf("Cách %d ngày", daysLeft)
	default:
		return fmt.Sprintf("Đã qua %d ngày", -daysLeft)
	}
}
