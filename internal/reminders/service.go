// Package reminders parses the reminder messages the remote endpoint returns
// as chat text into structured entries.
package reminders

import (
	"strings"

	"github.com/vdhoang/botui/internal/models"
)

// noRemindersMarker is the endpoint's "empty list" sentinel message.
const noRemindersMarker = "Bạn chưa có nhắc nhở nào"

// repeatLabels maps repeat types to their display labels.
var repeatLabels = map[string]string{
	"no":      "Không lặp",
	"day":     "Mỗi ngày",
	"week":    "Mỗi tuần",
	"month":   "Mỗi tháng",
	"weekday": "Ngày trong tuần",
	"weekend": "Cuối tuần",
}

// Parse extracts structured reminders from the raw message texts. The id of
// each entry is its position in the listing, which is also what the remove
// operation keys on.
func Parse(messages []string) []models.Reminder {
	if len(messages) == 0 {
		return nil
	}
	if len(messages) == 1 && strings.Contains(messages[0], noRemindersMarker) {
		return nil
	}

	out := make([]models.Reminder, 0, len(messages))
	for i, text := range messages {
		r := models.Reminder{ID: i, RepeatType: "no", RawText: text}
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.Contains(line, "Người nhận:"):
				r.Person = fieldValue(line, "Người nhận:")
			case strings.Contains(line, "Nội dung:"):
				r.Content = fieldValue(line, "Nội dung:")
			case strings.Contains(line, "Vào lúc:"):
				r.Time = fieldValue(line, "Vào lúc:")
			case strings.Contains(line, "Lặp lại:"):
				r.RepeatType = repeatType(fieldValue(line, "Lặp lại:"))
			}
		}
		out = append(out, r)
	}
	return out
}

func fieldValue(line, prefix string) string {
	return strings.TrimSpace(strings.Replace(line, prefix, "", 1))
}

func repeatType(label string) string {
	switch {
	case strings.Contains(label, "hàng ngày"):
		return "day"
	case strings.Contains(label, "hàng tuần"):
		return "week"
	case strings.Contains(label, "hàng tháng"):
		return "month"
	default:
		return "no"
	}
}

// RepeatLabel returns the display label for a repeat type.
func RepeatLabel(repeatType string) string {
	if l, ok := repeatLabels[repeatType]; ok {
		return l
	}
	return repeatLabels["no"]
}

// NormalizeDateTime converts the HTML datetime-local form
// (YYYY-MM-DDTHH:mm) to the endpoint's expected "YYYY-MM-DD HH:mm".
func NormalizeDateTime(input string) string {
	return strings.Replace(input, "T", " ", 1)
}
