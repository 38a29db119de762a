package formatter

import (
	"strconv"
	"strings"
	"time"
)

var weekdayKeys = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// DayKey returns the hours-map key for t's weekday.
func DayKey(t time.Time) string {
	return weekdayKeys[t.Weekday()]
}

// IsOpen reports whether now falls inside today's "H:MM AM - H:MM PM" range,
// bounds inclusive. A nil map, a missing or "Closed" entry, or a range that
// does not parse all count as closed.
func IsOpen(hours map[string]string, now time.Time) bool {
	if hours == nil {
		return false
	}
	today := hours[DayKey(now)]
	if today == "" || today == "Closed" {
		return false
	}

	parts := strings.Split(today, " - ")
	if len(parts) < 2 {
		return false
	}
	open, ok1 := clockMinutes(parts[0])
	closeAt, ok2 := clockMinutes(parts[1])
	if !ok1 || !ok2 {
		return false
	}

	nowMinutes := float64(now.Hour()*60 + now.Minute())
	return nowMinutes >= open && nowMinutes <= closeAt
}

// clockMinutes converts "9:30 PM" to minutes since midnight. PM adds twelve
// hours except at 12 PM; 12 AM is hour zero. Without a period the value is
// read as 24-hour time.
func clockMinutes(s string) (float64, bool) {
	fields := strings.Split(s, " ")
	hm := strings.Split(fields[0], ":")
	if len(hm) < 2 {
		return 0, false
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(hm[0]), 64)
	if err != nil {
		return 0, false
	}
	m, err := strconv.ParseFloat(strings.TrimSpace(hm[1]), 64)
	if err != nil {
		return 0, false
	}

	period := ""
	if len(fields) > 1 {
		period = fields[1]
	}
	if period == "PM" && h != 12 {
		h += 12
	}
	if period == "AM" && h == 12 {
		h = 0
	}
	return h*60 + m, true
}

// TodayHours returns today's entry, "Closed" when there is none, or
// "Hours not available" without an hours map.
func TodayHours(hours map[string]string, now time.Time) string {
	if hours == nil {
		return "Hours not available"
	}
	return orDefault(hours[DayKey(now)], "Closed")
}

// ClosingTime returns the part after " - ", or "".
func ClosingTime(todayHours string) string {
	parts := strings.Split(todayHours, " - ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
