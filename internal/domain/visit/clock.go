package visit

import (
	"strconv"
	"strings"
	"time"
)

// ParseClock parses a wall-clock "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// FormatClock renders t as "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// onDay returns the instant at the given minutes since midnight on the same
// calendar day as ref, in ref's location.
func onDay(ref time.Time, minutes int) time.Time {
	y, mo, d := ref.Date()
	return time.Date(y, mo, d, minutes/60, minutes%60, 0, 0, ref.Location())
}
