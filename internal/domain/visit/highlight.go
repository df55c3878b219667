package visit

import (
	"sort"
	"time"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
)

// DefaultLead is how long before its scheduled time a visit becomes current.
const DefaultLead = 20 * time.Minute

// SortByTime returns a copy of appts ordered by scheduled time. Equal times
// keep their list order; unparsable times go last.
func SortByTime(appts []models.Appointment) []models.Appointment {
	out := models.CloneAppointments(appts)
	sort.SliceStable(out, func(i, j int) bool {
		mi, okI := ParseClock(out[i].Time)
		mj, okJ := ParseClock(out[j].Time)
		switch {
		case okI && okJ:
			return mi < mj
		case okI:
			return true
		default:
			return false
		}
	})
	return out
}

// SelectCurrent returns the id of the visit to emphasize at now: the last
// visit, in time order, whose effective start (time minus lead) is not after
// now. When none has started the earliest visit is returned, and an empty
// list yields "".
func SelectCurrent(appts []models.Appointment, now time.Time, lead time.Duration) string {
	if len(appts) == 0 {
		return ""
	}
	sorted := SortByTime(appts)
	current := ""
	for _, a := range sorted {
		m, ok := ParseClock(a.Time)
		if !ok {
			continue
		}
		if !onDay(now, m).Add(-lead).After(now) {
			current = a.ID
		}
	}
	if current == "" {
		return sorted[0].ID
	}
	return current
}
