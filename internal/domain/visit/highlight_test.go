package visit

import (
	"math/rand"
	"testing"
	"time"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
)

func at(clock string) time.Time {
	m, ok := ParseClock(clock)
	if !ok {
		panic("bad clock " + clock)
	}
	return time.Date(2026, 3, 2, m/60, m%60, 0, 0, time.UTC)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"08:00", 480, true},
		{"8:05", 485, true},
		{"23:59", 1439, true},
		{"00:00", 0, true},
		{" 07:30 ", 450, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"12:5", 0, false},
		{"1200", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseClock(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseClock(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSelectCurrent(t *testing.T) {
	abc := []models.Appointment{
		{ID: "A", Time: "08:00"},
		{ID: "B", Time: "09:00"},
		{ID: "C", Time: "10:00"},
	}
	tests := []struct {
		name  string
		appts []models.Appointment
		now   time.Time
		want  string
	}{
		{"empty list", nil, at("09:00"), ""},
		{"before everything defaults to earliest", abc, at("06:00"), "A"},
		{"lead makes next visit current", abc, at("08:40"), "B"},
		{"just before lead", abc, at("08:40").Add(-time.Second), "A"},
		{"after last visit", abc, at("23:00"), "C"},
		{"unsorted input", []models.Appointment{abc[2], abc[0], abc[1]}, at("09:45"), "C"},
		{"unsorted input defaults to earliest", []models.Appointment{abc[2], abc[1], abc[0]}, at("05:00"), "A"},
		{"unparsable never qualifies", []models.Appointment{{ID: "X", Time: "later"}, abc[0]}, at("12:00"), "A"},
		{"equal times resolve by list order", []models.Appointment{{ID: "X", Time: "09:00"}, {ID: "Y", Time: "09:00"}}, at("09:00"), "Y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectCurrent(tt.appts, tt.now, DefaultLead); got != tt.want {
				t.Errorf("SelectCurrent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectCurrent_ZeroLead(t *testing.T) {
	appts := []models.Appointment{{ID: "A", Time: "08:00"}, {ID: "B", Time: "09:00"}}
	if got := SelectCurrent(appts, at("08:59"), 0); got != "A" {
		t.Errorf("expected A without lead, got %s", got)
	}
}

// Random schedules: the result is always a member, it qualifies when anything
// qualifies, and no later-starting visit also qualifies.
func TestSelectCurrent_LastQualifying(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		n := 1 + rng.Intn(12)
		appts := make([]models.Appointment, n)
		for i := range appts {
			m := rng.Intn(24 * 60)
			appts[i] = models.Appointment{ID: string(rune('a' + i)), Time: FormatClock(at("00:00").Add(time.Duration(m) * time.Minute))}
		}
		now := at("00:00").Add(time.Duration(rng.Intn(24*60)) * time.Minute)
		got := SelectCurrent(appts, now, DefaultLead)

		var sel *models.Appointment
		for i := range appts {
			if appts[i].ID == got {
				sel = &appts[i]
			}
		}
		if sel == nil {
			t.Fatalf("selected %q is not in the list", got)
		}
		qualifies := func(a models.Appointment) bool {
			m, _ := ParseClock(a.Time)
			return !onDay(now, m).Add(-DefaultLead).After(now)
		}
		anyQualifies := false
		for _, a := range appts {
			if qualifies(a) {
				anyQualifies = true
			}
		}
		if anyQualifies && !qualifies(*sel) {
			t.Fatalf("selected %s at %s does not qualify at %s", sel.ID, sel.Time, FormatClock(now))
		}
		selMin, _ := ParseClock(sel.Time)
		for _, a := range appts {
			m, _ := ParseClock(a.Time)
			if anyQualifies && m > selMin && qualifies(a) {
				t.Fatalf("later visit %s at %s also qualifies over %s", a.ID, a.Time, sel.Time)
			}
		}
	}
}

func TestSortByTime_Stable(t *testing.T) {
	in := []models.Appointment{
		{ID: "bad", Time: "soon"},
		{ID: "late", Time: "10:00"},
		{ID: "x", Time: "09:00"},
		{ID: "y", Time: "09:00"},
	}
	out := SortByTime(in)
	want := []string{"x", "y", "late", "bad"}
	for i, id := range want {
		if out[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, out[i].ID, id)
		}
	}
	if in[0].ID != "bad" {
		t.Error("input was reordered")
	}
}
