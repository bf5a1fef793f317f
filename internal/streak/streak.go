// Package streak maintains day-granularity practice continuity with bounded
// forgiveness credits, a time-boxed catch-up window, and a weekend bonus.
package streak

import (
	"math"
	"time"
)

const (
	// minSessionDuration is the floor below which a session does not count.
	minSessionDuration = 5 * time.Minute
	// maxForgivenessCredits caps the credit balance.
	maxForgivenessCredits = 3
	// catchUpWindow is how long an activated catch-up deadline stays open.
	catchUpWindow = 48 * time.Hour
)

// milestoneDays are the streak lengths worth celebrating.
var milestoneDays = []int{3, 7, 14, 30, 50, 100}

// Record is the persistent streak state. Dates are stored at local midnight.
type Record struct {
	CurrentStreak      int        `json:"currentStreak"`
	LongestStreak      int        `json:"longestStreak"`
	LastPracticeDate   time.Time  `json:"lastPracticeDate"`
	ForgivenessCredits int        `json:"forgivenessCredits"`
	TotalPracticeDays  int        `json:"totalPracticeDays"`
	StreakStartDate    time.Time  `json:"streakStartDate"`
	WeekendBonusUsed   bool       `json:"weekendBonusUsed"`
	CatchUpDeadline    *time.Time `json:"catchUpDeadline,omitempty"`
}

// Tracker mutates a streak record at most once per calendar day.
type Tracker struct {
	rec Record
}

// New creates a tracker with a fresh record and a full credit balance.
func New() *Tracker {
	return &Tracker{rec: Record{ForgivenessCredits: maxForgivenessCredits}}
}

// Restore creates a tracker from a persisted record, clamping out-of-range
// fields instead of rejecting them.
func Restore(rec Record) *Tracker {
	if rec.ForgivenessCredits < 0 {
		rec.ForgivenessCredits = 0
	}
	if rec.ForgivenessCredits > maxForgivenessCredits {
		rec.ForgivenessCredits = maxForgivenessCredits
	}
	if rec.CurrentStreak < 0 {
		rec.CurrentStreak = 0
	}
	if rec.LongestStreak < rec.CurrentStreak {
		rec.LongestStreak = rec.CurrentStreak
	}
	return &Tracker{rec: rec}
}

// Record returns a copy of the current state.
func (t *Tracker) Record() Record {
	return t.rec
}

// Result describes what one recorded practice session did to the streak.
type Result struct {
	Ignored         bool
	Counted         bool
	DayGap          int
	StreakBefore    int
	StreakAfter     int
	CreditSpent     bool
	CatchUpConsumed bool
	WeekendBonus    bool
	Reset           bool
	Milestones      []int
}

// RecordPracticeSession applies one finished session to the streak.
// Sessions under the five-minute floor are ignored and leave the record
// untouched. Dates compare at local-midnight day granularity.
func (t *Tracker) RecordPracticeSession(date time.Time, duration time.Duration) Result {
	if duration < minSessionDuration {
		return Result{Ignored: true}
	}

	day := dateOnly(date)
	before := t.rec.CurrentStreak

	// An expired catch-up deadline disappears silently.
	if t.rec.CatchUpDeadline != nil && date.After(*t.rec.CatchUpDeadline) {
		t.rec.CatchUpDeadline = nil
	}

	t.maybeClearWeekendBonus(day)
	t.maybeRefillCredits(day)

	res := Result{StreakBefore: before}

	if t.rec.LastPracticeDate.IsZero() {
		t.rec.CurrentStreak = 1
		t.rec.StreakStartDate = day
		res.Counted = true
	} else {
		gap := daysBetween(dateOnly(t.rec.LastPracticeDate), day)
		res.DayGap = gap

		switch {
		case gap == 0:
			res.StreakAfter = t.rec.CurrentStreak
			return res
		case gap == 1:
			t.rec.CurrentStreak++
			res.Counted = true
		case gap == 2 && t.rec.ForgivenessCredits > 0:
			t.rec.ForgivenessCredits--
			t.rec.CurrentStreak++
			res.Counted = true
			res.CreditSpent = true
		case gap > 2 && t.catchUpActive(date):
			t.rec.CurrentStreak++
			t.rec.CatchUpDeadline = nil
			res.Counted = true
			res.CatchUpConsumed = true
		default:
			t.rec.CurrentStreak = 1
			t.rec.StreakStartDate = day
			res.Counted = true
			res.Reset = true
		}
	}

	t.rec.TotalPracticeDays++
	t.rec.LastPracticeDate = day

	if isWeekend(day) && !t.rec.WeekendBonusUsed {
		t.rec.CurrentStreak = t.rec.CurrentStreak * 3 / 2
		t.rec.WeekendBonusUsed = true
		res.WeekendBonus = true
	}

	if t.rec.CurrentStreak > t.rec.LongestStreak {
		t.rec.LongestStreak = t.rec.CurrentStreak
	}

	res.StreakAfter = t.rec.CurrentStreak
	for _, m := range milestoneDays {
		if before < m && t.rec.CurrentStreak >= m {
			res.Milestones = append(res.Milestones, m)
		}
	}
	return res
}

// ActivateCatchUp opens a 48-hour window during which one qualifying session
// preserves an otherwise-broken streak.
func (t *Tracker) ActivateCatchUp(now time.Time) time.Time {
	deadline := now.Add(catchUpWindow)
	t.rec.CatchUpDeadline = &deadline
	return deadline
}

func (t *Tracker) catchUpActive(now time.Time) bool {
	return t.rec.CatchUpDeadline != nil && !now.After(*t.rec.CatchUpDeadline)
}

// maybeClearWeekendBonus resets the weekend flag once a new Monday-anchored
// week begins.
func (t *Tracker) maybeClearWeekendBonus(day time.Time) {
	if !t.rec.WeekendBonusUsed || t.rec.LastPracticeDate.IsZero() {
		return
	}
	if weekStart(day).After(weekStart(dateOnly(t.rec.LastPracticeDate))) {
		t.rec.WeekendBonusUsed = false
	}
}

// maybeRefillCredits restores the credit balance on the first Monday of a
// month, once that Monday postdates the last recorded session.
func (t *Tracker) maybeRefillCredits(day time.Time) {
	fm := firstMonday(day.Year(), day.Month())
	if day.Before(fm) {
		return
	}
	if t.rec.LastPracticeDate.IsZero() || dateOnly(t.rec.LastPracticeDate).Before(fm) {
		t.rec.ForgivenessCredits = maxForgivenessCredits
	}
}

// State classifies streak health for the presentation layer.
type State string

const (
	StateSafe             State = "safe"
	StateAtRisk           State = "at_risk"
	StateCatchUpAvailable State = "catch_up_available"
	StateBroken           State = "broken"
)

// Status is a read-only classification of the streak; it never mutates state.
type Status struct {
	State   State
	Message string
}

// CheckStatus classifies the streak relative to now without mutating anything.
func (t *Tracker) CheckStatus(now time.Time) Status {
	if t.rec.LastPracticeDate.IsZero() {
		return Status{State: StateBroken, Message: "no streak yet; finish a five-minute session to start one"}
	}

	gap := daysBetween(dateOnly(t.rec.LastPracticeDate), dateOnly(now))
	switch {
	case gap <= 0:
		return Status{State: StateSafe, Message: "practiced today; streak is safe"}
	case gap == 1:
		return Status{State: StateAtRisk, Message: "practice today to keep your streak"}
	case t.catchUpActive(now):
		return Status{State: StateCatchUpAvailable, Message: "catch-up window open; one session saves the streak"}
	case gap == 2 && t.rec.ForgivenessCredits > 0:
		return Status{State: StateAtRisk, Message: "missed a day; a forgiveness credit can still save the streak"}
	default:
		return Status{State: StateBroken, Message: "streak broken; practice today to start a new one"}
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole days between two local midnights. Rounding
// absorbs DST-shortened or -lengthened days.
func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func isWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// weekStart returns the Monday-anchored start of the week containing day.
func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// firstMonday returns the first Monday of the given month at local midnight.
func firstMonday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	offset := (int(time.Monday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset)
}
