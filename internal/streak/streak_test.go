package streak

import (
	"testing"
	"time"
)

// day returns a local-midnight date. August 2026: the 3rd is the first
// Monday, 8th/9th are a weekend.
func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.Local)
}

const longEnough = 10 * time.Minute

func TestShortSessionIgnored(t *testing.T) {
	tr := New()
	res := tr.RecordPracticeSession(day(3), 4*time.Minute)
	if !res.Ignored {
		t.Fatalf("expected sub-5-minute session ignored")
	}
	if rec := tr.Record(); rec.CurrentStreak != 0 || rec.TotalPracticeDays != 0 {
		t.Fatalf("ignored session must not mutate the record: %+v", rec)
	}
}

func TestFirstSessionStartsStreak(t *testing.T) {
	tr := New()
	res := tr.RecordPracticeSession(day(3), longEnough)
	if !res.Counted || res.StreakAfter != 1 {
		t.Fatalf("expected streak of 1, got %+v", res)
	}
	rec := tr.Record()
	if rec.TotalPracticeDays != 1 || !rec.StreakStartDate.Equal(day(3)) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestSameDayDoesNotDoubleCount(t *testing.T) {
	tr := New()
	tr.RecordPracticeSession(day(3), longEnough)
	res := tr.RecordPracticeSession(day(3).Add(8*time.Hour), longEnough)

	if res.DayGap != 0 || res.Counted {
		t.Fatalf("expected same-day no-op, got %+v", res)
	}
	rec := tr.Record()
	if rec.CurrentStreak != 1 || rec.TotalPracticeDays != 1 {
		t.Fatalf("same-day session must not grow anything: %+v", rec)
	}
}

func TestConsecutiveDaysExtendStreak(t *testing.T) {
	tr := New()
	tr.RecordPracticeSession(day(3), longEnough)
	tr.RecordPracticeSession(day(4), longEnough)
	res := tr.RecordPracticeSession(day(5), longEnough)

	if res.StreakAfter != 3 {
		t.Fatalf("expected streak of 3, got %+v", res)
	}
	if rec := tr.Record(); rec.LongestStreak != 3 || rec.TotalPracticeDays != 3 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestOneMissedDaySpendsCredit(t *testing.T) {
	tr := New()
	tr.RecordPracticeSession(day(3), longEnough)
	res := tr.RecordPracticeSession(day(5), longEnough) // skipped the 4th

	if !res.CreditSpent || res.StreakAfter != 2 {
		t.Fatalf("expected credit-bridged streak of 2, got %+v", res)
	}
	if rec := tr.Record(); rec.ForgivenessCredits != 2 {
		t.Fatalf("expected 2 credits left, got %d", rec.ForgivenessCredits)
	}
}

func TestOneMissedDayWithoutCreditsResets(t *testing.T) {
	tr := Restore(Record{
		CurrentStreak:    5,
		LongestStreak:    5,
		LastPracticeDate: day(3),
	})
	res := tr.RecordPracticeSession(day(5), longEnough)

	if !res.Reset || res.StreakAfter != 1 {
		t.Fatalf("expected reset without credits, got %+v", res)
	}
	if rec := tr.Record(); rec.LongestStreak != 5 {
		t.Fatalf("longest streak must survive a reset: %+v", rec)
	}
}

func TestThreeDayGapResetsButKeepsCredits(t *testing.T) {
	tr := New()
	tr.RecordPracticeSession(day(3), longEnough)
	res := tr.RecordPracticeSession(day(6), longEnough) // days 4 and 5 missed

	if !res.Reset || res.StreakAfter != 1 {
		t.Fatalf("expected reset on 3-day gap, got %+v", res)
	}
	if rec := tr.Record(); rec.ForgivenessCredits != 3 {
		t.Fatalf("credits must not cover multi-day gaps: %d", rec.ForgivenessCredits)
	}
}

func TestCatchUpWindowPreservesStreak(t *testing.T) {
	tr := Restore(Record{
		CurrentStreak:      4,
		LongestStreak:      4,
		LastPracticeDate:   day(3),
		ForgivenessCredits: 0,
	})
	tr.ActivateCatchUp(day(6))
	res := tr.RecordPracticeSession(day(7), longEnough)

	if !res.CatchUpConsumed || res.StreakAfter != 5 {
		t.Fatalf("expected catch-up to continue the streak, got %+v", res)
	}
	if rec := tr.Record(); rec.CatchUpDeadline != nil {
		t.Fatalf("catch-up deadline must clear after use")
	}
}

func TestExpiredCatchUpDoesNotSave(t *testing.T) {
	tr := Restore(Record{
		CurrentStreak:      4,
		LongestStreak:      4,
		LastPracticeDate:   day(3),
		ForgivenessCredits: 0,
	})
	tr.ActivateCatchUp(day(4))
	res := tr.RecordPracticeSession(day(10), longEnough)

	if !res.Reset {
		t.Fatalf("expected reset after the window expired, got %+v", res)
	}
	if rec := tr.Record(); rec.CatchUpDeadline != nil {
		t.Fatalf("expired deadline must be dropped")
	}
}

func TestWeekendBonusAppliesOncePerWeek(t *testing.T) {
	tr := New()
	tr.RecordPracticeSession(day(6), longEnough) // Thursday
	tr.RecordPracticeSession(day(7), longEnough) // Friday
	res := tr.RecordPracticeSession(day(8), longEnough) // Saturday

	if !res.WeekendBonus || res.StreakAfter != 4 { // 3 * 1.5 floored
		t.Fatalf("expected weekend bonus 3 -> 4, got %+v", res)
	}

	res = tr.RecordPracticeSession(day(9), longEnough) // Sunday
	if res.WeekendBonus {
		t.Fatalf("bonus must apply once per week, got %+v", res)
	}
	if res.StreakAfter != 5 {
		t.Fatalf("expected plain increment on Sunday, got %+v", res)
	}
}

func TestWeekendBonusResetsNextWeek(t *testing.T) {
	tr := New()
	tr.RecordPracticeSession(day(8), longEnough) // Saturday, bonus used (1 -> 1)
	if rec := tr.Record(); !rec.WeekendBonusUsed {
		t.Fatalf("expected bonus flag set")
	}

	for d := 9; d <= 14; d++ { // through next Friday
		tr.RecordPracticeSession(day(d), longEnough)
	}
	res := tr.RecordPracticeSession(day(15), longEnough) // next Saturday
	if !res.WeekendBonus {
		t.Fatalf("expected bonus available again next week, got %+v", res)
	}
}

func TestCreditsRefillOnFirstMonday(t *testing.T) {
	// Last practiced late August with no credits left; the first Monday of
	// September 2026 is the 7th.
	tr := Restore(Record{
		CurrentStreak:      1,
		LongestStreak:      1,
		LastPracticeDate:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local),
		ForgivenessCredits: 0,
	})

	tr.RecordPracticeSession(time.Date(2026, 9, 4, 0, 0, 0, 0, time.Local), longEnough)
	if rec := tr.Record(); rec.ForgivenessCredits != 0 {
		t.Fatalf("no refill before the first Monday: %d", rec.ForgivenessCredits)
	}

	tr.RecordPracticeSession(time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local), longEnough)
	if rec := tr.Record(); rec.ForgivenessCredits != 3 {
		t.Fatalf("expected full refill on the first Monday, got %d", rec.ForgivenessCredits)
	}
}

func TestStreakMilestonesReported(t *testing.T) {
	tr := New()
	var milestones []int
	for d := 3; d <= 9; d++ {
		res := tr.RecordPracticeSession(day(d), longEnough)
		milestones = append(milestones, res.Milestones...)
	}

	want := map[int]bool{3: true, 7: true}
	for _, m := range milestones {
		if !want[m] {
			t.Fatalf("unexpected milestone %d in %v", m, milestones)
		}
		delete(want, m)
	}
	if len(want) != 0 {
		t.Fatalf("missing milestones: %v (got %v)", want, milestones)
	}
}

func TestCheckStatusDoesNotMutate(t *testing.T) {
	tr := New()
	tr.RecordPracticeSession(day(3), longEnough)
	before := tr.Record()

	tr.CheckStatus(day(20))
	if after := tr.Record(); after != before {
		t.Fatalf("CheckStatus mutated the record: %+v != %+v", after, before)
	}
}

func TestCheckStatusClassification(t *testing.T) {
	tr := New()
	if got := tr.CheckStatus(day(3)); got.State != StateBroken {
		t.Fatalf("expected broken with no history, got %+v", got)
	}

	tr.RecordPracticeSession(day(3), longEnough)
	if got := tr.CheckStatus(day(3).Add(10 * time.Hour)); got.State != StateSafe {
		t.Fatalf("expected safe on practice day, got %+v", got)
	}
	if got := tr.CheckStatus(day(4)); got.State != StateAtRisk {
		t.Fatalf("expected at_risk after one day, got %+v", got)
	}
	if got := tr.CheckStatus(day(5)); got.State != StateAtRisk {
		t.Fatalf("expected at_risk while a credit can still bridge, got %+v", got)
	}
	if got := tr.CheckStatus(day(10)); got.State != StateBroken {
		t.Fatalf("expected broken after a long gap, got %+v", got)
	}

	tr.ActivateCatchUp(day(10))
	if got := tr.CheckStatus(day(11)); got.State != StateCatchUpAvailable {
		t.Fatalf("expected catch_up_available, got %+v", got)
	}
}

func TestRestoreClampsCorruptValues(t *testing.T) {
	tr := Restore(Record{
		CurrentStreak:      7,
		LongestStreak:      2,
		ForgivenessCredits: 99,
	})
	rec := tr.Record()
	if rec.ForgivenessCredits != 3 {
		t.Fatalf("expected credits clamped to 3, got %d", rec.ForgivenessCredits)
	}
	if rec.LongestStreak != 7 {
		t.Fatalf("expected longest raised to current, got %d", rec.LongestStreak)
	}
}
