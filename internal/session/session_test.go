package session

import (
	"math"
	"testing"
	"time"
)

func recordN(t *Tracker, char string, correct bool, startMs, stepMs int64, n int) int64 {
	ts := startMs
	for i := 0; i < n; i++ {
		t.RecordKeystroke(char, correct, ts)
		ts += stepMs
	}
	return ts - stepMs
}

func TestWPMAndAccuracy(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	// 101 keystrokes spaced 300ms: 30s elapsed, 101 chars.
	for i := 0; i <= 100; i++ {
		tr.RecordKeystroke("a", true, int64(i)*300)
	}

	if got := tr.DurationMs(); got != 30000 {
		t.Fatalf("expected 30000ms duration, got %d", got)
	}
	if got := tr.WPM(); math.Abs(got-40.4) > 1e-9 {
		t.Fatalf("expected 40.4 wpm, got %f", got)
	}
	if got := tr.Accuracy(); got != 100 {
		t.Fatalf("expected 100%% accuracy, got %f", got)
	}
}

func TestAccuracyCountsErrors(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	for i := 0; i < 8; i++ {
		tr.RecordKeystroke("a", true, int64(i)*100)
	}
	tr.RecordKeystroke("b", false, 800)
	tr.RecordKeystroke("b", false, 900)

	if got := tr.Accuracy(); got != 80 {
		t.Fatalf("expected 80%% accuracy, got %f", got)
	}
	if tr.Errors() != 2 || tr.CorrectChars() != 8 || tr.TotalChars() != 10 {
		t.Fatalf("unexpected counts: errors=%d correct=%d total=%d",
			tr.Errors(), tr.CorrectChars(), tr.TotalChars())
	}
}

func TestChallengingKeysFlagsHighErrorKey(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	ts := int64(0)
	// 90 clean 'a' presses, then 'q' missed half the time.
	for i := 0; i < 90; i++ {
		tr.RecordKeystroke("a", true, ts)
		ts += 100
	}
	for i := 0; i < 10; i++ {
		tr.RecordKeystroke("q", i%2 == 0, ts)
		ts += 100
	}

	keys := tr.ChallengingKeys()
	if len(keys) != 1 || keys[0] != "q" {
		t.Fatalf("expected [q], got %v", keys)
	}
}

func TestChallengingKeysRecoverAsWindowSlides(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	ts := int64(0)
	for i := 0; i < 10; i++ {
		tr.RecordKeystroke("q", i%2 == 0, ts)
		ts += 100
	}
	if keys := tr.ChallengingKeys(); len(keys) != 1 {
		t.Fatalf("expected q flagged, got %v", keys)
	}

	// 100 clean presses push the misses out of the trailing window.
	for i := 0; i < 100; i++ {
		tr.RecordKeystroke("q", true, ts)
		ts += 100
	}
	if keys := tr.ChallengingKeys(); len(keys) != 0 {
		t.Fatalf("expected no challenging keys after recovery, got %v", keys)
	}
}

func TestChallengingKeysNeedMinimumAttempts(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	for i := 0; i < 4; i++ {
		tr.RecordKeystroke("z", false, int64(i)*100)
	}
	if keys := tr.ChallengingKeys(); len(keys) != 0 {
		t.Fatalf("expected no keys under 5 attempts, got %v", keys)
	}
	tr.RecordKeystroke("z", false, 400)
	if keys := tr.ChallengingKeys(); len(keys) != 1 || keys[0] != "z" {
		t.Fatalf("expected [z] at 5 attempts, got %v", keys)
	}
}

func TestCheckMilestonesReportsEachThresholdOnce(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	for i := 0; i <= 100; i++ {
		tr.RecordKeystroke("a", true, int64(i)*300) // ~40 wpm, 100% accuracy
	}

	first := tr.CheckMilestones()
	if len(first) == 0 {
		t.Fatalf("expected milestones on first check")
	}
	seen := map[string]bool{}
	for _, m := range first {
		seen[m.Key] = true
	}
	for _, key := range []string{"wpm-10", "wpm-40", "accuracy-99"} {
		if !seen[key] {
			t.Fatalf("expected milestone %s, got %v", key, first)
		}
	}
	if seen["wpm-50"] {
		t.Fatalf("wpm-50 should not be reached at 40 wpm")
	}

	if again := tr.CheckMilestones(); len(again) != 0 {
		t.Fatalf("expected no milestones on unchanged stats, got %v", again)
	}
}

func TestRealtimeWPMFloorsShortBursts(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	// 50 chars in one second should not read as 600 wpm.
	recordN(tr, "a", true, 60000, 20, 50)

	got := tr.RealtimeWPM(61000, 60000)
	if math.Abs(got-10) > 1e-9 {
		t.Fatalf("expected 10 wpm with floored window, got %f", got)
	}
}

func TestRealtimeWPMIgnoresKeystrokesOutsideWindow(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	recordN(tr, "a", true, 0, 100, 50)      // old burst
	recordN(tr, "b", true, 120000, 100, 25) // recent burst

	got := tr.RealtimeWPM(125000, 60000)
	if math.Abs(got-5) > 1e-9 {
		t.Fatalf("expected 5 wpm from recent burst only, got %f", got)
	}
}

func TestRealtimeWPMEmptyWindow(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	recordN(tr, "a", true, 0, 100, 20)
	if got := tr.RealtimeWPM(500000, 60000); got != 0 {
		t.Fatalf("expected 0 wpm for empty window, got %f", got)
	}
}

func TestAnalyzeRhythmNeedsEnoughSamples(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	recordN(tr, "a", true, 0, 200, 9)
	if r := tr.AnalyzeRhythm(); r.Samples != 0 {
		t.Fatalf("expected no rhythm under 10 keystrokes, got %+v", r)
	}
}

func TestAnalyzeRhythmSteadyTyping(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	recordN(tr, "a", true, 0, 200, 20)

	r := tr.AnalyzeRhythm()
	if r.Samples != 19 {
		t.Fatalf("expected 19 intervals, got %d", r.Samples)
	}
	if r.Consistency != 100 {
		t.Fatalf("expected perfect consistency, got %f", r.Consistency)
	}
	if r.Burst {
		t.Fatalf("steady typing should not be a burst")
	}
	if r.MeanIntervalMs != 200 {
		t.Fatalf("expected 200ms mean interval, got %f", r.MeanIntervalMs)
	}
}

func TestAnalyzeRhythmExcludesPauses(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	ts := recordN(tr, "a", true, 0, 200, 10)
	// Think pause, then resume at the same cadence.
	recordN(tr, "a", true, ts+5000, 200, 10)

	r := tr.AnalyzeRhythm()
	if r.Samples != 18 {
		t.Fatalf("expected pause interval excluded, got %d samples", r.Samples)
	}
	if r.Consistency != 100 {
		t.Fatalf("expected consistency unaffected by pause, got %f", r.Consistency)
	}
}

func TestAnalyzeRhythmDetectsBursts(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	ts := int64(0)
	// Alternate fast and slow intervals: half the gaps are well under the mean.
	for i := 0; i < 20; i++ {
		tr.RecordKeystroke("a", true, ts)
		if i%2 == 0 {
			ts += 100
		} else {
			ts += 1000
		}
	}

	r := tr.AnalyzeRhythm()
	if !r.Burst {
		t.Fatalf("expected burst detection, got %+v", r)
	}
}

func TestFinalizeProducesRecord(t *testing.T) {
	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)
	tr := New("s1", "quotes", start)
	for i := 0; i <= 100; i++ {
		tr.RecordKeystroke("a", true, int64(i)*300)
	}
	tr.CheckMilestones()

	rec := tr.Finalize(end)
	if rec.ID != "s1" || rec.Source != "quotes" {
		t.Fatalf("unexpected identity: %+v", rec)
	}
	if !rec.StartedAt.Equal(start) || !rec.EndedAt.Equal(end) {
		t.Fatalf("unexpected times: %+v", rec)
	}
	if rec.TotalChars != 101 || rec.Accuracy != 100 {
		t.Fatalf("unexpected metrics: %+v", rec)
	}
	if len(rec.Milestones) == 0 {
		t.Fatalf("expected recorded milestones in the record")
	}
	for i := 1; i < len(rec.Milestones); i++ {
		if rec.Milestones[i-1] > rec.Milestones[i] {
			t.Fatalf("expected sorted milestones, got %v", rec.Milestones)
		}
	}
}

func TestAnalyzeKeysSortsWorstFirst(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	ts := int64(0)
	for i := 0; i < 10; i++ {
		tr.RecordKeystroke("a", true, ts)
		ts += 100
	}
	for i := 0; i < 10; i++ {
		tr.RecordKeystroke("q", i%2 == 0, ts)
		ts += 100
	}
	for i := 0; i < 10; i++ {
		tr.RecordKeystroke("x", i != 0, ts)
		ts += 100
	}

	stats := tr.AnalyzeKeys()
	if len(stats) != 3 {
		t.Fatalf("expected 3 analyzed keys, got %d", len(stats))
	}
	if stats[0].Char != "q" || stats[1].Char != "x" || stats[2].Char != "a" {
		t.Fatalf("unexpected order: %v", stats)
	}
	if stats[0].ErrorRate != 0.5 {
		t.Fatalf("expected 0.5 error rate for q, got %f", stats[0].ErrorRate)
	}
	if stats[0].Recommendation == "" {
		t.Fatalf("expected a recommendation for q")
	}
}

func TestAnalyzeKeysSkipsRareKeys(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	tr.RecordKeystroke("z", false, 0)
	tr.RecordKeystroke("z", false, 100)

	if stats := tr.AnalyzeKeys(); len(stats) != 0 {
		t.Fatalf("expected keys under 3 attempts skipped, got %v", stats)
	}
}

func TestKeyTrendImproves(t *testing.T) {
	// 50 early misses followed by 50 clean attempts.
	correct := make([]bool, 100)
	for i := 50; i < 100; i++ {
		correct[i] = true
	}
	if got := keyTrend(correct, 0.5); got != TrendImproving {
		t.Fatalf("expected improving trend, got %s", got)
	}
}

func TestSuggestionsPrioritizeAccuracy(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	ts := int64(0)
	for i := 0; i < 20; i++ {
		tr.RecordKeystroke("a", i%2 == 0, ts) // 50% accuracy
		ts += 200
	}

	sugs := tr.Suggestions()
	if len(sugs) == 0 {
		t.Fatalf("expected suggestions for sloppy typing")
	}
	if sugs[0].Area != "accuracy" || sugs[0].Priority != "high" {
		t.Fatalf("expected high-priority accuracy suggestion first, got %+v", sugs[0])
	}
}

func TestSuggestionsEmptyForSolidSession(t *testing.T) {
	tr := New("s1", "practice", time.Now())
	// Fast, accurate, steady.
	recordN(tr, "a", true, 0, 200, 120)

	if sugs := tr.Suggestions(); len(sugs) != 0 {
		t.Fatalf("expected no suggestions, got %v", sugs)
	}
}
