package report

import (
	"strings"
	"testing"
	"time"

	"github.com/lcestou/feed-n-type-sub000/internal/achievement"
	"github.com/lcestou/feed-n-type-sub000/internal/companion"
	"github.com/lcestou/feed-n-type-sub000/internal/model"
	"github.com/lcestou/feed-n-type-sub000/internal/streak"
)

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}

	got := Sparkline([]float64{0, 50, 100})
	if len(got) != 3 {
		t.Fatalf("expected 3 cells, got %q", got)
	}
	if got[0] != sparkChars[0] || got[2] != sparkChars[len(sparkChars)-1] {
		t.Fatalf("expected min and max at the ends, got %q", got)
	}

	flat := Sparkline([]float64{42, 42, 42})
	if len(flat) != 3 || flat[0] != flat[1] || flat[1] != flat[2] {
		t.Fatalf("expected uniform sparkline for flat input, got %q", flat)
	}
}

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Key", "Rate"}
	rows := [][]string{
		{"q", "50.0%"},
		{"<space>", "8.0%"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Key      Rate" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "q       50.0%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "<space>  8.0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestRenderSessionsEmpty(t *testing.T) {
	var b strings.Builder
	if err := RenderSessions(&b, nil); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(b.String(), "No sessions found") {
		t.Fatalf("unexpected output: %q", b.String())
	}
}

func TestRenderSessionsSummary(t *testing.T) {
	end := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	sessions := []model.SessionRecord{
		{ID: "s1", Source: "practice", EndedAt: end, WPM: 40, Accuracy: 95, Errors: 5, ChallengingKeys: []string{"q"}},
		{ID: "s2", Source: "quotes", EndedAt: end.Add(time.Hour), WPM: 50, Accuracy: 97, Errors: 3},
	}

	var b strings.Builder
	if err := RenderSessions(&b, sessions); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := b.String()
	for _, want := range []string{"Count: 2", "Avg WPM: 45.00", "Best WPM: 50.00", "practice", "quotes", "q"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCompanion(t *testing.T) {
	state := companion.State{Name: "Pixel", Form: companion.FormChild, Happiness: 72, TotalWordsEaten: 800, AccuracyAverage: 93.5}

	var b strings.Builder
	if err := RenderCompanion(&b, state, companion.MoodContent); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := b.String()
	for _, want := range []string{"Pixel (child)", "Mood: content", "Happiness: 72/100", "Words eaten: 800"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStreak(t *testing.T) {
	rec := streak.Record{CurrentStreak: 5, LongestStreak: 9, TotalPracticeDays: 40, ForgivenessCredits: 2}
	status := streak.Status{State: streak.StateSafe, Message: "practiced today; streak is safe"}

	var b strings.Builder
	if err := RenderStreak(&b, rec, status); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := b.String()
	for _, want := range []string{"Current: 5 days (longest 9)", "Forgiveness credits: 2", "safe"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Catch-up deadline") {
		t.Fatalf("deadline line must be absent without a deadline:\n%s", out)
	}
}

func TestRenderLedger(t *testing.T) {
	ledger := achievement.Ledger{
		Achievements: []achievement.Unlocked{
			{ID: "speed_demon", Rarity: achievement.RarityEpic, Points: 50, UnlockedAt: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
		},
		Accessories: []achievement.Accessory{
			{ID: "party_hat", Category: achievement.CategoryHat, Equipped: true},
		},
		TotalRewards: 50,
	}

	var b strings.Builder
	if err := RenderLedger(&b, ledger); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := b.String()
	for _, want := range []string{"Rewards: 50 points", "speed_demon", "epic", "party_hat", "yes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
