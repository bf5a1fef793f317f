package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/lcestou/feed-n-type-sub000/internal/achievement"
	"github.com/lcestou/feed-n-type-sub000/internal/celebration"
	"github.com/lcestou/feed-n-type-sub000/internal/companion"
	"github.com/lcestou/feed-n-type-sub000/internal/model"
	"github.com/lcestou/feed-n-type-sub000/internal/streak"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSessions prints a summary table with WPM and accuracy sparklines.
func RenderSessions(w io.Writer, sessions []model.SessionRecord) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}

	var totalWPM, totalAcc, bestWPM float64
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		totalWPM += s.WPM
		totalAcc += s.Accuracy
		if s.WPM > bestWPM {
			bestWPM = s.WPM
		}
		wpms[i] = s.WPM
		accs[i] = s.Accuracy
	}
	count := float64(len(sessions))

	lines := []string{
		"Sessions",
		fmt.Sprintf("Count: %d", len(sessions)),
		fmt.Sprintf("Avg WPM: %.2f", totalWPM/count),
		fmt.Sprintf("Best WPM: %.2f", bestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count),
		"WPM      " + Sparkline(wpms),
		"Accuracy " + Sparkline(accs),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	headers := []string{"Ended", "Source", "WPM", "Accuracy", "Errors", "Problem Keys"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.EndedAt.Format("2006-01-02 15:04"),
			s.Source,
			fmt.Sprintf("%.1f", s.WPM),
			fmt.Sprintf("%.1f%%", s.Accuracy),
			fmt.Sprintf("%d", s.Errors),
			strings.Join(s.ChallengingKeys, " "),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCompanion prints the companion summary.
func RenderCompanion(w io.Writer, state companion.State, mood companion.Mood) error {
	lines := []string{
		fmt.Sprintf("%s (%s)", state.Name, state.Form),
		fmt.Sprintf("Mood: %s", mood),
		fmt.Sprintf("Happiness: %.0f/100", state.Happiness),
		fmt.Sprintf("Words eaten: %d", state.TotalWordsEaten),
		fmt.Sprintf("Accuracy average: %.1f%%", state.AccuracyAverage),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderStreak prints the streak record and its current classification.
func RenderStreak(w io.Writer, rec streak.Record, status streak.Status) error {
	lines := []string{
		"Streak",
		fmt.Sprintf("Current: %d days (longest %d)", rec.CurrentStreak, rec.LongestStreak),
		fmt.Sprintf("Total practice days: %d", rec.TotalPracticeDays),
		fmt.Sprintf("Forgiveness credits: %d", rec.ForgivenessCredits),
		fmt.Sprintf("Status: %s — %s", status.State, status.Message),
	}
	if rec.CatchUpDeadline != nil {
		lines = append(lines, fmt.Sprintf("Catch-up deadline: %s", rec.CatchUpDeadline.Format(time.RFC1123)))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderLedger prints unlocked achievements and accessories.
func RenderLedger(w io.Writer, ledger achievement.Ledger) error {
	if _, err := fmt.Fprintf(w, "Rewards: %d points\n", ledger.TotalRewards); err != nil {
		return err
	}
	if len(ledger.Achievements) > 0 {
		headers := []string{"Achievement", "Rarity", "Points", "Unlocked"}
		rows := make([][]string, 0, len(ledger.Achievements))
		for _, u := range ledger.Achievements {
			rows = append(rows, []string{
				u.ID,
				string(u.Rarity),
				fmt.Sprintf("%d", u.Points),
				u.UnlockedAt.Format("2006-01-02"),
			})
		}
		for _, line := range formatTable(headers, rows, map[int]bool{2: true}) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	if len(ledger.Accessories) > 0 {
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
		headers := []string{"Accessory", "Category", "Equipped"}
		rows := make([][]string, 0, len(ledger.Accessories))
		for _, a := range ledger.Accessories {
			equipped := ""
			if a.Equipped {
				equipped = "yes"
			}
			rows = append(rows, []string{a.ID, string(a.Category), equipped})
		}
		for _, line := range formatTable(headers, rows, nil) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCelebrations prints pending celebrations, oldest first.
func RenderCelebrations(w io.Writer, events []celebration.Event) error {
	if len(events) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Pending celebrations"); err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := fmt.Fprintf(w, "- [%s] %s: %s (ack: %s)\n", ev.Type, ev.Title, ev.Message, ev.ID); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
