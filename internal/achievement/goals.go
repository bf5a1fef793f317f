package achievement

import (
	"fmt"
	"time"

	"github.com/lcestou/feed-n-type-sub000/internal/celebration"
)

// celebrationImprovementPct is the personal-best improvement that earns a
// celebration.
const celebrationImprovementPct = 10.0

// UpdatePersonalBest records a new best for the category only when the value
// strictly beats the stored one. The first observation sets the baseline
// quietly. Returns whether the best changed.
func (e *Engine) UpdatePersonalBest(category string, value float64, now time.Time) bool {
	prev, ok := e.ledger.PersonalBests[category]
	if ok && value <= prev.Value {
		return false
	}

	var improvement float64
	if ok && prev.Value > 0 {
		improvement = (value - prev.Value) / prev.Value * 100
	}
	e.ledger.PersonalBests[category] = PersonalBest{
		Value:         value,
		ImprovementPc: improvement,
		SetAt:         now,
	}

	if improvement > celebrationImprovementPct {
		e.queue.Push(celebration.Event{
			ID:          e.ids.NewID(),
			Type:        celebration.TypePersonalBest,
			Title:       "New personal best!",
			Message:     fmt.Sprintf("%s improved by %.0f%%", category, improvement),
			Animation:   "personal_best",
			Duration:    3 * time.Second,
			Priority:    celebration.PriorityMedium,
			AutoTrigger: true,
			CreatedAt:   now,
		})
	}
	return true
}

// PersonalBestFor returns the stored best for a category.
func (e *Engine) PersonalBestFor(category string) (PersonalBest, bool) {
	pb, ok := e.ledger.PersonalBests[category]
	return pb, ok
}

// weekKey returns the Monday-anchored ISO-week key for a time, e.g. 2026-W35.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// EnsureWeeklyGoal creates this week's goal if absent and returns it.
func (e *Engine) EnsureWeeklyGoal(target int, now time.Time) WeeklyGoal {
	key := weekKey(now)
	if goal, ok := e.ledger.WeeklyGoals[key]; ok {
		return goal
	}
	goal := WeeklyGoal{Week: key, Target: target}
	e.ledger.WeeklyGoals[key] = goal
	return goal
}

// UpdateWeeklyGoalProgress adds progress to this week's goal. Completion is
// marked exactly once, when progress first crosses the target, and emits one
// celebration.
func (e *Engine) UpdateWeeklyGoalProgress(amount int, now time.Time) (WeeklyGoal, bool) {
	key := weekKey(now)
	goal, ok := e.ledger.WeeklyGoals[key]
	if !ok {
		return WeeklyGoal{}, false
	}

	goal.Progress += amount
	completedNow := false
	if !goal.Completed && goal.Target > 0 && goal.Progress >= goal.Target {
		goal.Completed = true
		at := now
		goal.CompletedAt = &at
		completedNow = true

		e.queue.Push(celebration.Event{
			ID:          e.ids.NewID(),
			Type:        celebration.TypeWeeklyGoal,
			Title:       "Weekly goal complete!",
			Message:     fmt.Sprintf("hit %d of %d for week %s", goal.Progress, goal.Target, goal.Week),
			Animation:   "weekly_goal",
			Duration:    3 * time.Second,
			Priority:    celebration.PriorityMedium,
			AutoTrigger: true,
			CreatedAt:   now,
		})
	}

	e.ledger.WeeklyGoals[key] = goal
	return goal, completedNow
}
