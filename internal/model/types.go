// Package model defines shared data structures.
package model

import "time"

// SessionRecord is a finalized practice session. Individual keystrokes are
// not persisted; only these aggregates survive a session.
type SessionRecord struct {
	ID              string
	Source          string
	StartedAt       time.Time
	EndedAt         time.Time
	TotalChars      int
	CorrectChars    int
	Errors          int
	WPM             float64
	Accuracy        float64
	DurationMs      int64
	ChallengingKeys []string
	Milestones      []string
}

// SessionFilter selects stored sessions for reporting.
type SessionFilter struct {
	Since *time.Time
	Last  int
}

// StatsSnapshot is the cross-aggregate view handed to the achievement engine.
// The caller assembles it because no single aggregate owns all of it.
type StatsSnapshot struct {
	WPM               float64
	Accuracy          float64
	Streak            int
	TotalWords        int
	SessionsCompleted int
	ContentBySource   map[string]int
	AchievementCount  int
}
