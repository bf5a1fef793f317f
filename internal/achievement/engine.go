// Package achievement evaluates unlock predicates over stats snapshots and
// keeps the append-only reward ledger.
package achievement

import (
	"fmt"
	"time"

	"github.com/lcestou/feed-n-type-sub000/internal/celebration"
	"github.com/lcestou/feed-n-type-sub000/internal/ident"
	"github.com/lcestou/feed-n-type-sub000/internal/model"
)

// Unlocked is one achievement entry in the ledger.
type Unlocked struct {
	ID         string    `json:"id"`
	Rarity     Rarity    `json:"rarity"`
	Points     int       `json:"points"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// Accessory is one unlocked accessory and its equip state.
type Accessory struct {
	ID         string    `json:"id"`
	Category   Category  `json:"category"`
	Equipped   bool      `json:"equipped"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// PersonalBest is a strictly-improving record for one category.
type PersonalBest struct {
	Value         float64   `json:"value"`
	ImprovementPc float64   `json:"improvementPct"`
	SetAt         time.Time `json:"setAt"`
}

// WeeklyGoal is a Monday-anchored ISO-week scoped target.
type WeeklyGoal struct {
	Week        string     `json:"week"`
	Target      int        `json:"target"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Ledger is the persistent achievement state.
type Ledger struct {
	Achievements  []Unlocked              `json:"milestonesReached"`
	Accessories   []Accessory             `json:"unlockedAccessories"`
	PersonalBests map[string]PersonalBest `json:"personalBests"`
	WeeklyGoals   map[string]WeeklyGoal   `json:"weeklyGoals"`
	TotalRewards  int                     `json:"totalRewards"`
	Celebrations  []celebration.Event     `json:"celebrationsPending"`
}

// Engine applies the fixed predicate tables to snapshots and mutates the
// ledger. Evaluation is idempotent: a snapshot seen twice unlocks nothing
// the second time.
type Engine struct {
	ledger Ledger
	queue  *celebration.Queue
	ids    ident.Generator
}

// NewEngine creates an engine over a possibly-empty persisted ledger.
func NewEngine(ledger Ledger, ids ident.Generator) *Engine {
	if ledger.PersonalBests == nil {
		ledger.PersonalBests = map[string]PersonalBest{}
	}
	if ledger.WeeklyGoals == nil {
		ledger.WeeklyGoals = map[string]WeeklyGoal{}
	}
	if ledger.TotalRewards < 0 {
		ledger.TotalRewards = 0
	}
	queue := celebration.NewQueue()
	queue.Restore(ledger.Celebrations)
	return &Engine{ledger: ledger, queue: queue, ids: ids}
}

// Ledger returns a copy of the persistent state including pending
// celebrations.
func (e *Engine) Ledger() Ledger {
	l := e.ledger
	l.Achievements = append([]Unlocked(nil), e.ledger.Achievements...)
	l.Accessories = append([]Accessory(nil), e.ledger.Accessories...)
	l.PersonalBests = make(map[string]PersonalBest, len(e.ledger.PersonalBests))
	for k, v := range e.ledger.PersonalBests {
		l.PersonalBests[k] = v
	}
	l.WeeklyGoals = make(map[string]WeeklyGoal, len(e.ledger.WeeklyGoals))
	for k, v := range e.ledger.WeeklyGoals {
		l.WeeklyGoals[k] = v
	}
	l.Celebrations = e.queue.Pending()
	return l
}

// Celebrations exposes the ledger's pending-celebration queue.
func (e *Engine) Celebrations() *celebration.Queue {
	return e.queue
}

// TotalRewards returns the monotonic point total.
func (e *Engine) TotalRewards() int {
	return e.ledger.TotalRewards
}

func statValue(snap model.StatsSnapshot, stat Stat) float64 {
	switch stat {
	case StatWPM:
		return snap.WPM
	case StatAccuracy:
		return snap.Accuracy
	case StatStreak:
		return float64(snap.Streak)
	case StatWords:
		return float64(snap.TotalWords)
	case StatSessions:
		return float64(snap.SessionsCompleted)
	default:
		return 0
	}
}

func (e *Engine) achievementUnlocked(id string) bool {
	for _, u := range e.ledger.Achievements {
		if u.ID == id {
			return true
		}
	}
	return false
}

// CheckAchievements evaluates every achievement predicate against the
// snapshot and returns only the newly satisfied ones. Each unlock appends to
// the ledger, adds its points, and enqueues one celebration.
func (e *Engine) CheckAchievements(snap model.StatsSnapshot, now time.Time) []Unlocked {
	var unlocked []Unlocked
	for _, def := range Definitions() {
		if e.achievementUnlocked(def.ID) {
			continue
		}
		if statValue(snap, def.Stat) < def.Threshold {
			continue
		}
		u := e.unlock(def, now)
		unlocked = append(unlocked, u)
	}
	return unlocked
}

// UnlockResult reports a direct unlock attempt.
type UnlockResult struct {
	AlreadyUnlocked bool
	Unlocked        *Unlocked
}

// Unlock grants one achievement by id. Re-unlocking is a silent no-op that
// awards no points.
func (e *Engine) Unlock(id string, now time.Time) (UnlockResult, error) {
	if e.achievementUnlocked(id) {
		return UnlockResult{AlreadyUnlocked: true}, nil
	}
	for _, def := range Definitions() {
		if def.ID == id {
			u := e.unlock(def, now)
			return UnlockResult{Unlocked: &u}, nil
		}
	}
	return UnlockResult{}, fmt.Errorf("unknown achievement %q", id)
}

func (e *Engine) unlock(def Definition, now time.Time) Unlocked {
	u := Unlocked{
		ID:         def.ID,
		Rarity:     def.Rarity,
		Points:     def.Rarity.Points(),
		UnlockedAt: now,
	}
	e.ledger.Achievements = append(e.ledger.Achievements, u)
	e.ledger.TotalRewards += u.Points

	e.queue.Push(celebration.Event{
		ID:          e.ids.NewID(),
		Type:        celebration.TypeAchievement,
		Title:       def.Title,
		Message:     def.Description,
		Animation:   "achievement",
		Duration:    3 * time.Second,
		Priority:    priorityFor(def.Rarity),
		AutoTrigger: true,
		CreatedAt:   now,
	})
	return u
}

func priorityFor(r Rarity) celebration.Priority {
	switch r {
	case RarityEpic, RarityLegendary:
		return celebration.PriorityHigh
	case RarityRare:
		return celebration.PriorityMedium
	default:
		return celebration.PriorityLow
	}
}
