// Package celebration defines celebration events and the bounded queue
// shared by the companion and the achievement ledger.
package celebration

import "time"

// EventType classifies what a celebration announces.
type EventType string

const (
	// TypeEvolution marks a companion evolution.
	TypeEvolution EventType = "evolution"
	// TypeAchievement marks an unlocked achievement.
	TypeAchievement EventType = "achievement"
	// TypeAccessory marks an unlocked accessory.
	TypeAccessory EventType = "accessory"
	// TypeStreakMilestone marks a streak milestone day.
	TypeStreakMilestone EventType = "streak_milestone"
	// TypePersonalBest marks a beaten personal best.
	TypePersonalBest EventType = "personal_best"
	// TypeWeeklyGoal marks a completed weekly goal.
	TypeWeeklyGoal EventType = "weekly_goal"
)

// Priority orders concurrent celebrations for the presentation layer.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// Event is a queued notification for the presentation layer to render.
type Event struct {
	ID          string        `json:"id"`
	Type        EventType     `json:"type"`
	Title       string        `json:"title"`
	Message     string        `json:"message"`
	Animation   string        `json:"animation"`
	Duration    time.Duration `json:"duration"`
	Priority    Priority      `json:"priority"`
	AutoTrigger bool          `json:"autoTrigger"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// MaxQueued bounds every celebration queue; pushes beyond it drop the oldest entry.
const MaxQueued = 10

// Queue is a bounded FIFO of pending celebrations.
// The consumer peeks the oldest event and acknowledges it by id.
type Queue struct {
	events []Event
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event, dropping the oldest entry when the queue is full.
func (q *Queue) Push(ev Event) {
	if len(q.events) >= MaxQueued {
		q.events = q.events[1:]
	}
	q.events = append(q.events, ev)
}

// Peek returns the oldest pending event without removing it.
func (q *Queue) Peek() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	return q.events[0], true
}

// Acknowledge removes the event with the given id. Unknown ids are a no-op.
func (q *Queue) Acknowledge(id string) bool {
	for i, ev := range q.events {
		if ev.ID == id {
			q.events = append(q.events[:i], q.events[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Pending returns a copy of all pending events, oldest first.
func (q *Queue) Pending() []Event {
	out := make([]Event, len(q.events))
	copy(out, q.events)
	return out
}

// Restore replaces the queue contents from persisted events, enforcing the bound.
func (q *Queue) Restore(events []Event) {
	if len(events) > MaxQueued {
		events = events[len(events)-MaxQueued:]
	}
	q.events = make([]Event, len(events))
	copy(q.events, events)
}
