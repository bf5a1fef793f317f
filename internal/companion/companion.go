// Package companion implements the virtual pet: a five-stage evolution state
// machine plus a happiness scalar mapped to a discrete mood.
package companion

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lcestou/feed-n-type-sub000/internal/celebration"
	"github.com/lcestou/feed-n-type-sub000/internal/ident"
)

// Form is one of the five ordinal growth stages.
type Form int

const (
	FormEgg Form = iota + 1
	FormBaby
	FormChild
	FormTeen
	FormAdult
)

// String returns the display name of the form.
func (f Form) String() string {
	switch f {
	case FormEgg:
		return "egg"
	case FormBaby:
		return "baby"
	case FormChild:
		return "child"
	case FormTeen:
		return "teen"
	case FormAdult:
		return "adult"
	default:
		return "unknown"
	}
}

// evolutionThresholds maps a form to the cumulative words-eaten count needed
// to leave it. Adult is terminal.
var evolutionThresholds = map[Form]int{
	FormEgg:   100,
	FormBaby:  500,
	FormChild: 1500,
	FormTeen:  5000,
}

// Mood is the discrete mood derived from happiness.
type Mood string

const (
	MoodExcited Mood = "excited"
	MoodHappy   Mood = "happy"
	MoodContent Mood = "content"
	MoodHungry  Mood = "hungry"
	MoodSad     Mood = "sad"
	// MoodEating is a transient override applied while a feed animation
	// plays; it reverts to the computed mood when it expires.
	MoodEating Mood = "eating"
)

// moodFor maps happiness to its mood band.
func moodFor(happiness float64) Mood {
	switch {
	case happiness >= 95:
		return MoodExcited
	case happiness >= 80:
		return MoodHappy
	case happiness >= 60:
		return MoodContent
	case happiness >= 40:
		return MoodHungry
	default:
		return MoodSad
	}
}

const (
	maxNameLength = 20

	happinessPerCorrectWord  = 5
	happinessPerWrongWord    = -2
	defaultInitialHappiness  = 80
	accuracySmoothingDefault = 0.1
)

// ErrEmptyName rejects blank companion names.
var ErrEmptyName = errors.New("companion name must not be empty")

// State is the persistent companion record.
type State struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Form            Form                `json:"evolutionForm"`
	Happiness       float64             `json:"happiness"`
	Accessories     []string            `json:"accessories"`
	TotalWordsEaten int                 `json:"totalWordsEaten"`
	AccuracyAverage float64             `json:"accuracyAverage"`
	LastFeedTime    time.Time           `json:"lastFeedTime"`
	StreakDays      int                 `json:"streakDays"`
	Celebrations    []celebration.Event `json:"celebrations"`
}

// Companion wraps the state with its behavior. It is exclusively owned by one
// execution context; construction never fails, out-of-range values are
// clamped.
type Companion struct {
	state       State
	eatingUntil time.Time
	queue       *celebration.Queue
	ids         ident.Generator
}

// New creates a companion from a possibly out-of-range state.
func New(state State, ids ident.Generator) *Companion {
	if state.Form < FormEgg || state.Form > FormAdult {
		state.Form = FormEgg
	}
	state.Happiness = clamp(state.Happiness, 0, 100)
	if state.TotalWordsEaten < 0 {
		state.TotalWordsEaten = 0
	}
	state.AccuracyAverage = clamp(state.AccuracyAverage, 0, 100)
	if state.Name == "" {
		state.Name = "Typingotchi"
	}

	queue := celebration.NewQueue()
	queue.Restore(state.Celebrations)

	return &Companion{state: state, queue: queue, ids: ids}
}

// Default returns a fresh egg-stage companion.
func Default(id string, ids ident.Generator) *Companion {
	return New(State{
		ID:        id,
		Form:      FormEgg,
		Happiness: defaultInitialHappiness,
	}, ids)
}

// State returns a value copy of the persistent state, including pending
// celebrations.
func (c *Companion) State() State {
	s := c.state
	s.Accessories = append([]string(nil), c.state.Accessories...)
	s.Celebrations = c.queue.Pending()
	return s
}

// FeedResult reports what one fed word changed.
type FeedResult struct {
	HappinessDelta     float64
	Happiness          float64
	Mood               Mood
	EvolutionAvailable bool
}

// FeedWord applies one typed word. A correct word grows the word count and
// happiness; an incorrect one costs a little happiness but never below zero.
// Evolution is only flagged, not performed, so the caller can sequence the
// animation first.
func (c *Companion) FeedWord(correct bool, now time.Time) FeedResult {
	var delta float64
	if correct {
		c.state.TotalWordsEaten++
		delta = happinessPerCorrectWord
		if c.state.Happiness+delta > 100 {
			delta = 100 - c.state.Happiness
		}
	} else {
		delta = happinessPerWrongWord
		if c.state.Happiness+delta < 0 {
			delta = -c.state.Happiness
		}
	}

	c.state.Happiness += delta
	c.state.LastFeedTime = now

	return FeedResult{
		HappinessDelta:     delta,
		Happiness:          c.state.Happiness,
		Mood:               c.Mood(now),
		EvolutionAvailable: c.EvolutionReady(),
	}
}

// Mood returns the current mood, honoring a still-running eating override.
func (c *Companion) Mood(now time.Time) Mood {
	if now.Before(c.eatingUntil) {
		return MoodEating
	}
	return moodFor(c.state.Happiness)
}

// StartEating applies the transient eating mood for the given duration.
func (c *Companion) StartEating(now time.Time, d time.Duration) {
	c.eatingUntil = now.Add(d)
}

// EvolutionReady reports whether the next form's threshold is met.
func (c *Companion) EvolutionReady() bool {
	threshold, ok := evolutionThresholds[c.state.Form]
	return ok && c.state.TotalWordsEaten >= threshold
}

// Evolution describes one completed stage transition.
type Evolution struct {
	From Form
	To   Form
}

// EvolveToNextForm advances exactly one stage when the threshold is met and
// returns nil otherwise. Transitions are one-directional; calling in a loop
// while EvolutionReady holds drains multi-threshold backlogs one stage at a
// time.
func (c *Companion) EvolveToNextForm(now time.Time) *Evolution {
	if !c.EvolutionReady() {
		return nil
	}

	from := c.state.Form
	c.state.Form++
	ev := &Evolution{From: from, To: c.state.Form}

	c.queue.Push(celebration.Event{
		ID:          c.ids.NewID(),
		Type:        celebration.TypeEvolution,
		Title:       fmt.Sprintf("%s evolved!", c.state.Name),
		Message:     fmt.Sprintf("%s grew from %s to %s", c.state.Name, ev.From, ev.To),
		Animation:   "evolution",
		Duration:    4 * time.Second,
		Priority:    celebration.PriorityHigh,
		AutoTrigger: true,
		CreatedAt:   now,
	})
	return ev
}

// UpdateAccuracy folds a new observation into the exponential moving average.
// The first observation is taken unweighted.
func (c *Companion) UpdateAccuracy(newAccuracy, weight float64) {
	newAccuracy = clamp(newAccuracy, 0, 100)
	if weight <= 0 || weight > 1 {
		weight = accuracySmoothingDefault
	}
	if c.state.AccuracyAverage == 0 {
		c.state.AccuracyAverage = newAccuracy
		return
	}
	c.state.AccuracyAverage = c.state.AccuracyAverage*(1-weight) + newAccuracy*weight
}

// UpdateStreak records the current streak length and celebrates newly crossed
// milestone days.
func (c *Companion) UpdateStreak(days int, milestones []int, now time.Time) {
	c.state.StreakDays = days
	for _, m := range milestones {
		c.queue.Push(celebration.Event{
			ID:          c.ids.NewID(),
			Type:        celebration.TypeStreakMilestone,
			Title:       fmt.Sprintf("%d-day streak!", m),
			Message:     fmt.Sprintf("%s is proud of your %d-day practice streak", c.state.Name, m),
			Animation:   "streak",
			Duration:    3 * time.Second,
			Priority:    celebration.PriorityMedium,
			AutoTrigger: true,
			CreatedAt:   now,
		})
	}
}

// SetName renames the companion. Empty or overlong names are rejected.
func (c *Companion) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len([]rune(name)) > maxNameLength {
		return fmt.Errorf("companion name must be at most %d characters", maxNameLength)
	}
	c.state.Name = name
	return nil
}

// Celebrations exposes the companion's pending-celebration queue.
func (c *Companion) Celebrations() *celebration.Queue {
	return c.queue
}

// Reset wipes progress back to a fresh egg. Only an explicit confirmed user
// action reaches this.
func (c *Companion) Reset() {
	name := c.state.Name
	id := c.state.ID
	c.state = State{
		ID:        id,
		Name:      name,
		Form:      FormEgg,
		Happiness: defaultInitialHappiness,
	}
	c.eatingUntil = time.Time{}
	c.queue = celebration.NewQueue()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
