package session

import "fmt"

// Milestone marks a threshold crossed during the session.
type Milestone struct {
	Type  string
	Value int
	Key   string
}

var (
	wpmLadder      = []int{10, 15, 20, 25, 30, 40, 50, 60, 70, 80, 90, 100}
	accuracyLadder = []int{70, 75, 80, 85, 90, 95, 99}
)

// CheckMilestones compares the current floored WPM and accuracy against the
// fixed ladders and returns only thresholds not already recorded. Calling it
// again with unchanged stats returns nothing.
func (t *Tracker) CheckMilestones() []Milestone {
	var reached []Milestone

	wpm := int(t.wpm)
	for _, threshold := range wpmLadder {
		if wpm < threshold {
			break
		}
		key := fmt.Sprintf("wpm-%d", threshold)
		if _, ok := t.milestones[key]; ok {
			continue
		}
		m := Milestone{Type: "wpm", Value: threshold, Key: key}
		t.milestones[key] = m
		reached = append(reached, m)
	}

	accuracy := int(t.accuracy)
	for _, threshold := range accuracyLadder {
		if accuracy < threshold {
			break
		}
		key := fmt.Sprintf("accuracy-%d", threshold)
		if _, ok := t.milestones[key]; ok {
			continue
		}
		m := Milestone{Type: "accuracy", Value: threshold, Key: key}
		t.milestones[key] = m
		reached = append(reached, m)
	}

	return reached
}
