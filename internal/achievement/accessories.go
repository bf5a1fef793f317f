package achievement

import (
	"fmt"
	"time"

	"github.com/lcestou/feed-n-type-sub000/internal/celebration"
	"github.com/lcestou/feed-n-type-sub000/internal/model"
)

func (e *Engine) accessoryUnlocked(id string) bool {
	for _, a := range e.ledger.Accessories {
		if a.ID == id {
			return true
		}
	}
	return false
}

// CheckAccessories evaluates the accessory predicate table against the
// snapshot and returns only newly unlocked accessories. New accessories
// start unequipped.
func (e *Engine) CheckAccessories(snap model.StatsSnapshot, now time.Time) []Accessory {
	var unlocked []Accessory
	for _, def := range AccessoryDefinitions() {
		if e.accessoryUnlocked(def.ID) {
			continue
		}
		if statValue(snap, def.Stat) < def.Threshold {
			continue
		}
		a := Accessory{ID: def.ID, Category: def.Category, UnlockedAt: now}
		e.ledger.Accessories = append(e.ledger.Accessories, a)
		unlocked = append(unlocked, a)

		e.queue.Push(celebration.Event{
			ID:          e.ids.NewID(),
			Type:        celebration.TypeAccessory,
			Title:       "New accessory!",
			Message:     fmt.Sprintf("%s unlocked", def.Name),
			Animation:   "accessory",
			Duration:    3 * time.Second,
			Priority:    celebration.PriorityLow,
			AutoTrigger: true,
			CreatedAt:   now,
		})
	}
	return unlocked
}

// EquipAccessory equips the accessory, atomically clearing any sibling in the
// same category so exactly one stays equipped per category.
func (e *Engine) EquipAccessory(id string) error {
	idx := -1
	for i, a := range e.ledger.Accessories {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("accessory %q is not unlocked", id)
	}

	category := e.ledger.Accessories[idx].Category
	for i := range e.ledger.Accessories {
		if e.ledger.Accessories[i].Category == category {
			e.ledger.Accessories[i].Equipped = false
		}
	}
	e.ledger.Accessories[idx].Equipped = true
	return nil
}

// EquippedAccessories returns the currently equipped accessory per category.
func (e *Engine) EquippedAccessories() map[Category]string {
	out := map[Category]string{}
	for _, a := range e.ledger.Accessories {
		if a.Equipped {
			out[a.Category] = a.ID
		}
	}
	return out
}
