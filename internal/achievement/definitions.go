package achievement

// Rarity scales the point reward of an achievement.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Points returns the fixed reward for the rarity.
func (r Rarity) Points() int {
	switch r {
	case RarityCommon:
		return 10
	case RarityRare:
		return 25
	case RarityEpic:
		return 50
	case RarityLegendary:
		return 100
	default:
		return 0
	}
}

// Stat names the single snapshot field a predicate thresholds on.
type Stat string

const (
	StatWPM      Stat = "wpm"
	StatAccuracy Stat = "accuracy"
	StatStreak   Stat = "streak"
	StatWords    Stat = "words"
	StatSessions Stat = "sessions"
)

// Definition is one achievement predicate: stat >= threshold.
type Definition struct {
	ID          string
	Title       string
	Description string
	Rarity      Rarity
	Stat        Stat
	Threshold   float64
}

// Definitions returns the fixed achievement table.
func Definitions() []Definition {
	return []Definition{
		{"first_steps", "First Steps", "Feed 10 words", RarityCommon, StatWords, 10},
		{"word_nibbler", "Word Nibbler", "Feed 100 words", RarityCommon, StatWords, 100},
		{"word_feast", "Word Feast", "Feed 1,000 words", RarityRare, StatWords, 1000},
		{"word_banquet", "Word Banquet", "Feed 5,000 words", RarityEpic, StatWords, 5000},
		{"quick_fingers", "Quick Fingers", "Reach 30 WPM", RarityRare, StatWPM, 30},
		{"speed_demon", "Speed Demon", "Reach 50 WPM", RarityEpic, StatWPM, 50},
		{"lightning_hands", "Lightning Hands", "Reach 80 WPM", RarityLegendary, StatWPM, 80},
		{"sharp_eye", "Sharp Eye", "Hit 90% accuracy", RarityRare, StatAccuracy, 90},
		{"perfectionist", "Perfectionist", "Hit 99% accuracy", RarityLegendary, StatAccuracy, 99},
		{"streak_starter", "Streak Starter", "Practice 3 days in a row", RarityCommon, StatStreak, 3},
		{"week_warrior", "Week Warrior", "Practice 7 days in a row", RarityRare, StatStreak, 7},
		{"iron_will", "Iron Will", "Practice 30 days in a row", RarityEpic, StatStreak, 30},
		{"habit_master", "Habit Master", "Practice 100 days in a row", RarityLegendary, StatStreak, 100},
		{"session_regular", "Regular", "Finish 10 sessions", RarityCommon, StatSessions, 10},
		{"session_veteran", "Veteran", "Finish 100 sessions", RarityEpic, StatSessions, 100},
	}
}

// Category groups accessories; at most one per category is equipped.
type Category string

const (
	CategoryHat        Category = "hat"
	CategoryCollar     Category = "collar"
	CategoryToy        Category = "toy"
	CategoryBackground Category = "background"
)

// AccessoryDefinition is one unlockable accessory predicate.
type AccessoryDefinition struct {
	ID        string
	Name      string
	Category  Category
	Stat      Stat
	Threshold float64
}

// AccessoryDefinitions returns the fixed accessory table.
func AccessoryDefinitions() []AccessoryDefinition {
	return []AccessoryDefinition{
		{"party_hat", "Party Hat", CategoryHat, StatStreak, 7},
		{"wizard_hat", "Wizard Hat", CategoryHat, StatAccuracy, 95},
		{"crown", "Crown", CategoryHat, StatWPM, 80},
		{"bronze_collar", "Bronze Collar", CategoryCollar, StatWords, 100},
		{"silver_collar", "Silver Collar", CategoryCollar, StatWords, 1000},
		{"gold_collar", "Gold Collar", CategoryCollar, StatWords, 5000},
		{"ball", "Bouncy Ball", CategoryToy, StatSessions, 5},
		{"yarn", "Ball of Yarn", CategoryToy, StatSessions, 25},
		{"robot_mouse", "Robot Mouse", CategoryToy, StatWPM, 60},
		{"meadow", "Meadow", CategoryBackground, StatStreak, 3},
		{"city_night", "City at Night", CategoryBackground, StatStreak, 14},
		{"space", "Outer Space", CategoryBackground, StatStreak, 50},
	}
}
