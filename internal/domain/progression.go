package domain

// PlayerProgress tracks a player's level and XP toward the next level.
type PlayerProgress struct {
	Level         int   `json:"level"`
	CurrentXP     int   `json:"current_xp"`
	XPToNextLevel int   `json:"xp_to_next_level"`
	TotalXPEarned int64 `json:"total_xp_earned"`
}

// NewPlayerProgress returns a level-1 progress record.
func NewPlayerProgress() PlayerProgress {
	return PlayerProgress{
		Level:         1,
		CurrentXP:     0,
		XPToNextLevel: 100,
	}
}

// Reward is the outcome of completing a quest.
type Reward struct {
	BaseXP  int `json:"base_xp"`
	BonusXP int `json:"bonus_xp"`
	TotalXP int `json:"total_xp"`
}

// ResetFlags records which granularities were regenerated by a
// check-and-reset pass. One explicit field per granularity keeps the reset
// paths exhaustively checkable instead of hiding behind dynamic keys.
type ResetFlags struct {
	Daily   bool `json:"daily"`
	Weekly  bool `json:"weekly"`
	Monthly bool `json:"monthly"`
	Special bool `json:"special"`
}

// Any reports whether at least one granularity was reset.
func (f ResetFlags) Any() bool {
	return f.Daily || f.Weekly || f.Monthly || f.Special
}

// Set marks the flag for g.
func (f *ResetFlags) Set(g Granularity) {
	switch g {
	case GranularityDaily:
		f.Daily = true
	case GranularityWeekly:
		f.Weekly = true
	case GranularityMonthly:
		f.Monthly = true
	case GranularitySpecial:
		f.Special = true
	}
}

// Is reports the flag for g.
func (f ResetFlags) Is(g Granularity) bool {
	switch g {
	case GranularityDaily:
		return f.Daily
	case GranularityWeekly:
		return f.Weekly
	case GranularityMonthly:
		return f.Monthly
	case GranularitySpecial:
		return f.Special
	}
	return false
}

// GenerationConfig tunes quest set generation. Validate before use; counts
// must be non-negative and CategoryBalance keys must be known categories.
type GenerationConfig struct {
	DailyQuestCount   int `json:"daily_quest_count" validate:"min=0"`
	WeeklyQuestCount  int `json:"weekly_quest_count" validate:"min=0"`
	MonthlyQuestCount int `json:"monthly_quest_count" validate:"min=0"`
	SpecialQuestCount int `json:"special_quest_count" validate:"min=0"`

	// MaxDifficultyPerLevel is the number of player levels needed to raise
	// the generation difficulty cap by one step.
	MaxDifficultyPerLevel int `json:"max_difficulty_per_level" validate:"min=1"`

	CategoryBalance map[Category]float64 `json:"category_balance,omitempty"`

	EnsureVariety         bool `json:"ensure_variety"`
	ConsiderPlayerHistory bool `json:"consider_player_history"`
	AdaptToPlayerLevel    bool `json:"adapt_to_player_level"`
}

// DefaultGenerationConfig returns the stock tuning used when the caller
// supplies none.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		DailyQuestCount:       3,
		WeeklyQuestCount:      3,
		MonthlyQuestCount:     2,
		SpecialQuestCount:     1,
		MaxDifficultyPerLevel: 3,
		EnsureVariety:         true,
		ConsiderPlayerHistory: true,
		AdaptToPlayerLevel:    true,
	}
}

// CountFor returns the target quest count for a granularity.
func (c GenerationConfig) CountFor(g Granularity) int {
	switch g {
	case GranularityDaily:
		return c.DailyQuestCount
	case GranularityWeekly:
		return c.WeeklyQuestCount
	case GranularityMonthly:
		return c.MonthlyQuestCount
	case GranularitySpecial:
		return c.SpecialQuestCount
	}
	return 0
}
