// Package progression computes quest completion rewards and resolves
// level-up transitions.
package progression

import (
	"math"

	"github.com/thad75/questday/internal/domain"
)

const (
	// Level scaling grows 2% per level above 1, capped at +50%.
	levelScalingPerLevel = 0.02
	levelScalingCap      = 1.5

	// Fast completions (under half the time limit) earn a bonus; cutting
	// it close (over 90%) docks the reward.
	fastCompletionRatio  = 0.5
	fastCompletionBonus  = 1.2
	slowCompletionRatio  = 0.9
	slowCompletionFactor = 0.9

	// Streak multiplier: +10% per consecutive period, at most doubled.
	streakBonusPerPeriod = 0.1
	streakMultiplierCap  = 2.0

	// xpPerLevelStep is the canonical level curve: xpToNextLevel = level * 100.
	xpPerLevelStep = 100
)

// categoryMultipliers weights reward XP by category.
var categoryMultipliers = map[domain.Category]float64{
	domain.CategoryHealth:       1.0,
	domain.CategoryFitness:      1.1,
	domain.CategoryLearning:     1.2,
	domain.CategoryCreativity:   1.1,
	domain.CategorySocial:       1.0,
	domain.CategoryProductivity: 1.1,
	domain.CategoryMindfulness:  1.0,
	domain.CategoryFinance:      1.2,
}

// granularityMultipliers scales rewards by commitment length.
var granularityMultipliers = map[domain.Granularity]float64{
	domain.GranularityDaily:   1.0,
	domain.GranularityWeekly:  1.5,
	domain.GranularityMonthly: 2.0,
	domain.GranularitySpecial: 2.5,
}

// Engine computes rewards. Stateless and safe for concurrent use.
type Engine struct{}

// NewEngine creates a reward engine.
func NewEngine() *Engine {
	return &Engine{}
}

// StreakMultiplier converts a consecutive-period streak count into a reward
// multiplier.
func StreakMultiplier(streak int) float64 {
	if streak < 0 {
		streak = 0
	}
	return math.Min(1+streakBonusPerPeriod*float64(streak), streakMultiplierCap)
}

// LevelScaling returns the per-level reward scaling for a player level.
func LevelScaling(playerLevel int) float64 {
	if playerLevel < 1 {
		playerLevel = 1
	}
	return math.Min(1+float64(playerLevel-1)*levelScalingPerLevel, levelScalingCap)
}

// Reward computes the final XP for a completed quest.
// completionTimeMinutes <= 0 means the completion time is unknown, which
// disables the time bonus. The quest's window length acts as its time limit.
func (e *Engine) Reward(quest domain.Quest, playerLevel int, completionTimeMinutes int, streakMultiplier float64) domain.Reward {
	base := quest.XP

	categoryMult := categoryMultipliers[quest.Category]
	if categoryMult == 0 {
		categoryMult = 1.0
	}
	granularityMult := granularityMultipliers[quest.Granularity]
	if granularityMult == 0 {
		granularityMult = 1.0
	}
	if streakMultiplier <= 0 {
		streakMultiplier = 1.0
	}

	timeBonus := e.timeBonus(quest, completionTimeMinutes)

	total := float64(base) * categoryMult * granularityMult * LevelScaling(playerLevel) * timeBonus * streakMultiplier
	totalXP := int(math.Round(total))
	if totalXP < base {
		// Multipliers below 1 can undercut the base; bonus is negative then.
		return domain.Reward{BaseXP: base, BonusXP: totalXP - base, TotalXP: totalXP}
	}

	return domain.Reward{
		BaseXP:  base,
		BonusXP: totalXP - base,
		TotalXP: totalXP,
	}
}

func (e *Engine) timeBonus(quest domain.Quest, completionTimeMinutes int) float64 {
	if completionTimeMinutes <= 0 {
		return 1.0
	}
	limitMinutes := quest.EndDate.Sub(quest.StartDate).Minutes()
	if limitMinutes <= 0 {
		return 1.0
	}

	ratio := float64(completionTimeMinutes) / limitMinutes
	switch {
	case ratio < fastCompletionRatio:
		return fastCompletionBonus
	case ratio > slowCompletionRatio:
		return slowCompletionFactor
	default:
		return 1.0
	}
}

// ApplyXP grants totalXP to the progress record and resolves level-ups.
// The loop (not a single branch) carries leftover XP correctly through
// multi-level jumps from large grants.
func (e *Engine) ApplyXP(progress domain.PlayerProgress, totalXP int) domain.PlayerProgress {
	if totalXP <= 0 {
		return progress
	}
	if progress.Level < 1 {
		progress = domain.NewPlayerProgress()
	}
	if progress.XPToNextLevel <= 0 {
		progress.XPToNextLevel = progress.Level * xpPerLevelStep
	}

	progress.CurrentXP += totalXP
	progress.TotalXPEarned += int64(totalXP)

	for progress.CurrentXP >= progress.XPToNextLevel {
		progress.CurrentXP -= progress.XPToNextLevel
		progress.Level++
		progress.XPToNextLevel = progress.Level * xpPerLevelStep
	}

	return progress
}
