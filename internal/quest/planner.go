package quest

import (
	"time"

	"github.com/thad75/questday/internal/catalog"
	"github.com/thad75/questday/internal/domain"
	"github.com/thad75/questday/internal/rng"
)

// Selection weight adjustments.
const (
	firstCategoryUseBoost  = 2.0
	preferredCategoryBoost = 1.5
	avoidedCategoryPenalty = 0.3

	maxDifficulty = 5
)

// History exclusion windows per target granularity.
const (
	dailyHistoryWindow   = 3 * 24 * time.Hour
	weeklyHistoryWindow  = 14 * 24 * time.Hour
	monthlyHistoryWindow = 30 * 24 * time.Hour
	specialHistoryWindow = 30 * 24 * time.Hour
)

// Planner selects a balanced, varied set of templates for one generation
// cycle. All randomness flows through the caller-supplied Source, so a plan
// is a pure function of its inputs.
type Planner struct {
	catalog *catalog.Catalog
}

// NewPlanner creates a planner over the given catalog.
func NewPlanner(cat *catalog.Catalog) *Planner {
	return &Planner{catalog: cat}
}

// historyWindowFor returns the exclusion window for a target granularity.
func historyWindowFor(g domain.Granularity) time.Duration {
	switch g {
	case domain.GranularityDaily:
		return dailyHistoryWindow
	case domain.GranularityWeekly:
		return weeklyHistoryWindow
	case domain.GranularityMonthly:
		return monthlyHistoryWindow
	default:
		return specialHistoryWindow
	}
}

// RecentlyCompletedIDs collects template ids completed within the history
// window for the target granularity. Used to keep fresh sets fresh.
func RecentlyCompletedIDs(history []domain.QuestHistoryEntry, g domain.Granularity, now time.Time) map[string]struct{} {
	cutoff := now.Add(-historyWindowFor(g))
	out := make(map[string]struct{})
	for _, entry := range history {
		if entry.CompletedAt.After(cutoff) {
			out[entry.TemplateID] = struct{}{}
		}
	}
	return out
}

// CompletedTemplateIDs collects every template id the player has ever
// completed, used to gate templates with prerequisites.
func CompletedTemplateIDs(history []domain.QuestHistoryEntry) map[string]struct{} {
	out := make(map[string]struct{}, len(history))
	for _, entry := range history {
		out[entry.TemplateID] = struct{}{}
	}
	return out
}

// difficultyCap returns the highest generation difficulty for a player
// level: one step per MaxDifficultyPerLevel levels, starting at 1.
func difficultyCap(playerLevel, levelsPerStep int) int {
	if levelsPerStep < 1 {
		levelsPerStep = 1
	}
	c := 1 + playerLevel/levelsPerStep
	if c > maxDifficulty {
		c = maxDifficulty
	}
	return c
}

// Plan selects up to count templates for the granularity.
//
// The filtered pool excludes templates whose level requirement exceeds the
// player level, whose seasonal availability misses the current month, or
// whose id was completed within the history window. A non-empty unlocked
// list restricts the pool to those categories; empty means every category
// is open. If EnsureVariety is
// set, a first pass walks categories in seed-shuffled order picking at most
// one template per category; a fill pass then tops the set up to count.
//
// Returns the selection and whether the pool was exhausted before count was
// reached (a non-fatal diagnostic; callers degrade, they don't fail).
func (p *Planner) Plan(
	src *rng.Source,
	g domain.Granularity,
	count int,
	cfg domain.GenerationConfig,
	playerLevel int,
	prefs domain.QuestPreferences,
	now time.Time,
	recentlyCompleted map[string]struct{},
	completedEver map[string]struct{},
	unlocked []domain.Category,
) ([]domain.QuestTemplate, bool) {
	if count <= 0 {
		return nil, false
	}

	pool := p.eligiblePool(g, cfg, playerLevel, now, recentlyCompleted, completedEver, unlocked)
	if len(pool) == 0 {
		return nil, true
	}

	chosen := make(map[string]struct{}, count)
	categoryUsed := make(map[domain.Category]struct{})
	var selected []domain.QuestTemplate

	pick := func(candidates []domain.QuestTemplate) (domain.QuestTemplate, bool) {
		idx, ok := rng.WeightedIndex(src, len(candidates), func(i int) float64 {
			return p.selectionWeight(candidates[i], cfg, prefs, categoryUsed)
		})
		if !ok {
			return domain.QuestTemplate{}, false
		}
		return candidates[idx], true
	}

	take := func(t domain.QuestTemplate) {
		selected = append(selected, t)
		chosen[t.ID] = struct{}{}
		categoryUsed[t.Category] = struct{}{}
	}

	// Variety pass: one template per category, categories in seed-shuffled
	// order. Bookkeeping is local to this call; granularities never share it.
	if cfg.EnsureVariety {
		for _, cat := range p.shuffledCategories(src, cfg) {
			if len(selected) >= count {
				break
			}
			if _, used := categoryUsed[cat]; used {
				continue
			}
			candidates := filterTemplates(pool, func(t domain.QuestTemplate) bool {
				_, taken := chosen[t.ID]
				return !taken && t.Category == cat
			})
			if len(candidates) == 0 {
				continue
			}
			if t, ok := pick(candidates); ok {
				take(t)
			}
		}
	}

	// Fill pass: weighted picks over whatever remains.
	for len(selected) < count {
		candidates := filterTemplates(pool, func(t domain.QuestTemplate) bool {
			_, taken := chosen[t.ID]
			return !taken
		})
		if len(candidates) == 0 {
			break
		}
		t, ok := pick(candidates)
		if !ok {
			break
		}
		take(t)
	}

	return selected, len(selected) < count
}

// eligiblePool applies the hard filters: granularity, level gate, difficulty
// cap, season, event window, unlocked categories, history exclusion,
// prerequisites.
func (p *Planner) eligiblePool(
	g domain.Granularity,
	cfg domain.GenerationConfig,
	playerLevel int,
	now time.Time,
	recentlyCompleted map[string]struct{},
	completedEver map[string]struct{},
	unlocked []domain.Category,
) []domain.QuestTemplate {
	templates := p.catalog.ListTemplates(catalog.Filter{
		Granularity: g,
		MaxLevel:    playerLevel,
		Month:       now.Month(),
	})

	diffCap := maxDifficulty
	if cfg.AdaptToPlayerLevel {
		diffCap = difficultyCap(playerLevel, cfg.MaxDifficultyPerLevel)
	}

	var unlockedSet map[domain.Category]struct{}
	if len(unlocked) > 0 {
		unlockedSet = make(map[domain.Category]struct{}, len(unlocked))
		for _, c := range unlocked {
			unlockedSet[c] = struct{}{}
		}
	}

	return filterTemplates(templates, func(t domain.QuestTemplate) bool {
		if t.Difficulty > diffCap {
			return false
		}
		if unlockedSet != nil {
			if _, open := unlockedSet[t.Category]; !open {
				return false
			}
		}
		// Windowed templates are only eligible while the window is open.
		if t.EventWindow != nil && (now.Before(t.EventWindow.Start) || !t.EventWindow.End.After(now)) {
			return false
		}
		if _, recent := recentlyCompleted[t.ID]; recent {
			return false
		}
		for _, prereq := range t.Prerequisites {
			if _, done := completedEver[prereq]; !done {
				return false
			}
		}
		return true
	})
}

// selectionWeight is the template's base weight shaped by category balance,
// player preference, and the first-use-of-category boost.
func (p *Planner) selectionWeight(
	t domain.QuestTemplate,
	cfg domain.GenerationConfig,
	prefs domain.QuestPreferences,
	categoryUsed map[domain.Category]struct{},
) float64 {
	w := t.Weight
	if _, used := categoryUsed[t.Category]; !used {
		w *= firstCategoryUseBoost
	}
	if balance, ok := cfg.CategoryBalance[t.Category]; ok {
		w *= balance
	}
	if prefs.Prefers(t.Category) {
		w *= preferredCategoryBoost
	}
	if prefs.Avoids(t.Category) {
		w *= avoidedCategoryPenalty
	}
	return w
}

// shuffledCategories returns the configured category set (CategoryBalance
// keys if set, else all categories) in a deterministic seed-shuffled order.
func (p *Planner) shuffledCategories(src *rng.Source, cfg domain.GenerationConfig) []domain.Category {
	var cats []domain.Category
	if len(cfg.CategoryBalance) > 0 {
		// Walk canonical order so the slice is stable before shuffling.
		for _, c := range domain.AllCategories {
			if _, ok := cfg.CategoryBalance[c]; ok {
				cats = append(cats, c)
			}
		}
	} else {
		cats = append(cats, domain.AllCategories...)
	}
	src.Shuffle(len(cats), func(i, j int) { cats[i], cats[j] = cats[j], cats[i] })
	return cats
}

func filterTemplates(in []domain.QuestTemplate, keep func(domain.QuestTemplate) bool) []domain.QuestTemplate {
	var out []domain.QuestTemplate
	for _, t := range in {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
