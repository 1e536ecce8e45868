package quest

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/thad75/questday/internal/clock"
	"github.com/thad75/questday/internal/domain"
	"github.com/thad75/questday/internal/rng"
)

const (
	// minQuestXP floors every materialized reward.
	minQuestXP = 10

	// specialDefaultWindow applies when a special template has no explicit
	// event window.
	specialDefaultWindow = 30 * 24 * time.Hour

	// variationChance is the probability a template with variations uses
	// one instead of its base phrasing.
	variationChance = 0.5
)

// placeholderValues maps a placeholder name to its value set per difficulty
// band (index = difficulty-1). All substitution draws come from the caller's
// seeded Source so quest text is as reproducible as quest ids.
var placeholderValues = map[string][5][]int{
	"minutes": {
		{5, 10, 15},
		{10, 15, 20},
		{15, 20, 30},
		{30, 45, 60},
		{45, 60, 90},
	},
	"amount": {
		{1, 2, 3},
		{2, 3, 4},
		{3, 5, 7},
		{5, 8, 10},
		{10, 15, 20},
	},
	"pages": {
		{3, 5, 8},
		{5, 10, 15},
		{10, 15, 20},
		{20, 25, 30},
		{30, 40, 50},
	},
	"steps": {
		{1000, 2000, 3000},
		{3000, 4000, 5000},
		{5000, 6000, 8000},
		{8000, 10000, 12000},
		{12000, 15000, 20000},
	},
}

// fallbackValues covers placeholders without a dedicated table.
var fallbackValues = [5][]int{
	{1, 2, 3},
	{2, 3, 5},
	{3, 5, 8},
	{5, 8, 12},
	{8, 12, 20},
}

// Factory materializes concrete quests from templates.
type Factory struct{}

// NewFactory creates a quest instance factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Materialize builds a dated Quest from a template. variation may be nil.
// All randomness (placeholder values) comes from src, so the same inputs
// always produce a byte-identical quest.
func (f *Factory) Materialize(
	src *rng.Source,
	tpl domain.QuestTemplate,
	variation *domain.QuestVariation,
	g domain.Granularity,
	startDate time.Time,
) domain.Quest {
	title := tpl.Title
	description := tpl.Description
	xpModifier := 1.0
	difficultyModifier := 0

	if variation != nil {
		if variation.Title != "" {
			title = variation.Title
		}
		if variation.Description != "" {
			description = variation.Description
		}
		if variation.XPModifier > 0 {
			xpModifier = variation.XPModifier
		}
		difficultyModifier = variation.DifficultyModifier
	}

	difficulty := clampDifficulty(tpl.Difficulty + difficultyModifier)

	if tpl.IsDynamic {
		title = substitutePlaceholders(src, title, tpl.PersonalizedFields, difficulty)
		description = substitutePlaceholders(src, description, tpl.PersonalizedFields, difficulty)
	}

	xp := int(math.Round(float64(tpl.BaseXP) * xpModifier))
	if xp < minQuestXP {
		xp = minQuestXP
	}

	return domain.Quest{
		ID:             instanceID(tpl.ID, g, startDate),
		TemplateID:     tpl.ID,
		Title:          title,
		Description:    description,
		Category:       tpl.Category,
		Difficulty:     difficulty,
		XP:             xp,
		Granularity:    g,
		StartDate:      startDate,
		EndDate:        endDateFor(tpl, g, startDate),
		Progress:       0,
		MaxCompletions: tpl.MaxCompletions,
		Tags:           append([]string(nil), tpl.Tags...),
	}
}

// PickVariation deterministically chooses a variation for the template, or
// nil to keep the base phrasing. Consumes exactly the same draws for the
// same seed stream position, keeping downstream selection aligned.
func (f *Factory) PickVariation(src *rng.Source, tpl domain.QuestTemplate) *domain.QuestVariation {
	if len(tpl.Variations) == 0 {
		return nil
	}
	if src.Float64() >= variationChance {
		return nil
	}
	idx := src.Intn(len(tpl.Variations))
	return &tpl.Variations[idx]
}

// instanceID derives the stable id {templateId}_{granularity}_{ISO-date}.
// Regenerating the same template on the same day is idempotent.
func instanceID(templateID string, g domain.Granularity, startDate time.Time) string {
	return fmt.Sprintf("%s_%s_%s", templateID, g, clock.ISODate(startDate))
}

// endDateFor computes the quest window end for a granularity.
func endDateFor(tpl domain.QuestTemplate, g domain.Granularity, startDate time.Time) time.Time {
	switch g {
	case domain.GranularityDaily:
		// End of the same calendar day, local to the start date.
		y, m, d := startDate.Date()
		return time.Date(y, m, d, 23, 59, 59, 999_000_000, startDate.Location())
	case domain.GranularityWeekly:
		return startDate.AddDate(0, 0, 7)
	case domain.GranularityMonthly:
		return startDate.AddDate(0, 1, 0)
	case domain.GranularitySpecial:
		if tpl.EventWindow != nil {
			return tpl.EventWindow.End
		}
		return startDate.Add(specialDefaultWindow)
	}
	return startDate.AddDate(0, 0, 1)
}

func clampDifficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > maxDifficulty {
		return maxDifficulty
	}
	return d
}

// substitutePlaceholders replaces {{name}} markers with difficulty-scaled
// values. Only declared personalized fields are substituted; unknown markers
// are left in place for the catalog validator to catch.
func substitutePlaceholders(src *rng.Source, text string, fields []string, difficulty int) string {
	band := difficulty - 1
	if band < 0 {
		band = 0
	}
	if band > 4 {
		band = 4
	}

	for _, field := range fields {
		marker := "{{" + field + "}}"
		if !strings.Contains(text, marker) {
			continue
		}
		values, ok := placeholderValues[field]
		if !ok {
			values = fallbackValues
		}
		pool := values[band]
		v := pool[src.Intn(len(pool))]
		text = strings.ReplaceAll(text, marker, fmt.Sprintf("%d", v))
	}
	return text
}
