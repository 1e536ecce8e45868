package domain

import "time"

// Granularity is the reset period of a quest set.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
	GranularitySpecial Granularity = "special"
)

// AllGranularities lists every granularity in canonical order.
// Iteration over quest sets must use this slice, never a map, so that
// generation order is deterministic.
var AllGranularities = []Granularity{
	GranularityDaily,
	GranularityWeekly,
	GranularityMonthly,
	GranularitySpecial,
}

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly, GranularitySpecial:
		return true
	}
	return false
}

// Category classifies quest templates.
type Category string

const (
	CategoryHealth       Category = "health"
	CategoryFitness      Category = "fitness"
	CategoryLearning     Category = "learning"
	CategoryCreativity   Category = "creativity"
	CategorySocial       Category = "social"
	CategoryProductivity Category = "productivity"
	CategoryMindfulness  Category = "mindfulness"
	CategoryFinance      Category = "finance"
)

// AllCategories lists every category in canonical order.
var AllCategories = []Category{
	CategoryHealth,
	CategoryFitness,
	CategoryLearning,
	CategoryCreativity,
	CategorySocial,
	CategoryProductivity,
	CategoryMindfulness,
	CategoryFinance,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// QuestVariation is an alternate phrasing/reward modifier applied to a
// template at materialization time.
type QuestVariation struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	XPModifier         float64 `json:"xp_modifier,omitempty"`
	DifficultyModifier int     `json:"difficulty_modifier,omitempty"`
}

// EventWindow is an explicit start/end window for special quests.
type EventWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// QuestTemplate is an immutable catalog entry from which dated quest
// instances are materialized. Loaded once from config, never mutated.
type QuestTemplate struct {
	ID                   string           `json:"id" validate:"required"`
	Title                string           `json:"title" validate:"required"`
	Description          string           `json:"description"`
	Category             Category         `json:"category" validate:"required"`
	Difficulty           int              `json:"difficulty" validate:"min=1,max=5"`
	BaseXP               int              `json:"base_xp" validate:"min=1"`
	AllowedGranularities []Granularity    `json:"allowed_granularities" validate:"min=1"`
	Weight               float64          `json:"weight" validate:"gt=0"`
	LevelRequirement     int              `json:"level_requirement,omitempty" validate:"min=0"`
	SeasonalAvailability []int            `json:"seasonal_availability,omitempty"` // month numbers 1-12
	Variations           []QuestVariation `json:"variations,omitempty"`
	IsDynamic            bool             `json:"is_dynamic,omitempty"`
	PersonalizedFields   []string         `json:"personalized_fields,omitempty"`
	Prerequisites        []string         `json:"prerequisites,omitempty"`
	MaxCompletions       int              `json:"max_completions,omitempty" validate:"min=0"` // 0 = unbounded
	EventWindow          *EventWindow     `json:"event_window,omitempty"`
	Tags                 []string         `json:"tags,omitempty"`
}

// AllowsGranularity reports whether the template may be scheduled at g.
func (t QuestTemplate) AllowsGranularity(g Granularity) bool {
	for _, allowed := range t.AllowedGranularities {
		if allowed == g {
			return true
		}
	}
	return false
}

// AvailableInMonth reports whether the template is in season for the given
// month. Templates without seasonal availability are always in season.
func (t QuestTemplate) AvailableInMonth(month time.Month) bool {
	if len(t.SeasonalAvailability) == 0 {
		return true
	}
	for _, m := range t.SeasonalAvailability {
		if time.Month(m) == month {
			return true
		}
	}
	return false
}

// Quest is a materialized, time-bound occurrence of a template.
// Invariant: EndDate is strictly after StartDate.
type Quest struct {
	ID                 string      `json:"id"`
	TemplateID         string      `json:"template_id"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	Category           Category    `json:"category"`
	Difficulty         int         `json:"difficulty"`
	XP                 int         `json:"xp"`
	Granularity        Granularity `json:"granularity"`
	StartDate          time.Time   `json:"start_date"`
	EndDate            time.Time   `json:"end_date"`
	Completed          bool        `json:"completed"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	Progress           int         `json:"progress"` // 0-100
	CurrentCompletions int         `json:"current_completions"`
	MaxCompletions     int         `json:"max_completions,omitempty"` // 0 = unbounded
	Tags               []string    `json:"tags,omitempty"`
}

// QuestStatus is the lifecycle state of a quest instance.
type QuestStatus string

const (
	QuestStatusAvailable QuestStatus = "available"
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusExpired   QuestStatus = "expired"
	QuestStatusSkipped   QuestStatus = "skipped"
)

// Terminal reports whether the status admits no further transitions.
func (s QuestStatus) Terminal() bool {
	return s == QuestStatusCompleted || s == QuestStatusExpired || s == QuestStatusSkipped
}

// PlayerQuestState is the per-instance lifecycle record. One-to-one with a
// live Quest; removed together with it on regeneration.
type PlayerQuestState struct {
	QuestID            string      `json:"quest_id"`
	Status             QuestStatus `json:"status"`
	Progress           int         `json:"progress"`
	CurrentCompletions int         `json:"current_completions"`
	StartedAt          *time.Time  `json:"started_at,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	TimeSpentMinutes   int         `json:"time_spent_minutes"`
}

// QuestHistoryEntry is an immutable ledger record written on completion.
// Append-only; the planner uses it to exclude recently-seen templates.
type QuestHistoryEntry struct {
	ID               string      `json:"id"`
	QuestID          string      `json:"quest_id"`
	TemplateID       string      `json:"template_id"`
	Granularity      Granularity `json:"granularity"`
	CompletedAt      time.Time   `json:"completed_at"`
	XPEarned         int         `json:"xp_earned"`
	TimeSpentMinutes int         `json:"time_spent_minutes"`
	Rating           *int        `json:"rating,omitempty"`
}

// QuestPreferences captures player taste used to bias selection weights.
type QuestPreferences struct {
	PreferredCategories  []Category `json:"preferred_categories,omitempty"`
	AvoidedCategories    []Category `json:"avoided_categories,omitempty"`
	DifficultyPreference int        `json:"difficulty_preference,omitempty"`
}

// Prefers reports whether c is in the preferred set.
func (p QuestPreferences) Prefers(c Category) bool {
	for _, pc := range p.PreferredCategories {
		if pc == c {
			return true
		}
	}
	return false
}

// Avoids reports whether c is in the avoided set.
func (p QuestPreferences) Avoids(c Category) bool {
	for _, ac := range p.AvoidedCategories {
		if ac == c {
			return true
		}
	}
	return false
}

// QuestSystemState is the aggregate root owned by one user. It is the single
// unit of persistence: the engine reads a state and returns a new one, it
// never persists it itself.
type QuestSystemState struct {
	ActiveQuests       []Quest                     `json:"active_quests"`
	QuestHistory       []QuestHistoryEntry         `json:"quest_history"`
	PlayerQuestStates  map[string]PlayerQuestState `json:"player_quest_states"`
	LastResetDates     map[Granularity]string      `json:"last_reset_dates"` // ISO date (YYYY-MM-DD)
	CurrentStreak      map[Granularity]int         `json:"current_streak"`
	UnlockedCategories []Category                  `json:"unlocked_categories,omitempty"` // empty: all categories open
	Preferences        QuestPreferences            `json:"preferences"`
}

// NewQuestSystemState returns an empty state with all maps initialized.
func NewQuestSystemState() *QuestSystemState {
	return &QuestSystemState{
		ActiveQuests:      []Quest{},
		QuestHistory:      []QuestHistoryEntry{},
		PlayerQuestStates: make(map[string]PlayerQuestState),
		LastResetDates:    make(map[Granularity]string),
		CurrentStreak:     make(map[Granularity]int),
	}
}

// Clone returns a deep copy of the state. The engine mutates only clones so
// callers can safely retry persistence with the original untouched.
func (s *QuestSystemState) Clone() *QuestSystemState {
	out := &QuestSystemState{
		ActiveQuests:       make([]Quest, len(s.ActiveQuests)),
		QuestHistory:       make([]QuestHistoryEntry, len(s.QuestHistory)),
		PlayerQuestStates:  make(map[string]PlayerQuestState, len(s.PlayerQuestStates)),
		LastResetDates:     make(map[Granularity]string, len(s.LastResetDates)),
		CurrentStreak:      make(map[Granularity]int, len(s.CurrentStreak)),
		UnlockedCategories: append([]Category(nil), s.UnlockedCategories...),
		Preferences:        s.Preferences,
	}
	copy(out.ActiveQuests, s.ActiveQuests)
	copy(out.QuestHistory, s.QuestHistory)
	for k, v := range s.PlayerQuestStates {
		out.PlayerQuestStates[k] = v
	}
	for k, v := range s.LastResetDates {
		out.LastResetDates[k] = v
	}
	for k, v := range s.CurrentStreak {
		out.CurrentStreak[k] = v
	}
	return out
}

// QuestsOf returns the active quests of a single granularity.
func (s *QuestSystemState) QuestsOf(g Granularity) []Quest {
	var out []Quest
	for _, q := range s.ActiveQuests {
		if q.Granularity == g {
			out = append(out, q)
		}
	}
	return out
}

// FindQuest returns a pointer into ActiveQuests for the given id, or nil.
func (s *QuestSystemState) FindQuest(id string) *Quest {
	for i := range s.ActiveQuests {
		if s.ActiveQuests[i].ID == id {
			return &s.ActiveQuests[i]
		}
	}
	return nil
}

// QuestPoolConfig is the on-disk shape of the template catalog.
type QuestPoolConfig struct {
	Version   string          `json:"version"`
	Templates []QuestTemplate `json:"templates" validate:"required,min=1,dive"`
}
