package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thad75/questday/internal/domain"
)

// EventSchemaVersion is the current event envelope version.
const EventSchemaVersion = "1.0"

// Type represents the type of an event
type Type string

// Quest engine event types
const (
	QuestSetGenerated Type = "quest.set.generated"
	QuestCompleted    Type = "quest.completed"
	QuestSkipped      Type = "quest.skipped"
	QuestExpired      Type = "quest.expired"
	GranularityReset  Type = "quest.granularity.reset"
	PlayerLevelUp     Type = "player.level_up"
)

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"`
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// Typed event payloads

// QuestSetGeneratedPayloadV1 describes a freshly generated quest set.
type QuestSetGeneratedPayloadV1 struct {
	UserID      string             `json:"user_id"`
	Granularity domain.Granularity `json:"granularity"`
	QuestIDs    []string           `json:"quest_ids"`
	Requested   int                `json:"requested"`
	Generated   int                `json:"generated"`
	SeedDate    string             `json:"seed_date"`
	Timestamp   int64              `json:"timestamp"`
}

// QuestCompletedPayloadV1 records a completion and its reward.
type QuestCompletedPayloadV1 struct {
	UserID      string             `json:"user_id"`
	QuestID     string             `json:"quest_id"`
	TemplateID  string             `json:"template_id"`
	Granularity domain.Granularity `json:"granularity"`
	XPEarned    int                `json:"xp_earned"`
	Timestamp   int64              `json:"timestamp"`
}

// QuestsExpiredPayloadV1 records quests that passed their window unfinished.
type QuestsExpiredPayloadV1 struct {
	UserID    string   `json:"user_id"`
	QuestIDs  []string `json:"quest_ids"`
	Timestamp int64    `json:"timestamp"`
}

// GranularityResetPayloadV1 records a reset pass outcome.
type GranularityResetPayloadV1 struct {
	UserID      string             `json:"user_id"`
	Granularity domain.Granularity `json:"granularity"`
	Removed     int                `json:"removed"`
	Generated   int                `json:"generated"`
	Streak      int                `json:"streak"`
	Timestamp   int64              `json:"timestamp"`
}

// PlayerLevelUpPayloadV1 records a level transition.
type PlayerLevelUpPayloadV1 struct {
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
	XPGained int    `json:"xp_gained"`
}

// Type-safe event constructors

// NewQuestSetGeneratedEvent creates a quest set generation event.
func NewQuestSetGeneratedEvent(userID string, g domain.Granularity, questIDs []string, requested int, seedDate string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestSetGenerated,
		Payload: QuestSetGeneratedPayloadV1{
			UserID:      userID,
			Granularity: g,
			QuestIDs:    questIDs,
			Requested:   requested,
			Generated:   len(questIDs),
			SeedDate:    seedDate,
			Timestamp:   time.Now().Unix(),
		},
	}
}

// NewQuestCompletedEvent creates a quest completion event.
func NewQuestCompletedEvent(userID, questID, templateID string, g domain.Granularity, xpEarned int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestCompleted,
		Payload: QuestCompletedPayloadV1{
			UserID:      userID,
			QuestID:     questID,
			TemplateID:  templateID,
			Granularity: g,
			XPEarned:    xpEarned,
			Timestamp:   time.Now().Unix(),
		},
	}
}

// NewQuestsExpiredEvent creates an expiration event for a batch of quests.
func NewQuestsExpiredEvent(userID string, questIDs []string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestExpired,
		Payload: QuestsExpiredPayloadV1{
			UserID:    userID,
			QuestIDs:  questIDs,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewGranularityResetEvent creates a reset event.
func NewGranularityResetEvent(userID string, g domain.Granularity, removed, generated, streak int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    GranularityReset,
		Payload: GranularityResetPayloadV1{
			UserID:      userID,
			Granularity: g,
			Removed:     removed,
			Generated:   generated,
			Streak:      streak,
			Timestamp:   time.Now().Unix(),
		},
	}
}

// NewPlayerLevelUpEvent creates a level-up event.
func NewPlayerLevelUpEvent(userID string, oldLevel, newLevel, xpGained int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PlayerLevelUp,
		Payload: PlayerLevelUpPayloadV1{
			UserID:   userID,
			OldLevel: oldLevel,
			NewLevel: newLevel,
			XPGained: xpGained,
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers synchronously.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for event %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
