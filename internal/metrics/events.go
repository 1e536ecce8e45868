package metrics

import (
	"context"

	"github.com/thad75/questday/internal/event"
	"github.com/thad75/questday/internal/logger"
)

// EventMetricsCollector subscribes to engine events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.QuestSetGenerated,
		event.QuestCompleted,
		event.QuestSkipped,
		event.QuestExpired,
		event.GranularityReset,
		event.PlayerLevelUp,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	// Always increment event counter
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch payload := evt.Payload.(type) {
	case event.QuestSetGeneratedPayloadV1:
		QuestsGenerated.WithLabelValues(string(payload.Granularity)).Add(float64(payload.Generated))
		if payload.Generated < payload.Requested {
			PoolExhaustions.WithLabelValues(string(payload.Granularity)).Inc()
		}

	case event.QuestCompletedPayloadV1:
		switch evt.Type {
		case event.QuestCompleted:
			QuestsCompleted.WithLabelValues(string(payload.Granularity)).Inc()
			XPAwarded.Add(float64(payload.XPEarned))
		case event.QuestSkipped:
			QuestsSkipped.WithLabelValues(string(payload.Granularity)).Inc()
		}

	case event.QuestsExpiredPayloadV1:
		QuestsExpired.Add(float64(len(payload.QuestIDs)))

	case event.GranularityResetPayloadV1:
		GranularityResets.WithLabelValues(string(payload.Granularity)).Inc()
		StreakLength.WithLabelValues(string(payload.Granularity)).Set(float64(payload.Streak))

	case event.PlayerLevelUpPayloadV1:
		PlayerLevelUps.Inc()

	default:
		log.Debug(LogMsgEventPayloadUnexpected, "type", evt.Type)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
