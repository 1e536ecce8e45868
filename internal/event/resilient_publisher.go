package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries     int
	RetryDelay     time.Duration
	DeadLetterPath string
}

// DefaultResilientConfig returns sane retry defaults.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxRetries:     3,
		RetryDelay:     time.Second,
		DeadLetterPath: "events.deadletter.jsonl",
	}
}

// ResilientPublisher wraps an event Bus with retry logic and a dead-letter
// file. Publish never blocks the caller on retries.
type ResilientPublisher struct {
	inner  Bus
	config ResilientConfig
	wg     sync.WaitGroup
	mu     sync.Mutex // protects dead-letter file writes
}

// NewResilientPublisher creates a new ResilientPublisher
func NewResilientPublisher(inner Bus, config ResilientConfig) *ResilientPublisher {
	return &ResilientPublisher{
		inner:  inner,
		config: config,
	}
}

// PublishWithRetry attempts to publish an event. On failure it launches a
// background retry loop and returns immediately; the caller is decoupled
// from the retry mechanism.
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	if err := p.inner.Publish(ctx, event); err == nil {
		return
	} else {
		slog.Warn("Failed to publish event, initiating async retry",
			"event_type", event.Type,
			"error", err,
			"retries", p.config.MaxRetries)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.retryLoop(event)
	}()
}

func (p *ResilientPublisher) retryLoop(event Event) {
	// Detached context: the originating request may already be done.
	ctx := context.Background()

	var lastErr error
	for i := 1; i <= p.config.MaxRetries; i++ {
		time.Sleep(p.config.RetryDelay * time.Duration(i)) // linear backoff

		lastErr = p.inner.Publish(ctx, event)
		if lastErr == nil {
			slog.Info("Successfully published event after retry",
				"event_type", event.Type,
				"attempt", i)
			return
		}

		slog.Warn("Retry failed",
			"event_type", event.Type,
			"attempt", i,
			"error", lastErr)
	}

	p.writeToDeadLetter(event, lastErr)
}

func (p *ResilientPublisher) writeToDeadLetter(event Event, lastErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.config.DeadLetterPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("Failed to open dead letter file", "error", err, "path", p.config.DeadLetterPath)
		return
	}
	defer f.Close()

	type deadLetterEntry struct {
		Timestamp time.Time `json:"timestamp"`
		Event     Event     `json:"event"`
		Attempts  int       `json:"attempts"`
		LastError string    `json:"last_error,omitempty"`
	}

	entry := deadLetterEntry{
		Timestamp: time.Now(),
		Event:     event,
		Attempts:  p.config.MaxRetries,
	}
	if lastErr != nil {
		entry.LastError = lastErr.Error()
	}

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		slog.Error("Failed to write to dead letter file", "error", err)
		return
	}
	slog.Info("Event written to dead letter queue", "event_type", event.Type)
}

// Wait blocks until all in-flight retry loops finish. Used during shutdown.
func (p *ResilientPublisher) Wait() {
	p.wg.Wait()
}
