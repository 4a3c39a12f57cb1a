// Package event provides event publishing abstractions.
//
// Loan and catalog services report what happened through a Publisher. The
// rendering of a notification (log line, console message) belongs to the
// implementation, the services only supply the event data.
package event

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/mvaleed/bibliotheca/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher is the interface for publishing domain events.
// Implementations can be swapped without changing business logic.
type Publisher interface {
	// Publish delivers one event.
	Publish(ctx context.Context, event domain.Event) error

	// PublishBatch delivers events in order, stopping at the first failure.
	PublishBatch(ctx context.Context, events []domain.Event) error

	// Close cleanly shuts down the publisher.
	Close() error
}

// LoggingPublisher implements Publisher by logging events.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		err = fmt.Errorf("encoding event data: %w", err)
		logPublishFailure(ctx, p.logger, event, err)
		return err
	}
	p.logger.InfoContext(ctx, "event published",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("book_id", event.BookID),
		slog.String("data", string(data)),
	)
	return nil
}

func (p *LoggingPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	return publishEach(ctx, p, events)
}

func (p *LoggingPublisher) Close() error {
	return nil
}

// ConsolePublisher writes a human-readable confirmation for each event.
// Write failures are logged to logger as well as returned.
type ConsolePublisher struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

func NewConsolePublisher(w io.Writer, logger *slog.Logger) *ConsolePublisher {
	return &ConsolePublisher{w: w, logger: logger}
}

func (p *ConsolePublisher) Publish(ctx context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintln(p.w, Render(event)); err != nil {
		err = fmt.Errorf("writing notification: %w", err)
		logPublishFailure(ctx, p.logger, event, err)
		return err
	}
	return nil
}

func (p *ConsolePublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	return publishEach(ctx, p, events)
}

func (p *ConsolePublisher) Close() error {
	return nil
}

// Render formats an event as a one-line confirmation message.
func Render(event domain.Event) string {
	switch event.Type {
	case domain.EventBookLoaned:
		return fmt.Sprintf("Loan recorded: %q -> %v (due by %v)",
			event.Data["title"], event.Data["borrower"], event.Data["due_date"])
	case domain.EventBookReturned:
		return fmt.Sprintf("Return recorded: %q <- %v", event.Data["title"], event.Data["borrower"])
	case domain.EventBookAdded:
		return fmt.Sprintf("Book added: [%s] %q by %v", event.BookID, event.Data["title"], event.Data["author"])
	case domain.EventBookRemoved:
		return fmt.Sprintf("Book removed: [%s]", event.BookID)
	}
	return fmt.Sprintf("%s: [%s]", event.Type, event.BookID)
}

// NoopPublisher is a no-op implementation for when event publishing is disabled.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(ctx context.Context, event domain.Event) error {
	return nil
}

func (p *NoopPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}

// logPublishFailure records an event that could not be delivered.
func logPublishFailure(ctx context.Context, logger *slog.Logger, event domain.Event, err error) {
	logger.ErrorContext(ctx, "event publish failed",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("book_id", event.BookID),
		slog.String("error", err.Error()),
	)
}

func publishEach(ctx context.Context, p Publisher, events []domain.Event) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
