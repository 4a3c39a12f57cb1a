package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event that occurred.
// Events are immutable facts about something that happened.
type Event struct {
	ID        uuid.UUID
	Type      string
	Timestamp time.Time
	BookID    string
	Data      map[string]any
}

// Event type constants
const (
	EventBookAdded    = "book.added"
	EventBookRemoved  = "book.removed"
	EventBookLoaned   = "book.loaned"
	EventBookReturned = "book.returned"
)

// NewEvent creates a new domain event.
func NewEvent(eventType string, bookID string, data map[string]any) Event {
	if data == nil {
		data = make(map[string]any)
	}
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		BookID:    bookID,
		Data:      data,
	}
}

func BookAddedEvent(b *Book) Event {
	return NewEvent(EventBookAdded, b.Identifier(), map[string]any{
		"title":  b.Title(),
		"author": b.Author(),
		"year":   b.Year(),
	})
}

func BookRemovedEvent(identifier string) Event {
	return NewEvent(EventBookRemoved, identifier, nil)
}

// BookLoanedEvent carries the loan confirmation: title, borrower and due date.
func BookLoanedEvent(b *Book) Event {
	data := map[string]any{"title": b.Title()}
	if loan, ok := b.Loan(); ok {
		data["borrower"] = loan.Borrower
		data["due_date"] = loan.DueDate.Format(DateLayout)
	}
	return NewEvent(EventBookLoaned, b.Identifier(), data)
}

// BookReturnedEvent records which borrower gave the book back.
func BookReturnedEvent(b *Book, borrower string) Event {
	return NewEvent(EventBookReturned, b.Identifier(), map[string]any{
		"title":    b.Title(),
		"borrower": borrower,
	})
}
