// Package service contains the business logic layer.
// Services orchestrate operations on the catalog and publish events.
// They do not know about HTTP, gRPC, or transport details.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/event"
	"github.com/mvaleed/bibliotheca/internal/storage"
)

// Clock returns the current time. Only its calendar date is used.
type Clock func() time.Time

// Option configures a LoanService.
type Option func(*LoanService)

// WithClock sets the clock used to date new loans.
func WithClock(clock Clock) Option {
	return func(s *LoanService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// LoanService records loans and returns and detects overdue loans.
// It reads and mutates books only through the catalog.
type LoanService struct {
	catalog   storage.Catalog
	publisher event.Publisher
	clock     Clock
}

func NewLoanService(catalog storage.Catalog, publisher event.Publisher, opts ...Option) (*LoanService, error) {
	if catalog == nil {
		return nil, domain.ValidationError{Field: "catalog", Message: "required"}
	}
	if publisher == nil {
		publisher = event.NewNoopPublisher()
	}

	s := &LoanService{
		catalog:   catalog,
		publisher: publisher,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoanBook lends the identified book to borrower for the given number of days.
func (s *LoanService) LoanBook(ctx context.Context, identifier, borrower string, days int) (domain.Book, error) {
	if err := validateLoan(identifier, borrower, days); err != nil {
		return domain.Book{}, err
	}

	today := s.clock()
	book, err := s.catalog.Update(identifier, func(b *domain.Book) error {
		return b.MarkLoaned(borrower, days, today)
	})
	if err != nil {
		return domain.Book{}, fmt.Errorf("loan book %q: %w", strings.TrimSpace(identifier), err)
	}

	_ = s.publisher.Publish(ctx, domain.BookLoanedEvent(&book))

	return book, nil
}

// ReturnBook records the return of the identified book.
func (s *LoanService) ReturnBook(ctx context.Context, identifier string) (domain.Book, error) {
	if err := validateIdentifier(identifier); err != nil {
		return domain.Book{}, err
	}

	var borrower string
	book, err := s.catalog.Update(identifier, func(b *domain.Book) error {
		borrower, _ = b.Borrower()
		return b.MarkReturned()
	})
	if err != nil {
		return domain.Book{}, fmt.Errorf("return book %q: %w", strings.TrimSpace(identifier), err)
	}

	_ = s.publisher.Publish(ctx, domain.BookReturnedEvent(&book, borrower))

	return book, nil
}

// OverdueLoans returns the books on loan whose due date is strictly before today,
// in catalog order.
func (s *LoanService) OverdueLoans(today time.Time) []domain.Book {
	var overdue []domain.Book
	for _, b := range s.catalog.OnLoanBooks() {
		if b.IsOverdue(today) {
			overdue = append(overdue, b)
		}
	}
	return overdue
}

// Today returns the service clock's current calendar date.
func (s *LoanService) Today() time.Time {
	return domain.DateOf(s.clock())
}

func validateLoan(identifier, borrower string, days int) error {
	var errs domain.ValidationErrors

	if strings.TrimSpace(identifier) == "" {
		errs = append(errs, domain.ValidationError{Field: "identifier", Message: "required"})
	}
	if strings.TrimSpace(borrower) == "" {
		errs = append(errs, domain.ValidationError{Field: "borrower", Message: "required"})
	}
	if days <= 0 {
		errs = append(errs, domain.ValidationError{Field: "days", Message: "must be greater than zero"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateIdentifier(identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return domain.ValidationError{Field: "identifier", Message: "required"}
	}
	return nil
}
