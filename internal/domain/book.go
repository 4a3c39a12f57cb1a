package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// BookStatus represents the loan state of a catalogued book.
type BookStatus string

const (
	StatusAvailable BookStatus = "available"
	StatusOnLoan    BookStatus = "on_loan"
)

// Valid returns true if the BookStatus is recognized.
func (s BookStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusOnLoan:
		return true
	}
	return false
}

// CanTransitionTo validates allowed status transitions.
// A book cycles between available and on loan; there is no terminal state.
func (s BookStatus) CanTransitionTo(target BookStatus) bool {
	allowed := map[BookStatus][]BookStatus{
		StatusAvailable: {StatusOnLoan},
		StatusOnLoan:    {StatusAvailable},
	}
	return slices.Contains(allowed[s], target)
}

// Loan is the borrowing currently attached to a book.
type Loan struct {
	Borrower string
	LoanedOn time.Time
	DueDate  time.Time
}

// Book is the core domain entity representing one catalogued book and its loan state.
//
// Identifier, title, author and year never change after construction. The loan is
// only ever set by MarkLoaned and cleared by MarkReturned, so a book is available
// exactly when it holds no loan.
type Book struct {
	identifier string
	title      string
	author     string
	year       int

	loan *Loan
}

func NewBook(identifier, title, author string, year int) (*Book, error) {
	b := &Book{
		identifier: strings.TrimSpace(identifier),
		title:      strings.TrimSpace(title),
		author:     strings.TrimSpace(author),
		year:       year,
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Book) Validate() error {
	var errs ValidationErrors

	if b.identifier == "" {
		errs = append(errs, ValidationError{Field: "identifier", Message: "required"})
	}
	if b.title == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "required"})
	}
	if b.author == "" {
		errs = append(errs, ValidationError{Field: "author", Message: "required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (b *Book) Identifier() string { return b.identifier }
func (b *Book) Title() string      { return b.title }
func (b *Book) Author() string     { return b.author }
func (b *Book) Year() int          { return b.year }
func (b *Book) Available() bool    { return b.loan == nil }

func (b *Book) Status() BookStatus {
	if b.loan == nil {
		return StatusAvailable
	}
	return StatusOnLoan
}

// Loan returns the current loan, if any.
func (b *Book) Loan() (Loan, bool) {
	if b.loan == nil {
		return Loan{}, false
	}
	return *b.loan, true
}

func (b *Book) Borrower() (string, bool) {
	if b.loan == nil {
		return "", false
	}
	return b.loan.Borrower, true
}

func (b *Book) DueDate() (time.Time, bool) {
	if b.loan == nil {
		return time.Time{}, false
	}
	return b.loan.DueDate, true
}

// MarkLoaned lends the book to borrower for the given number of days, starting today.
func (b *Book) MarkLoaned(borrower string, days int, today time.Time) error {
	borrower = strings.TrimSpace(borrower)

	var errs ValidationErrors
	if borrower == "" {
		errs = append(errs, ValidationError{Field: "borrower", Message: "required"})
	}
	if days <= 0 {
		errs = append(errs, ValidationError{Field: "days", Message: "must be greater than zero"})
	}
	if len(errs) > 0 {
		return errs
	}

	if !b.Status().CanTransitionTo(StatusOnLoan) {
		return StateError{
			Op:     "mark loaned",
			Reason: fmt.Sprintf("book %q is not available (on loan to %s)", b.title, b.loan.Borrower),
		}
	}

	loanedOn := DateOf(today)
	b.loan = &Loan{
		Borrower: borrower,
		LoanedOn: loanedOn,
		DueDate:  loanedOn.AddDate(0, 0, days),
	}
	return nil
}

// MarkReturned clears the current loan.
func (b *Book) MarkReturned() error {
	if !b.Status().CanTransitionTo(StatusAvailable) {
		return StateError{
			Op:     "mark returned",
			Reason: fmt.Sprintf("book %q is already available", b.title),
		}
	}
	b.loan = nil
	return nil
}

// IsOverdue reports whether the book is on loan with a due date strictly before today.
func (b *Book) IsOverdue(today time.Time) bool {
	if b.loan == nil {
		return false
	}
	return b.loan.DueDate.Before(DateOf(today))
}

// MatchesIdentifier compares identifiers case-insensitively, ignoring surrounding spaces.
func (b *Book) MatchesIdentifier(identifier string) bool {
	return strings.EqualFold(b.identifier, strings.TrimSpace(identifier))
}

// SameIdentifier is the book equality used for uniqueness checks.
func (b *Book) SameIdentifier(other *Book) bool {
	if other == nil {
		return false
	}
	return strings.EqualFold(b.identifier, other.identifier)
}

// AuthorContains reports whether substr occurs in the author, ignoring case.
func (b *Book) AuthorContains(substr string) bool {
	return strings.Contains(strings.ToLower(b.author), strings.ToLower(strings.TrimSpace(substr)))
}

// Clone returns a deep copy that shares no loan state with b.
func (b *Book) Clone() *Book {
	c := *b
	if b.loan != nil {
		l := *b.loan
		c.loan = &l
	}
	return &c
}

// String has a value receiver so the Book values handed out by the catalog format through fmt.
func (b Book) String() string {
	state := "[AVAILABLE]"
	if b.loan != nil {
		state = fmt.Sprintf("[ON LOAN to %s, due %s]", b.loan.Borrower, b.loan.DueDate.Format(DateLayout))
	}
	return fmt.Sprintf("[%s] %q by %s (%d) %s", b.identifier, b.title, b.author, b.year, state)
}

// DateLayout is the calendar date format used in notifications and transports.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
