// Package storage defines the catalog interface the services depend on.
//
// The catalog is the only owner of book state. Reads hand out copies, and a
// stored book changes only through Update, so callers never hold an alias to
// canonical state.
package storage

import (
	"github.com/mvaleed/bibliotheca/internal/domain"
)

// Catalog defines the operations on the collection of books.
type Catalog interface {
	// Add appends a book. Returns ErrInvalidArgument for a nil book and
	// ErrDuplicateKey if the identifier is already present (case-insensitive).
	Add(book *domain.Book) error

	// FindByIdentifier returns the matching book. A blank identifier is not found.
	FindByIdentifier(identifier string) (domain.Book, bool)

	// AllBooks returns every book in insertion order.
	AllBooks() []domain.Book

	// FindByAuthor returns the books whose author contains substr, ignoring case.
	FindByAuthor(substr string) []domain.Book

	// AvailableBooks returns the books not on loan, in catalog order.
	AvailableBooks() []domain.Book

	// OnLoanBooks returns the books on loan, in catalog order.
	OnLoanBooks() []domain.Book

	// Remove deletes the matching book. Returns false if nothing matched and
	// ErrInvalidState if the book is on loan.
	Remove(identifier string) (bool, error)

	// Count returns the number of books.
	Count() int

	// Update applies fn to the matching book and keeps the result only if fn
	// succeeds. Returns ErrBookNotFound if nothing matched.
	Update(identifier string, fn func(book *domain.Book) error) (domain.Book, error)
}
