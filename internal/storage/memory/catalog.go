// Package memory implements the storage interfaces in process memory.
package memory

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/storage"
)

var _ storage.Catalog = (*Catalog)(nil)

// Catalog implements storage.Catalog with an ordered slice.
//
// Lookups are linear scans. Every method holds mu for its whole
// read-modify-write sequence, so one Catalog can be shared by many callers.
type Catalog struct {
	mu    sync.RWMutex
	books []*domain.Book
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Add stores a private copy of book.
func (c *Catalog) Add(book *domain.Book) error {
	if book == nil {
		return domain.ValidationError{Field: "book", Message: "required"}
	}
	if err := book.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range c.books {
		if b.SameIdentifier(book) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, book.Identifier())
		}
	}

	c.books = append(c.books, book.Clone())
	return nil
}

// FindByIdentifier returns the matching book.
func (c *Catalog) FindByIdentifier(identifier string) (domain.Book, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(identifier)
	if i < 0 {
		return domain.Book{}, false
	}
	return *c.books[i].Clone(), true
}

// AllBooks returns every book in insertion order.
func (c *Catalog) AllBooks() []domain.Book {
	return c.filter(func(*domain.Book) bool { return true })
}

// FindByAuthor returns the books whose author contains substr, ignoring case.
func (c *Catalog) FindByAuthor(substr string) []domain.Book {
	return c.filter(func(b *domain.Book) bool { return b.AuthorContains(substr) })
}

// AvailableBooks returns the books not on loan.
func (c *Catalog) AvailableBooks() []domain.Book {
	return c.filter((*domain.Book).Available)
}

// OnLoanBooks returns the books on loan.
func (c *Catalog) OnLoanBooks() []domain.Book {
	return c.filter(func(b *domain.Book) bool { return !b.Available() })
}

// Remove deletes the matching book unless it is on loan.
func (c *Catalog) Remove(identifier string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(identifier)
	if i < 0 {
		return false, nil
	}

	b := c.books[i]
	if !b.Available() {
		borrower, _ := b.Borrower()
		return false, domain.StateError{
			Op:     "catalog remove",
			Reason: fmt.Sprintf("book %q is on loan to %s", b.Title(), borrower),
		}
	}

	c.books = slices.Delete(c.books, i, i+1)
	return true, nil
}

// Count returns the number of books.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.books)
}

// Update runs fn on a working copy of the matching book and commits it only
// when fn returns nil, so a failed transition leaves the catalog unchanged.
func (c *Catalog) Update(identifier string, fn func(book *domain.Book) error) (domain.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(identifier)
	if i < 0 {
		return domain.Book{}, fmt.Errorf("%w: %s", domain.ErrBookNotFound, strings.TrimSpace(identifier))
	}

	working := c.books[i].Clone()
	if err := fn(working); err != nil {
		return domain.Book{}, err
	}

	c.books[i] = working
	return *working.Clone(), nil
}

// indexOf must be called with mu held.
func (c *Catalog) indexOf(identifier string) int {
	if strings.TrimSpace(identifier) == "" {
		return -1
	}
	for i, b := range c.books {
		if b.MatchesIdentifier(identifier) {
			return i
		}
	}
	return -1
}

func (c *Catalog) filter(keep func(*domain.Book) bool) []domain.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Book, 0, len(c.books))
	for _, b := range c.books {
		if keep(b) {
			out = append(out, *b.Clone())
		}
	}
	return out
}
