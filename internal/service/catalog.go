package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/event"
	"github.com/mvaleed/bibliotheca/internal/storage"
)

// CatalogService handles adding, removing and querying catalogued books.
type CatalogService struct {
	catalog   storage.Catalog
	publisher event.Publisher
}

func NewCatalogService(catalog storage.Catalog, publisher event.Publisher) (*CatalogService, error) {
	if catalog == nil {
		return nil, domain.ValidationError{Field: "catalog", Message: "required"}
	}
	if publisher == nil {
		publisher = event.NewNoopPublisher()
	}
	return &CatalogService{catalog: catalog, publisher: publisher}, nil
}

type AddBookInput struct {
	Identifier string
	Title      string
	Author     string
	Year       int
}

// AddBook creates a book and adds it to the catalog.
func (s *CatalogService) AddBook(ctx context.Context, input AddBookInput) (domain.Book, error) {
	book, err := domain.NewBook(input.Identifier, input.Title, input.Author, input.Year)
	if err != nil {
		return domain.Book{}, err
	}

	if err := s.catalog.Add(book); err != nil {
		return domain.Book{}, err
	}

	_ = s.publisher.Publish(ctx, domain.BookAddedEvent(book))

	return *book, nil
}

// Import adds books in order and stops at the first failure.
// Books added before the failure stay in the catalog.
func (s *CatalogService) Import(ctx context.Context, books []*domain.Book) (int, error) {
	events := make([]domain.Event, 0, len(books))
	for i, b := range books {
		if err := s.catalog.Add(b); err != nil {
			_ = s.publisher.PublishBatch(ctx, events)
			return i, fmt.Errorf("importing book %d: %w", i+1, err)
		}
		events = append(events, domain.BookAddedEvent(b))
	}

	_ = s.publisher.PublishBatch(ctx, events)

	return len(books), nil
}

// RemoveBook removes an available book. It returns false if nothing matched.
func (s *CatalogService) RemoveBook(ctx context.Context, identifier string) (bool, error) {
	removed, err := s.catalog.Remove(identifier)
	if err != nil {
		return false, fmt.Errorf("remove book %q: %w", strings.TrimSpace(identifier), err)
	}
	if removed {
		_ = s.publisher.Publish(ctx, domain.BookRemovedEvent(strings.TrimSpace(identifier)))
	}
	return removed, nil
}

func (s *CatalogService) Book(identifier string) (domain.Book, bool) {
	return s.catalog.FindByIdentifier(identifier)
}

// BookFilter narrows a Books listing. Zero values match everything.
type BookFilter struct {
	Author string
	Status *domain.BookStatus
}

// Books lists the catalog in insertion order, filtered by author substring and status.
func (s *CatalogService) Books(filter BookFilter) []domain.Book {
	if filter.Status == nil {
		if filter.Author == "" {
			return s.catalog.AllBooks()
		}
		return s.catalog.FindByAuthor(filter.Author)
	}

	books := s.catalog.OnLoanBooks()
	if *filter.Status == domain.StatusAvailable {
		books = s.catalog.AvailableBooks()
	}
	if filter.Author == "" {
		return books
	}

	out := books[:0]
	for _, b := range books {
		if b.AuthorContains(filter.Author) {
			out = append(out, b)
		}
	}
	return out
}

func (s *CatalogService) Count() int {
	return s.catalog.Count()
}
