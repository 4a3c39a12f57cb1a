package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/service"
	"github.com/mvaleed/bibliotheca/internal/storage/memory"
)

var fakeToday = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	catalog   *memory.Catalog
	loans     *service.LoanService
	books     *service.CatalogService
	publisher *recordingPublisher
	now       time.Time
}

func (f *fixture) clock() time.Time { return f.now }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		catalog:   memory.NewCatalog(),
		publisher: &recordingPublisher{},
		now:       fakeToday,
	}

	var err error
	f.loans, err = service.NewLoanService(f.catalog, f.publisher, service.WithClock(f.clock))
	require.NoError(t, err)
	f.books, err = service.NewCatalogService(f.catalog, f.publisher)
	require.NoError(t, err)

	for _, in := range []service.AddBookInput{
		{Identifier: "ISBN-001", Title: "Il nome della rosa", Author: "Umberto Eco", Year: 1980},
		{Identifier: "ISBN-002", Title: "Se questo è un uomo", Author: "Primo Levi", Year: 1947},
		{Identifier: "ISBN-003", Title: "La coscienza di Zeno", Author: "Italo Svevo", Year: 1923},
		{Identifier: "ISBN-004", Title: "Cent'anni di solitudine", Author: "García Márquez", Year: 1967},
	} {
		_, err := f.books.AddBook(context.Background(), in)
		require.NoError(t, err)
	}
	f.publisher.events = nil

	return f
}
