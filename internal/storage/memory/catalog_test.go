package memory_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/storage/memory"
)

var today = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

func newBook(t *testing.T, identifier, title, author string, year int) *domain.Book {
	t.Helper()

	b, err := domain.NewBook(identifier, title, author, year)
	require.NoError(t, err)
	return b
}

func givenCatalog(t *testing.T) *memory.Catalog {
	t.Helper()

	c := memory.NewCatalog()
	require.NoError(t, c.Add(newBook(t, "ISBN-001", "Il nome della rosa", "Umberto Eco", 1980)))
	require.NoError(t, c.Add(newBook(t, "ISBN-002", "Se questo è un uomo", "Primo Levi", 1947)))
	require.NoError(t, c.Add(newBook(t, "ISBN-003", "La coscienza di Zeno", "Italo Svevo", 1923)))
	require.NoError(t, c.Add(newBook(t, "ISBN-004", "Cent'anni di solitudine", "García Márquez", 1967)))
	return c
}

func givenLoan(t *testing.T, c *memory.Catalog, identifier, borrower string, days int) {
	t.Helper()

	_, err := c.Update(identifier, func(b *domain.Book) error {
		return b.MarkLoaned(borrower, days, today)
	})
	require.NoError(t, err)
}

func identifiers(books []domain.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Identifier())
	}
	return out
}

func Test_Add_PreservesInsertionOrder(t *testing.T) {
	// act
	c := givenCatalog(t)

	// assert
	assert.Equal(t, 4, c.Count())
	assert.Equal(t, []string{"ISBN-001", "ISBN-002", "ISBN-003", "ISBN-004"}, identifiers(c.AllBooks()))
}

func Test_Add_RejectsNil(t *testing.T) {
	c := memory.NewCatalog()

	err := c.Add(nil)

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, 0, c.Count())
}

func Test_Add_RejectsDuplicateIdentifierIgnoringCase(t *testing.T) {
	// arrange
	c := givenCatalog(t)
	before := c.AllBooks()

	// act
	err := c.Add(newBook(t, " isbn-001 ", "Altro titolo", "Altro Autore", 2000))

	// assert
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, before, c.AllBooks())
}

func Test_Add_StoresPrivateCopy(t *testing.T) {
	// arrange
	c := memory.NewCatalog()
	b := newBook(t, "X1", "Title", "Author", 2000)
	require.NoError(t, c.Add(b))

	// act
	require.NoError(t, b.MarkLoaned("Alice", 7, today))

	// assert
	stored, ok := c.FindByIdentifier("X1")
	require.True(t, ok)
	assert.True(t, stored.Available())
}

func Test_FindByIdentifier_IsCaseInsensitive(t *testing.T) {
	c := givenCatalog(t)

	lower, okLower := c.FindByIdentifier("isbn-001")
	upper, okUpper := c.FindByIdentifier("ISBN-001")
	padded, okPadded := c.FindByIdentifier("  Isbn-001  ")

	require.True(t, okLower)
	require.True(t, okUpper)
	require.True(t, okPadded)
	assert.Equal(t, "Il nome della rosa", upper.Title())
	assert.Equal(t, upper, lower)
	assert.Equal(t, upper, padded)
}

func Test_FindByIdentifier_NotFound(t *testing.T) {
	c := givenCatalog(t)

	for _, id := range []string{"ISBN-999", "", "   "} {
		_, ok := c.FindByIdentifier(id)
		assert.False(t, ok, "identifier %q", id)
	}
}

func Test_AllBooks_CannotMutateCatalog(t *testing.T) {
	// arrange
	c := givenCatalog(t)

	// act
	books := c.AllBooks()
	require.NoError(t, books[0].MarkLoaned("Mallory", 7, today))
	books[1] = books[0]

	// assert
	assert.Equal(t, 4, c.Count())
	assert.Len(t, c.AvailableBooks(), 4)
}

func Test_FindByAuthor(t *testing.T) {
	c := givenCatalog(t)

	testCases := []struct {
		query    string
		expected []string
	}{
		{query: "Eco", expected: []string{"ISBN-001"}},
		{query: "eco", expected: []string{"ISBN-001"}},
		{query: "MÁRQUEZ", expected: []string{"ISBN-004"}},
		{query: "o", expected: []string{"ISBN-001", "ISBN-002", "ISBN-003"}},
		{query: "Tolkien", expected: []string{}},
		{query: "", expected: []string{"ISBN-001", "ISBN-002", "ISBN-003", "ISBN-004"}},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("query %q", tc.query), func(t *testing.T) {
			assert.Equal(t, tc.expected, identifiers(c.FindByAuthor(tc.query)))
		})
	}
}

func Test_AvailabilityViews_PartitionTheCatalog(t *testing.T) {
	// arrange
	c := givenCatalog(t)
	assert.Len(t, c.AvailableBooks(), 4)
	assert.Empty(t, c.OnLoanBooks())

	// act
	givenLoan(t, c, "ISBN-003", "Utente A", 7)
	givenLoan(t, c, "ISBN-001", "Utente B", 14)

	// assert
	available := identifiers(c.AvailableBooks())
	onLoan := identifiers(c.OnLoanBooks())
	assert.Equal(t, []string{"ISBN-002", "ISBN-004"}, available)
	assert.Equal(t, []string{"ISBN-001", "ISBN-003"}, onLoan)
	assert.ElementsMatch(t, identifiers(c.AllBooks()), append(available, onLoan...))
}

func Test_Remove_AvailableBook(t *testing.T) {
	c := givenCatalog(t)

	removed, err := c.Remove("isbn-003")

	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 3, c.Count())
	_, ok := c.FindByIdentifier("ISBN-003")
	assert.False(t, ok)
}

func Test_Remove_UnknownIdentifierReturnsFalse(t *testing.T) {
	c := givenCatalog(t)

	removed, err := c.Remove("ISBN-999")

	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 4, c.Count())
}

func Test_Remove_BookOnLoanFails(t *testing.T) {
	// arrange
	c := givenCatalog(t)
	givenLoan(t, c, "ISBN-001", "Utente", 7)

	// act
	removed, err := c.Remove("ISBN-001")

	// assert
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.False(t, removed)
	assert.Equal(t, 4, c.Count())

	b, ok := c.FindByIdentifier("ISBN-001")
	require.True(t, ok)
	borrower, _ := b.Borrower()
	assert.Equal(t, "Utente", borrower)
}

func Test_Update_CommitsOnSuccess(t *testing.T) {
	c := givenCatalog(t)

	updated, err := c.Update("ISBN-002", func(b *domain.Book) error {
		return b.MarkLoaned("Alice", 7, today)
	})

	require.NoError(t, err)
	assert.False(t, updated.Available())
	stored, _ := c.FindByIdentifier("ISBN-002")
	assert.Equal(t, updated, stored)
}

func Test_Update_DiscardsWorkingCopyOnError(t *testing.T) {
	// arrange
	c := givenCatalog(t)
	boom := errors.New("boom")

	// act
	_, err := c.Update("ISBN-002", func(b *domain.Book) error {
		if err := b.MarkLoaned("Alice", 7, today); err != nil {
			return err
		}
		return boom
	})

	// assert
	assert.ErrorIs(t, err, boom)
	stored, _ := c.FindByIdentifier("ISBN-002")
	assert.True(t, stored.Available())
}

func Test_Update_UnknownIdentifier(t *testing.T) {
	c := givenCatalog(t)

	_, err := c.Update("ISBN-999", func(*domain.Book) error { return nil })

	assert.ErrorIs(t, err, domain.ErrBookNotFound)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func Test_Catalog_ConcurrentAddsKeepIdentifiersUnique(t *testing.T) {
	// arrange
	c := memory.NewCatalog()
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	// act
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := domain.NewBook(fmt.Sprintf("id-%d", i%5), "Title", "Author", 2000)
			if err != nil {
				return
			}
			if c.Add(b) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	// assert
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, c.Count())
}
