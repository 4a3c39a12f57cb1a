package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/service"
	"github.com/mvaleed/bibliotheca/internal/storage/memory"
)

func Test_NewLoanService_RequiresCatalog(t *testing.T) {
	s, err := service.NewLoanService(nil, nil)

	assert.Nil(t, s)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func Test_NewLoanService_DefaultsToNoopPublisher(t *testing.T) {
	// arrange
	c := memory.NewCatalog()
	b, err := domain.NewBook("X1", "Title", "Author", 2000)
	require.NoError(t, err)
	require.NoError(t, c.Add(b))

	s, err := service.NewLoanService(c, nil)
	require.NoError(t, err)

	// act
	_, err = s.LoanBook(context.Background(), "X1", "Alice", 7)

	// assert
	assert.NoError(t, err)
}

func Test_LoanBook_MarksBookOnLoanAndNotifies(t *testing.T) {
	// arrange
	f := newFixture(t)

	// act
	book, err := f.loans.LoanBook(context.Background(), "isbn-001", " Mario Rossi ", 14)

	// assert
	require.NoError(t, err)
	assert.False(t, book.Available())

	stored, ok := f.catalog.FindByIdentifier("ISBN-001")
	require.True(t, ok)
	borrower, _ := stored.Borrower()
	due, _ := stored.DueDate()
	assert.Equal(t, "Mario Rossi", borrower)
	assert.Equal(t, time.Date(2026, time.March, 24, 0, 0, 0, 0, time.UTC), due)

	require.Len(t, f.publisher.events, 1)
	e := f.publisher.events[0]
	assert.Equal(t, domain.EventBookLoaned, e.Type)
	assert.Equal(t, "Il nome della rosa", e.Data["title"])
	assert.Equal(t, "Mario Rossi", e.Data["borrower"])
	assert.Equal(t, "2026-03-24", e.Data["due_date"])
}

func Test_LoanBook_InvalidArguments(t *testing.T) {
	testCases := []struct {
		name       string
		identifier string
		borrower   string
		days       int
	}{
		{name: "blank identifier", identifier: " ", borrower: "Alice", days: 7},
		{name: "blank borrower", identifier: "ISBN-001", borrower: "", days: 7},
		{name: "zero days", identifier: "ISBN-001", borrower: "Alice", days: 0},
		{name: "negative days", identifier: "ISBN-001", borrower: "Alice", days: -1},
		{name: "unknown book with bad days", identifier: "ISBN-999", borrower: "Alice", days: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			f := newFixture(t)

			// act
			_, err := f.loans.LoanBook(context.Background(), tc.identifier, tc.borrower, tc.days)

			// assert
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Len(t, f.catalog.AvailableBooks(), 4)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func Test_LoanBook_UnknownBook(t *testing.T) {
	f := newFixture(t)

	_, err := f.loans.LoanBook(context.Background(), "ISBN-999", "Alice", 7)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
	assert.Empty(t, f.publisher.events)
}

func Test_LoanBook_AlreadyOnLoan(t *testing.T) {
	// arrange
	f := newFixture(t)
	_, err := f.loans.LoanBook(context.Background(), "ISBN-001", "Utente A", 7)
	require.NoError(t, err)
	before, _ := f.catalog.FindByIdentifier("ISBN-001")

	// act
	f.now = fakeToday.AddDate(0, 0, 3)
	_, err = f.loans.LoanBook(context.Background(), "ISBN-001", "Utente B", 7)

	// assert
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	after, _ := f.catalog.FindByIdentifier("ISBN-001")
	assert.Equal(t, before, after)
	assert.Equal(t, []string{domain.EventBookLoaned}, f.publisher.types())
}

func Test_LoanBook_PublishFailureKeepsLoan(t *testing.T) {
	// arrange
	f := newFixture(t)
	f.publisher.fail = true

	// act
	_, err := f.loans.LoanBook(context.Background(), "ISBN-002", "Alice", 7)

	// assert
	require.NoError(t, err)
	assert.Len(t, f.catalog.OnLoanBooks(), 1)
}

func Test_ReturnBook_RoundTripRestoresAvailability(t *testing.T) {
	// arrange
	f := newFixture(t)
	before, _ := f.catalog.FindByIdentifier("ISBN-001")
	_, err := f.loans.LoanBook(context.Background(), "ISBN-001", "Utente", 7)
	require.NoError(t, err)

	// act
	book, err := f.loans.ReturnBook(context.Background(), "ISBN-001")

	// assert
	require.NoError(t, err)
	assert.True(t, book.Available())
	after, _ := f.catalog.FindByIdentifier("ISBN-001")
	assert.Equal(t, before, after)

	_, hasBorrower := after.Borrower()
	_, hasDueDate := after.DueDate()
	assert.False(t, hasBorrower)
	assert.False(t, hasDueDate)

	assert.Equal(t, []string{domain.EventBookLoaned, domain.EventBookReturned}, f.publisher.types())
	assert.Equal(t, "Utente", f.publisher.events[1].Data["borrower"])
}

func Test_ReturnBook_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		identifier string
		expected   error
	}{
		{name: "blank identifier", identifier: "  ", expected: domain.ErrInvalidArgument},
		{name: "unknown book", identifier: "ISBN-999", expected: domain.ErrInvalidState},
		{name: "already available", identifier: "ISBN-001", expected: domain.ErrInvalidState},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.loans.ReturnBook(context.Background(), tc.identifier)

			assert.ErrorIs(t, err, tc.expected)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func Test_OverdueLoans_StrictlyBeforeToday(t *testing.T) {
	// arrange
	f := newFixture(t)

	f.now = fakeToday.AddDate(0, 0, -10)
	_, err := f.loans.LoanBook(context.Background(), "ISBN-003", "Utente A", 7) // due 7 days after loan, 3 days ago
	require.NoError(t, err)

	f.now = fakeToday.AddDate(0, 0, -2)
	_, err = f.loans.LoanBook(context.Background(), "ISBN-001", "Utente B", 1) // due yesterday
	require.NoError(t, err)

	f.now = fakeToday
	_, err = f.loans.LoanBook(context.Background(), "ISBN-002", "Utente C", 1) // due tomorrow
	require.NoError(t, err)

	f.now = fakeToday.AddDate(0, 0, -1)
	_, err = f.loans.LoanBook(context.Background(), "ISBN-004", "Utente D", 1) // due today
	require.NoError(t, err)

	// act
	overdue := f.loans.OverdueLoans(fakeToday)

	// assert
	ids := make([]string, 0, len(overdue))
	for _, b := range overdue {
		ids = append(ids, b.Identifier())
	}
	assert.Equal(t, []string{"ISBN-001", "ISBN-003"}, ids)
}

func Test_OverdueLoans_NoneWhenAllAvailable(t *testing.T) {
	f := newFixture(t)

	assert.Empty(t, f.loans.OverdueLoans(fakeToday))
}

func Test_OverdueLoans_LoanedTodayForOneDayIsNotOverdue(t *testing.T) {
	// arrange
	f := newFixture(t)
	_, err := f.loans.LoanBook(context.Background(), "ISBN-001", "Utente Test", 1)
	require.NoError(t, err)

	// assert
	assert.Empty(t, f.loans.OverdueLoans(fakeToday))
	assert.Empty(t, f.loans.OverdueLoans(fakeToday.AddDate(0, 0, 1)))
	assert.Len(t, f.loans.OverdueLoans(fakeToday.AddDate(0, 0, 2)), 1)
}

func Test_Today_TruncatesClock(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), f.loans.Today())
}
