// Command demo builds the sample catalog and walks through every catalog
// and loan operation, printing the results.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/event"
	"github.com/mvaleed/bibliotheca/internal/seed"
	"github.com/mvaleed/bibliotheca/internal/service"
	"github.com/mvaleed/bibliotheca/internal/storage/memory"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(os.Stdout, time.Now, logger); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(w io.Writer, clock service.Clock, logger *slog.Logger) error {
	ctx := context.Background()

	publisher := event.NewConsolePublisher(w, logger)
	defer publisher.Close()

	catalog := memory.NewCatalog()
	books, err := service.NewCatalogService(catalog, publisher)
	if err != nil {
		return err
	}
	loans, err := service.NewLoanService(catalog, publisher, service.WithClock(clock))
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Welcome to the library!")

	if _, err := books.Import(ctx, seed.Default()); err != nil {
		return fmt.Errorf("loading sample catalog: %w", err)
	}

	fmt.Fprintln(w, "\n=== FULL CATALOG ===")
	printBooks(w, books.Books(service.BookFilter{}))

	fmt.Fprintln(w, "\n=== LOOKUP BY IDENTIFIER ===")
	if b, ok := books.Book("978-88-06-22715-0"); ok {
		fmt.Fprintln(w, "Found:", b)
	} else {
		fmt.Fprintln(w, "Not found")
	}

	fmt.Fprintln(w, "\n=== LOANS ===")
	s := &steps{w: w}
	s.run("loan 978-88-06-22715-0 to Mario Rossi", func() error {
		_, err := loans.LoanBook(ctx, "978-88-06-22715-0", "Mario Rossi", 14)
		return err
	})
	s.run("loan 978-88-07-88225-4 to Giulia Bianchi", func() error {
		_, err := loans.LoanBook(ctx, "978-88-07-88225-4", "Giulia Bianchi", 7)
		return err
	})

	fmt.Fprintln(w, "\n=== CATALOG AFTER LOANS ===")
	printBooks(w, books.Books(service.BookFilter{}))

	fmt.Fprintln(w, "\n=== QUERIES AND RETURNS ===")
	s.run(`books by author "Eco"`, func() error {
		printBooks(w, books.Books(service.BookFilter{Author: "Eco"}))
		return nil
	})
	s.run("available books", func() error {
		printBooks(w, catalog.AvailableBooks())
		return nil
	})
	s.run("books on loan", func() error {
		printBooks(w, catalog.OnLoanBooks())
		return nil
	})
	s.run("return 978-88-06-22715-0", func() error {
		_, err := loans.ReturnBook(ctx, "978-88-06-22715-0")
		return err
	})
	s.run("overdue loans", func() error {
		printBooks(w, loans.OverdueLoans(loans.Today()))
		return nil
	})
	s.run("remove 978-88-04-68068-5", func() error {
		removed, err := books.RemoveBook(ctx, "978-88-04-68068-5")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "Removed:", removed)
		return nil
	})
	s.run("remove 978-88-07-88225-4", func() error {
		removed, err := books.RemoveBook(ctx, "978-88-07-88225-4")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "Removed:", removed)
		return nil
	})

	fmt.Fprintf(w, "\n%d steps, %d failed\n", s.total, s.failed)
	return nil
}

// steps runs demo actions, reporting failures and carrying on.
type steps struct {
	w      io.Writer
	total  int
	failed int
}

func (s *steps) run(name string, fn func() error) {
	s.total++
	fmt.Fprintf(s.w, "\n-> %s:\n", name)
	if err := fn(); err != nil {
		s.failed++
		fmt.Fprintf(s.w, "!! %v\n", err)
	}
}

func printBooks(w io.Writer, books []domain.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	for _, b := range books {
		fmt.Fprintln(w, b)
	}
}
