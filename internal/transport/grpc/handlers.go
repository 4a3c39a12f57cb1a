package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/service"
)

// mapDomainError converts domain errors to gRPC status errors
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrBookNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	}

	return status.Error(codes.Internal, "internal server error")
}

type libraryHandler struct {
	catalogService  *service.CatalogService
	loanService     *service.LoanService
	defaultLoanDays int
}

var _ LibraryServer = (*libraryHandler)(nil)

func (h *libraryHandler) AddBook(ctx context.Context, req *AddBookRequest) (*BookReply, error) {
	book, err := h.catalogService.AddBook(ctx, service.AddBookInput{
		Identifier: req.Identifier,
		Title:      req.Title,
		Author:     req.Author,
		Year:       int(req.Year),
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	return &BookReply{Book: domainBookToMessage(book)}, nil
}

func (h *libraryHandler) GetBook(ctx context.Context, req *BookRequest) (*BookReply, error) {
	book, ok := h.catalogService.Book(req.Identifier)
	if !ok {
		return nil, mapDomainError(domain.ErrBookNotFound)
	}

	return &BookReply{Book: domainBookToMessage(book)}, nil
}

func (h *libraryHandler) ListBooks(ctx context.Context, req *ListBooksRequest) (*ListBooksReply, error) {
	filter := service.BookFilter{Author: req.Author}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		st := domain.BookStatus(raw)
		if !st.Valid() {
			return nil, mapDomainError(domain.ValidationError{Field: "status", Message: "must be available or on_loan"})
		}
		filter.Status = &st
	}

	return &ListBooksReply{Books: domainBooksToMessages(h.catalogService.Books(filter))}, nil
}

func (h *libraryHandler) RemoveBook(ctx context.Context, req *BookRequest) (*RemoveBookReply, error) {
	removed, err := h.catalogService.RemoveBook(ctx, req.Identifier)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return &RemoveBookReply{Removed: removed}, nil
}

func (h *libraryHandler) LoanBook(ctx context.Context, req *LoanBookRequest) (*BookReply, error) {
	days := h.defaultLoanDays
	if req.Days != nil {
		days = int(*req.Days)
	}

	book, err := h.loanService.LoanBook(ctx, req.Identifier, req.Borrower, days)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return &BookReply{Book: domainBookToMessage(book)}, nil
}

func (h *libraryHandler) ReturnBook(ctx context.Context, req *BookRequest) (*BookReply, error) {
	book, err := h.loanService.ReturnBook(ctx, req.Identifier)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return &BookReply{Book: domainBookToMessage(book)}, nil
}

func (h *libraryHandler) OverdueLoans(ctx context.Context, req *OverdueLoansRequest) (*OverdueLoansReply, error) {
	today := h.loanService.Today()
	if raw := strings.TrimSpace(req.Date); raw != "" {
		d, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			return nil, mapDomainError(domain.ValidationError{Field: "date", Message: "must be formatted as YYYY-MM-DD"})
		}
		today = d
	}

	return &OverdueLoansReply{
		Date:  today.Format(domain.DateLayout),
		Books: domainBooksToMessages(h.loanService.OverdueLoans(today)),
	}, nil
}

// Helper functions for type conversion:

func domainBookToMessage(b domain.Book) *Book {
	msg := &Book{
		Identifier: b.Identifier(),
		Title:      b.Title(),
		Author:     b.Author(),
		Year:       int64(b.Year()),
		Status:     string(b.Status()),
	}
	if loan, ok := b.Loan(); ok {
		msg.Borrower = loan.Borrower
		msg.LoanedOn = loan.LoanedOn.Format(domain.DateLayout)
		msg.DueDate = loan.DueDate.Format(domain.DateLayout)
	}
	return msg
}

func domainBooksToMessages(books []domain.Book) []*Book {
	out := make([]*Book, len(books))
	for i, b := range books {
		out[i] = domainBookToMessage(b)
	}
	return out
}
