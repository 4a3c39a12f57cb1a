package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/service"
)

// Book response types

type bookResponse struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       int    `json:"year"`
	Status     string `json:"status"`
	Borrower   string `json:"borrower,omitempty"`
	LoanedOn   string `json:"loaned_on,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
}

func toBookResponse(b domain.Book) bookResponse {
	resp := bookResponse{
		Identifier: b.Identifier(),
		Title:      b.Title(),
		Author:     b.Author(),
		Year:       b.Year(),
		Status:     string(b.Status()),
	}
	if loan, ok := b.Loan(); ok {
		resp.Borrower = loan.Borrower
		resp.LoanedOn = loan.LoanedOn.Format(domain.DateLayout)
		resp.DueDate = loan.DueDate.Format(domain.DateLayout)
	}
	return resp
}

type listBooksResponse struct {
	Books []bookResponse `json:"books"`
	Count int            `json:"count"`
}

func toListBooksResponse(books []domain.Book) listBooksResponse {
	resp := listBooksResponse{Books: make([]bookResponse, 0, len(books)), Count: len(books)}
	for _, b := range books {
		resp.Books = append(resp.Books, toBookResponse(b))
	}
	return resp
}

// Health

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Catalog handlers

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	filter := service.BookFilter{Author: r.URL.Query().Get("author")}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := domain.BookStatus(raw)
		if !status.Valid() {
			s.writeError(w, domain.ValidationError{Field: "status", Message: "must be available or on_loan"})
			return
		}
		filter.Status = &status
	}

	s.writeJSON(w, http.StatusOK, toListBooksResponse(s.catalogService.Books(filter)))
}

type addBookRequest struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       int    `json:"year"`
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req addBookRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	book, err := s.catalogService.AddBook(r.Context(), service.AddBookInput{
		Identifier: req.Identifier,
		Title:      req.Title,
		Author:     req.Author,
		Year:       req.Year,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toBookResponse(book))
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, ok := s.catalogService.Book(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, domain.ErrBookNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, toBookResponse(book))
}

func (s *Server) handleRemoveBook(w http.ResponseWriter, r *http.Request) {
	removed, err := s.catalogService.RemoveBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !removed {
		s.writeError(w, domain.ErrBookNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Loan handlers

type loanBookRequest struct {
	Borrower string `json:"borrower"`
	Days     *int   `json:"days,omitempty"`
}

func (s *Server) handleLoanBook(w http.ResponseWriter, r *http.Request) {
	var req loanBookRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	days := s.defaultLoanDays
	if req.Days != nil {
		days = *req.Days
	}

	book, err := s.loanService.LoanBook(r.Context(), chi.URLParam(r, "id"), req.Borrower, days)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toBookResponse(book))
}

func (s *Server) handleReturnBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.loanService.ReturnBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toBookResponse(book))
}

type overdueLoansResponse struct {
	Date  string         `json:"date"`
	Books []bookResponse `json:"books"`
	Count int            `json:"count"`
}

func (s *Server) handleOverdueLoans(w http.ResponseWriter, r *http.Request) {
	today := s.loanService.Today()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		d, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			s.writeError(w, domain.ValidationError{Field: "date", Message: "must be formatted as YYYY-MM-DD"})
			return
		}
		today = d
	}

	list := toListBooksResponse(s.loanService.OverdueLoans(today))
	s.writeJSON(w, http.StatusOK, overdueLoansResponse{
		Date:  today.Format(domain.DateLayout),
		Books: list.Books,
		Count: list.Count,
	})
}
