package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bibliotheca.v1.Library"

// Messages

type Book struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       int64  `json:"year"`
	Status     string `json:"status"`
	Borrower   string `json:"borrower,omitempty"`
	LoanedOn   string `json:"loaned_on,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
}

type AddBookRequest struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       int64  `json:"year"`
}

// BookRequest addresses a single book by identifier.
type BookRequest struct {
	Identifier string `json:"identifier"`
}

type BookReply struct {
	Book *Book `json:"book"`
}

// ListBooksRequest filters by author substring and status ("available" or "on_loan").
type ListBooksRequest struct {
	Author string `json:"author,omitempty"`
	Status string `json:"status,omitempty"`
}

type ListBooksReply struct {
	Books []*Book `json:"books"`
}

type RemoveBookReply struct {
	Removed bool `json:"removed"`
}

// LoanBookRequest lends a book. A nil Days uses the server default.
type LoanBookRequest struct {
	Identifier string `json:"identifier"`
	Borrower   string `json:"borrower"`
	Days       *int32 `json:"days,omitempty"`
}

// OverdueLoansRequest takes a YYYY-MM-DD date. Empty means the server's today.
type OverdueLoansRequest struct {
	Date string `json:"date,omitempty"`
}

type OverdueLoansReply struct {
	Date  string  `json:"date"`
	Books []*Book `json:"books"`
}

// LibraryServer is the server API for the library service.
type LibraryServer interface {
	AddBook(context.Context, *AddBookRequest) (*BookReply, error)
	GetBook(context.Context, *BookRequest) (*BookReply, error)
	ListBooks(context.Context, *ListBooksRequest) (*ListBooksReply, error)
	RemoveBook(context.Context, *BookRequest) (*RemoveBookReply, error)
	LoanBook(context.Context, *LoanBookRequest) (*BookReply, error)
	ReturnBook(context.Context, *BookRequest) (*BookReply, error)
	OverdueLoans(context.Context, *OverdueLoansRequest) (*OverdueLoansReply, error)
}

// RegisterLibraryServer registers srv with the gRPC server s.
func RegisterLibraryServer(s grpc.ServiceRegistrar, srv LibraryServer) {
	s.RegisterService(&LibraryServiceDesc, srv)
}

// LibraryServiceDesc describes the library service for grpc.Server.RegisterService.
var LibraryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LibraryServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("AddBook", LibraryServer.AddBook),
		unaryMethod("GetBook", LibraryServer.GetBook),
		unaryMethod("ListBooks", LibraryServer.ListBooks),
		unaryMethod("RemoveBook", LibraryServer.RemoveBook),
		unaryMethod("LoanBook", LibraryServer.LoanBook),
		unaryMethod("ReturnBook", LibraryServer.ReturnBook),
		unaryMethod("OverdueLoans", LibraryServer.OverdueLoans),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bibliotheca/v1/library",
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unaryMethod adapts a LibraryServer method to a grpc.MethodDesc,
// decoding the request and running it through the server interceptors.
func unaryMethod[Req, Resp any](name string, call func(LibraryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LibraryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LibraryServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
