package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls the library service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) AddBook(ctx context.Context, req *AddBookRequest) (*BookReply, error) {
	return invoke[BookReply](ctx, c.cc, "AddBook", req)
}

func (c *Client) GetBook(ctx context.Context, identifier string) (*BookReply, error) {
	return invoke[BookReply](ctx, c.cc, "GetBook", &BookRequest{Identifier: identifier})
}

func (c *Client) ListBooks(ctx context.Context, req *ListBooksRequest) (*ListBooksReply, error) {
	return invoke[ListBooksReply](ctx, c.cc, "ListBooks", req)
}

func (c *Client) RemoveBook(ctx context.Context, identifier string) (*RemoveBookReply, error) {
	return invoke[RemoveBookReply](ctx, c.cc, "RemoveBook", &BookRequest{Identifier: identifier})
}

func (c *Client) LoanBook(ctx context.Context, req *LoanBookRequest) (*BookReply, error) {
	return invoke[BookReply](ctx, c.cc, "LoanBook", req)
}

func (c *Client) ReturnBook(ctx context.Context, identifier string) (*BookReply, error) {
	return invoke[BookReply](ctx, c.cc, "ReturnBook", &BookRequest{Identifier: identifier})
}

// OverdueLoans lists loans overdue on date (YYYY-MM-DD). An empty date uses the server's today.
func (c *Client) OverdueLoans(ctx context.Context, date string) (*OverdueLoansReply, error) {
	return invoke[OverdueLoansReply](ctx, c.cc, "OverdueLoans", &OverdueLoansRequest{Date: date})
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return out, nil
}
