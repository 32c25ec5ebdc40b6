package striperepo

import "context"

type CreateSessionReq struct {
	OrderID       int64
	Amount        float64
	Currency      string
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Session is the subset of a checkout session this service cares about.
// PaymentStatus is the processor's view ("paid" / "unpaid"), PaymentIntentID
// becomes the order's transaction id once verified.
type Session struct {
	ID              string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
}

type Repo interface {
	CreateSession(ctx context.Context, req CreateSessionReq) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}
