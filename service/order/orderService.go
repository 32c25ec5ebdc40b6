package order

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"bookcourier/model"
	orderrepo "bookcourier/repository/order"
	"bookcourier/util/events"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound  ErrCode = "BOOK_NOT_FOUND"
	ErrNoStock       ErrCode = "NO_STOCK"
	ErrNotPublished  ErrCode = "NOT_PUBLISHED"
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrForbidden     ErrCode = "FORBIDDEN"
	ErrBadTransition ErrCode = "BAD_TRANSITION"
	ErrUnpaid        ErrCode = "UNPAID"
	ErrBadInput      ErrCode = "BAD_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	GetBookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Book, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)
	RestoreStock(ctx context.Context, tx *sql.Tx, bookID int64) error
	Insert(ctx context.Context, tx *sql.Tx, o *model.Order) error

	GetForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (*model.Order, string, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, orderID int64, status model.OrderStatus) (int64, error)

	ListByCustomer(ctx context.Context, email string) ([]model.Order, error)
	ListForSeller(ctx context.Context, email string) ([]model.Order, error)
	ListInvoices(ctx context.Context, email string) ([]model.Order, error)
}

type Service interface {
	// Create: snapshot the book into a (pending, unpaid) order and take one
	// unit of stock, atomically.
	Create(ctx context.Context, actor model.Actor, bookID int64, phone, address string) (*model.Order, error)

	// SetStatus applies one lifecycle transition, with the capability checks
	// done here rather than in whoever renders the button.
	SetStatus(ctx context.Context, actor model.Actor, orderID int64, newStatus model.OrderStatus) (int64, error)

	MyOrders(ctx context.Context, actor model.Actor, email string) ([]model.Order, error)
	ManageOrders(ctx context.Context, actor model.Actor, email string) ([]model.Order, error)
	Invoices(ctx context.Context, actor model.Actor, email string) ([]model.Order, error)
}

var _ Repo = (orderrepo.Repo)(nil)

type service struct {
	db *sql.DB
	r  Repo
	ev *events.Publisher
}

func New(db *sql.DB, r Repo, ev *events.Publisher) Service {
	return &service{db: db, r: r, ev: ev}
}

func (s *service) Create(ctx context.Context, actor model.Actor, bookID int64, phone, address string) (out *model.Order, err error) {
	if phone == "" || address == "" {
		return nil, makeErr(ErrBadInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b, err := s.r.GetBookForUpdate(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if b.Status != model.BookPublished {
		return nil, makeErr(ErrNotPublished)
	}

	n, err := s.r.DecrementStock(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, makeErr(ErrNoStock)
	}

	o := &model.Order{
		BookID:        b.ID,
		BookName:      b.Name,
		BookAuthor:    b.Author,
		Price:         b.Price,
		CustomerEmail: actor.Email,
		CustomerName:  actor.Name,
		PhoneNumber:   phone,
		Address:       address,
		Status:        model.OrderPending,
		PaymentStatus: model.PaymentUnpaid,
	}
	if err = s.r.Insert(ctx, tx, o); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.ev.Publish(ctx, events.OrderEvent{
		Type:          events.TypeOrderCreated,
		OrderID:       o.ID,
		BookID:        o.BookID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
	})
	return o, nil
}

func (s *service) SetStatus(ctx context.Context, actor model.Actor, orderID int64, newStatus model.OrderStatus) (modified int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	o, sellerEmail, err := s.r.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, makeErr(ErrNotFound)
		}
		return 0, err
	}

	if !o.Status.CanTransition(newStatus) {
		return 0, makeErr(ErrBadTransition)
	}
	if err = authorize(actor, o, sellerEmail, newStatus); err != nil {
		return 0, err
	}

	modified, err = s.r.UpdateStatus(ctx, tx, orderID, newStatus)
	if err != nil {
		return 0, err
	}

	// A cancelled pending order gives its unit back.
	if newStatus == model.OrderCancelled {
		if err = s.r.RestoreStock(ctx, tx, o.BookID); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	s.ev.Publish(ctx, events.OrderEvent{
		Type:          events.TypeOrderStatusChanged,
		OrderID:       o.ID,
		BookID:        o.BookID,
		Status:        string(newStatus),
		PaymentStatus: string(o.PaymentStatus),
	})
	return modified, nil
}

// authorize holds the capability rules for each transition target.
func authorize(actor model.Actor, o *model.Order, sellerEmail string, newStatus model.OrderStatus) error {
	ownsBook := actor.IsLibrarian() && strings.EqualFold(actor.Email, sellerEmail)
	switch newStatus {
	case model.OrderShipped:
		if !ownsBook && !actor.IsAdmin() {
			return makeErr(ErrForbidden)
		}
		if o.PaymentStatus != model.PaymentPaid {
			return makeErr(ErrUnpaid)
		}
	case model.OrderDelivered:
		if !ownsBook && !actor.IsAdmin() {
			return makeErr(ErrForbidden)
		}
	case model.OrderCancelled:
		isCustomer := strings.EqualFold(actor.Email, o.CustomerEmail)
		if !isCustomer && !ownsBook && !actor.IsAdmin() {
			return makeErr(ErrForbidden)
		}
	default:
		return makeErr(ErrBadTransition)
	}
	return nil
}

func (s *service) MyOrders(ctx context.Context, actor model.Actor, email string) ([]model.Order, error) {
	if !strings.EqualFold(actor.Email, email) && !actor.IsAdmin() {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.ListByCustomer(ctx, email)
}

func (s *service) ManageOrders(ctx context.Context, actor model.Actor, email string) ([]model.Order, error) {
	if !actor.IsLibrarian() {
		return nil, makeErr(ErrForbidden)
	}
	if !strings.EqualFold(actor.Email, email) && !actor.IsAdmin() {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.ListForSeller(ctx, email)
}

func (s *service) Invoices(ctx context.Context, actor model.Actor, email string) ([]model.Order, error) {
	if !strings.EqualFold(actor.Email, email) && !actor.IsAdmin() {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.ListInvoices(ctx, email)
}
