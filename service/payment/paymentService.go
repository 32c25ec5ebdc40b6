package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookcourier/model"
	striperepo "bookcourier/repository/stripe"
	"bookcourier/util/events"
)

type ErrCode string

const (
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrForbidden ErrCode = "FORBIDDEN"
	ErrNotOpen   ErrCode = "NOT_OPEN"
	ErrNotPaid   ErrCode = "NOT_PAID"
	ErrBadInput  ErrCode = "BAD_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type OrderRepo interface {
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	SetSession(ctx context.Context, orderID int64, sessionID string) error
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, orderID int64, transactionID string) (int64, error)
}

// VerifyResult is what the return page renders. AlreadyProcessed flips the
// toast wording on the client but is a success either way.
type VerifyResult struct {
	OrderID          int64
	TransactionID    string
	AlreadyProcessed bool
}

type Service interface {
	// CreateCheckout opens a hosted checkout session for an open order and
	// returns the redirect URL.
	CreateCheckout(ctx context.Context, actor model.Actor, orderID int64) (string, error)

	// Verify confirms a returned session against the processor and flips the
	// order to paid. Safe to call any number of times with the same id.
	Verify(ctx context.Context, sessionID string) (*VerifyResult, error)
}

type service struct {
	db           *sql.DB
	orders       OrderRepo
	processor    striperepo.Repo
	clientOrigin string
	ev           *events.Publisher
}

func New(db *sql.DB, orders OrderRepo, processor striperepo.Repo, clientOrigin string, ev *events.Publisher) Service {
	return &service{db: db, orders: orders, processor: processor, clientOrigin: clientOrigin, ev: ev}
}

func (s *service) CreateCheckout(ctx context.Context, actor model.Actor, orderID int64) (string, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", makeErr(ErrNotFound)
		}
		return "", err
	}
	if !strings.EqualFold(o.CustomerEmail, actor.Email) {
		return "", makeErr(ErrForbidden)
	}
	if o.Status != model.OrderPending || o.PaymentStatus != model.PaymentUnpaid {
		return "", makeErr(ErrNotOpen)
	}

	sess, err := s.processor.CreateSession(ctx, striperepo.CreateSessionReq{
		OrderID:       o.ID,
		Amount:        o.Price,
		ProductName:   o.BookName,
		CustomerEmail: o.CustomerEmail,
		SuccessURL:    s.clientOrigin + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.clientOrigin + "/my-orders",
	})
	if err != nil {
		return "", err
	}

	// Persist the session id so the return trip can find the order. The
	// session itself is the processor's state, nothing else is held locally.
	if err := s.orders.SetSession(ctx, o.ID, sess.ID); err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (s *service) Verify(ctx context.Context, sessionID string) (res *VerifyResult, err error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, makeErr(ErrBadInput)
	}

	o, err := s.orders.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	if o.PaymentStatus == model.PaymentPaid {
		var txn string
		if o.TransactionID != nil {
			txn = *o.TransactionID
		}
		return &VerifyResult{OrderID: o.ID, TransactionID: txn, AlreadyProcessed: true}, nil
	}

	sess, err := s.processor.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if sess.PaymentStatus != "paid" {
		return nil, makeErr(ErrNotPaid)
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

	n, err := s.orders.MarkPaid(ctx, tx, o.ID, sess.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	// Zero rows means a concurrent verify won the guarded update. Same
	// outcome for the caller, just the already-processed wording.
	if n == 0 {
		return &VerifyResult{OrderID: o.ID, TransactionID: sess.PaymentIntentID, AlreadyProcessed: true}, nil
	}

	s.ev.Publish(ctx, events.OrderEvent{
		Type:          events.TypeOrderPaid,
		OrderID:       o.ID,
		BookID:        o.BookID,
		Status:        string(o.Status),
		PaymentStatus: string(model.PaymentPaid),
	})
	return &VerifyResult{OrderID: o.ID, TransactionID: sess.PaymentIntentID}, nil
}
