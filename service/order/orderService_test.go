package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"bookcourier/model"
)

type repoMock struct {
	getBookFn     func(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Book, error)
	decrementFn   func(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)
	restoreFn     func(ctx context.Context, tx *sql.Tx, bookID int64) error
	insertFn      func(ctx context.Context, tx *sql.Tx, o *model.Order) error
	getForUpdFn   func(ctx context.Context, tx *sql.Tx, orderID int64) (*model.Order, string, error)
	updStatusFn   func(ctx context.Context, tx *sql.Tx, orderID int64, status model.OrderStatus) (int64, error)
	byCustomerFn  func(ctx context.Context, email string) ([]model.Order, error)
	forSellerFn   func(ctx context.Context, email string) ([]model.Order, error)
	invoicesFn    func(ctx context.Context, email string) ([]model.Order, error)
	restoredBooks []int64
}

func (m *repoMock) GetBookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Book, error) {
	return m.getBookFn(ctx, tx, bookID)
}

func (m *repoMock) DecrementStock(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error) {
	return m.decrementFn(ctx, tx, bookID)
}

func (m *repoMock) RestoreStock(ctx context.Context, tx *sql.Tx, bookID int64) error {
	m.restoredBooks = append(m.restoredBooks, bookID)
	if m.restoreFn != nil {
		return m.restoreFn(ctx, tx, bookID)
	}
	return nil
}

func (m *repoMock) Insert(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	return m.insertFn(ctx, tx, o)
}

func (m *repoMock) GetForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (*model.Order, string, error) {
	return m.getForUpdFn(ctx, tx, orderID)
}

func (m *repoMock) UpdateStatus(ctx context.Context, tx *sql.Tx, orderID int64, status model.OrderStatus) (int64, error) {
	return m.updStatusFn(ctx, tx, orderID, status)
}

func (m *repoMock) ListByCustomer(ctx context.Context, email string) ([]model.Order, error) {
	return m.byCustomerFn(ctx, email)
}

func (m *repoMock) ListForSeller(ctx context.Context, email string) ([]model.Order, error) {
	return m.forSellerFn(ctx, email)
}

func (m *repoMock) ListInvoices(ctx context.Context, email string) ([]model.Order, error) {
	return m.invoicesFn(ctx, email)
}

var _ Repo = (*repoMock)(nil)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var (
	buyer     = model.Actor{UserID: 1, Email: "buyer@example.com", Name: "Buyer", Role: model.RoleUser}
	librarian = model.Actor{UserID: 2, Email: "lib@example.com", Name: "Lib", Role: model.RoleLibrarian}
	admin     = model.Actor{UserID: 3, Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin}
)

func publishedBook() *model.Book {
	return &model.Book{
		ID: 7, Name: "Clean Code", Author: "Robert C. Martin", Price: 32.5,
		Quantity: 3, Status: model.BookPublished,
		SellerEmail: "lib@example.com", SellerName: "Lib",
	}
}

func TestCreate_NewOrderIsPendingUnpaid(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := &repoMock{
		getBookFn:   func(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) { return publishedBook(), nil },
		decrementFn: func(ctx context.Context, tx *sql.Tx, id int64) (int64, error) { return 1, nil },
		insertFn: func(ctx context.Context, tx *sql.Tx, o *model.Order) error {
			o.ID = 42
			return nil
		},
	}
	s := New(db, m, nil)

	o, err := s.Create(context.Background(), buyer, 7, "01700000000", "Dhaka")
	require.NoError(t, err)
	require.Equal(t, int64(42), o.ID)
	require.Equal(t, model.OrderPending, o.Status)
	require.Equal(t, model.PaymentUnpaid, o.PaymentStatus)
	require.Nil(t, o.TransactionID)
	require.Equal(t, "buyer@example.com", o.CustomerEmail)
	require.Equal(t, "Clean Code", o.BookName)
	require.Equal(t, 32.5, o.Price)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RequiresPhoneAndAddress(t *testing.T) {
	db, _ := newDB(t)
	s := New(db, &repoMock{}, nil)

	_, err := s.Create(context.Background(), buyer, 7, "", "Dhaka")
	require.Equal(t, ErrBadInput, Code(err))

	_, err = s.Create(context.Background(), buyer, 7, "01700000000", "")
	require.Equal(t, ErrBadInput, Code(err))
}

func TestCreate_OutOfStock(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := &repoMock{
		getBookFn:   func(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) { return publishedBook(), nil },
		decrementFn: func(ctx context.Context, tx *sql.Tx, id int64) (int64, error) { return 0, nil },
	}
	s := New(db, m, nil)

	_, err := s.Create(context.Background(), buyer, 7, "01700000000", "Dhaka")
	require.Equal(t, ErrNoStock, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BookNotFound(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := &repoMock{
		getBookFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) { return nil, sql.ErrNoRows },
	}
	s := New(db, m, nil)

	_, err := s.Create(context.Background(), buyer, 99, "01700000000", "Dhaka")
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestCreate_Unpublished(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := &repoMock{
		getBookFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) {
			b := publishedBook()
			b.Status = model.BookUnpublished
			return b, nil
		},
	}
	s := New(db, m, nil)

	_, err := s.Create(context.Background(), buyer, 7, "01700000000", "Dhaka")
	require.Equal(t, ErrNotPublished, Code(err))
}

func pendingOrder() *model.Order {
	return &model.Order{
		ID: 42, BookID: 7, BookName: "Clean Code", Price: 32.5,
		CustomerEmail: "buyer@example.com", CustomerName: "Buyer",
		Status: model.OrderPending, PaymentStatus: model.PaymentUnpaid,
	}
}

func statusMock(o *model.Order, seller string) *repoMock {
	return &repoMock{
		getForUpdFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Order, string, error) {
			return o, seller, nil
		},
		updStatusFn: func(ctx context.Context, tx *sql.Tx, id int64, st model.OrderStatus) (int64, error) {
			return 1, nil
		},
	}
}

func TestSetStatus_ShipUnpaidRejected(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := New(db, statusMock(pendingOrder(), "lib@example.com"), nil)

	_, err := s.SetStatus(context.Background(), librarian, 42, model.OrderShipped)
	require.Equal(t, ErrUnpaid, Code(err))
}

func TestSetStatus_ShipPaidByOwner(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	o := pendingOrder()
	o.PaymentStatus = model.PaymentPaid
	s := New(db, statusMock(o, "lib@example.com"), nil)

	n, err := s.SetStatus(context.Background(), librarian, 42, model.OrderShipped)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus_ShipByNonOwnerForbidden(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	o := pendingOrder()
	o.PaymentStatus = model.PaymentPaid
	s := New(db, statusMock(o, "other-lib@example.com"), nil)

	_, err := s.SetStatus(context.Background(), librarian, 42, model.OrderShipped)
	require.Equal(t, ErrForbidden, Code(err))
}

func TestSetStatus_CustomerCannotShip(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	o := pendingOrder()
	o.PaymentStatus = model.PaymentPaid
	s := New(db, statusMock(o, "lib@example.com"), nil)

	_, err := s.SetStatus(context.Background(), buyer, 42, model.OrderShipped)
	require.Equal(t, ErrForbidden, Code(err))
}

func TestSetStatus_CustomerCancelsOwnPending(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := statusMock(pendingOrder(), "lib@example.com")
	s := New(db, m, nil)

	n, err := s.SetStatus(context.Background(), buyer, 42, model.OrderCancelled)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	// the cancelled unit goes back on the shelf
	require.Equal(t, []int64{7}, m.restoredBooks)
}

func TestSetStatus_StrangerCannotCancel(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	stranger := model.Actor{UserID: 9, Email: "other@example.com", Role: model.RoleUser}
	s := New(db, statusMock(pendingOrder(), "lib@example.com"), nil)

	_, err := s.SetStatus(context.Background(), stranger, 42, model.OrderCancelled)
	require.Equal(t, ErrForbidden, Code(err))
}

func TestSetStatus_CancelFromShippedRejected(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	o := pendingOrder()
	o.Status = model.OrderShipped
	o.PaymentStatus = model.PaymentPaid
	s := New(db, statusMock(o, "lib@example.com"), nil)

	_, err := s.SetStatus(context.Background(), buyer, 42, model.OrderCancelled)
	require.Equal(t, ErrBadTransition, Code(err))
}

func TestSetStatus_TerminalStatesAbsorb(t *testing.T) {
	for _, from := range []model.OrderStatus{model.OrderDelivered, model.OrderCancelled} {
		for _, to := range []model.OrderStatus{model.OrderPending, model.OrderShipped, model.OrderDelivered, model.OrderCancelled} {
			db, mock := newDB(t)
			mock.ExpectBegin()
			mock.ExpectRollback()

			o := pendingOrder()
			o.Status = from
			s := New(db, statusMock(o, "lib@example.com"), nil)

			_, err := s.SetStatus(context.Background(), admin, 42, to)
			require.Equalf(t, ErrBadTransition, Code(err), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestSetStatus_DeliverFromShipped(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	o := pendingOrder()
	o.Status = model.OrderShipped
	o.PaymentStatus = model.PaymentPaid
	s := New(db, statusMock(o, "lib@example.com"), nil)

	n, err := s.SetStatus(context.Background(), librarian, 42, model.OrderDelivered)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestSetStatus_NotFound(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := &repoMock{
		getForUpdFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Order, string, error) {
			return nil, "", sql.ErrNoRows
		},
	}
	s := New(db, m, nil)

	_, err := s.SetStatus(context.Background(), admin, 404, model.OrderCancelled)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestMyOrders_ScopedToCaller(t *testing.T) {
	db, _ := newDB(t)
	m := &repoMock{
		byCustomerFn: func(ctx context.Context, email string) ([]model.Order, error) {
			return []model.Order{*pendingOrder()}, nil
		},
	}
	s := New(db, m, nil)

	rows, err := s.MyOrders(context.Background(), buyer, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = s.MyOrders(context.Background(), buyer, "someone-else@example.com")
	require.Equal(t, ErrForbidden, Code(err))
}

func TestManageOrders_LibrarianOnly(t *testing.T) {
	db, _ := newDB(t)
	m := &repoMock{
		forSellerFn: func(ctx context.Context, email string) ([]model.Order, error) { return nil, nil },
	}
	s := New(db, m, nil)

	_, err := s.ManageOrders(context.Background(), buyer, "buyer@example.com")
	require.Equal(t, ErrForbidden, Code(err))

	_, err = s.ManageOrders(context.Background(), librarian, "lib@example.com")
	require.NoError(t, err)

	_, err = s.ManageOrders(context.Background(), librarian, "other-lib@example.com")
	require.Equal(t, ErrForbidden, Code(err))
}

func TestInvoices_ReturnsPaidProjection(t *testing.T) {
	db, _ := newDB(t)
	txn := "pi_123"
	m := &repoMock{
		invoicesFn: func(ctx context.Context, email string) ([]model.Order, error) {
			o := *pendingOrder()
			o.PaymentStatus = model.PaymentPaid
			o.TransactionID = &txn
			return []model.Order{o}, nil
		},
	}
	s := New(db, m, nil)

	rows, err := s.Invoices(context.Background(), buyer, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, model.PaymentPaid, rows[0].PaymentStatus)
	require.NotNil(t, rows[0].TransactionID)
}

func TestCreate_CommitError(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	m := &repoMock{
		getBookFn:   func(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) { return publishedBook(), nil },
		decrementFn: func(ctx context.Context, tx *sql.Tx, id int64) (int64, error) { return 1, nil },
		insertFn:    func(ctx context.Context, tx *sql.Tx, o *model.Order) error { return nil },
	}
	s := New(db, m, nil)

	_, err := s.Create(context.Background(), buyer, 7, "01700000000", "Dhaka")
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
}
