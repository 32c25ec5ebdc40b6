package orderrepo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"bookcourier/model"
)

func TestDecrementStock_GuardedByQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE books\s+SET quantity = quantity - 1\s+WHERE id = \$1\s+AND quantity > 0`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	n, err := r.DecrementStock(context.Background(), tx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStock_LastCopyGone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE books`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	n, err := r.DecrementStock(context.Background(), tx, 7)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMarkPaid_GuardedByPaymentStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders\s+SET payment_status = 'paid', transaction_id = \$2, updated_at = NOW\(\)\s+WHERE id = \$1\s+AND payment_status = 'unpaid'`).
		WithArgs(int64(42), "pi_123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	n, err := r.MarkPaid(context.Background(), tx, 42, "pi_123")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_ReplayAffectsNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders`).
		WithArgs(int64(42), "pi_123").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	n, err := r.MarkPaid(context.Background(), tx, 42, "pi_123")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestListInvoices_ScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := New(db)

	now := time.Now()
	txn := "pi_123"
	sess := "cs_test_1"
	rows := sqlmock.NewRows([]string{
		"id", "book_id", "book_name", "book_author", "price", "customer_email", "customer_name",
		"phone_number", "address", "status", "payment_status", "transaction_id", "session_id",
		"created_at", "updated_at",
	}).AddRow(
		int64(42), int64(7), "Clean Code", "Robert C. Martin", 32.5, "buyer@example.com", "Buyer",
		"01700000000", "Dhaka", "pending", "paid", txn, sess, now, now,
	)

	mock.ExpectQuery(`SELECT (.+) FROM orders\s+WHERE lower\(customer_email\) = lower\(\$1\)\s+AND payment_status = 'paid'`).
		WithArgs("buyer@example.com").
		WillReturnRows(rows)

	out, err := r.ListInvoices(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, int64(42), out[0].ID)
	require.Equal(t, model.PaymentPaid, out[0].PaymentStatus)
	require.NotNil(t, out[0].TransactionID)
	require.Equal(t, "pi_123", *out[0].TransactionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_ReturnsGeneratedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := New(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(int64(7), "Clean Code", "Robert C. Martin", 32.5, "buyer@example.com", "Buyer",
			"01700000000", "Dhaka", "pending", "unpaid").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	o := &model.Order{
		BookID: 7, BookName: "Clean Code", BookAuthor: "Robert C. Martin", Price: 32.5,
		CustomerEmail: "buyer@example.com", CustomerName: "Buyer",
		PhoneNumber: "01700000000", Address: "Dhaka",
		Status: model.OrderPending, PaymentStatus: model.PaymentUnpaid,
	}
	require.NoError(t, r.Insert(context.Background(), tx, o))
	require.Equal(t, int64(42), o.ID)
	require.Equal(t, now, o.CreatedAt)
}
