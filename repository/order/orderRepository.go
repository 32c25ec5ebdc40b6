// repository/order/orderRepository.go
package orderrepo

import (
	"context"
	"database/sql"

	"bookcourier/model"
)

type Repo interface {
	// Submission flow
	GetBookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Book, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)
	RestoreStock(ctx context.Context, tx *sql.Tx, bookID int64) error
	Insert(ctx context.Context, tx *sql.Tx, o *model.Order) error

	// Status controller
	GetForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (*model.Order, string, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, orderID int64, status model.OrderStatus) (int64, error)

	// Payment flow
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	SetSession(ctx context.Context, orderID int64, sessionID string) error
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, orderID int64, transactionID string) (int64, error)

	// Views
	ListByCustomer(ctx context.Context, email string) ([]model.Order, error)
	ListForSeller(ctx context.Context, email string) ([]model.Order, error)
	ListInvoices(ctx context.Context, email string) ([]model.Order, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const orderCols = `id, book_id, book_name, book_author, price, customer_email, customer_name,
	phone_number, address, status, payment_status, transaction_id, session_id, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *model.Order) error {
	return row.Scan(&o.ID, &o.BookID, &o.BookName, &o.BookAuthor, &o.Price,
		&o.CustomerEmail, &o.CustomerName, &o.PhoneNumber, &o.Address,
		&o.Status, &o.PaymentStatus, &o.TransactionID, &o.SessionID,
		&o.CreatedAt, &o.UpdatedAt)
}

func (r *repo) GetBookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Book, error) {
	const q = `
		SELECT id, name, author, price, quantity, status, seller_email, seller_name
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var b model.Book
	err := tx.QueryRowContext(ctx, q, bookID).Scan(
		&b.ID, &b.Name, &b.Author, &b.Price, &b.Quantity, &b.Status, &b.SellerEmail, &b.SellerName)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DecrementStock only moves when a unit is left, so two buyers racing for
// the last copy serialize on the row and the loser sees zero rows.
func (r *repo) DecrementStock(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error) {
	const q = `
		UPDATE books
		SET quantity = quantity - 1
		WHERE id = $1
		AND quantity > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) RestoreStock(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
		UPDATE books
		SET quantity = quantity + 1
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `
		INSERT INTO orders (book_id, book_name, book_author, price, customer_email, customer_name,
			phone_number, address, status, payment_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`
	return tx.QueryRowContext(ctx, q,
		o.BookID, o.BookName, o.BookAuthor, o.Price, o.CustomerEmail, o.CustomerName,
		o.PhoneNumber, o.Address, o.Status, o.PaymentStatus,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (*model.Order, string, error) {
	const q = `
		SELECT o.id, o.book_id, o.book_name, o.book_author, o.price, o.customer_email, o.customer_name,
			o.phone_number, o.address, o.status, o.payment_status, o.transaction_id, o.session_id,
			o.created_at, o.updated_at, b.seller_email
		FROM orders o
		JOIN books b ON b.id = o.book_id
		WHERE o.id = $1
		FOR UPDATE OF o`
	var o model.Order
	var sellerEmail string
	err := tx.QueryRowContext(ctx, q, orderID).Scan(
		&o.ID, &o.BookID, &o.BookName, &o.BookAuthor, &o.Price,
		&o.CustomerEmail, &o.CustomerName, &o.PhoneNumber, &o.Address,
		&o.Status, &o.PaymentStatus, &o.TransactionID, &o.SessionID,
		&o.CreatedAt, &o.UpdatedAt, &sellerEmail)
	if err != nil {
		return nil, "", err
	}
	return &o, sellerEmail, nil
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, orderID int64, status model.OrderStatus) (int64, error) {
	const q = `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, orderID, status)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	var o model.Order
	if err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, orderID), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) SetSession(ctx context.Context, orderID int64, sessionID string) error {
	const q = `
		UPDATE orders
		SET session_id = $2, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, orderID, sessionID)
	return err
}

func (r *repo) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	var o model.Order
	if err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE session_id=$1`, sessionID), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkPaid is the idempotency point of payment verification: the guard on
// payment_status means a replayed session id affects zero rows.
func (r *repo) MarkPaid(ctx context.Context, tx *sql.Tx, orderID int64, transactionID string) (int64, error) {
	const q = `
		UPDATE orders
		SET payment_status = 'paid', transaction_id = $2, updated_at = NOW()
		WHERE id = $1
		AND payment_status = 'unpaid'`
	res, err := tx.ExecContext(ctx, q, orderID, transactionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) ListByCustomer(ctx context.Context, email string) ([]model.Order, error) {
	const q = `
		SELECT ` + orderCols + `
		FROM orders
		WHERE lower(customer_email) = lower($1)
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, email)
}

func (r *repo) ListForSeller(ctx context.Context, email string) ([]model.Order, error) {
	const q = `
		SELECT o.id, o.book_id, o.book_name, o.book_author, o.price, o.customer_email, o.customer_name,
			o.phone_number, o.address, o.status, o.payment_status, o.transaction_id, o.session_id,
			o.created_at, o.updated_at
		FROM orders o
		JOIN books b ON b.id = o.book_id
		WHERE lower(b.seller_email) = lower($1)
		ORDER BY o.created_at DESC, o.id DESC`
	return r.list(ctx, q, email)
}

func (r *repo) ListInvoices(ctx context.Context, email string) ([]model.Order, error) {
	const q = `
		SELECT ` + orderCols + `
		FROM orders
		WHERE lower(customer_email) = lower($1)
		AND payment_status = 'paid'
		AND transaction_id IS NOT NULL
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, email)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
