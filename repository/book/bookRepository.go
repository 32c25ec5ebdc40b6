package bookrepo

import (
	"context"
	"database/sql"

	"bookcourier/model"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, b *model.Book) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	ListPublished(ctx context.Context) ([]model.Book, error)
	Latest(ctx context.Context, limit int) ([]model.Book, error)
	ListBySeller(ctx context.Context, email string) ([]model.Book, error)
	ListAll(ctx context.Context) ([]model.Book, error)
	SetStatus(ctx context.Context, id int64, status model.BookStatus) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const bookCols = `id, name, author, price, image, category, description, quantity, status, seller_email, seller_name, created_at`

func scanBook(row interface{ Scan(...any) error }, b *model.Book) error {
	return row.Scan(&b.ID, &b.Name, &b.Author, &b.Price, &b.Image, &b.Category,
		&b.Description, &b.Quantity, &b.Status, &b.SellerEmail, &b.SellerName, &b.CreatedAt)
}

func (r *repo) Create(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
INSERT INTO books (name, author, price, image, category, description, quantity, status, seller_email, seller_name)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		b.Name, b.Author, b.Price, b.Image, b.Category, b.Description,
		b.Quantity, b.Status, b.SellerEmail, b.SellerName,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Update(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
UPDATE books
SET name=$2, author=$3, price=$4, image=$5, category=$6, description=$7, quantity=$8
WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q,
		b.ID, b.Name, b.Author, b.Price, b.Image, b.Category, b.Description, b.Quantity)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	var b model.Book
	if err := scanBook(r.db.QueryRowContext(ctx, `SELECT `+bookCols+` FROM books WHERE id=$1`, id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) ListPublished(ctx context.Context) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE status='published' ORDER BY id DESC`
	return r.list(ctx, q)
}

func (r *repo) Latest(ctx context.Context, limit int) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE status='published' ORDER BY created_at DESC, id DESC LIMIT $1`
	return r.list(ctx, q, limit)
}

// ListBySeller returns the seller's whole inventory, unpublished included.
func (r *repo) ListBySeller(ctx context.Context, email string) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE lower(seller_email) = lower($1) ORDER BY id DESC`
	return r.list(ctx, q, email)
}

func (r *repo) ListAll(ctx context.Context) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books ORDER BY id DESC`
	return r.list(ctx, q)
}

func (r *repo) SetStatus(ctx context.Context, id int64, status model.BookStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE books SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
