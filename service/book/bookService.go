package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"bookcourier/model"
)

// Book = model shape, re-exported for controllers.
type Book = model.Book

type ErrCode string

const (
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrForbidden ErrCode = "FORBIDDEN"
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

type UpdateReq struct {
	Name        string
	Author      string
	Price       float64
	Image       string
	Category    string
	Description string
	Quantity    int64
}

type Service interface {
	Create(ctx context.Context, actor model.Actor, req UpdateReq) (int64, error)
	Update(ctx context.Context, actor model.Actor, id int64, req UpdateReq) (int64, error)
	Delete(ctx context.Context, actor model.Actor, id int64) (int64, error)
	List(ctx context.Context) ([]model.Book, error)
	Latest(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)

	// MyInventory lists a seller's own books, unpublished included.
	MyInventory(ctx context.Context, actor model.Actor, email string) ([]model.Book, error)

	// Admin moderation surface.
	AdminList(ctx context.Context, actor model.Actor) ([]model.Book, error)
	AdminSetStatus(ctx context.Context, actor model.Actor, id int64, status string) (int64, error)
	AdminDelete(ctx context.Context, actor model.Actor, id int64) (int64, error)
}

const latestLimit = 6

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, actor model.Actor, req UpdateReq) (int64, error) {
	if !actor.IsLibrarian() {
		return 0, makeErr(ErrForbidden)
	}
	if req.Name == "" || req.Author == "" || req.Price <= 0 || req.Quantity < 0 {
		return 0, makeErr(ErrBadInput)
	}
	b := &model.Book{
		Name:        req.Name,
		Author:      req.Author,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		Description: req.Description,
		Quantity:    req.Quantity,
		Status:      model.BookPublished,
		SellerEmail: strings.ToLower(actor.Email),
		SellerName:  actor.Name,
	}
	return s.r.Create(ctx, b)
}

func (s *service) Update(ctx context.Context, actor model.Actor, id int64, req UpdateReq) (int64, error) {
	b, err := s.owned(ctx, actor, id)
	if err != nil {
		return 0, err
	}
	if req.Name == "" || req.Author == "" || req.Price <= 0 || req.Quantity < 0 {
		return 0, makeErr(ErrBadInput)
	}
	b.Name = req.Name
	b.Author = req.Author
	b.Price = req.Price
	b.Image = req.Image
	b.Category = req.Category
	b.Description = req.Description
	b.Quantity = req.Quantity
	return s.r.Update(ctx, b)
}

func (s *service) Delete(ctx context.Context, actor model.Actor, id int64) (int64, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return 0, err
	}
	return s.r.Delete(ctx, id)
}

// owned loads the book and checks the actor may manage it. Admins may
// manage any book, librarians only their own.
func (s *service) owned(ctx context.Context, actor model.Actor, id int64) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if actor.IsAdmin() {
		return b, nil
	}
	if !actor.IsLibrarian() || !strings.EqualFold(b.SellerEmail, actor.Email) {
		return nil, makeErr(ErrForbidden)
	}
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.ListPublished(ctx) }

func (s *service) Latest(ctx context.Context) ([]model.Book, error) {
	return s.r.Latest(ctx, latestLimit)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) MyInventory(ctx context.Context, actor model.Actor, email string) ([]model.Book, error) {
	if !actor.IsLibrarian() {
		return nil, makeErr(ErrForbidden)
	}
	if !strings.EqualFold(actor.Email, email) && !actor.IsAdmin() {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.ListBySeller(ctx, email)
}

func (s *service) AdminList(ctx context.Context, actor model.Actor) ([]model.Book, error) {
	if !actor.IsAdmin() {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.ListAll(ctx)
}

func (s *service) AdminSetStatus(ctx context.Context, actor model.Actor, id int64, status string) (int64, error) {
	if !actor.IsAdmin() {
		return 0, makeErr(ErrForbidden)
	}
	if !model.ValidBookStatus(status) {
		return 0, makeErr(ErrBadInput)
	}
	return s.r.SetStatus(ctx, id, model.BookStatus(status))
}

func (s *service) AdminDelete(ctx context.Context, actor model.Actor, id int64) (int64, error) {
	if !actor.IsAdmin() {
		return 0, makeErr(ErrForbidden)
	}
	return s.r.Delete(ctx, id)
}
