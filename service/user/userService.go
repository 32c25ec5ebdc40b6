package usersvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"bookcourier/model"
)

var (
	ErrBadInput  = errors.New("bad input")
	ErrForbidden = errors.New("forbidden")
)

type Repo interface {
	Upsert(ctx context.Context, email, name string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetRole(ctx context.Context, id int64, role model.Role) (int64, error)
}

type Service interface {
	// Upsert records a profile on external sign-in, defaulting the role.
	Upsert(ctx context.Context, email, name string) (*model.User, error)

	// RoleByEmail gates dashboard navigation. Unknown emails are plain users.
	RoleByEmail(ctx context.Context, email string) (model.Role, error)

	// List and SetRole are the admin surface.
	List(ctx context.Context, actor model.Actor) ([]model.User, error)
	SetRole(ctx context.Context, actor model.Actor, id int64, role string) (int64, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Upsert(ctx context.Context, email, name string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrBadInput
	}
	return s.r.Upsert(ctx, email, strings.TrimSpace(name))
}

func (s *service) RoleByEmail(ctx context.Context, email string) (model.Role, error) {
	u, err := s.r.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RoleUser, nil
		}
		return "", err
	}
	if u == nil || u.Role == "" {
		return model.RoleUser, nil
	}
	return u.Role, nil
}

func (s *service) List(ctx context.Context, actor model.Actor) ([]model.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.r.List(ctx)
}

func (s *service) SetRole(ctx context.Context, actor model.Actor, id int64, role string) (int64, error) {
	if !actor.IsAdmin() {
		return 0, ErrForbidden
	}
	if id <= 0 || !model.ValidRole(role) {
		return 0, ErrBadInput
	}
	return s.r.SetRole(ctx, id, model.Role(role))
}
