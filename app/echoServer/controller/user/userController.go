// app/echoServer/controller/user/userController.go
package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"bookcourier/app/echoServer/jwtx"
	"bookcourier/model"
	usersvc "bookcourier/service/user"
)

type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type UpsertUserReq struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

type SetRoleReq struct {
	Role string `json:"role" validate:"required,oneof=user librarian admin"`
}

// PUT /user
func (h *Controller) Upsert(c echo.Context) error {
	var req UpsertUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	u, err := h.Svc.Upsert(c.Request().Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, usersvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		}
		h.Log.Error("user upsert", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, u)
}

// GET /user/role/:email
func (h *Controller) Role(c echo.Context) error {
	role, err := h.Svc.RoleByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		h.Log.Error("user role", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"role": role})
}

// GET /users  (admin)
func (h *Controller) List(c echo.Context) error {
	actor, err := jwtx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, err := h.Svc.List(c.Request().Context(), actor)
	if err != nil {
		if errors.Is(err, usersvc.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		h.Log.Error("user list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.User{}
	}
	return c.JSON(http.StatusOK, rows)
}

// PATCH /user/role/:id  (admin)
func (h *Controller) SetRole(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req SetRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": echo.Map{"role": "user|librarian|admin"}})
	}
	actor, err := jwtx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	n, err := h.Svc.SetRole(c.Request().Context(), actor, id, req.Role)
	if err != nil {
		if errors.Is(err, usersvc.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		if errors.Is(err, usersvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		}
		h.Log.Error("set role", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"modifiedCount": n})
}
