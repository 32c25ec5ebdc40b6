package order

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"bookcourier/app/echoServer/jwtx"
	"bookcourier/model"
	ordersvc "bookcourier/service/order"
	"bookcourier/util/metrics"
)

type Controller struct {
	Svc ordersvc.Service
	V   *validator.Validate
	Log *slog.Logger
	M   *metrics.Metrics
}

// POST /orders
func (h *Controller) Create(c echo.Context) error {
	var req CreateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	actor, err := jwtx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	o, err := h.Svc.Create(c.Request().Context(), actor, req.BookID, req.PhoneNumber, req.Address)
	if err != nil {
		h.Log.Error("order create", "err", err, "book_id", req.BookID)
		switch ordersvc.Code(err) {
		case ordersvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case ordersvc.ErrNoStock:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is out of stock"})
		case ordersvc.ErrNotPublished:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "book is not available"})
		case ordersvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "phone and address are required"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	if h.M != nil {
		h.M.OrdersCreated.Inc()
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"insertedId": o.ID,
		"order":      o,
	})
}

// PATCH /orders/status/:id
func (h *Controller) SetStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req SetStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": echo.Map{"status": "pending|shipped|delivered|cancelled"}})
	}
	actor, err := jwtx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	n, err := h.Svc.SetStatus(c.Request().Context(), actor, id, model.OrderStatus(req.Status))
	if err != nil {
		h.Log.Error("order set status", "err", err, "order_id", id, "to", req.Status)
		switch ordersvc.Code(err) {
		case ordersvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		case ordersvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case ordersvc.ErrBadTransition:
			return c.JSON(http.StatusConflict, echo.Map{"message": "invalid status transition"})
		case ordersvc.ErrUnpaid:
			return c.JSON(http.StatusConflict, echo.Map{"message": "order is not paid yet"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	if h.M != nil {
		h.M.StatusChanges.WithLabelValues(req.Status).Inc()
	}
	return c.JSON(http.StatusOK, echo.Map{"modifiedCount": n})
}

// GET /my-orders/:email
func (h *Controller) MyOrders(c echo.Context) error {
	actor, err := jwtx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, err := h.Svc.MyOrders(c.Request().Context(), actor, c.Param("email"))
	if err != nil {
		if ordersvc.Code(err) == ordersvc.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		h.Log.Error("my orders", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Order{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /manage-orders/:email
func (h *Controller) ManageOrders(c echo.Context) error {
	actor, err := jwtx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, err := h.Svc.ManageOrders(c.Request().Context(), actor, c.Param("email"))
	if err != nil {
		if ordersvc.Code(err) == ordersvc.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		h.Log.Error("manage orders", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Order{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /invoices/:email
func (h *Controller) Invoices(c echo.Context) error {
	actor, err := jwtx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, err := h.Svc.Invoices(c.Request().Context(), actor, c.Param("email"))
	if err != nil {
		if ordersvc.Code(err) == ordersvc.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		h.Log.Error("invoices", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Order{}
	}
	return c.JSON(http.StatusOK, rows)
}
