package payment

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"bookcourier/app/echoServer/jwtx"
	paymentsvc "bookcourier/service/payment"
	"bookcourier/util/metrics"
)

type Controller struct {
	Svc paymentsvc.Service
	V   *validator.Validate
	Log *slog.Logger
	M   *metrics.Metrics
}

// POST /create-checkout-session
func (h *Controller) CreateCheckout(c echo.Context) error {
	var req CreateCheckoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": echo.Map{"orderId": "required, gt 0"}})
	}
	actor, err := jwtx.ActorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	url, err := h.Svc.CreateCheckout(c.Request().Context(), actor, req.OrderID)
	if err != nil {
		h.Log.Error("create checkout", "err", err, "order_id", req.OrderID)
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		case paymentsvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case paymentsvc.ErrNotOpen:
			return c.JSON(http.StatusConflict, echo.Map{"message": "order is not payable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// POST /payment-success
func (h *Controller) VerifySuccess(c echo.Context) error {
	var req VerifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "sessionId is required"})
	}

	res, err := h.Svc.Verify(c.Request().Context(), req.SessionID)
	if err != nil {
		h.Log.Error("payment verify", "err", err)
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "sessionId is required"})
		case paymentsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "no order for this session"})
		case paymentsvc.ErrNotPaid:
			return c.JSON(http.StatusPaymentRequired, echo.Map{"message": "payment not completed"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	msg := "Payment verified. Order confirmed."
	if res.AlreadyProcessed {
		msg = "Order already processed."
	} else if h.M != nil {
		h.M.OrdersPaid.Inc()
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       msg,
		"orderId":       res.OrderID,
		"transactionId": res.TransactionID,
	})
}
