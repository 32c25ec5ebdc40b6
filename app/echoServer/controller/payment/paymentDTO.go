package payment

type CreateCheckoutReq struct {
	OrderID int64 `json:"orderId" validate:"required,gt=0"`
}

type VerifyReq struct {
	SessionID string `json:"sessionId" validate:"required"`
}
