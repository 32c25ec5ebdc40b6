package order

type CreateOrderReq struct {
	BookID      int64  `json:"bookId" validate:"required,gt=0"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Address     string `json:"address" validate:"required"`
}

type SetStatusReq struct {
	Status string `json:"status" validate:"required,oneof=pending shipped delivered cancelled"`
}
