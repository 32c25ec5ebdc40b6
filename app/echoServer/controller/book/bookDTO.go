package book

type BookReq struct {
	Name        string  `json:"name" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity" validate:"gte=0"`
}

type SetBookStatusReq struct {
	Status string `json:"status" validate:"required,oneof=published unpublished"`
}
