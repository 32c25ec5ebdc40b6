// model/bookModel.go
package model

import "time"

type BookStatus string

const (
	BookPublished   BookStatus = "published"
	BookUnpublished BookStatus = "unpublished"
)

func ValidBookStatus(s string) bool {
	return s == string(BookPublished) || s == string(BookUnpublished)
}

type Book struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Author      string     `json:"author"`
	Price       float64    `json:"price"`
	Image       string     `json:"image"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description"`
	Quantity    int64      `json:"quantity"`
	Status      BookStatus `json:"status"`
	SellerEmail string     `json:"sellerEmail"`
	SellerName  string     `json:"sellerName"`
	CreatedAt   time.Time  `json:"createdAt"`
}
