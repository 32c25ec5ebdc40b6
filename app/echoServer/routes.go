package echoServer

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"bookcourier/app/echoServer/controller/auth"
	"bookcourier/app/echoServer/controller/book"
	"bookcourier/app/echoServer/controller/order"
	"bookcourier/app/echoServer/controller/payment"
	"bookcourier/app/echoServer/controller/user"
	jwtutil "bookcourier/util/jwt"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Order     *order.Controller
	Payment   *payment.Controller
	User      *user.Controller
	JWTSecret string
}

// Register wires the storefront interface. Paths are unversioned because
// they are the contract an existing client consumes.
func Register(e *echo.Echo, c C) {
	// Public
	e.POST("/users/register", c.Auth.Register)
	e.POST("/users/login", c.Auth.Login)

	// Storefront catalog is browsable without a session.
	e.GET("/books", c.Book.List)
	e.GET("/latest-books", c.Book.Latest)
	e.GET("/books/:id", c.Book.Detail)

	// Authenticated
	authed := e.Group("")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(_ echo.Context, auth string) (interface{}, error) {
			return jwtutil.ParseAuth(auth, c.JWTSecret)
		},
	}))
	authed.Use(ExtractClaims())

	// Users & roles
	authed.PUT("/user", c.User.Upsert)
	authed.GET("/user/role/:email", c.User.Role)
	authed.GET("/users", c.User.List)
	authed.PATCH("/user/role/:id", c.User.SetRole)

	// Catalog management (librarian; ownership checked in the service)
	authed.POST("/books", c.Book.Create)
	authed.PATCH("/books/:id", c.Book.Update)
	authed.DELETE("/books/:id", c.Book.Delete)
	authed.GET("/my-inventory/:email", c.Book.MyInventory)

	// Admin moderation
	authed.GET("/admin/manage-books", c.Book.AdminList)
	authed.PATCH("/admin/books/status/:id", c.Book.AdminSetStatus)
	authed.DELETE("/admin/books/:id", c.Book.AdminDelete)

	// Orders
	authed.POST("/orders", c.Order.Create)
	authed.PATCH("/orders/status/:id", c.Order.SetStatus)
	authed.GET("/my-orders/:email", c.Order.MyOrders)
	authed.GET("/manage-orders/:email", c.Order.ManageOrders)
	authed.GET("/invoices/:email", c.Order.Invoices)

	// Payment
	authed.POST("/create-checkout-session", c.Payment.CreateCheckout)
	authed.POST("/payment-success", c.Payment.VerifySuccess)
}
