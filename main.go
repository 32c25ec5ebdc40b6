// Package main BookCourier API.
//
// @title           BookCourier API
// @version         1.0
// @description     Bookstore storefront backend (catalog, orders, payments, roles).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bookcourier/app/echoServer"
	authctrl "bookcourier/app/echoServer/controller/auth"
	bookctrl "bookcourier/app/echoServer/controller/book"
	orderctrl "bookcourier/app/echoServer/controller/order"
	paymentctrl "bookcourier/app/echoServer/controller/payment"
	userctrl "bookcourier/app/echoServer/controller/user"
	"bookcourier/app/echoServer/validation"
	"bookcourier/config"
	bookrepo "bookcourier/repository/book"
	orderrepo "bookcourier/repository/order"
	striperepo "bookcourier/repository/stripe"
	userrepo "bookcourier/repository/user"
	authsvc "bookcourier/service/auth"
	booksvc "bookcourier/service/book"
	ordersvc "bookcourier/service/order"
	paymentsvc "bookcourier/service/payment"
	usersvc "bookcourier/service/user"
	"bookcourier/util/database"
	"bookcourier/util/events"
	"bookcourier/util/metrics"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// lifecycle events (no-op without brokers)
	ev := events.NewPublisher(cfg.KafkaBrokers, "order-events", log)
	defer ev.Close()

	m := metrics.New("bookcourier")

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	or := orderrepo.New(db)
	pr := striperepo.NewHTTP(cfg.StripeAPIKey)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	us := usersvc.New(ur)
	bs := booksvc.New(br)
	osvc := ordersvc.New(db, or, ev)
	ps := paymentsvc.New(db, or, pr, cfg.ClientOrigin, ev)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	orderC := &orderctrl.Controller{Svc: osvc, V: v, Log: log, M: m}
	paymentC := &paymentctrl.Controller{Svc: ps, V: v, Log: log, M: m}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e, m)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Book:    bookC,
		Order:   orderC,
		Payment: paymentC,
		User:    userC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
