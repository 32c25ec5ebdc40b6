// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"bookcourier/model"
)

// Claims pulls sub/email/role out of the verified token stored by the jwt
// middleware.
func Claims(c echo.Context) (jwt.MapClaims, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return nil, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid jwt claims")
	}
	return claims, nil
}

func ActorFromContext(c echo.Context) (model.Actor, error) {
	var a model.Actor
	uid, ok := c.Get("user_id").(int64)
	if !ok {
		return a, errors.New("no user_id in context")
	}
	email, ok := c.Get("email").(string)
	if !ok || email == "" {
		return a, errors.New("no email in context")
	}
	role, _ := c.Get("role").(string)
	if !model.ValidRole(role) {
		role = string(model.RoleUser)
	}
	name, _ := c.Get("name").(string)

	a.UserID = uid
	a.Email = email
	a.Name = name
	a.Role = model.Role(role)
	return a, nil
}
