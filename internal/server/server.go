package server

import (
	"shopcart/internal/handler"
	"shopcart/internal/storage"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はルーティング済みのechoを返す
func New(cartH *handler.CartHandler, sessions storage.SessionProvider) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	RegisterRoutes(e, cartH, sessions)
	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
