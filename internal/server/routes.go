package server

import (
	"net/http"

	"shopcart/internal/handler"
	"shopcart/internal/storage"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cartH *handler.CartHandler, sessions storage.SessionProvider) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	cartH.RegisterRoutes(e, sessions)
}
