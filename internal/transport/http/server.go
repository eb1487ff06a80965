// Package http assembles the echo server for the content API.
package http

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/ledcontent/internal/service"
	"github.com/xiaot623/ledcontent/internal/transport/http/api"
	"github.com/xiaot623/ledcontent/internal/transport/ws"
)

// NewServer builds the display-facing server: the read endpoints, the push
// socket and a health probe.
func NewServer(svc *service.Service, wsServer *ws.Server, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				logger.Error("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.NewHandler(svc).RegisterRoutes(e)
	if wsServer != nil {
		e.GET("/api/content/ws", wsServer.HandleWebSocket)
	}

	return e
}
