// Package api serves compiled display content over HTTP.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/service"
)

const textContentType = "text/plain; charset=utf-8"

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the read-only content routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/content/", h.GetContent)
	e.GET("/api/content", h.GetContent)
	e.GET("/api/content.txt", h.GetContentText)
	e.GET("/api/test.txt", h.GetTestText)

	e.GET("/health", h.Health)
}

// GetContent returns the JSON projection of the live document.
func (h *Handler) GetContent(c echo.Context) error {
	proj, err := h.service.Projection(c.Request().Context(), domain.ChannelLive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, proj)
}

// GetContentText returns the live document in definition format.
func (h *Handler) GetContentText(c echo.Context) error {
	return h.definition(c, domain.ChannelLive)
}

// GetTestText returns the test document in definition format.
func (h *Handler) GetTestText(c echo.Context) error {
	return h.definition(c, domain.ChannelTest)
}

func (h *Handler) definition(c echo.Context, ch domain.Channel) error {
	text, err := h.service.Definition(c.Request().Context(), ch)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.Blob(http.StatusOK, textContentType, []byte(text))
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.service.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
