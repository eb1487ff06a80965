// Package ws pushes compiled content definitions to display sockets.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/ledcontent/internal/config"
	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/hub"
)

// ContentSource compiles the current definition for a channel.
type ContentSource interface {
	Definition(ctx context.Context, ch domain.Channel) (string, error)
}

type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	content  ContentSource
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, h *hub.Hub, content ContentSource, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		hub:     h,
		content: content,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket subscribes the caller to ?channel=live|test. The current
// definition is sent right after the upgrade; every later change follows.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ch, ok := domain.ParseChannel(c.QueryParam("channel"))
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown channel"})
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return nil
	}
	ws.SetReadLimit(s.cfg.MaxMessageSize)

	conn := s.hub.NewConnection(ws, ch)
	if !s.hub.Register(conn) {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = ws.Close()
		return nil
	}

	// The current definition goes out before the write pump starts so it
	// always precedes queued broadcasts on the wire.
	text, err := s.content.Definition(c.Request().Context(), ch)
	if err != nil {
		s.logger.Error("failed to compile definition for subscriber", "channel", ch, "error", err)
	} else {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			s.logger.Warn("failed to send initial definition", "connection_id", conn.ID, "error", err)
		}
	}

	go s.writePump(conn)
	go s.readPump(conn)
	return nil
}

// readPump keeps the read deadline moving and notices when the display goes away.
func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read failed", "connection_id", conn.ID, "error", err)
			}
			return
		}
	}
}

func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("websocket write failed", "connection_id", conn.ID, "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
