package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// The overlay feed is read-only and unauthenticated; OBS browser sources
// send no Origin header, so no origin restriction applies.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func (s *Server) registerOverlayRoutes() {
	limiter := newRateLimiter(float64(s.config.WebSocketConnectionRate), s.config.WebSocketConnectionRate)
	s.echo.GET("/overlay/ws", s.handleOverlaySocket, limiter)
}

func (s *Server) handleOverlaySocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		slog.WarnContext(c.Request().Context(), "WebSocket upgrade failed", "remote", c.RealIP(), "error", err)
		return nil
	}

	if err := s.hub.Register(conn); err != nil {
		slog.WarnContext(c.Request().Context(), "WebSocket connection rejected", "remote", c.RealIP(), "error", err)
		_ = conn.Close()
		return nil
	}

	go s.readPump(conn)
	return nil
}

// readPump drains inbound frames until the peer goes away. Overlay clients
// never send meaningful data; reading is only needed to notice the close.
func (s *Server) readPump(conn *websocket.Conn) {
	defer func() {
		s.hub.Unregister(conn)
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
