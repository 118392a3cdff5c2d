package handlers

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"

	"github.com/Skotchmaster/deepchat/internal/chat"
	"github.com/Skotchmaster/deepchat/internal/logging"
)

type ChatHandler struct {
	Relay *chat.Relay
}

// Socket upgrades the caller and pumps each client message through the relay,
// writing the model's reply back on the same connection. The handler never
// inspects content; it only moves frames.
func (h *ChatHandler) Socket(c echo.Context) error {
	ctx := c.Request().Context()
	username, _ := c.Get("username").(string)
	l := logging.FromContext(ctx).With("handler", "chat", "username", username)

	websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()

		for {
			var msg chat.Message
			if err := websocket.JSON.Receive(ws, &msg); err != nil {
				l.Debug("client disconnected", "error", err)
				return
			}

			reply, err := h.Relay.Send(ctx, msg)
			if err != nil {
				l.Error("relay failed", "error", err)
				_ = websocket.JSON.Send(ws, chat.Message{
					ID:      msg.ID,
					Role:    "error",
					Content: "language model unavailable",
				})
				continue
			}

			if err := websocket.JSON.Send(ws, *reply); err != nil {
				l.Debug("client write failed", "error", err)
				return
			}
		}
	}).ServeHTTP(c.Response(), c.Request())

	return nil
}
