package message

import (
	"encoding/json"
	"net/http"
	"time"

	"chatapi/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxInboundSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the CORS middleware, not here
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stream upgrades an authenticated request to the live feed.
//
// Endpoint: GET /messages/stream
func (h *Handler) Stream(c *gin.Context) {
	userID := middleware.UserID(c)
	username := c.GetString(middleware.ContextUsername)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	cl := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}

	// queued before registering so it is the first frame the client sees
	hello, _ := json.Marshal(NewConnectedEvent(userID, username))
	cl.send <- hello
	h.hub.Register(cl)
	logrus.WithField("user_id", userID).Info("feed connected")

	go writePump(cl)
	readPump(h.hub, cl)
	logrus.WithField("user_id", userID).Info("feed disconnected")
}

// readPump discards client frames; reading keeps pong handling alive and
// notices when the peer goes away.
func readPump(hub *Hub, c *client) {
	defer func() {
		hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("user_id", c.userID).Warn("feed read error")
			}
			return
		}
	}
}

func writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
