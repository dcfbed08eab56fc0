package handler

import (
	"net/http"

	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	// Dashboard origin enforcement happens at the proxy layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Dashboard is the dashboard push socket. Placeholder: echoes every frame
// back until real push data exists.
func Dashboard(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	log := logger.FromEcho(c).With(zap.String("tenant_id", c.Param("tenant_id")))
	log.Debug("Dashboard socket opened")

	for {
		mt, msg, err := ws.ReadMessage()
		if err != nil {
			log.Debug("Dashboard socket closed", zap.Error(err))
			return nil
		}
		if err := ws.WriteMessage(mt, append([]byte("echo:"), msg...)); err != nil {
			return nil
		}
	}
}
