package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts websocket handshakes from allowOrigin, or from any
// origin when allowOrigin is "*".
func NewKDSController(hub *kds.Hub, allowOrigin string) *KDSController {
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowOrigin == "*" || origin == "" || origin == allowOrigin
			},
		},
	}
}

// KDSHandler upgrades an authenticated staff connection and streams events to
// it until the client goes away.
func (kc *KDSController) KDSHandler(c *gin.Context) {
	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	kc.Hub.Register(ws, middlewares.CurrentRole(c))
	kc.Hub.Listen(ws)
}
