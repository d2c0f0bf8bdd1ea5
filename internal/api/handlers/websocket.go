package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/ws"
)

// SessionWebSocket streams a session's frames, starting with a snapshot.
// For a session on another instance the snapshot comes from the frame cache
// and the frames arrive through the redis relay.
func SessionWebSocket(m *game.Manager, hub *ws.Hub, frames FrameCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, _, err := findSnapshot(c, m, frames)
		if err != nil {
			respondError(c, err)
			return
		}
		hub.Serve(c.Writer, c.Request, snap)
	}
}
