package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/middleware"
	"github.com/playmatatu/pinball/internal/physics"
	"github.com/playmatatu/pinball/internal/store"
	"github.com/playmatatu/pinball/internal/table"
)

type createSessionRequest struct {
	TableID int64  `json:"table_id"`
	Table   string `json:"table"`
}

type sessionSummary struct {
	ID        string    `json:"id"`
	Table     string    `json:"table"`
	StartedAt time.Time `json:"started_at"`
	Frame     uint64    `json:"frame"`
	Balls     int       `json:"balls"`
}

type spawnBallRequest struct {
	Pos *physics.Vec3 `json:"pos"`
	Vel *physics.Vec3 `json:"vel"`
}

// resolveLayout finds the layout a session should run: a stored table by id
// or name, falling back to the built-in demo when it is not stored.
func resolveLayout(c *gin.Context, st TableStore, req createSessionRequest, defaultTable string) (*table.Layout, int64, error) {
	ctx := c.Request.Context()
	if req.TableID > 0 {
		rec, err := st.GetTable(ctx, req.TableID)
		if err != nil {
			return nil, 0, err
		}
		l, err := store.LoadLayout(rec)
		return l, rec.ID, err
	}

	name := req.Table
	if name == "" {
		name = defaultTable
	}
	rec, err := st.GetTableByName(ctx, name)
	switch {
	case err == nil:
		l, err := store.LoadLayout(rec)
		return l, rec.ID, err
	case errors.Is(err, store.ErrNotFound) && name == table.DemoName:
		return table.Demo(), 0, nil
	default:
		return nil, 0, err
	}
}

// CreateSession starts a new table session
func CreateSession(m *game.Manager, st TableStore, defaultTable string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		l, tableID, err := resolveLayout(c, st, req, defaultTable)
		if err != nil {
			respondError(c, err)
			return
		}
		s, err := m.Create(c.Request.Context(), l, tableID)
		if err != nil {
			respondError(c, err)
			return
		}
		log.Info("session created", zap.String("session", s.ID), zap.String("table", l.Name))
		c.JSON(http.StatusCreated, s.Snapshot())
	}
}

// ListSessions returns the running sessions
func ListSessions(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]sessionSummary, 0)
		for _, s := range m.List() {
			snap := s.Snapshot()
			out = append(out, sessionSummary{
				ID:        snap.ID,
				Table:     snap.Table,
				StartedAt: snap.StartedAt,
				Frame:     snap.Frame,
				Balls:     len(snap.Balls),
			})
		}
		c.JSON(http.StatusOK, gin.H{"sessions": out})
	}
}

// FrameCache serves the last published frame of sessions running on other
// instances.
type FrameCache interface {
	LatestFrame(ctx context.Context, sessionID string) (*game.Frame, error)
}

// findSnapshot returns the snapshot of a local session, or of a remote one
// from its cached frame. cached reports the latter.
func findSnapshot(c *gin.Context, m *game.Manager, frames FrameCache) (snap game.Snapshot, cached bool, err error) {
	id := c.Param("id")
	s, err := m.Get(id)
	if err == nil {
		return s.Snapshot(), false, nil
	}
	if frames == nil || !errors.Is(err, game.ErrSessionNotFound) {
		return game.Snapshot{}, false, err
	}
	f, ferr := frames.LatestFrame(c.Request.Context(), id)
	if ferr != nil {
		return game.Snapshot{}, false, ferr
	}
	return f.Snapshot(), true, nil
}

// GetSession returns a full snapshot of a running session. Sessions owned
// by another instance are answered from their cached frame.
func GetSession(m *game.Manager, frames FrameCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, cached, err := findSnapshot(c, m, frames)
		if err != nil {
			respondError(c, err)
			return
		}
		if cached {
			c.Header("X-Snapshot-Source", "cache")
		}
		c.JSON(http.StatusOK, snap)
	}
}

// CloseSession stops a running session
func CloseSession(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.Close(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SpawnBall puts a ball into play, at the plunger unless a position is given
func SpawnBall(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		var req spawnBallRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		id, err := s.SpawnBall(req.Pos, req.Vel)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ball": id})
	}
}

// RemoveBall takes a ball out of play
func RemoveBall(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		ball, err := strconv.ParseUint(c.Param("ball"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ball id"})
			return
		}
		if err := s.RemoveBall(physics.BallID(ball)); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// Actuate applies an operator command (flipper, kick, gate, enable) to an item
func Actuate(m *game.Manager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		var req game.Actuation
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "action and item required"})
			return
		}
		released, err := s.Actuate(req)
		if err != nil {
			respondError(c, err)
			return
		}
		log.Debug("actuation",
			zap.String("session", s.ID),
			zap.String("action", req.Action),
			zap.String("item", req.Item),
			zap.Bool("on", req.On),
			zap.String("operator", c.GetString(middleware.OperatorNameKey)))
		c.JSON(http.StatusOK, gin.H{"released": released})
	}
}
