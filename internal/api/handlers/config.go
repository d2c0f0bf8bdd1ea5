package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/pinball/internal/config"
)

// GetConfig returns the simulation settings clients need to interpolate frames
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	opts := cfg.PhysicsOptions()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"frame_rate":     cfg.FrameRate,
			"frame_dt":       cfg.FrameDT,
			"max_sub_steps":  opts.MaxIterations,
			"gravity":        opts.Gravity,
			"drag":           opts.Drag,
			"max_balls":      cfg.MaxBalls,
			"default_table":  cfg.DefaultTable,
			"snapshot_every": cfg.SnapshotEvery,
		})
	}
}
