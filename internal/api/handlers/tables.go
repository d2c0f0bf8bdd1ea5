package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/pinball/internal/models"
	"github.com/playmatatu/pinball/internal/physics"
	"github.com/playmatatu/pinball/internal/table"
)

// TableStore reads and writes stored table layouts.
type TableStore interface {
	ListTables(ctx context.Context) ([]models.TableRecord, error)
	GetTable(ctx context.Context, id int64) (*models.TableRecord, error)
	GetTableByName(ctx context.Context, name string) (*models.TableRecord, error)
	SaveTable(ctx context.Context, l *table.Layout) (*models.TableRecord, error)
}

// ListTables returns every stored layout
func ListTables(st TableStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables, err := st.ListTables(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tables": tables})
	}
}

// GetTable returns one stored layout
func GetTable(st TableStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
			return
		}
		rec, err := st.GetTable(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// SaveTable validates a layout and stores it under its name. The layout is
// built once so geometry errors are rejected before they reach a session.
func SaveTable(st TableStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, 4<<20))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}
		l, err := table.Parse(body)
		if err != nil {
			respondError(c, err)
			return
		}
		if _, err := table.Build(l, physics.Options{}); err != nil {
			respondError(c, err)
			return
		}
		rec, err := st.SaveTable(c.Request.Context(), l)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rec)
	}
}
