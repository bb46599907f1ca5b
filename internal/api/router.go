// Package api exposes the execution entry point and the collaboration
// websocket over HTTP. It does request/response framing only; all
// execution semantics live in the engine.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"coderoom/internal/collab"
	"coderoom/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewRouter builds the gin router with all routes registered.
func NewRouter(eng engine.Engine, hub *collab.Hub, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), cors.Default())

	r.POST("/api/execute", executeHandler(eng, logger))
	r.GET("/api/health", healthHandler(eng))
	r.GET("/ws/rooms/:id", roomHandler(eng, hub, logger))

	return r
}

func executeHandler(eng engine.Engine, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req engine.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		result, err := eng.Execute(c.Request.Context(), req)
		if err != nil {
			// Workspace creation failed before a session existed.
			logger.Error("execution rejected", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func healthHandler(eng engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		available := eng.Available(c.Request.Context())
		status := http.StatusOK
		if !available {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"available": available})
	}
}

func roomHandler(eng engine.Engine, hub *collab.Hub, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("id")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := collab.NewClient(conn, hub, roomID, eng, logger)
		client.Serve()
	}
}
