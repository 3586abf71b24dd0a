package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"petchat/internal/common"
)

const version = "1.0.0"

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   version,
		"timestamp": time.Now().UTC(),
	})
}
