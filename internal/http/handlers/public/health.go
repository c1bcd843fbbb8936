package public

import (
	"time"

	"github.com/sgtmake/storefront-api/internal/models"

	"github.com/gin-gonic/gin"
)

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	dbStatus := "up"
	if sqlDB, err := models.DB.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}
	c.JSON(200, gin.H{
		"status":   "ok",
		"database": dbStatus,
		"time":     time.Now().Format(time.RFC3339),
	})
}
