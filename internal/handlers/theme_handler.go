package handlers

import (
	"net/http"

	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/gin-gonic/gin"
)

// GetTheme handles GET /theme
func GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, models.NewTheme(deviceClass(c)))
}
