package handlers

import (
	"net/http"

	"agriassist/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, utils.GetHealthStatus())
}
