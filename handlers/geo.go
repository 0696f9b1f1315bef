package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"agriassist/middleware"
	"agriassist/services/geo"
	"agriassist/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GeoHandler struct {
	Geo GeoService
}

// Geocode handles GET /api/geocode?q=&lang=.
func (h *GeoHandler) Geocode(c *gin.Context) {
	logger := middleware.RequestLogger(c)

	q := strings.TrimSpace(c.Query("q"))
	lang := c.DefaultQuery("lang", "en")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q query param required"})
		return
	}

	results, err := h.Geo.Geocode(c.Request.Context(), q, lang)
	if err != nil {
		logger.Error("Geocoding failed", zap.String("q", q), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "geocoding failed", upstreamDetail(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Weather handles GET /api/weather?lat=&lon=. On upstream failure the body still carries a
// fallback document with a null current_weather.
func (h *GeoHandler) Weather(c *gin.Context) {
	logger := middleware.RequestLogger(c)

	latStr, hasLat := c.GetQuery("lat")
	lonStr, hasLon := c.GetQuery("lon")
	latStr, lonStr = strings.TrimSpace(latStr), strings.TrimSpace(lonStr)
	if !hasLat || !hasLon || latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon required"})
		return
	}
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be numbers"})
		return
	}

	report, err := h.Geo.Forecast(c.Request.Context(), lat, lon)
	if err != nil {
		logger.Error("Weather fetch failed", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "weather fetch failed",
			"detail": upstreamDetail(err),
			"fallback": gin.H{
				"latitude":        latStr,
				"longitude":       lonStr,
				"current_weather": nil,
			},
		})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", report)
}

func upstreamDetail(err error) any {
	var upstream *geo.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Detail()
	}
	return err.Error()
}
