package routes

import (
	"agriassist/handlers"
	"agriassist/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterGeoRoutes registers place search and weather endpoints.
func RegisterGeoRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/geocode", hb.GeocodeHandler)
	api.GET("/weather", hb.WeatherHandler)
}

// RegisterAdviceRoutes registers advice generation and speech endpoints.
func RegisterAdviceRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.POST("/generate", hb.GenerateHandler)
	api.POST("/transcribe", hb.TranscribeHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string) {
	r.Use(middleware.CORSMiddleware(allowedOrigins))

	api := r.Group("/api")
	RegisterGeoRoutes(api, hb)
	RegisterAdviceRoutes(api, hb)
	RegisterHealthRoute(api, hb)
}
