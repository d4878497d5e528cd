package routes

import (
	"time"

	"ptocal/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the HTTP surface. The handlers are thin glue; all
// policy lives in the services.
func RegisterRoutes(r *gin.Engine, ptoHandler *handlers.PTOHandler, eventHandler *handlers.EventHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthHandler)

	api := r.Group("/api")
	{
		api.POST("/pto/request", ptoHandler.RequestPTOHandler)

		api.GET("/calendar/find", eventHandler.FindCalendarHandler)
		api.GET("/calendar/clear", eventHandler.ClearCalendarHandler)

		api.GET("/events", eventHandler.FindEventsHandler)
		api.GET("/event", eventHandler.GetEventHandler)
		api.POST("/event", eventHandler.CreateEventHandler)
		api.PATCH("/event", eventHandler.UpdateEventHandler)
		api.DELETE("/event", eventHandler.DeleteEventHandler)
	}
}
