package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yoockh/mentorloop/internal/api/handlers"
	"github.com/yoockh/mentorloop/internal/api/middleware"
	"github.com/yoockh/mentorloop/internal/models"
)

type Deps struct {
	Auth         middleware.AuthConfig
	Availability *handlers.AvailabilityHandler
	Session      *handlers.SessionHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.Auth))

	mentors := auth.Group("/mentors/:mentor_id")
	mentors.GET("/availability", d.Availability.FreeSlots)
	mentors.POST("/sessions", middleware.RequireParticipant(), d.Session.Book)

	sessions := auth.Group("/sessions")
	sessions.GET("/upcoming", d.Session.Upcoming)
	sessions.GET("/history", d.Session.History)
	sessions.GET("/:session_id", d.Session.Get)
	sessions.GET("/:session_id/events", d.Session.Events)
	sessions.POST("/:session_id/start", middleware.RequireParticipant(), d.Session.Start)
	sessions.POST("/:session_id/complete", middleware.RequireRole(models.RoleMentor), d.Session.Complete)
	sessions.PUT("/:session_id/recap/:side", middleware.RequireParticipant(), d.Session.Recap)
	sessions.POST("/:session_id/rating", middleware.RequireRole(models.RoleMentee), d.Session.Rate)
}
