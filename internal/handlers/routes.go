package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/thalcare/internal/middleware"
)

// Register mounts every API route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)

	r.GET("/stats", h.GetStats)
	r.GET("/stats/detailed", h.GetDetailedStats)

	r.GET("/profiles", h.ListProfiles)
	r.GET("/profiles/:id", h.GetProfile)
	r.POST("/search", h.Search)
	r.GET("/hospitals/nearby", h.NearbyHospitals)
	r.GET("/hospitals/by-services", h.HospitalsByServices)
	r.GET("/resources/for-patient", h.ResourcesForPatient)

	me := r.Group("/me")
	me.Use(middleware.AuthMiddleware(h.Tokens))
	{
		me.GET("", h.GetCurrentUser)
		me.PUT("", h.UpdateCurrentUser)
	}
}
