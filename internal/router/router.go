package router

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-tools/tutor-hours-api/internal/handler"
	"github.com/campus-tools/tutor-hours-api/internal/middleware"
	"github.com/campus-tools/tutor-hours-api/internal/models"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Availability *handler.AvailabilityHandler
	Hours        *handler.HourHandler
	TAs          *handler.TAHandler
	Courses      *handler.CourseHandler
}

// Setup registers all API routes under the given prefix.
func Setup(r *gin.Engine, prefix string, h Handlers, auth middleware.TokenValidator) {
	v1 := r.Group(prefix)

	// Public routes: anyone can browse availability and the course catalog.
	v1.GET("/availability", h.Availability.Home)
	v1.GET("/availability/export", h.Availability.Export)
	v1.GET("/tas/:id", h.Availability.TADetail)
	v1.GET("/courses", h.Courses.List)

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", h.Auth.Signup)
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.POST("/refresh", h.Auth.Refresh)
	}

	// Authenticated routes.
	protected := v1.Group("")
	protected.Use(middleware.JWT(auth))
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.GET("/auth/me", h.Auth.Me)

		protected.GET("/dashboard", h.TAs.Dashboard)
		protected.PUT("/profile", h.TAs.UpdateProfile)

		hours := protected.Group("/hours")
		{
			hours.POST("", h.Hours.Create)
			hours.GET("/:id", h.Hours.Get)
			hours.PUT("/:id", h.Hours.Update)
			hours.DELETE("/:id", h.Hours.Delete)
		}

		// The course catalog is curated by administrators only.
		admin := protected.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.POST("/courses", h.Courses.Create)
			admin.PUT("/courses/:id", h.Courses.Update)
		}
	}
}
