package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yigit/coursehub/internal/app/controllers"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	courseController *controllers.CourseController,
	healthController *controllers.HealthController,
	gatherer prometheus.Gatherer,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Course routes use trailing slashes on every path
	courses := v1.Group("/courses")
	{
		courses.GET("/", courseController.ListCourses)
		courses.POST("/", courseController.CreateCourse)
		courses.GET("/:id/", courseController.GetCourse)
		courses.PUT("/:id/", courseController.ReplaceCourse)
		courses.PATCH("/:id/", courseController.UpdateCourse)
		courses.DELETE("/:id/", courseController.DeleteCourse)
	}

	v1.GET("/health", healthController.Health)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
