package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/schoolhub/internal/app/controllers"
	"github.com/yigit/schoolhub/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	studentController *controllers.StudentController,
	promotionController *controllers.PromotionController,
	classController *controllers.ClassController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Every lifecycle operation needs an operator identity
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	students := authenticated.Group("/students")
	{
		students.GET("", studentController.ListStudents)
		students.POST("", studentController.CreateStudent)
		students.GET("/bin", studentController.ListBin)
		students.GET("/:id", studentController.GetStudentByID)
		students.DELETE("/:id", studentController.SoftDeleteStudent)
		students.PUT("/:id/restore", studentController.RestoreStudent)
		students.DELETE("/:id/permanent", studentController.PermanentlyDeleteStudent)

		// Batch operations report per-student outcomes
		students.POST("/bulk/delete", studentController.BulkSoftDelete)
		students.POST("/bulk/restore", studentController.BulkRestore)
		students.POST("/bulk/permanent", studentController.BulkPermanentlyDelete)

		students.POST("/promote", promotionController.Promote)
		students.GET("/:id/promotions", promotionController.History)
		students.POST("/roll-numbers", promotionController.ReassignRollNumbers)
	}

	classes := authenticated.Group("/classes")
	{
		classes.GET("", classController.ListClasses)
		classes.GET("/:id", classController.GetClass)
		classes.GET("/:id/occupancy", classController.Occupancy)
	}
}
