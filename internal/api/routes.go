package api

import (
	"net/http"

	"gympro/internal/domain"
	"gympro/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	assignmentService service.AssignmentService,
	routineService service.RoutineService,
	injuryService service.InjuryService,
	catalogService service.CatalogService,
) {

	authHandler := NewAuthHandler(authService)
	adminHandler := NewAdminHandler(authService, assignmentService)
	trainerHandler := NewTrainerHandler(assignmentService, routineService, injuryService, catalogService)
	studentHandler := NewStudentHandler(authService, routineService, injuryService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.Use(RequestIDMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			// Self-service registration is student-only; trainers are
			// registered by the admin.
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/trainers", adminHandler.RegisterTrainer)
			adminGroup.GET("/trainers", adminHandler.ListTrainers)
			adminGroup.GET("/students/unassigned", adminHandler.ListUnassignedStudents)
			adminGroup.POST("/assignments", adminHandler.Assign)
			adminGroup.POST("/assignments/reconcile", adminHandler.Reconcile)
		}

		// --- Trainer Routes ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.GET("/students", trainerHandler.GetMyStudents)

			trainerGroup.POST("/students/:studentId/routines", trainerHandler.CreateRoutine)
			trainerGroup.POST("/students/:studentId/routines/from-catalog", trainerHandler.CreateRoutineFromCatalog)
			trainerGroup.GET("/students/:studentId/routines", trainerHandler.GetStudentRoutines)

			trainerGroup.POST("/students/:studentId/injuries", trainerHandler.RecordInjury)
			trainerGroup.GET("/injuries", trainerHandler.ListAllInjuries)
			trainerGroup.POST("/injuries/:injuryId/comments", trainerHandler.AddComment)

			trainerGroup.POST("/templates", trainerHandler.CreateTemplate)
			trainerGroup.GET("/templates", trainerHandler.ListTemplates)
			trainerGroup.POST("/templates/:templateId/demo/upload-url", trainerHandler.RequestDemoUploadURL)
			trainerGroup.POST("/templates/:templateId/demo/confirm", trainerHandler.ConfirmDemoUpload)
			trainerGroup.GET("/templates/:templateId/demo", trainerHandler.GetDemoDownloadURL)
		}

		// --- Student Routes ---
		studentGroup := protected.Group("/student")
		studentGroup.Use(RoleMiddleware(domain.RoleStudent))
		{
			studentGroup.PUT("/profile", studentHandler.UpdateMyProfile)

			studentGroup.GET("/routines", studentHandler.GetMyRoutines)
			studentGroup.POST("/routines/:routineId/complete", studentHandler.CompleteRoutine)

			studentGroup.GET("/progress", studentHandler.GetMyProgress)
			studentGroup.GET("/progress/summary", studentHandler.GetProgressSummary)

			studentGroup.GET("/injuries", studentHandler.GetMyInjuries)
			studentGroup.POST("/injuries/:injuryId/comments", studentHandler.AddComment)
		}
	}
}
