package routes

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vitalwatch-server/internal/care"
	"vitalwatch-server/internal/config"
	"vitalwatch-server/internal/handlers"
	"vitalwatch-server/internal/middleware"
	"vitalwatch-server/internal/models"
	"vitalwatch-server/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	// Initialize services
	assignmentService := services.NewAssignmentService(db, logger)
	escalationService := services.NewEscalationService(db, logger, cfg.Care)
	vitalsService := services.NewVitalsService(db, logger, care.DefaultThresholds, escalationService)
	invitationService := services.NewInvitationService(db, logger, cfg.Care)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	careTeamHandler := handlers.NewCareTeamHandler(db, assignmentService, escalationService)
	vitalsHandler := handlers.NewVitalsHandler(db, vitalsService)
	invitationHandler := handlers.NewInvitationHandler(db, invitationService)
	patientHandler := handlers.NewPatientHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Patient profile and care settings
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("/:patientId", patientHandler.GetPatient) // Auth in handler
			patientRoutes.PATCH("/:patientId/conditions", patientHandler.UpdateConditions)
			patientRoutes.PATCH("/:patientId/escalation", patientHandler.UpdateEscalation)
			patientRoutes.GET("/:patientId/alerts", vitalsHandler.ListAlerts)
		}

		// Vitals ingestion and export
		vitalsRoutes := private.Group("/vitals")
		{
			vitalsRoutes.POST("", vitalsHandler.IngestReading) // Auth in handler
			vitalsRoutes.GET("/:patientId/export", vitalsHandler.ExportVitals)
		}

		// Care team assignment and escalation
		careTeamRoutes := private.Group("/care-team")
		{
			careTeamRoutes.POST("/assign", careTeamHandler.AssignCareTeamMember) // Auth in service
			careTeamRoutes.POST("/escalate", careTeamHandler.EscalateToDoctor)   // Auth in service
		}

		// Provider availability (medical and caretaker roles only)
		private.PATCH("/providers/availability",
			middleware.RoleAuthMiddleware(models.RoleMedical, models.RoleCaretaker),
			careTeamHandler.UpdateAvailability)

		// Invitation lifecycle
		invitationRoutes := private.Group("/invitations")
		{
			invitationRoutes.POST("", invitationHandler.SendInvitation)
			invitationRoutes.GET("", invitationHandler.ListInvitations)
			invitationRoutes.POST("/:id/respond", invitationHandler.RespondToInvitation)
		}

		// Notification feed
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.ListNotifications)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkNotificationRead)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
