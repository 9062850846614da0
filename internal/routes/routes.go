package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/audit"
	"github.com/bookedbarber/bookedbarber-api/internal/authz"
	"github.com/bookedbarber/bookedbarber-api/internal/cache"
	"github.com/bookedbarber/bookedbarber-api/internal/config"
	"github.com/bookedbarber/bookedbarber-api/internal/handlers"
	infraRepo "github.com/bookedbarber/bookedbarber-api/internal/infra/repository"
	"github.com/bookedbarber/bookedbarber-api/internal/media"
	"github.com/bookedbarber/bookedbarber-api/internal/middleware"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/payment"
	ucAppointment "github.com/bookedbarber/bookedbarber-api/internal/usecase/appointment"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	authzStore := infraRepo.NewAuthzGormStore(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	// Membership caching is best effort. Without Redis every org gate
	// hits the database.
	var membershipCache authz.MembershipCache
	if redisClient, err := cache.NewRedisClient(cfg.Redis, log); err != nil {
		log.Warn("redis unavailable, membership cache disabled", zap.Error(err))
	} else {
		membershipCache = cache.NewMembershipCache(redisClient, log)
	}

	tokens := authz.NewTokenCodec(cfg.JWTSecret)
	authzSvc := authz.New(tokens, authzStore, authzStore, membershipCache, log)

	paymentFactory := payment.NewFactory(cfg.Payments, log)
	uploader := media.NewUploader(cfg.S3, log)

	// ======================================================
	// APPOINTMENT USE CASES
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	completeAppointmentUC := ucAppointment.NewCompleteAppointment(
		appointmentRepo,
		auditDispatcher,
		log,
	)

	cancelAppointmentUC := ucAppointment.NewCancelAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	listAppointmentsByDateUC := ucAppointment.NewListAppointmentsByDate(
		appointmentRepo,
	)

	listAppointmentsByMonthUC := ucAppointment.NewListAppointmentsByMonth(
		appointmentRepo,
	)

	availabilityUC := ucAppointment.NewGetAvailability(appointmentRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, tokens)
	meHandler := handlers.NewMeHandler(db, uploader)

	organizationHandler := handlers.NewOrganizationHandler(db, authzSvc)
	memberHandler := handlers.NewMemberHandler(db, authzSvc, auditDispatcher)

	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		db,
		createAppointmentUC,
		completeAppointmentUC,
		cancelAppointmentUC,
		listAppointmentsByDateUC,
		listAppointmentsByMonthUC,
	)

	analyticsHandler := handlers.NewAnalyticsHandler(db)
	billingHandler := handlers.NewBillingHandler(db, paymentFactory, auditDispatcher)
	webhookHandler := handlers.NewWebhookHandler(db, paymentFactory, log)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	adminHandler := handlers.NewAdminHandler(db, auditDispatcher)

	publicHandler := handlers.NewPublicHandler(db, createAppointmentUC, availabilityUC)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC BOOKING API
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug", publicHandler.GetOrganization)
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/barbers", publicHandler.ListBarbers)
			publicAPI.GET("/:slug/availability", publicHandler.GetAvailability)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// PAYMENT WEBHOOKS
		// ------------------------------
		api.POST("/webhooks/payments/:provider", webhookHandler.HandlePayment)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.Authenticate(authzSvc))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.PATCH("/me", meHandler.UpdateMe)
			secured.POST("/me/avatar", meHandler.UploadAvatar)

			secured.GET("/me/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/working-hours", workingHoursHandler.Update)

			// ------------------------------
			// ORGANIZATIONS
			// ------------------------------
			secured.POST(
				"/organizations",
				middleware.RequireRoles(authzSvc, models.RoleAdmin, models.RoleSuperAdmin),
				organizationHandler.Create,
			)

			org := secured.Group("/organizations/:orgID")
			{
				member := org.Group("/")
				member.Use(middleware.RequireOrgMembership(authzSvc))
				{
					member.GET("", organizationHandler.Get)
					member.GET("/children", organizationHandler.ListChildren)
					member.POST("/switch", organizationHandler.Switch)

					member.GET("/services", serviceHandler.List)
					member.GET("/clients", clientHandler.List)
					member.GET("/clients/:clientID/loyalty", clientHandler.LoyaltyBalance)

					member.POST("/appointments", appointmentHandler.Create)
					member.GET("/appointments", appointmentHandler.ListByDate)
					member.GET("/appointments/month", appointmentHandler.ListByMonth)
					member.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
					member.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
				}

				staff := org.Group("/")
				staff.Use(middleware.RequireOrgPermission(authzSvc, models.PermManageStaff))
				{
					staff.PATCH("", organizationHandler.Update)
					staff.POST("/services", serviceHandler.Create)
					staff.PATCH("/services/:id", serviceHandler.Update)

					staff.GET("/members", memberHandler.List)
					staff.POST("/members", memberHandler.Add)
					staff.PATCH("/members/:userID", memberHandler.Update)
					staff.DELETE("/members/:userID", memberHandler.Remove)

					staff.GET("/audit-logs", auditLogsHandler.List)
				}

				billing := org.Group("/")
				billing.Use(middleware.RequireOrgPermission(authzSvc, models.PermManageBilling))
				{
					billing.PATCH("/billing", organizationHandler.UpdateBilling)
					billing.POST("/billing/checkouts", billingHandler.CreateCheckout)
					billing.GET("/billing/payments", billingHandler.ListPayments)
				}

				analytics := org.Group("/")
				analytics.Use(middleware.RequireOrgPermission(authzSvc, models.PermViewAnalytics))
				{
					analytics.GET("/analytics/summary", analyticsHandler.Summary)
				}
			}

			// ------------------------------
			// PLATFORM ADMIN
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRoles(authzSvc, models.RoleSuperAdmin))
			{
				admin.GET("/users", adminHandler.ListUsers)
				admin.POST("/users/:userID/deactivate", adminHandler.DeactivateUser)
				admin.POST("/users/:userID/reactivate", adminHandler.ReactivateUser)
				admin.POST("/users/:userID/schedule-deletion", adminHandler.ScheduleDeletion)
			}
		}
	}
}
