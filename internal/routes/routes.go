package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/salonkit/salon-scheduler/internal/attachments"
	"github.com/salonkit/salon-scheduler/internal/audit"
	"github.com/salonkit/salon-scheduler/internal/config"
	"github.com/salonkit/salon-scheduler/internal/handlers"
	"github.com/salonkit/salon-scheduler/internal/hold"
	"github.com/salonkit/salon-scheduler/internal/identity"
	infraRepo "github.com/salonkit/salon-scheduler/internal/infra/repository"
	"github.com/salonkit/salon-scheduler/internal/locking"
	"github.com/salonkit/salon-scheduler/internal/middleware"
	"github.com/salonkit/salon-scheduler/internal/notify"
	"github.com/salonkit/salon-scheduler/internal/policy"
	"github.com/salonkit/salon-scheduler/internal/syncbus"
	ucBooking "github.com/salonkit/salon-scheduler/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	locker := locking.NewRedisLocker(rdb)
	holdStore := hold.NewRedisStore(rdb)
	syncPublisher := syncbus.NewRedisPublisher(rdb)

	policyLoader := policy.NewRepositoryLoader(bookingRepo)
	pinVerifier := identity.NewPINVerifier(bookingRepo)

	attachmentStore := attachments.NewS3Store(cfg)

	mailer := notify.NewBreakerMailer(
		notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom),
		5, time.Minute,
	)
	notifier := notify.NewDispatcher(
		notify.NewPlainRenderer(),
		mailer,
		notify.LogSMSClient{},
		notify.LogWhatsAppClient{},
	)
	reminders := notify.LogReminderScheduler{}

	lockTTL := time.Duration(cfg.LockTTLSeconds) * time.Second
	manualHoldTTL := time.Duration(cfg.ManualHoldTTLSeconds) * time.Second
	onlineHoldTTL := time.Duration(cfg.OnlineHoldTTLSeconds) * time.Second
	cacheTTL := time.Duration(cfg.AvailabilityCacheTTLSeconds) * time.Second

	// ======================================================
	// 🧠 USE CASES — BOOKING
	// ======================================================
	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		locker,
		pinVerifier,
		policyLoader,
		holdStore,
		attachmentStore,
		notifier,
		reminders,
		syncPublisher,
		auditDispatcher,
		lockTTL,
		cfg.PublicBaseURL,
	)

	rescheduleUC := ucBooking.NewRescheduleBooking(
		bookingRepo,
		locker,
		pinVerifier,
		syncPublisher,
		auditDispatcher,
		lockTTL,
	)

	cancelUC := ucBooking.NewCancelBooking(
		bookingRepo,
		pinVerifier,
		syncPublisher,
	)

	selfCancelUC := ucBooking.NewSelfServiceCancel(
		bookingRepo,
		syncPublisher,
	)

	completeUC := ucBooking.NewCompleteBooking(
		bookingRepo,
		pinVerifier,
		syncPublisher,
	)

	listUC := ucBooking.NewListAppointments(bookingRepo)

	availabilityUC := ucBooking.NewGetAvailability(
		bookingRepo,
		holdStore,
		policyLoader,
		rdb,
		cacheTTL,
	)

	manageHoldsUC := ucBooking.NewManageHolds(
		bookingRepo,
		holdStore,
		pinVerifier,
		manualHoldTTL,
	)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	locationHandler := handlers.NewLocationHandler(db)

	serviceHandler := handlers.NewServiceHandler(db)
	customerHandler := handlers.NewCustomerHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)
	blockerHandler := handlers.NewBlockerHandler(db)

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityUC)
	holdHandler := handlers.NewHoldHandler(manageHoldsUC)

	bookingHandler := handlers.NewBookingHandler(
		createBookingUC,
		rescheduleUC,
		cancelUC,
		completeUC,
		listUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(
		db,
		bookingRepo,
		availabilityHandler,
		createBookingUC,
		selfCancelUC,
		holdStore,
		onlineHoldTTL,
	)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/holds", publicHandler.PlaceHold)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)

			publicAPI.POST("/manage/:token/cancel", publicHandler.CancelByToken)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/location", locationHandler.GetMeLocation)
			secured.PATCH("/me/location", locationHandler.UpdateMeLocation)

			secured.GET("/me/customers", customerHandler.List)
			secured.GET("/me/customers/:id/consents", customerHandler.Consents)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/working-hours", workingHoursHandler.Update)

			secured.GET("/me/blockers", blockerHandler.List)
			secured.POST("/me/blockers", blockerHandler.Create)
			secured.DELETE("/me/blockers/:id", blockerHandler.Delete)

			// ------------------------------
			// AVAILABILITY / HOLDS
			// ------------------------------
			secured.GET("/me/availability", availabilityHandler.Get)

			secured.GET("/me/holds", holdHandler.List)
			secured.POST("/me/holds", holdHandler.Place)
			secured.DELETE("/me/holds", holdHandler.Release)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", bookingHandler.Create)
			secured.GET("/me/appointments", bookingHandler.ListByDate)
			secured.GET("/me/appointments/month", bookingHandler.ListByMonth)
			secured.PATCH("/me/appointments/items/:itemId/reschedule", bookingHandler.Reschedule)
			secured.PATCH("/me/appointments/:id/cancel", bookingHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", bookingHandler.Complete)
			secured.PATCH("/me/appointments/:id/no-show", bookingHandler.MarkNoShow)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}
