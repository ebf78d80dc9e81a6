package routes

import (
	"context"
	"net/http"
	"time"

	"eventixs/internal/auth"
	"eventixs/internal/bookings"
	"eventixs/internal/events"
	"eventixs/internal/ledger"
	"eventixs/internal/notifications"
	"eventixs/internal/payments"
	"eventixs/internal/shared/config"
	"eventixs/internal/shared/database"
	"eventixs/internal/support"
	"eventixs/internal/venues"
	"eventixs/pkg/cache"
	"eventixs/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router wires every feature module together and mounts its routes.
type Router struct {
	config *config.Config
	db     *database.DB

	cacheService        cache.Service
	notificationService notifications.NotificationService
	sweeper             *ledger.Sweeper
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB) *Router {
	r := &Router{
		config: cfg,
		db:     db,
	}
	if db.GetRedis() != nil {
		r.cacheService = cache.NewService(db.GetRedis())
	}
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthAndFeatureRoutes(api)
	}
}

// StartBackground launches the reservation sweeper and the notification
// consumers. Call after SetupRoutes.
func (r *Router) StartBackground(ctx context.Context) {
	if r.sweeper != nil {
		r.sweeper.Start(ctx)
	}
	if r.notificationService != nil {
		if err := r.notificationService.Start(ctx); err != nil {
			logger.GetDefault().Error("failed to start notification service", "error", err)
		}
	}
}

// StopBackground shuts the background workers down in reverse order.
func (r *Router) StopBackground() {
	if r.sweeper != nil {
		r.sweeper.Stop()
	}
	if r.notificationService != nil {
		if err := r.notificationService.Stop(); err != nil {
			logger.GetDefault().Error("failed to stop notification service", "error", err)
		}
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "eventixs-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "eventixs-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

func (r *Router) setupAuthAndFeatureRoutes(rg *gin.RouterGroup) {
	pg := r.db.GetPostgreSQL()
	appLogger := logger.GetDefault()

	// Auth
	authRepo := auth.NewRepository(pg)
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	auth.NewRouter(authController).SetupRoutes(rg)

	// Notifications (no-op when Kafka is disabled)
	userAdapter := auth.NewUserServiceAdapter(authRepo)
	notificationService, err := notifications.NewService(r.config.Kafka, userAdapter)
	if err != nil {
		appLogger.Error("failed to initialize notifications, continuing without", "error", err)
	} else {
		r.notificationService = notificationService
	}

	// Venues
	venueRepo := venues.NewRepository(pg)
	venueService := venues.NewService(venueRepo, r.cacheService)
	venues.RegisterRoutes(rg, venues.NewController(venueService))

	// Events
	eventRepo := events.NewRepository(pg)
	eventService := events.NewService(eventRepo, r.cacheService)
	events.RegisterRoutes(rg, events.NewController(eventService))

	// Reservation ledger. The Redis gate is optional; without it every
	// reserve goes straight to Postgres.
	var gate *ledger.AvailabilityGate
	if r.db.GetRedis() != nil {
		gate = ledger.NewAvailabilityGate(r.db.GetRedis(), r.config.Redis.AvailabilityTTL)
	}
	ledgerRepo := ledger.NewRepository(pg)
	ticketLedger := ledger.NewLedger(ledgerRepo, gate, r.config.Booking.HoldTTL, appLogger)

	// Bookings
	var notifier bookings.Notifier
	if r.notificationService != nil {
		notifier = notifications.NewBookingNotifier(r.notificationService)
	}
	bookingRepo := bookings.NewRepository(pg)
	bookingService := bookings.NewService(bookingRepo, ticketLedger, eventService, notifier, r.config.Booking)
	bookings.RegisterRoutes(rg, bookings.NewController(bookingService))

	// Payments
	paymentRepo := payments.NewRepository(pg)
	gateway := payments.NewSandboxGateway(r.config.Payment)
	paymentService := payments.NewService(paymentRepo, gateway, bookingService, r.config.Payment)
	payments.RegisterRoutes(rg, payments.NewController(paymentService))
	bookingService.SetRefunder(paymentService)

	// Support
	supportRepo := support.NewRepository(pg)
	supportService := support.NewService(supportRepo)
	support.RegisterRoutes(rg, support.NewController(supportService))

	// Sweeper cancels bookings whose holds the ledger expires.
	sweeperCfg := ledger.DefaultSweeperConfig()
	sweeperCfg.Interval = r.config.Booking.SweepInterval
	r.sweeper = ledger.NewSweeper(ticketLedger, ledgerRepo, sweeperCfg,
		func(ctx context.Context, reservation *ledger.Reservation) {
			if err := bookingService.ExpireReservation(ctx, reservation.ID); err != nil {
				appLogger.Error("failed to expire booking for lapsed hold",
					"reservation_id", reservation.ID, "error", err)
			}
		}, appLogger)
}
