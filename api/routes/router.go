package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stagepass/internal/bookings"
	"stagepass/internal/events"
	"stagepass/internal/payments"
	"stagepass/internal/refunds"
	"stagepass/internal/scheduler"
	"stagepass/internal/seats"
	"stagepass/internal/shared/config"
	"stagepass/internal/shared/database"
	"stagepass/internal/users"
	"stagepass/internal/venues"
	"stagepass/pkg/cache"
	"stagepass/pkg/clock"
)

// Router holds route dependencies and the services shared with the background
// workers.
type Router struct {
	config    *config.Config
	db        *database.Database
	publisher refunds.Publisher
	clock     clock.Clock

	refundService refunds.Service
	scheduler     *scheduler.Scheduler
}

func NewRouter(cfg *config.Config, db *database.Database, publisher refunds.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		clock:     clock.System(),
	}
}

// SetupRoutes wires repositories, services and controllers, and registers all
// HTTP routes.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	cacheService := cache.NewService(r.db.GetRedis())
	cacheTTL := r.config.Redis.CacheTTL
	pg := r.db.GetPostgreSQL()

	userRepo := users.NewRepository(pg)
	userService := users.NewService(userRepo)
	userGate := users.NewGate(userRepo)

	venueRepo := venues.NewRepository(pg)
	venueService := venues.NewService(venueRepo)
	venueGate := venues.NewGate(venueRepo)

	eventRepo := events.NewRepository(pg)

	seatRepo := seats.NewRepository(pg)
	seatService := seats.NewService(seatRepo, events.NewSeatGate(eventRepo), userGate, cacheService, cacheTTL, r.clock)

	bookingRepo := bookings.NewRepository(pg)
	bookingService := bookings.NewService(bookingRepo, seatService, events.NewBookingGate(eventRepo), userGate, r.clock, r.config.Booking.ReferenceMaxAttempts)

	paymentRepo := payments.NewRepository(pg)
	paymentService := payments.NewService(paymentRepo, bookingService, bookingRepo, payments.NewMockPaymentGateway(), r.clock)

	r.refundService = refunds.NewService(paymentService, bookingService, events.NewDirectory(eventRepo))

	eventService := events.NewService(eventRepo, seatService, venueGate, r.publisher, cacheService, cacheTTL, r.clock)

	r.scheduler = scheduler.New(seatService, bookingService, eventService, r.refundService, r.config.Booking, r.clock)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		users.SetupUserRoutes(api, users.NewController(userService))
		venues.SetupVenueRoutes(api, venues.NewController(venueService))
		events.SetupEventRoutes(api, events.NewController(eventService))
		seats.SetupSeatRoutes(api, seats.NewController(seatService))
		bookings.SetupBookingRoutes(api, bookings.NewController(bookingService))
		payments.SetupPaymentRoutes(api, payments.NewController(paymentService))
	}
}

// RefundService is consumed by the Kafka refund workers.
func (r *Router) RefundService() refunds.Service {
	return r.refundService
}

// Scheduler returns the background sweep runner built during route setup.
func (r *Router) Scheduler() *scheduler.Scheduler {
	return r.scheduler
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "stagepass",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "stagepass",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}
