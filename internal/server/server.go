package server

import (
	"context"
	"net/http"

	"github.com/krishang-r/vehicle-rental/internal/auth"
	"github.com/krishang-r/vehicle-rental/internal/booking"
	"github.com/krishang-r/vehicle-rental/internal/cart"
	"github.com/krishang-r/vehicle-rental/internal/config"
	"github.com/krishang-r/vehicle-rental/internal/email"
	"github.com/krishang-r/vehicle-rental/internal/user"
	"github.com/krishang-r/vehicle-rental/internal/vehicle"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, carts *cart.Store, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())

	userRepo := user.NewRepository(db)
	vehicleRepo := vehicle.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	vehicleService := vehicle.NewService(vehicleRepo)
	bookingService := booking.NewService(bookingRepo, vehicleRepo, userRepo, emailService)

	userHandler := user.NewHandler(userService)
	vehicleHandler := vehicle.NewHandler(vehicleService, bookingService)
	bookingHandler := booking.NewHandler(bookingService, carts)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
		public.GET("/username-available", userHandler.UsernameAvailable)
	}

	// The catalog and availability queries are browsable without an account.
	router.GET("/vehicles", vehicleHandler.ListVehicles)
	router.GET("/vehicles/:vehicleID", vehicleHandler.GetVehicle)
	router.GET("/vehicles/:vehicleID/quote", bookingHandler.QuoteVehicle)
	router.GET("/availability", bookingHandler.GetAvailability)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/cart", bookingHandler.GetCart)
		protected.POST("/cart/dates", bookingHandler.SelectDates)
		protected.POST("/cart/selection", bookingHandler.SelectVehicle)
		protected.POST("/checkout", bookingHandler.Checkout)
		protected.GET("/bookings", bookingHandler.ListMyBookings)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)
	}

	adminMiddleware := auth.RequireRole(user.RoleAdmin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/vehicles", vehicleHandler.CreateVehicle)
		admin.PATCH("/vehicles/:vehicleID/rate", vehicleHandler.UpdateRate)
		admin.DELETE("/vehicles/:vehicleID", vehicleHandler.DeleteVehicle)
		admin.POST("/vehicles/:vehicleID/reconcile", bookingHandler.ReconcileVehicle)
		admin.GET("/bookings", bookingHandler.ListAllBookings)
		admin.POST("/users/:userID/promote", userHandler.Promote)
		admin.POST("/users/:userID/demote", userHandler.Demote)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
