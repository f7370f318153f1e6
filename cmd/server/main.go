package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"careconnect-backend/internal/config"
	"careconnect-backend/internal/database"
	"careconnect-backend/internal/handler"
	"careconnect-backend/internal/middleware"
	"careconnect-backend/internal/models"
	"careconnect-backend/internal/notify"
	"careconnect-backend/internal/observability"
	"careconnect-backend/internal/ratelimit"
	"careconnect-backend/internal/repository"
	"careconnect-backend/internal/service"
	"careconnect-backend/internal/telemetry"
	"careconnect-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration and logging
	cfg := config.LoadConfig()
	observability.InitLogger(cfg.App.Name, cfg.App.IsProduction())
	log.Info().Str("env", cfg.App.Env).Msg("configuration loaded")

	shutdownTracing := telemetry.Setup(cfg.App.Name, cfg.Telemetry)

	// 2. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	utils.InitResetToken(cfg.JWT.ResetSecret, cfg.JWT.ResetTokenExpiry)

	// 3. Initialize database connection
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// 4. Rate limiting, shared through Redis when configured
	redisClient, err := ratelimit.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limits are per instance")
	}
	otpLimiter := ratelimit.New(redisClient, "otp", cfg.RateLimit.OTPPerMinute)
	loginLimiter := ratelimit.New(redisClient, "login", cfg.RateLimit.LoginPerMinute)

	// 5. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	hospitalRepo := repository.NewHospitalRepo(db)
	providerRepo := repository.NewProviderRepo(db)
	ambulanceRepo := repository.NewAmbulanceRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	activityRepo := repository.NewActivityRepo(db)
	otpRepo := repository.NewOTPRepo(db)

	// 6. Initialize services
	activityService := service.NewActivityService(activityRepo)
	otpService := service.NewOTPService(otpRepo, notify.NewMailer(cfg.SMTP), notify.LogSender{Channel: "sms"}, otpLimiter)
	authService := service.NewAuthService(userRepo, hospitalRepo, providerRepo, otpService, activityService)
	searchService := service.NewSearchService(hospitalRepo, providerRepo, bookingRepo)
	bookingService := service.NewBookingService(bookingRepo, hospitalRepo, providerRepo, ambulanceRepo, activityService)
	hospitalService := service.NewHospitalAdminService(hospitalRepo, activityService)
	ambulanceService := service.NewAmbulanceAdminService(providerRepo, ambulanceRepo, activityService)

	// 7. Setup Gin mode and router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))

	// 8. Register handlers
	authHandler := handler.NewAuthHandler(authService, cfg.App.IsProduction())
	userHandler := handler.NewUserHandler(searchService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	hospitalHandler := handler.NewHospitalHandler(hospitalService)
	ambulanceHandler := handler.NewAmbulanceHandler(ambulanceService)
	activityHandler := handler.NewActivityHandler(activityService)

	// 9. Define routes
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": cfg.App.Name,
		})
	})
	r.GET("/", userHandler.Landing)

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", middleware.RateLimit(loginLimiter, "login"), authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/check-username", authHandler.CheckUsername)
		auth.POST("/send-email-otp", authHandler.SendEmailOTP)
		auth.POST("/verify-email-otp", authHandler.VerifyEmailOTP)
		auth.POST("/send-phone-otp", authHandler.SendPhoneOTP)
		auth.POST("/verify-phone-otp", authHandler.VerifyPhoneOTP)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/verify-password-reset-otp", authHandler.VerifyPasswordResetOTP)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// General user routes
	user := r.Group("/user")
	user.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleUser))
	{
		user.GET("/home", userHandler.Home)
		user.GET("/search", userHandler.Search)
		user.GET("/results", userHandler.Search)
		user.GET("/compare", userHandler.Compare)
		user.GET("/ambulances", userHandler.Ambulances)
		user.GET("/live-availability", userHandler.LiveAvailability)
		user.POST("/book-ambulance", bookingHandler.BookAmbulance)
		user.GET("/bookings", bookingHandler.MyBookings)
		user.GET("/activity-logs", activityHandler.Logs)
	}

	// Hospital admin routes
	hospital := r.Group("/hospital")
	hospital.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleHospital))
	{
		hospital.GET("/dashboard", hospitalHandler.Dashboard)
		hospital.GET("/api/dashboard-stats", hospitalHandler.DashboardStats)
		hospital.GET("/beds", hospitalHandler.GetBeds)
		hospital.PUT("/beds", hospitalHandler.UpdateBeds)
		hospital.GET("/facilities", hospitalHandler.GetFacilities)
		hospital.PUT("/facilities", hospitalHandler.UpdateFacilities)
		hospital.GET("/pricing", hospitalHandler.GetPricing)
		hospital.PUT("/pricing", hospitalHandler.UpdatePricing)
		hospital.GET("/insurances", hospitalHandler.GetInsurances)
		hospital.PUT("/insurances", hospitalHandler.UpdateInsurances)
		hospital.GET("/activity-logs", activityHandler.Logs)
	}

	// Ambulance provider admin routes
	ambulance := r.Group("/ambulance")
	ambulance.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAmbulance))
	{
		ambulance.GET("/dashboard", ambulanceHandler.Dashboard)
		ambulance.GET("/api/dashboard-stats", ambulanceHandler.DashboardStats)
		ambulance.GET("/ambulances", ambulanceHandler.ListAmbulances)
		ambulance.POST("/ambulances", ambulanceHandler.AddAmbulance)
		ambulance.PUT("/ambulances/:number", ambulanceHandler.EditAmbulance)
		ambulance.DELETE("/ambulances/:number", ambulanceHandler.DeleteAmbulance)
		ambulance.PATCH("/ambulances/:number/availability", ambulanceHandler.SetAvailability)
		ambulance.GET("/pricing", ambulanceHandler.GetPricing)
		ambulance.PUT("/pricing", ambulanceHandler.UpdatePricing)
		ambulance.GET("/service-area", ambulanceHandler.GetServiceArea)
		ambulance.PUT("/service-area", ambulanceHandler.UpdateServiceArea)
		ambulance.GET("/bookings", bookingHandler.ListBookings)
		ambulance.POST("/bookings/:id/accept", bookingHandler.Accept)
		ambulance.POST("/bookings/:id/reject", bookingHandler.Reject)
		ambulance.POST("/bookings/:id/start", bookingHandler.Start)
		ambulance.POST("/bookings/:id/complete", bookingHandler.Complete)
		ambulance.GET("/activity-logs", activityHandler.Logs)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(r, cfg.App.Name),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 10. Setup graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to flush traces")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	log.Info().Msg("server exited")
}
