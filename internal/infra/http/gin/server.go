package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"bookmytourguide/internal/infra/config"
	"bookmytourguide/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHandler
	Booking        BookingHandler
	Guide          GuideHandler
	Catalog        CatalogHandler
	Testimonial    TestimonialHandler
	TourRequest    TourRequestHandler
	Subscription   SubscriptionHandler
	OTP            OTPHandler
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", h.Auth.Me)

	bookings := api.Group("/bookings")
	bookings.POST("/create", h.Booking.Create)
	bookings.POST("/create-order", h.Booking.CreateOrder)
	bookings.POST("/verify", h.Booking.VerifyAndCreate)
	bookings.GET("", h.Booking.ListAll)
	bookings.GET("/my-bookings", h.Booking.ListMine)
	bookings.GET("/guide-bookings", h.Booking.ListForGuide)
	bookings.GET("/:id", h.Booking.Get)
	bookings.PATCH("/:id/status", h.Booking.UpdateStatus)
	bookings.POST("/:id/cancel", h.Booking.Cancel)
	bookings.PATCH("/:id/assign-substitute", h.Booking.AssignSubstitute)
	bookings.DELETE("/:id", h.Booking.Delete)

	guides := api.Group("/guides")
	guides.GET("", h.Guide.ListApproved)
	guides.GET("/profile", h.Guide.Profile)
	guides.PUT("/profile", h.Guide.UpdateProfile)
	guides.GET("/:id", h.Guide.Get)
	guides.PATCH("/:id/approval", h.Guide.SetApproval)

	packages := api.Group("/packages")
	packages.GET("", h.Catalog.List)
	packages.GET("/:id", h.Catalog.Get)
	packages.POST("", h.Catalog.Create)
	packages.PUT("/:id", h.Catalog.Update)
	packages.DELETE("/:id", h.Catalog.Delete)

	testimonials := api.Group("/testimonials")
	testimonials.GET("", h.Testimonial.List)
	testimonials.POST("", h.Testimonial.Create)
	testimonials.DELETE("/:id", h.Testimonial.Delete)

	requests := api.Group("/tour-requests")
	requests.POST("", h.TourRequest.Create)
	requests.GET("/my", h.TourRequest.ListMine)
	requests.GET("", h.TourRequest.ListAll)
	requests.PATCH("/:id/status", h.TourRequest.SetStatus)

	plans := api.Group("/subscriptions")
	plans.GET("", h.Subscription.List)
	plans.POST("", h.Subscription.Create)
	plans.PUT("/:id", h.Subscription.Update)
	plans.DELETE("/:id", h.Subscription.Delete)

	otpGroup := api.Group("/otp")
	otpGroup.POST("/send", h.OTP.Send)
	otpGroup.POST("/verify", h.OTP.Verify)

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
