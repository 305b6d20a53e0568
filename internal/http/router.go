// README: HTTP router registration.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ridebooking/internal/http/handlers"
	"ridebooking/internal/http/middleware"
	"ridebooking/internal/maps"
	"ridebooking/internal/modules/account"
	"ridebooking/internal/modules/dispatch"
	"ridebooking/internal/modules/driver"
	"ridebooking/internal/modules/pricing"
	"ridebooking/internal/modules/ride"
	"ridebooking/internal/notify"
)

type RouterDeps struct {
	Dispatch *dispatch.Service
	Rides    *ride.Service
	Registry *driver.Registry
	Pricing  *pricing.Service
	Users    account.Store
	Sessions *notify.WSRegistry
	Routes   *maps.RouteService // optional
	Log      *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log), middleware.Metrics())

	rideHandler := handlers.NewRideHandler(deps.Dispatch, deps.Rides, deps.Pricing, deps.Routes)
	rides := engine.Group("/api/rides")
	{
		rides.POST("/book", rideHandler.Book)
		rides.POST("/:rideId/accept", rideHandler.Accept)
		rides.POST("/:rideId/start", rideHandler.Start)
		rides.POST("/:rideId/complete", rideHandler.Complete)
		rides.POST("/:rideId/cancel", rideHandler.Cancel)
		rides.POST("/:rideId/track", rideHandler.Track)
		rides.POST("/:rideId/payment/success", rideHandler.PaymentSuccess)
		rides.POST("/rate", rideHandler.Rate)
		rides.GET("/estimate", rideHandler.Estimate)
		rides.GET("/user/:userId/current", rideHandler.CurrentForUser)
		rides.GET("/driver/:driverId/current", rideHandler.CurrentForDriver)
		rides.POST("/user/:userId/rides", rideHandler.HistoryForUser)
		rides.POST("/driver/:driverId/rides", rideHandler.HistoryForDriver)
	}

	driverHandler := handlers.NewDriverHandler(deps.Registry)
	drivers := engine.Group("/api/driver")
	{
		drivers.POST("/register", driverHandler.Register)
		drivers.POST("/:driverId/availability", driverHandler.ToggleAvailability)
		drivers.GET("/available", driverHandler.ListAvailable)
		drivers.POST("/:driverId/location", driverHandler.UpdateLocation)
	}

	userHandler := handlers.NewUserHandler(deps.Users)
	engine.POST("/api/users/register", userHandler.Register)

	wsHandler := handlers.NewWSHandler(deps.Registry, deps.Sessions, deps.Log)
	engine.GET("/ws/driver/:driverId", wsHandler.Attach)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	return engine
}
