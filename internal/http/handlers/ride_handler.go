// README: Ride handlers for booking, lifecycle transitions, ratings,
// payments, and quote estimates.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/maps"
	"ridebooking/internal/modules/dispatch"
	"ridebooking/internal/modules/pricing"
	"ridebooking/internal/modules/ride"
	"ridebooking/internal/types"
)

type RideHandler struct {
	dispatch *dispatch.Service
	rides    *ride.Service
	pricing  *pricing.Service
	routes   *maps.RouteService // optional
}

func NewRideHandler(d *dispatch.Service, r *ride.Service, p *pricing.Service, routes *maps.RouteService) *RideHandler {
	return &RideHandler{dispatch: d, rides: r, pricing: p, routes: routes}
}

type bookRideReq struct {
	RiderID         string  `json:"rider_id"`
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	RideType        string  `json:"ride_type"`
}

func (h *RideHandler) Book(c *gin.Context) {
	var req bookRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RiderID == "" || req.PickupLocation == "" || req.DropoffLocation == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	r, err := h.dispatch.RequestRide(c.Request.Context(), dispatch.RequestCommand{
		RiderID:         types.ID(req.RiderID),
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		PickupCoord:     types.Point{Lat: req.PickupLat, Lng: req.PickupLng},
		RideType:        req.RideType,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *RideHandler) Accept(c *gin.Context) {
	rideID := c.Param("rideId")
	driverID := c.Query("driverId")
	if !isValidID(rideID) || !isValidID(driverID) {
		writeError(c, http.StatusBadRequest, "invalid ride or driver id")
		return
	}
	r, err := h.dispatch.AcceptRide(c.Request.Context(), types.ID(rideID), types.ID(driverID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) Start(c *gin.Context) {
	rideID := c.Param("rideId")
	if !isValidID(rideID) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	r, err := h.rides.Start(c.Request.Context(), types.ID(rideID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) Complete(c *gin.Context) {
	rideID := c.Param("rideId")
	if !isValidID(rideID) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	distance, err1 := strconv.ParseFloat(c.Query("distanceKm"), 64)
	duration, err2 := strconv.ParseFloat(c.Query("durationMinutes"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "distanceKm and durationMinutes are required")
		return
	}
	r, err := h.rides.Complete(c.Request.Context(), ride.CompleteCommand{
		RideID:          types.ID(rideID),
		DistanceKm:      distance,
		DurationMinutes: duration,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) Cancel(c *gin.Context) {
	rideID := c.Param("rideId")
	if !isValidID(rideID) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	r, err := h.rides.Cancel(c.Request.Context(), types.ID(rideID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) Track(c *gin.Context) {
	rideID := c.Param("rideId")
	if !isValidID(rideID) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	status, err := h.rides.GetStatus(c.Request.Context(), types.ID(rideID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride_id": rideID, "status": status})
}

type rateRideReq struct {
	RideID   string `json:"ride_id"`
	ByDriver bool   `json:"by_driver"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

func (h *RideHandler) Rate(c *gin.Context) {
	var req rateRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.rides.Rate(c.Request.Context(), ride.RateCommand{
		RideID:   types.ID(req.RideID),
		ByDriver: req.ByDriver,
		Rating:   req.Rating,
		Feedback: req.Feedback,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rated"})
}

// Estimate quotes a ride before booking. The fare always comes from the
// straight-line model; a road-route annotation is added when a maps client
// is configured.
func (h *RideHandler) Estimate(c *gin.Context) {
	pickup, ok1 := parsePoint(c, "pickupLat", "pickupLng")
	drop, ok2 := parsePoint(c, "dropLat", "dropLng")
	if !ok1 || !ok2 {
		writeError(c, http.StatusBadRequest, "pickup and drop coordinates are required")
		return
	}
	quote := h.pricing.Estimate(c.Request.Context(), c.Query("rideType"), pickup, drop)
	resp := gin.H{
		"distance_km":      quote.DistanceKm,
		"duration_minutes": quote.DurationMin,
		"fare":             quote.Fare,
		"currency":         quote.Currency,
	}
	if h.routes != nil {
		if est, err := h.routes.DrivingEstimate(c.Request.Context(), pickup, drop); err == nil {
			resp["road_duration_minutes"] = est.Duration.Minutes()
			resp["road_distance"] = est.Distance
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RideHandler) CurrentForUser(c *gin.Context) {
	userID := c.Param("userId")
	if !isValidID(userID) {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	r, err := h.rides.CurrentForRider(c.Request.Context(), types.ID(userID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if r == nil {
		writeError(c, http.StatusNotFound, "no active ride")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) CurrentForDriver(c *gin.Context) {
	driverID := c.Param("driverId")
	if !isValidID(driverID) {
		writeError(c, http.StatusBadRequest, "invalid driver id")
		return
	}
	r, err := h.rides.CurrentForDriver(c.Request.Context(), types.ID(driverID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if r == nil {
		writeError(c, http.StatusNotFound, "no active ride")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) HistoryForUser(c *gin.Context) {
	userID := c.Param("userId")
	if !isValidID(userID) {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	rides, err := h.rides.HistoryForRider(c.Request.Context(), types.ID(userID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rides)
}

func (h *RideHandler) HistoryForDriver(c *gin.Context) {
	driverID := c.Param("driverId")
	if !isValidID(driverID) {
		writeError(c, http.StatusBadRequest, "invalid driver id")
		return
	}
	rides, err := h.rides.HistoryForDriver(c.Request.Context(), types.ID(driverID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rides)
}

type paymentSuccessReq struct {
	PaymentID string `json:"payment_id"`
}

func (h *RideHandler) PaymentSuccess(c *gin.Context) {
	rideID := c.Param("rideId")
	if !isValidID(rideID) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	var req paymentSuccessReq
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentID == "" {
		writeError(c, http.StatusBadRequest, "payment_id is required")
		return
	}
	r, err := h.rides.ConfirmPayment(c.Request.Context(), types.ID(rideID), req.PaymentID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func parsePoint(c *gin.Context, latKey, lngKey string) (types.Point, bool) {
	lat, err1 := strconv.ParseFloat(c.Query(latKey), 64)
	lng, err2 := strconv.ParseFloat(c.Query(lngKey), 64)
	if err1 != nil || err2 != nil {
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}
