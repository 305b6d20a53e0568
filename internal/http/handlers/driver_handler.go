// README: Driver handlers for registration, availability, and location.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/modules/driver"
	"ridebooking/internal/types"
)

type DriverHandler struct {
	registry *driver.Registry
}

func NewDriverHandler(registry *driver.Registry) *DriverHandler {
	return &DriverHandler{registry: registry}
}

type registerDriverReq struct {
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleModel  string `json:"vehicle_model"`
	LicenceNumber string `json:"licence_number"`
	FCMToken      string `json:"fcm_token"`
}

func (h *DriverHandler) Register(c *gin.Context) {
	var req registerDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.registry.Register(c.Request.Context(), driver.RegisterCommand{
		Username:      req.Username,
		FullName:      req.FullName,
		PhoneNumber:   req.PhoneNumber,
		VehicleNumber: req.VehicleNumber,
		VehicleModel:  req.VehicleModel,
		LicenceNumber: req.LicenceNumber,
		FCMToken:      req.FCMToken,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DriverHandler) ToggleAvailability(c *gin.Context) {
	driverID := c.Param("driverId")
	if !isValidID(driverID) {
		writeError(c, http.StatusBadRequest, "invalid driver id")
		return
	}
	d, err := h.registry.ToggleAvailability(c.Request.Context(), types.ID(driverID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver_id": d.ID, "status": d.Status})
}

func (h *DriverHandler) ListAvailable(c *gin.Context) {
	drivers, err := h.registry.ListAvailable(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

type locationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	driverID := c.Param("driverId")
	if !isValidID(driverID) {
		writeError(c, http.StatusBadRequest, "invalid driver id")
		return
	}
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.registry.UpdateLocation(c.Request.Context(), types.ID(driverID), types.Point{Lat: req.Lat, Lng: req.Lng}); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
