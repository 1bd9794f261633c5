package vehicle

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AvailabilityChecker answers which vehicles conflict with a requested date
// range; implemented by the booking service.
type AvailabilityChecker interface {
	UnavailableVehicleIDs(ctx context.Context, startStr, endStr string) (map[int]struct{}, error)
}

type Handler struct {
	service      Service
	availability AvailabilityChecker
}

func NewHandler(service Service, availability AvailabilityChecker) *Handler {
	return &Handler{
		service:      service,
		availability: availability,
	}
}

// ListVehicles godoc
// @Summary      List vehicle catalog
// @Description  Returns all vehicles, optionally filtered by type. With start
// @Description  and end dates, each row carries the availability verdict for
// @Description  that range.
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        type   query     string  false  "Vehicle type filter"
// @Param        start  query     string  false  "Rental start date (YYYY-MM-DD)"
// @Param        end    query     string  false  "Rental end date (YYYY-MM-DD)"
// @Success      200    {array}   VehicleWithAvailability
// @Failure      400    {object}  gin.H
// @Failure      500    {object}  gin.H
// @Router       /vehicles [get]
func (h *Handler) ListVehicles(c *gin.Context) {
	vehicles, err := h.service.ListVehicles(c.Request.Context(), c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vehicles"})
		return
	}

	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		c.JSON(http.StatusOK, vehicles)
		return
	}

	unavailable, err := h.availability.UnavailableVehicleIDs(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := make([]VehicleWithAvailability, 0, len(vehicles))
	for _, v := range vehicles {
		_, conflicting := unavailable[v.ID]
		result = append(result, VehicleWithAvailability{
			Vehicle:           v,
			AvailableForRange: !conflicting,
		})
	}

	c.JSON(http.StatusOK, result)
}

// GetVehicle godoc
// @Summary      Vehicle detail
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        vehicleID  path      int  true  "Vehicle ID"
// @Success      200        {object}  Vehicle
// @Failure      400        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /vehicles/{vehicleID} [get]
func (h *Handler) GetVehicle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	vehicle, err := h.service.GetVehicle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// CreateVehicle godoc
// @Summary      Add vehicle to fleet
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateVehicleRequest  true  "Vehicle data"
// @Success      201      {object}  Vehicle
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/vehicles [post]
func (h *Handler) CreateVehicle(c *gin.Context) {
	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle, err := h.service.AddVehicle(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrCodeExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Vehicle code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// UpdateRate godoc
// @Summary      Update daily rate
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        vehicleID  path      int                true  "Vehicle ID"
// @Param        request    body      UpdateRateRequest  true  "New rate"
// @Success      200        {object}  gin.H
// @Failure      400        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Failure      500        {object}  gin.H
// @Router       /admin/vehicles/{vehicleID}/rate [patch]
func (h *Handler) UpdateRate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	var req UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateRate(c.Request.Context(), id, req.RatePerDay); err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rate updated"})
}

// DeleteVehicle godoc
// @Summary      Remove vehicle from fleet
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        vehicleID  path      int  true  "Vehicle ID"
// @Success      200        {object}  gin.H
// @Failure      400        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Failure      500        {object}  gin.H
// @Router       /admin/vehicles/{vehicleID} [delete]
func (h *Handler) DeleteVehicle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	if err := h.service.RemoveVehicle(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vehicle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}
