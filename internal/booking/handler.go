package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/krishang-r/vehicle-rental/internal/auth"
	"github.com/krishang-r/vehicle-rental/internal/cart"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
	carts   *cart.Store
}

func NewHandler(service Service, carts *cart.Store) *Handler {
	return &Handler{service: service, carts: carts}
}

type selectDatesRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type selectVehicleRequest struct {
	VehicleID  int    `json:"vehicle_id" binding:"required"`
	GovID      string `json:"gov_id" binding:"required"`
	License    string `json:"license" binding:"required"`
	StartPoint string `json:"start_point" binding:"required"`
	EndPoint   string `json:"end_point" binding:"required"`
}

// GetAvailability godoc
// @Summary      List unavailable vehicles for a range
// @Description  Advisory check used by the catalog; the binding check runs at checkout.
// @Tags         bookings
// @Produce      json
// @Param        start  query     string  true  "Start date (YYYY-MM-DD)"
// @Param        end    query     string  true  "End date (YYYY-MM-DD)"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  gin.H
// @Router       /availability [get]
func (h *Handler) GetAvailability(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")

	unavailable, err := h.service.UnavailableVehicleIDs(c.Request.Context(), start, end)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDateFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be in YYYY-MM-DD format"})
		case errors.Is(err, ErrInvertedRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "End date must not be before start date"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
		}
		return
	}

	ids := make([]int, 0, len(unavailable))
	for id := range unavailable {
		ids = append(ids, id)
	}

	c.JSON(http.StatusOK, gin.H{
		"start":                   start,
		"end":                     end,
		"unavailable_vehicle_ids": ids,
	})
}

// QuoteVehicle godoc
// @Summary      Quote the advance for a vehicle and range
// @Tags         bookings
// @Produce      json
// @Param        vehicleID  path      int     true  "Vehicle ID"
// @Param        start      query     string  true  "Start date (YYYY-MM-DD)"
// @Param        end        query     string  true  "End date (YYYY-MM-DD)"
// @Success      200        {object}  map[string]interface{}
// @Failure      400        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /vehicles/{vehicleID}/quote [get]
func (h *Handler) QuoteVehicle(c *gin.Context) {
	vehicleID, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	r, err := ParseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range"})
		return
	}

	amount, err := h.service.QuoteVehicle(c.Request.Context(), vehicleID, r)
	if err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute quote"})
		return
	}

	days := r.Days()
	c.JSON(http.StatusOK, gin.H{
		"vehicle_id": vehicleID,
		"days":       days,
		"advance":    amount,
	})
}

// SelectDates godoc
// @Summary      Start a booking by choosing rental dates
// @Description  Stores the dates in the cart. Changing dates drops any prior vehicle selection.
// @Tags         cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      selectDatesRequest  true  "Rental dates"
// @Success      200      {object}  cart.Cart
// @Failure      400      {object}  gin.H
// @Router       /cart/dates [post]
func (h *Handler) SelectDates(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req selectDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := ParseRange(req.StartDate, req.EndDate); err != nil {
		switch {
		case errors.Is(err, ErrInvalidDateFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be in YYYY-MM-DD format"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "End date must not be before start date"})
		}
		return
	}

	cartState, err := h.carts.SetDates(c.Request.Context(), userID, req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save dates"})
		return
	}

	c.JSON(http.StatusOK, cartState)
}

// SelectVehicle godoc
// @Summary      Choose a vehicle and enter personal details
// @Description  Second cart step; requires dates to have been selected.
// @Tags         cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      selectVehicleRequest  true  "Vehicle and personal details"
// @Success      200      {object}  cart.Cart
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /cart/selection [post]
func (h *Handler) SelectVehicle(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req selectVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cartState, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Select rental dates first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	r, err := ParseRange(cartState.RentalStart, cartState.RentalEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Select rental dates first"})
		return
	}

	// Advisory only; the authoritative check happens at checkout.
	available, err := h.service.CheckVehicle(c.Request.Context(), req.VehicleID, r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
		return
	}
	if !available {
		c.JSON(http.StatusConflict, gin.H{"error": "Vehicle is not available for the selected dates"})
		return
	}

	cartState, err = h.carts.SetSelection(c.Request.Context(), userID, cart.Selection{
		VehicleID:  req.VehicleID,
		GovID:      req.GovID,
		License:    req.License,
		StartPoint: req.StartPoint,
		EndPoint:   req.EndPoint,
	})
	if err != nil {
		if errors.Is(err, cart.ErrNoDates) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Select rental dates first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save selection"})
		return
	}

	c.JSON(http.StatusOK, cartState)
}

// GetCart godoc
// @Summary      Get the booking in progress
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  cart.Cart
// @Failure      404  {object}  gin.H
// @Router       /cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cartState, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No booking in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	c.JSON(http.StatusOK, cartState)
}

// Checkout godoc
// @Summary      Commit the booking in the cart
// @Description  Atomically reserves the vehicle for the selected dates. The cart is cleared on success.
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Success      201  {object}  Booking
// @Failure      400  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Failure      409  {object}  gin.H
// @Router       /checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cartState, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No booking in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	if !cartState.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Select dates and a vehicle before checkout"})
		return
	}

	r, err := ParseRange(cartState.RentalStart, cartState.RentalEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart holds an invalid date range"})
		return
	}

	sel := cartState.Selection
	booking, err := h.service.Reserve(c.Request.Context(), userID, sel.VehicleID, r, PersonalDetails{
		GovID:      sel.GovID,
		License:    sel.License,
		StartPoint: sel.StartPoint,
		EndPoint:   sel.EndPoint,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrVehicleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		case errors.Is(err, ErrDateConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Vehicle was booked by someone else for these dates"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete booking"})
		}
		return
	}

	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		// The booking is committed; a stale cart only costs the user a retry prompt.
		c.JSON(http.StatusCreated, booking)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListMyBookings godoc
// @Summary      List the current user's bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   BookingWithVehicle
// @Failure      401  {object}  gin.H
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookings, err := h.service.GetUserBookings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Description  Owner or admin only. Cancelling twice returns 409.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  gin.H
// @Failure      403        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Failure      409        {object}  gin.H
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), bookingID, userID, auth.IsAdmin(c)); err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only cancel your own bookings"})
		case errors.Is(err, ErrAlreadyCancelled):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking is already cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

// ListAllBookings godoc
// @Summary      List all bookings
// @Description  Admin view; optionally filtered by the booking owner's email.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        email  query     string  false  "Filter by user email"
// @Success      200    {array}   BookingWithVehicle
// @Router       /admin/bookings [get]
func (h *Handler) ListAllBookings(c *gin.Context) {
	email := c.Query("email")

	var (
		bookings []BookingWithVehicle
		err      error
	)
	if email != "" {
		bookings, err = h.service.GetBookingsByUserEmail(c.Request.Context(), email)
	} else {
		bookings, err = h.service.GetAllBookings(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ReconcileVehicle godoc
// @Summary      Recompute a vehicle's availability flag
// @Description  Re-derives the denormalized flag from the booking ledger.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        vehicleID  path      int  true  "Vehicle ID"
// @Success      200        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /admin/vehicles/{vehicleID}/reconcile [post]
func (h *Handler) ReconcileVehicle(c *gin.Context) {
	vehicleID, err := strconv.Atoi(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	if err := h.service.ReconcileVehicleFlag(c.Request.Context(), vehicleID); err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile vehicle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vehicle availability recomputed"})
}
