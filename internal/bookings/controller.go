package bookings

import (
	"errors"
	"net/http"

	"eventixs/internal/events"
	"eventixs/internal/ledger"
	"eventixs/internal/shared/utils/response"
	"eventixs/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (ctrl *Controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	customerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), customerID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ledger.ErrInvalidQuantity):
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, events.ErrEventNotFound):
			response.Error(c, http.StatusNotFound, "Event not found", nil)
		case errors.Is(err, ErrEventNotBookable):
			response.Error(c, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, ledger.ErrInsufficientInventory):
			response.Error(c, http.StatusConflict, "Not enough tickets available", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to create booking", err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, "Booking created successfully", booking)
}

func (ctrl *Controller) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking id", nil)
		return
	}

	customerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), id, customerID, isAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "Booking not found", nil)
		case errors.Is(err, ErrNotBookingOwner):
			response.Error(c, http.StatusForbidden, "Access denied", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to fetch booking", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Booking fetched successfully", booking)
}

func (ctrl *Controller) ListBookings(c *gin.Context) {
	var query ListBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	customerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	// Admins see the whole ledger of bookings; customers see their own.
	var bookings *ListBookingsResponse
	var err error
	if isAdmin(c) {
		bookings, err = ctrl.service.ListAllBookings(c.Request.Context(), query)
	} else {
		bookings, err = ctrl.service.ListBookings(c.Request.Context(), customerID, query)
	}
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list bookings", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Bookings fetched successfully", bookings)
}

// ListCustomerBookings serves the per-customer read path. Customers may
// only read their own history; admins may read anyone's.
func (ctrl *Controller) ListCustomerBookings(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid customer id", nil)
		return
	}

	var query ListBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	callerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}
	if !isAdmin(c) && callerID != targetID {
		response.Error(c, http.StatusForbidden, "Access denied", nil)
		return
	}

	bookings, err := ctrl.service.ListBookings(c.Request.Context(), targetID, query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list bookings", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Bookings fetched successfully", bookings)
}

func (ctrl *Controller) UpdateBookingStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking id", nil)
		return
	}

	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	customerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	booking, err := ctrl.service.UpdateBookingStatus(c.Request.Context(), id, customerID, isAdmin(c), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "Booking not found", nil)
		case errors.Is(err, ErrNotBookingOwner):
			response.Error(c, http.StatusForbidden, "Access denied", nil)
		case errors.Is(err, ErrInvalidTransition):
			response.Error(c, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, ErrBookingExpired):
			response.Error(c, http.StatusGone, err.Error(), nil)
		case errors.Is(err, ErrCancelAfterEvent):
			response.Error(c, http.StatusConflict, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to update booking", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Booking updated successfully", booking)
}

func (ctrl *Controller) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking id", nil)
		return
	}

	customerID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	booking, err := ctrl.service.CancelBooking(c.Request.Context(), id, customerID, isAdmin(c), c.Query("reason"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "Booking not found", nil)
		case errors.Is(err, ErrNotBookingOwner):
			response.Error(c, http.StatusForbidden, "Access denied", nil)
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrCancelAfterEvent):
			response.Error(c, http.StatusConflict, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to cancel booking", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Booking cancelled successfully", booking)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("user_role") == string(users.RoleAdmin)
}
