package payments

import (
	"errors"
	"net/http"

	"eventixs/internal/bookings"
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

func (ctrl *Controller) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	customerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	payment, err := ctrl.service.InitiatePayment(c.Request.Context(), customerID, req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "Booking not found", nil)
		case errors.Is(err, ErrNotPaymentOwner):
			response.Error(c, http.StatusForbidden, "Access denied", nil)
		case errors.Is(err, ErrBookingNotPayable):
			response.Error(c, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, ErrAmountMismatch):
			response.Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to initiate payment", err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, "Payment initiated successfully", payment)
}

// STKPush opens a mobile-money charge pushed to the customer's handset.
// The call only opens the attempt; the outcome arrives on the webhook.
func (ctrl *Controller) STKPush(c *gin.Context) {
	var req STKPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	customerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	payment, err := ctrl.service.InitiatePayment(c.Request.Context(), customerID, InitiatePaymentRequest{
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Method:    "MOBILE_MONEY",
		Phone:     req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "Booking not found", nil)
		case errors.Is(err, ErrNotPaymentOwner):
			response.Error(c, http.StatusForbidden, "Access denied", nil)
		case errors.Is(err, ErrBookingNotPayable):
			response.Error(c, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, ErrAmountMismatch):
			response.Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to initiate payment", err.Error())
		}
		return
	}

	response.Success(c, http.StatusAccepted, "Push sent, awaiting customer confirmation", payment)
}

// GatewayCallback receives asynchronous settlement outcomes from the
// payment provider. It always answers 200 for processed or replayed
// callbacks so the provider stops retrying.
func (ctrl *Controller) GatewayCallback(c *gin.Context) {
	var req GatewayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid callback payload", err.Error())
		return
	}

	if err := ctrl.service.HandleGatewayCallback(c.Request.Context(), req); err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			response.Error(c, http.StatusNotFound, "Unknown gateway reference", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to process callback", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Callback processed", nil)
}

func (ctrl *Controller) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payment id", nil)
		return
	}

	customerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	payment, err := ctrl.service.GetPayment(c.Request.Context(), id, customerID, isAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			response.Error(c, http.StatusNotFound, "Payment not found", nil)
		case errors.Is(err, ErrNotPaymentOwner):
			response.Error(c, http.StatusForbidden, "Access denied", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to fetch payment", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Payment fetched successfully", payment)
}

func (ctrl *Controller) ListBookingPayments(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking id", nil)
		return
	}

	customerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	list, err := ctrl.service.ListBookingPayments(c.Request.Context(), bookingID, customerID, isAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "Booking not found", nil)
		case errors.Is(err, ErrNotPaymentOwner):
			response.Error(c, http.StatusForbidden, "Access denied", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to list payments", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Payments fetched successfully", list)
}

func isAdmin(c *gin.Context) bool {
	return c.GetString("user_role") == string(users.RoleAdmin)
}
