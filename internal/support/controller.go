package support

import (
	"errors"
	"net/http"

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

func (ctrl *Controller) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	customerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	ticket, err := ctrl.service.CreateTicket(c.Request.Context(), customerID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create ticket", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, "Ticket created successfully", ticket)
}

func (ctrl *Controller) GetTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid ticket id", nil)
		return
	}

	customerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	isAdmin := c.GetString("user_role") == string(users.RoleAdmin)
	ticket, err := ctrl.service.GetTicket(c.Request.Context(), id, customerID, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrTicketNotFound):
			response.Error(c, http.StatusNotFound, "Ticket not found", nil)
		case errors.Is(err, ErrNotTicketOwner):
			response.Error(c, http.StatusForbidden, "Access denied", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to fetch ticket", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Ticket fetched successfully", ticket)
}

func (ctrl *Controller) ListMyTickets(c *gin.Context) {
	customerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	tickets, err := ctrl.service.ListMyTickets(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list tickets", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Tickets fetched successfully", tickets)
}

func (ctrl *Controller) ListTickets(c *gin.Context) {
	tickets, err := ctrl.service.ListTickets(c.Request.Context(), TicketStatus(c.Query("status")))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list tickets", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Tickets fetched successfully", tickets)
}

func (ctrl *Controller) UpdateTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid ticket id", nil)
		return
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	ticket, err := ctrl.service.UpdateTicket(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			response.Error(c, http.StatusNotFound, "Ticket not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to update ticket", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Ticket updated successfully", ticket)
}
