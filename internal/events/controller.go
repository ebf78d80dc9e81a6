package events

import (
	"errors"
	"net/http"
	"strconv"

	"eventixs/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (ctrl *Controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user context", nil)
		return
	}

	event, err := ctrl.service.CreateEvent(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrEventDateInPast) {
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to create event", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, "Event created successfully", event)
}

func (ctrl *Controller) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event id", nil)
		return
	}

	event, err := ctrl.service.GetEventByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.Error(c, http.StatusNotFound, "Event not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to fetch event", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Event fetched successfully", event)
}

func (ctrl *Controller) UpdateEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event id", nil)
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	event, err := ctrl.service.UpdateEvent(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.Error(c, http.StatusNotFound, "Event not found", nil)
		case errors.Is(err, ErrEventDateInPast):
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to update event", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Event updated successfully", event)
}

func (ctrl *Controller) UpdateEventStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event id", nil)
		return
	}

	var req UpdateEventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	event, err := ctrl.service.UpdateEventStatus(c.Request.Context(), id, Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.Error(c, http.StatusNotFound, "Event not found", nil)
		case errors.Is(err, ErrInvalidStatus):
			response.Error(c, http.StatusConflict, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to update event status", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Event status updated successfully", event)
}

func (ctrl *Controller) DeleteEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event id", nil)
		return
	}

	if err := ctrl.service.DeleteEvent(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.Error(c, http.StatusNotFound, "Event not found", nil)
		case errors.Is(err, ErrEventHasBookings):
			response.Error(c, http.StatusConflict, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to delete event", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, "Event deleted successfully", nil)
}

func (ctrl *Controller) ListEvents(c *gin.Context) {
	var query ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	events, err := ctrl.service.ListEvents(c.Request.Context(), query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list events", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Events fetched successfully", events)
}

func (ctrl *Controller) GetUpcomingEvents(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := ctrl.service.GetUpcomingEvents(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to fetch upcoming events", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Upcoming events fetched successfully", events)
}
