package venues

import (
	"errors"
	"net/http"

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

func (ctrl *Controller) CreateVenue(c *gin.Context) {
	var req CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	venue, err := ctrl.service.CreateVenue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create venue", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, "Venue created successfully", venue)
}

func (ctrl *Controller) GetVenue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid venue id", nil)
		return
	}

	venue, err := ctrl.service.GetVenueByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			response.Error(c, http.StatusNotFound, "Venue not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to fetch venue", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Venue fetched successfully", venue)
}

func (ctrl *Controller) UpdateVenue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid venue id", nil)
		return
	}

	var req UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	venue, err := ctrl.service.UpdateVenue(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			response.Error(c, http.StatusNotFound, "Venue not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to update venue", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Venue updated successfully", venue)
}

func (ctrl *Controller) DeleteVenue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid venue id", nil)
		return
	}

	if err := ctrl.service.DeleteVenue(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			response.Error(c, http.StatusNotFound, "Venue not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to delete venue", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Venue deleted successfully", nil)
}

func (ctrl *Controller) ListVenues(c *gin.Context) {
	venues, err := ctrl.service.ListVenues(c.Request.Context(), c.Query("city"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list venues", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Venues fetched successfully", venues)
}
