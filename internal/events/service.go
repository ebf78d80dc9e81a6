package events

import (
	"context"
	"fmt"
	"time"

	"eventixs/internal/shared/constants"
	"eventixs/pkg/cache"
	"eventixs/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	UpdateEventStatus(ctx context.Context, id uuid.UUID, target Status) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ListEvents(ctx context.Context, query ListEventsQuery) (*ListEventsResponse, error)
	GetUpcomingEvents(ctx context.Context, limit int) ([]EventResponse, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault(),
	}
}

func (s *service) CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	if !req.DateTime.After(time.Now()) {
		return nil, ErrEventDateInPast
	}

	venueID, err := uuid.Parse(req.VenueID)
	if err != nil {
		return nil, fmt.Errorf("invalid venue id: %w", err)
	}

	event := &Event{
		Name:             req.Name,
		Description:      req.Description,
		VenueID:          venueID,
		DateTime:         req.DateTime,
		TotalTickets:     req.TotalTickets,
		AvailableTickets: req.TotalTickets,
		TicketPrice:      req.TicketPrice,
		Status:           StatusDraft,
		CreatedBy:        userID,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.invalidateListCaches(ctx)
	s.log.Info("event created", "event_id", event.ID, "total_tickets", event.TotalTickets)

	resp := toEventResponse(event)
	return &resp, nil
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	cacheKey := constants.EventDetailKey(id.String())

	if s.cache != nil {
		var cached EventResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toEventResponse(event)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, constants.TTL_SEMI_STATIC_MEDIUM); err != nil {
			s.log.Warn("failed to cache event", "event_id", id, "error", err)
		}
	}
	return &resp, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.VenueID != nil {
		venueID, err := uuid.Parse(*req.VenueID)
		if err != nil {
			return nil, fmt.Errorf("invalid venue id: %w", err)
		}
		updates["venue_id"] = venueID
	}
	if req.DateTime != nil {
		if !req.DateTime.After(time.Now()) {
			return nil, ErrEventDateInPast
		}
		updates["date_time"] = *req.DateTime
	}
	if req.TicketPrice != nil {
		updates["ticket_price"] = *req.TicketPrice
	}

	if len(updates) == 0 {
		resp := toEventResponse(event)
		return &resp, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	s.invalidateEventCaches(ctx, id)
	return s.GetEventByID(ctx, id)
}

func (s *service) UpdateEventStatus(ctx context.Context, id uuid.UUID, target Status) (*EventResponse, error) {
	if !target.IsValid() {
		return nil, ErrInvalidStatus
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !event.Status.canTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, event.Status, target)
	}

	if err := s.repo.Update(ctx, id, map[string]interface{}{"status": target}); err != nil {
		return nil, err
	}

	s.invalidateEventCaches(ctx, id)
	s.log.Info("event status updated", "event_id", id, "from", event.Status, "to", target)
	return s.GetEventByID(ctx, id)
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// A published event with sold tickets must be cancelled, not deleted.
	if event.Status == StatusPublished && event.AvailableTickets < event.TotalTickets {
		return ErrEventHasBookings
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateEventCaches(ctx, id)
	s.log.Info("event deleted", "event_id", id)
	return nil
}

func (s *service) ListEvents(ctx context.Context, query ListEventsQuery) (*ListEventsResponse, error) {
	cacheKey := constants.EventListKey(query.Page, query.PageSize, query.Status, query.City)

	if s.cache != nil {
		var cached ListEventsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	events, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	resp := &ListEventsResponse{
		Events:     make([]EventResponse, 0, len(events)),
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	}
	for i := range events {
		resp.Events = append(resp.Events, toEventResponse(&events[i]))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, constants.TTL_SEMI_STATIC_SHORT); err != nil {
			s.log.Warn("failed to cache event list", "error", err)
		}
	}
	return resp, nil
}

func (s *service) GetUpcomingEvents(ctx context.Context, limit int) ([]EventResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	cacheKey := constants.UpcomingEventsKey(limit)
	if s.cache != nil {
		var cached []EventResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	events, err := s.repo.GetUpcoming(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, toEventResponse(&events[i]))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, responses, constants.TTL_SEMI_STATIC_QUICK); err != nil {
			s.log.Warn("failed to cache upcoming events", "error", err)
		}
	}
	return responses, nil
}

func (s *service) invalidateEventCaches(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.EventDetailKey(id.String())); err != nil {
		s.log.Warn("failed to invalidate event cache", "event_id", id, "error", err)
	}
	s.invalidateListCaches(ctx)
}

func (s *service) invalidateListCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_LISTS); err != nil {
		s.log.Warn("failed to invalidate event list caches", "error", err)
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_UPCOMING); err != nil {
		s.log.Warn("failed to invalidate upcoming events cache", "error", err)
	}
}
