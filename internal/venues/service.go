package venues

import (
	"context"
	"fmt"

	"eventixs/internal/shared/constants"
	"eventixs/pkg/cache"
	"eventixs/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error)
	GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	UpdateVenue(ctx context.Context, id uuid.UUID, req UpdateVenueRequest) (*Venue, error)
	DeleteVenue(ctx context.Context, id uuid.UUID) error
	ListVenues(ctx context.Context, city string) ([]Venue, error)
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

func (s *service) CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	venue := &Venue{
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		Capacity: req.Capacity,
	}

	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	s.invalidateCaches(ctx, venue.ID)
	s.log.Info("venue created", "venue_id", venue.ID, "name", venue.Name)
	return venue, nil
}

func (s *service) GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	cacheKey := constants.VenueDetailKey(id.String())

	if s.cache != nil {
		var cached Venue
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	venue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, venue, constants.TTL_SEMI_STATIC_SHORT); err != nil {
			s.log.Warn("failed to cache venue", "venue_id", id, "error", err)
		}
	}
	return venue, nil
}

func (s *service) UpdateVenue(ctx context.Context, id uuid.UUID, req UpdateVenueRequest) (*Venue, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
		s.invalidateCaches(ctx, id)
	}

	return s.repo.GetByID(ctx, id)
}

func (s *service) DeleteVenue(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCaches(ctx, id)
	s.log.Info("venue deleted", "venue_id", id)
	return nil
}

func (s *service) ListVenues(ctx context.Context, city string) ([]Venue, error) {
	return s.repo.List(ctx, city)
}

func (s *service) invalidateCaches(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.VenueDetailKey(id.String())); err != nil {
		s.log.Warn("failed to invalidate venue cache", "venue_id", id, "error", err)
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_VENUE_ALL); err != nil {
		s.log.Warn("failed to invalidate venue list caches", "error", err)
	}
}
