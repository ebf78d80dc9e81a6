package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// Centralizes Redis cache keys and TTL values for the Eventixs backend.
// Pattern: eventixs:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // event details
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // event listings, venues
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // upcoming events
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_SHORT = 5 * time.Minute // ticket availability gate
	TTL_DYNAMIC_QUICK = 2 * time.Minute // booking lookups
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "eventixs"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST     = CACHE_PREFIX + ":events:list"         // + :page:X:limit:Y:status:Z
	CACHE_KEY_EVENTS_UPCOMING = CACHE_PREFIX + ":events:upcoming"     // + :limit:X
	CACHE_KEY_EVENT_DETAIL    = CACHE_PREFIX + ":events:detail:uuid:" // + event-id

	PATTERN_INVALIDATE_EVENT_ALL      = CACHE_PREFIX + ":events:*"
	PATTERN_INVALIDATE_EVENT_LISTS    = CACHE_PREFIX + ":events:list:*"
	PATTERN_INVALIDATE_EVENT_UPCOMING = CACHE_PREFIX + ":events:upcoming:*"
)

// ================== VENUES MODULE ==================

const (
	CACHE_KEY_VENUES_LIST  = CACHE_PREFIX + ":venues:list"
	CACHE_KEY_VENUE_DETAIL = CACHE_PREFIX + ":venues:detail:uuid:" // + venue-id

	PATTERN_INVALIDATE_VENUE_ALL = CACHE_PREFIX + ":venues:*"
)

// ================== LEDGER MODULE ==================

// The availability gate keeps a best-effort copy of each event's
// available ticket count so sold-out traffic is shed before Postgres.
const (
	KEY_LEDGER_AVAILABILITY = CACHE_PREFIX + ":ledger:availability:uuid:" // + event-id
)

// ================== RATE LIMITING ==================

const (
	KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit" // + :type:ip
)

// EventDetailKey builds the cache key for a single event.
func EventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

// EventListKey builds the cache key for a paginated event listing.
func EventListKey(page, limit int, status, city string) string {
	return fmt.Sprintf("%s:page:%d:limit:%d:status:%s:city:%s", CACHE_KEY_EVENTS_LIST, page, limit, status, city)
}

// UpcomingEventsKey builds the cache key for the upcoming events listing.
func UpcomingEventsKey(limit int) string {
	return fmt.Sprintf("%s:limit:%d", CACHE_KEY_EVENTS_UPCOMING, limit)
}

// VenueDetailKey builds the cache key for a single venue.
func VenueDetailKey(venueID string) string {
	return CACHE_KEY_VENUE_DETAIL + venueID
}

// AvailabilityKey builds the ledger availability gate key for an event.
func AvailabilityKey(eventID string) string {
	return KEY_LEDGER_AVAILABILITY + eventID
}
