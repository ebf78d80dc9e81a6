package ledger

import (
	"context"
	"fmt"
	"time"

	"eventixs/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AvailabilityGate keeps a best-effort copy of each event's available
// ticket count in Redis so sold-out traffic is shed before it reaches the
// Postgres critical section. Postgres stays authoritative: a gate miss or
// any Redis error falls through to the database path.
type AvailabilityGate struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewAvailabilityGate creates a gate over the given Redis client.
func NewAvailabilityGate(redisClient *redis.Client, ttl time.Duration) *AvailabilityGate {
	return &AvailabilityGate{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Lua script for the gate check-and-decrement - a plain GET+DECRBY pair
// would race between concurrent reserves.
const luaGateAcquire = `
-- KEYS[1] = availability key
-- ARGV[1] = requested quantity

local key = KEYS[1]
local qty = tonumber(ARGV[1])

if redis.call("EXISTS", key) == 0 then
    return -2
end

local available = tonumber(redis.call("GET", key))
if available < qty then
    return -1
end

return redis.call("DECRBY", key, qty)
`

// Lua script for rolling a gate decrement back after a database failure.
const luaGateRollback = `
-- KEYS[1] = availability key
-- ARGV[1] = quantity to return

local key = KEYS[1]
if redis.call("EXISTS", key) == 0 then
    return 0
end

return redis.call("INCRBY", key, tonumber(ARGV[1]))
`

// gate outcomes
const (
	gateUnknown      = -2
	gateInsufficient = -1
)

// TryAcquire attempts to take quantity tickets out of the gate counter.
// ok=false with known=true means the gate is certain the event cannot
// satisfy the request; known=false means the gate has no opinion and the
// caller must consult the database.
func (g *AvailabilityGate) TryAcquire(ctx context.Context, eventID uuid.UUID, quantity int) (ok bool, known bool, err error) {
	if g == nil || g.redis == nil {
		return false, false, nil
	}

	key := constants.AvailabilityKey(eventID.String())

	result, err := g.redis.EvalSha(ctx, luaGateAcquire, []string{key}, quantity).Result()
	if err != nil {
		// Script not cached yet - load and execute.
		result, err = g.redis.Eval(ctx, luaGateAcquire, []string{key}, quantity).Result()
		if err != nil {
			return false, false, fmt.Errorf("gate acquire: %w", err)
		}
	}

	code, okType := result.(int64)
	if !okType {
		return false, false, fmt.Errorf("unexpected gate result type %T", result)
	}

	switch code {
	case gateUnknown:
		return false, false, nil
	case gateInsufficient:
		return false, true, nil
	default:
		return true, true, nil
	}
}

// Rollback returns quantity tickets to the gate after a failed database
// reservation. Best effort: a missing key is left missing.
func (g *AvailabilityGate) Rollback(ctx context.Context, eventID uuid.UUID, quantity int) error {
	if g == nil || g.redis == nil {
		return nil
	}

	key := constants.AvailabilityKey(eventID.String())

	_, err := g.redis.EvalSha(ctx, luaGateRollback, []string{key}, quantity).Result()
	if err != nil {
		_, err = g.redis.Eval(ctx, luaGateRollback, []string{key}, quantity).Result()
		if err != nil {
			return fmt.Errorf("gate rollback: %w", err)
		}
	}
	return nil
}

// Sync overwrites the gate counter with the authoritative availability
// from the database.
func (g *AvailabilityGate) Sync(ctx context.Context, eventID uuid.UUID, available int) error {
	if g == nil || g.redis == nil {
		return nil
	}

	key := constants.AvailabilityKey(eventID.String())
	if err := g.redis.Set(ctx, key, available, g.ttl).Err(); err != nil {
		return fmt.Errorf("gate sync: %w", err)
	}
	return nil
}

// PreloadScripts loads the gate scripts into the Redis script cache so the
// first reservation doesn't pay the EVAL round trip.
func (g *AvailabilityGate) PreloadScripts(ctx context.Context) error {
	if g == nil || g.redis == nil {
		return nil
	}

	for _, script := range []string{luaGateAcquire, luaGateRollback} {
		if err := g.redis.ScriptLoad(ctx, script).Err(); err != nil {
			return fmt.Errorf("failed to preload gate script: %w", err)
		}
	}
	return nil
}
