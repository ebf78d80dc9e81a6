package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusDraft, StatusPublished, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusCompleted, false},
		{StatusPublished, StatusCancelled, true},
		{StatusPublished, StatusCompleted, true},
		{StatusPublished, StatusDraft, false},
		{StatusCancelled, StatusPublished, false},
		{StatusCompleted, StatusPublished, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.canTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestEventIsBookable(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	assert.True(t, (&Event{Status: StatusPublished, DateTime: future}).IsBookable(now))
	assert.False(t, (&Event{Status: StatusDraft, DateTime: future}).IsBookable(now), "drafts are not on sale")
	assert.False(t, (&Event{Status: StatusPublished, DateTime: past}).IsBookable(now), "past events are closed")
	assert.False(t, (&Event{Status: StatusCancelled, DateTime: future}).IsBookable(now))
}
