package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Matcher finds the triggers a domain event activates
type Matcher struct {
	storage Storage
}

// NewMatcher creates a trigger matcher over the given storage
func NewMatcher(storage Storage) *Matcher {
	return &Matcher{storage: storage}
}

// FindMatchingTriggers returns the tenant's active triggers whose
// (module, event) pair matches the incoming event and whose conditions,
// if any, evaluate true against the payload. Results come back in
// stable trigger-id order. A trigger with malformed stored conditions
// is dropped (and logged) rather than failing the whole match.
func (m *Matcher) FindMatchingTriggers(ctx context.Context, event Event) ([]TriggerMatch, error) {
	candidates, err := m.storage.FindMatchingTriggers(ctx, event.TenantID, event.Module, event.Event)
	if err != nil {
		return nil, fmt.Errorf("failed to load triggers for %s/%s: %w", event.Module, event.Event, err)
	}

	matches := make([]TriggerMatch, 0, len(candidates))
	for _, candidate := range candidates {
		cond, err := ParseConditions(candidate.Trigger.TriggerConditions)
		if err != nil {
			log.Warn().
				Err(err).
				Str("trigger_id", candidate.Trigger.ID.String()).
				Str("workflow_id", candidate.Workflow.ID.String()).
				Msg("skipping trigger with malformed conditions")
			continue
		}
		if !Evaluate(cond, event.Data) {
			continue
		}
		matches = append(matches, candidate)
	}
	return matches, nil
}
