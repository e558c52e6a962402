package quota

import (
	"context"
	"fmt"
)

// DefaultCeiling is the number of successful generations allowed before an upgrade is required
const DefaultCeiling = 10

// State is the quota counter for one identity.
// 0..ceiling-1 is under limit, ceiling and above is exhausted.
type State struct {
	Count int
}

// Increment returns the state after one successful generation.
func Increment(s State) State {
	return State{Count: s.Count + 1}
}

// Check reports whether another generation is allowed under ceiling.
func Check(s State, ceiling int) bool {
	return s.Count < ceiling
}

// Store is a keyed counter. Implementations never decrease a counter.
type Store interface {
	Get(ctx context.Context, key string) (int, error)
	Incr(ctx context.Context, key string) (int, error)
}

// Usage summarises quota consumption for one identity
type Usage struct {
	Used      int
	Limit     int
	Remaining int
}

// Tracker counts successful generations per identity against a fixed ceiling
type Tracker struct {
	store   Store
	ceiling int
}

// NewTracker creates a tracker over store. A non-positive ceiling means DefaultCeiling.
func NewTracker(store Store, ceiling int) *Tracker {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Tracker{store: store, ceiling: ceiling}
}

// Ceiling returns the configured ceiling
func (t *Tracker) Ceiling() int {
	return t.ceiling
}

// State loads the current counter for identityID
func (t *Tracker) State(ctx context.Context, identityID string) (State, error) {
	count, err := t.store.Get(ctx, key(identityID))
	if err != nil {
		return State{}, fmt.Errorf("failed to read quota: %w", err)
	}
	return State{Count: count}, nil
}

// Allowed reports whether identityID may generate once more
func (t *Tracker) Allowed(ctx context.Context, identityID string) (bool, error) {
	s, err := t.State(ctx, identityID)
	if err != nil {
		return false, err
	}
	return Check(s, t.ceiling), nil
}

// Record counts one successful generation and returns the new state.
// Call it only after the generation succeeded.
func (t *Tracker) Record(ctx context.Context, identityID string) (State, error) {
	count, err := t.store.Incr(ctx, key(identityID))
	if err != nil {
		return State{}, fmt.Errorf("failed to increment quota: %w", err)
	}
	return State{Count: count}, nil
}

// Usage returns used/limit/remaining for identityID
func (t *Tracker) Usage(ctx context.Context, identityID string) (*Usage, error) {
	s, err := t.State(ctx, identityID)
	if err != nil {
		return nil, err
	}

	remaining := t.ceiling - s.Count
	if remaining < 0 {
		remaining = 0
	}

	return &Usage{
		Used:      s.Count,
		Limit:     t.ceiling,
		Remaining: remaining,
	}, nil
}

func key(identityID string) string {
	return "quota:generations:" + identityID
}
