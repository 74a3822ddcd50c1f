package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/tidwall/gjson"
)

// DefaultTTL is how long an untouched position is kept.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "session:"

// formEscaper keeps the form segment free of the ':' separator, so the prefix
// of one form never matches the keys of another.
var formEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key returns the store key of a participant's position.
func Key(formID, participantID string) string {
	return keyPrefix + formEscaper.Replace(formID) + ":" + participantID
}

// Tracker maps (form, participant) pairs to the participant's current node.
type Tracker struct {
	store  ports.KVStore
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Tracker.
type Option func(*Tracker)

// WithTTL sets the expiry applied on every advance.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		t.ttl = ttl
	}
}

// WithLogger configures a logger for the Tracker.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker creates a Tracker over the given store.
func NewTracker(store ports.KVStore, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		ttl:    DefaultTTL,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetCurrentNode returns the participant's current node, or entryID when there is no
// usable record. An empty participantID means no tracking.
func (t *Tracker) GetCurrentNode(ctx context.Context, formID, participantID, entryID string) (string, error) {
	if participantID == "" {
		return entryID, nil
	}
	key := Key(formID, participantID)
	raw, err := t.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return entryID, nil
		}
		return "", fmt.Errorf("%w: get %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	if !gjson.Valid(raw) {
		t.logger.Warn("discarding malformed position", "key", key)
		return entryID, nil
	}
	current := gjson.Get(raw, "currentNodeId")
	if current.Type != gjson.String || current.Str == "" {
		t.logger.Warn("position has no current node", "key", key)
		return entryID, nil
	}
	return current.Str, nil
}

// Advance moves the participant to nodeID and refreshes the expiry.
func (t *Tracker) Advance(ctx context.Context, formID, participantID, nodeID string) error {
	if participantID == "" {
		return nil
	}
	value, err := json.Marshal(domain.Position{CurrentNodeID: nodeID})
	if err != nil {
		return fmt.Errorf("encode position: %w", err)
	}
	key := Key(formID, participantID)
	if err := t.store.Set(ctx, key, string(value), t.ttl); err != nil {
		return fmt.Errorf("%w: set %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	return nil
}

// Reset forgets the participant's position.
func (t *Tracker) Reset(ctx context.Context, formID, participantID string) error {
	key := Key(formID, participantID)
	if err := t.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: delete %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	return nil
}

// Participants lists the participants with a live position in formID.
// It requires a store implementing ports.KeyLister.
func (t *Tracker) Participants(ctx context.Context, formID string) ([]string, error) {
	lister, ok := t.store.(ports.KeyLister)
	if !ok {
		return nil, fmt.Errorf("session store %T cannot list keys", t.store)
	}
	prefix := Key(formID, "")
	keys, err := lister.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrStoreUnavailable, prefix, err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k[len(prefix):])
	}
	return ids, nil
}
