package formflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/internal/runtime"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/aretw0/formflow/pkg/session"
)

// ErrNoLoader is returned by New when no schema loader is given.
var ErrNoLoader = errors.New("formflow: a schema loader is required")

// Engine is the high-level entry point for the formflow library.
// It wraps the internal runtime and the session tracker behind a small API.
type Engine struct {
	runtime *runtime.Engine
	loader  ports.SchemaLoader
	store   ports.KVStore
	tracker *session.Tracker

	sessionTTL time.Duration
	icon       string
	basePath   string
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore keeps participant positions in store. The default is an in-memory store.
func WithStore(store ports.KVStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithSessionTTL sets how long an untouched position is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.sessionTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithIcon sets the icon URL of every descriptor.
func WithIcon(icon string) Option {
	return func(e *Engine) {
		e.icon = icon
	}
}

// WithBasePath sets the route prefix used in action hrefs.
func WithBasePath(path string) Option {
	return func(e *Engine) {
		e.basePath = path
	}
}

// WithLocker serializes submissions of the same participant.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// New initializes an Engine reading forms from loader.
func New(loader ports.SchemaLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, ErrNoLoader
	}
	eng := &Engine{
		loader:     loader,
		sessionTTL: session.DefaultTTL,
		basePath:   runtime.DefaultBasePath,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	eng.tracker = session.NewTracker(eng.store,
		session.WithTTL(eng.sessionTTL),
		session.WithLogger(eng.logger),
	)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithRenderer(runtime.NewRenderer(eng.icon, eng.basePath)),
	}
	if eng.locker != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLocker(eng.locker, eng.lockTTL))
	}
	eng.runtime = runtime.NewEngine(eng.loader, eng.tracker, runtimeOpts...)

	return eng, nil
}

// Handle processes one participant interaction and returns the descriptor to show.
func (e *Engine) Handle(ctx context.Context, req domain.Request) (*domain.Response, error) {
	return e.runtime.Handle(ctx, req)
}

// Complete returns the completion descriptor of a form.
func (e *Engine) Complete(ctx context.Context, formID string) (*domain.Response, error) {
	return e.runtime.Complete(ctx, formID)
}

// Inspect returns the stored form definition.
func (e *Engine) Inspect(ctx context.Context, formID string) (*domain.Form, error) {
	return e.runtime.Inspect(ctx, formID)
}

// Position returns the node a participant currently stands on.
func (e *Engine) Position(ctx context.Context, formID, participantID string) (string, error) {
	form, err := e.runtime.Inspect(ctx, formID)
	if err != nil {
		return "", err
	}
	entry, ok := runtime.EntryNode(&form.Schema)
	if !ok {
		return "", fmt.Errorf("form %s has no entry node: %w", formID, domain.ErrNodeNotFound)
	}
	return e.tracker.GetCurrentNode(ctx, formID, participantID, entry.ID)
}

// ResetSession forgets a participant's position; the next request starts at the entry node.
func (e *Engine) ResetSession(ctx context.Context, formID, participantID string) error {
	return e.tracker.Reset(ctx, formID, participantID)
}

// Participants lists the participants with a stored position in formID.
// The store must support key listing.
func (e *Engine) Participants(ctx context.Context, formID string) ([]string, error) {
	return e.tracker.Participants(ctx, formID)
}

// Loader returns the schema loader used by the engine.
func (e *Engine) Loader() ports.SchemaLoader {
	return e.loader
}
