package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/aretw0/formflow/pkg/session"
)

// DefaultLockTTL bounds how long a participant lock may be held.
const DefaultLockTTL = 10 * time.Second

// Engine orchestrates one request at a time: it loads the schema and the participant's
// position, validates, navigates and renders. It holds no per-participant state.
type Engine struct {
	loader   ports.SchemaLoader
	tracker  *session.Tracker
	renderer *Renderer
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *Renderer) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLocker serializes submissions of the same participant.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.locker = locker
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// NewEngine creates an engine reading schemas from loader and positions from tracker.
func NewEngine(loader ports.SchemaLoader, tracker *session.Tracker, opts ...EngineOption) *Engine {
	e := &Engine{
		loader:   loader,
		tracker:  tracker,
		renderer: NewRenderer("", DefaultBasePath),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one participant interaction.
func (e *Engine) Handle(ctx context.Context, req domain.Request) (*domain.Response, error) {
	form, err := e.Inspect(ctx, req.FormID)
	if err != nil {
		return nil, err
	}
	schema := &form.Schema
	renderer := e.renderer.ForForm(form.ID)
	log := e.logger.With("form_id", form.ID, "participant_id", req.ParticipantID)

	entry, ok := EntryNode(schema)
	if !ok {
		return nil, fmt.Errorf("form %s has no entry node: %w", form.ID, domain.ErrNodeNotFound)
	}

	if req.ParticipantID == "" {
		return e.respond(ctx, req, domain.StateAtEntry, entry,
			renderer.Render(form.Title, entry, nextID(schema, entry.ID))), nil
	}

	if req.Submit && e.locker != nil {
		unlock, err := e.locker.Lock(ctx, session.Key(form.ID, req.ParticipantID), e.lockTTL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("lock participant: %w", err)
			}
			log.Error("failed to lock participant", "error", err)
			return nil, fmt.Errorf("%w: lock participant: %w", domain.ErrStoreUnavailable, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warn("failed to release participant lock", "error", err)
			}
		}()
	}

	currentID, err := e.tracker.GetCurrentNode(ctx, form.ID, req.ParticipantID, entry.ID)
	if err != nil {
		log.Error("failed to read position", "error", err)
		return nil, err
	}
	current, ok := FindNode(schema, currentID)
	if !ok {
		return nil, fmt.Errorf("stored position %q of form %s: %w", currentID, form.ID, domain.ErrNodeNotFound)
	}
	if req.NodeID != "" && req.NodeID != current.ID {
		log.Debug("client answered a different node than the stored position",
			"node_id", current.ID, "client_node_id", req.NodeID)
	}

	if !req.Submit {
		return e.respond(ctx, req, domain.StateAwaitingInput, current,
			renderer.Render(form.Title, current, nextID(schema, current.ID))), nil
	}

	if !IsAcceptable(current, req.Input) {
		log.Info("input rejected", "node_id", current.ID)
		e.emit(ctx, e.hooks.OnValidationFailed, domain.EventValidationFailed, req, current, "", domain.StateInvalid)
		desc := renderer.RenderInvalid(form.Title, current, nextID(schema, current.ID), invalidMessage(current))
		return e.respond(ctx, req, domain.StateInvalid, current, desc), nil
	}

	next, ok := NextNode(schema, current.ID)
	if !ok {
		log.Debug("flow completed", "node_id", current.ID)
		e.emit(ctx, e.hooks.OnComplete, domain.EventComplete, req, current, "", domain.StateTerminal)
		return e.respond(ctx, req, domain.StateTerminal, current, renderer.RenderCompletion(form.Title)), nil
	}

	if err := e.tracker.Advance(ctx, form.ID, req.ParticipantID, next.ID); err != nil {
		log.Error("failed to store position", "node_id", next.ID, "error", err)
		return nil, err
	}
	log.Debug("advanced", "from_node_id", current.ID, "node_id", next.ID)
	e.emit(ctx, e.hooks.OnAdvance, domain.EventAdvance, req, next, current.ID, domain.StateAdvanced)

	return e.respond(ctx, req, domain.StateAdvanced, next,
		renderer.Render(form.Title, next, nextID(schema, next.ID))), nil
}

// Complete returns the completion descriptor of a form.
func (e *Engine) Complete(ctx context.Context, formID string) (*domain.Response, error) {
	form, err := e.Inspect(ctx, formID)
	if err != nil {
		return nil, err
	}
	return &domain.Response{
		State:      domain.StateTerminal,
		Descriptor: e.renderer.ForForm(form.ID).RenderCompletion(form.Title),
	}, nil
}

// Inspect loads the form definition.
func (e *Engine) Inspect(ctx context.Context, formID string) (*domain.Form, error) {
	form, err := e.loader.Load(ctx, formID)
	if err != nil {
		if errors.Is(err, domain.ErrFormNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load form %s: %w", formID, err)
	}
	if form == nil {
		return nil, fmt.Errorf("form %s: %w", formID, domain.ErrFormNotFound)
	}
	return form, nil
}

func (e *Engine) respond(ctx context.Context, req domain.Request, state domain.FlowState, node *domain.Node, desc domain.ActionDescriptor) *domain.Response {
	e.emit(ctx, e.hooks.OnRender, domain.EventRender, req, node, "", state)
	return &domain.Response{State: state, NodeID: node.ID, Descriptor: desc}
}

func (e *Engine) emit(ctx context.Context, hook func(context.Context, *domain.FlowEvent), typ domain.EventType, req domain.Request, node *domain.Node, from string, state domain.FlowState) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.FlowEvent{
		EventBase: domain.EventBase{
			Timestamp:     e.now(),
			Type:          typ,
			FormID:        req.FormID,
			ParticipantID: req.ParticipantID,
		},
		NodeID:     node.ID,
		NodeKind:   node.Kind,
		FromNodeID: from,
		State:      state,
	})
}
