package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/formflow/pkg/domain"
)

// Combine fans every event out to all the given hook sets, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	pick := func(get func(domain.LifecycleHooks) func(context.Context, *domain.FlowEvent)) func(context.Context, *domain.FlowEvent) {
		var fns []func(context.Context, *domain.FlowEvent)
		for _, s := range sets {
			if fn := get(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(ctx context.Context, e *domain.FlowEvent) {
			for _, fn := range fns {
				fn(ctx, e)
			}
		}
	}
	return domain.LifecycleHooks{
		OnRender:           pick(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnRender }),
		OnAdvance:          pick(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnAdvance }),
		OnValidationFailed: pick(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnValidationFailed }),
		OnComplete:         pick(func(h domain.LifecycleHooks) func(context.Context, *domain.FlowEvent) { return h.OnComplete }),
	}
}

// LoggingHooks writes an audit line per transition.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(ctx context.Context, e *domain.FlowEvent) {
		logger.InfoContext(ctx, string(e.Type),
			"form_id", e.FormID,
			"participant_id", e.ParticipantID,
			"node_id", e.NodeID,
			"from_node_id", e.FromNodeID,
		)
	}
	return domain.LifecycleHooks{
		OnAdvance:          log,
		OnValidationFailed: log,
		OnComplete:         log,
	}
}
