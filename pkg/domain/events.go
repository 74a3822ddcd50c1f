package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRender           EventType = "render"
	EventAdvance          EventType = "advance"
	EventValidationFailed EventType = "validation_failed"
	EventComplete         EventType = "complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	FormID        string    `json:"form_id"`
	ParticipantID string    `json:"participant_id,omitempty"`
}

// FlowEvent describes a step of the flow.
type FlowEvent struct {
	EventBase
	NodeID     string    `json:"node_id"`
	NodeKind   NodeKind  `json:"node_kind,omitempty"`
	FromNodeID string    `json:"from_node_id,omitempty"`
	State      FlowState `json:"state,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnRender           func(context.Context, *FlowEvent)
	OnAdvance          func(context.Context, *FlowEvent)
	OnValidationFailed func(context.Context, *FlowEvent)
	OnComplete         func(context.Context, *FlowEvent)
}
