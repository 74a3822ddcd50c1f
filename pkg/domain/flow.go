package domain

// Position is the persisted record of a participant's place in a form.
type Position struct {
	CurrentNodeID string `json:"currentNodeId"`
}

// FlowState is the outcome of handling one request.
type FlowState string

const (
	// StateAtEntry: an anonymous request was answered with the entry node.
	StateAtEntry FlowState = "at_entry"
	// StateAwaitingInput: the current node was rendered without a submission.
	StateAwaitingInput FlowState = "awaiting_input"
	// StateInvalid: the submission was rejected; the node is re-rendered with an error.
	StateInvalid FlowState = "invalid"
	// StateAdvanced: the submission was accepted and the position moved.
	StateAdvanced FlowState = "advanced"
	// StateTerminal: the accepted node had no outgoing edge.
	StateTerminal FlowState = "terminal"
)

// Request is one interaction of a participant with a form.
type Request struct {
	FormID        string
	ParticipantID string
	// Submit distinguishes an answer from a plain render.
	Submit bool
	// Input is nil when the participant sent no value at all.
	Input *string
	// NodeID is the node the client believes it is answering. Informational only.
	NodeID string
}

// Response is the result of handling a Request.
type Response struct {
	State      FlowState        `json:"state"`
	NodeID     string           `json:"nodeId,omitempty"`
	Descriptor ActionDescriptor `json:"descriptor"`
}
