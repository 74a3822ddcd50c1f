package domain

// ActionDescriptor is the client-facing description of the next step of a form.
// Its JSON shape is a wire contract.
type ActionDescriptor struct {
	Icon        string       `json:"icon"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Label       string       `json:"label"`
	Links       ActionLinks  `json:"links"`
	Error       *ActionError `json:"error,omitempty"`
}

// ActionLinks groups the follow-up actions of a descriptor.
type ActionLinks struct {
	Actions []LinkedAction `json:"actions"`
}

// LinkedAction is a single button the client can press.
type LinkedAction struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// ActionError carries a validation message back to the participant.
type ActionError struct {
	Message string `json:"message"`
}
