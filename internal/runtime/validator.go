package runtime

import (
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
)

// IsAcceptable reports whether input satisfies the node's constraints.
// A nil input means the participant sent nothing.
func IsAcceptable(node *domain.Node, input *string) bool {
	if node == nil {
		return false
	}
	switch data := node.Data.(type) {
	case domain.InputData:
		if !data.IsRequired() {
			return true
		}
		return input != nil && strings.TrimSpace(*input) != ""
	case domain.ChoiceData:
		if !data.IsRequired() {
			return true
		}
		return input != nil && data.HasOption(*input)
	default:
		return true
	}
}

// invalidMessage is the error text shown when a node rejects its input.
func invalidMessage(node *domain.Node) string {
	if node.Kind == domain.KindChoice {
		return "Please choose one of the available options"
	}
	return "Please provide a valid answer"
}
