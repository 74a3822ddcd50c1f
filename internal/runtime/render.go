package runtime

import (
	"net/url"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
)

const (
	// EndSentinel is encoded in hrefs when a node has no successor.
	EndSentinel = "end"

	// DefaultBasePath is the prefix of form action routes.
	DefaultBasePath = "/api/actions/forms"

	defaultDescription   = "Complete the form"
	defaultCompletion    = "Thank you for completing the form!"
	defaultSubmitLabel   = "Submit"
	defaultContinueLabel = "Continue"
	defaultFinishLabel   = "Finish"
	completionPathSuffix = "/complete"
)

// Renderer turns nodes into action descriptors.
// It holds only static configuration, so a Renderer is safe for concurrent use.
type Renderer struct {
	icon string
	base string
}

// NewRenderer returns a Renderer for form routes under basePath.
func NewRenderer(icon, basePath string) *Renderer {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &Renderer{icon: icon, base: strings.TrimSuffix(basePath, "/")}
}

// ForForm returns a Renderer whose hrefs target the given form.
func (r *Renderer) ForForm(formID string) *Renderer {
	return &Renderer{icon: r.icon, base: r.base + "/" + url.PathEscape(formID)}
}

// Render describes node as an action the client can take.
// nextNodeID is the precomputed successor; empty means the node has none.
func (r *Renderer) Render(formTitle string, node *domain.Node, nextNodeID string) domain.ActionDescriptor {
	if nextNodeID == "" {
		nextNodeID = EndSentinel
	}

	desc := domain.ActionDescriptor{
		Icon:        r.icon,
		Title:       formTitle,
		Description: firstNonEmpty(node.Description(), node.Label(), defaultDescription),
		Label:       firstNonEmpty(node.Label(), defaultContinueLabel),
	}

	switch data := node.Data.(type) {
	case domain.InputData:
		desc.Links.Actions = []domain.LinkedAction{{
			Label: firstNonEmpty(data.Label, defaultSubmitLabel),
			Href:  r.href(url.Values{"node": {node.ID}}),
		}}
	case domain.ChoiceData:
		desc.Links.Actions = make([]domain.LinkedAction, 0, len(data.Options))
		for _, opt := range data.Options {
			desc.Links.Actions = append(desc.Links.Actions, domain.LinkedAction{
				Label: firstNonEmpty(opt.Label, opt.Value),
				Href:  r.href(url.Values{"choice": {opt.Value}, "next": {nextNodeID}}),
			})
		}
	case domain.EndData:
		msg := firstNonEmpty(data.Message, defaultCompletion)
		desc.Title = msg
		desc.Description = msg
		desc.Label = msg
		desc.Links.Actions = []domain.LinkedAction{{
			Label: defaultFinishLabel,
			Href:  r.base + completionPathSuffix,
		}}
	default:
		desc.Links.Actions = []domain.LinkedAction{{
			Label: defaultContinueLabel,
			Href:  r.href(url.Values{"next_node": {nextNodeID}}),
		}}
	}
	return desc
}

// RenderInvalid re-renders node with an inline validation error.
func (r *Renderer) RenderInvalid(formTitle string, node *domain.Node, nextNodeID, message string) domain.ActionDescriptor {
	desc := r.Render(formTitle, node, nextNodeID)
	desc.Error = &domain.ActionError{Message: message}
	return desc
}

// RenderCompletion renders the synthetic end shown when a flow runs out of edges.
func (r *Renderer) RenderCompletion(formTitle string) domain.ActionDescriptor {
	end := domain.NewNode(EndSentinel, domain.KindEnd, domain.EndData{})
	return r.Render(formTitle, &end, "")
}

func (r *Renderer) href(q url.Values) string {
	return r.base + "?" + q.Encode()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
