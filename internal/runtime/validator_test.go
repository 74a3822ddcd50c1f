package runtime_test

import (
	"testing"

	"github.com/aretw0/formflow/internal/runtime"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsAcceptable(t *testing.T) {
	requiredInput := domain.NewNode("q", domain.KindInput, domain.InputData{Validation: domain.Validation{Required: true}})
	optionalInput := domain.NewNode("q", domain.KindInput, domain.InputData{})
	options := []domain.Option{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}}
	requiredChoice := domain.NewNode("c", domain.KindChoice, domain.ChoiceData{Options: options, Required: true})
	optionalChoice := domain.NewNode("c", domain.KindChoice, domain.ChoiceData{Options: options})
	end := domain.NewNode("e", domain.KindEnd, domain.EndData{})
	ext := domain.NewNode("x", domain.KindTransaction, domain.ExtensionData{})

	tests := []struct {
		name  string
		node  *domain.Node
		input *string
		want  bool
	}{
		{"required input rejects empty", &requiredInput, ptr(""), false},
		{"required input rejects blank", &requiredInput, ptr("   "), false},
		{"required input rejects absent", &requiredInput, nil, false},
		{"required input accepts text", &requiredInput, ptr(" Alice "), true},
		{"optional input accepts empty", &optionalInput, ptr(""), true},
		{"optional input accepts blank", &optionalInput, ptr("   "), true},
		{"optional input accepts absent", &optionalInput, nil, true},
		{"required choice accepts option", &requiredChoice, ptr("yes"), true},
		{"required choice is case-sensitive", &requiredChoice, ptr("Yes"), false},
		{"required choice rejects unlisted", &requiredChoice, ptr("maybe"), false},
		{"required choice rejects empty", &requiredChoice, ptr(""), false},
		{"required choice rejects absent", &requiredChoice, nil, false},
		{"optional choice accepts anything", &optionalChoice, ptr("maybe"), true},
		{"optional choice accepts absent", &optionalChoice, nil, true},
		{"end accepts absent", &end, nil, true},
		{"extension accepts anything", &ext, ptr("x"), true},
		{"nil node", nil, ptr("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runtime.IsAcceptable(tt.node, tt.input))
		})
	}
}
