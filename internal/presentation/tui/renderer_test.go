package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/formflow/internal/presentation/tui"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	desc := domain.ActionDescriptor{
		Title:       "Contact",
		Description: "We send one email a month",
		Label:       "Subscribe?",
		Links: domain.ActionLinks{Actions: []domain.LinkedAction{
			{Label: "Yes", Href: "/f/contact?choice=yes&next=pay"},
			{Label: "Later", Href: "/f/contact?choice=maybe+later&next=pay"},
		}},
		Error: &domain.ActionError{Message: "Please choose one of the available options"},
	}

	md := tui.Markdown(desc)
	assert.Equal(t, "# Contact\n\n"+
		"We send one email a month\n\n"+
		"**Subscribe?**\n\n"+
		"> ⚠ Please choose one of the available options\n\n"+
		"1. Yes\n"+
		"2. Later\n", md)
}

func TestMarkdown_SkipsRepeatedText(t *testing.T) {
	msg := "Thank you for completing the form!"
	md := tui.Markdown(domain.ActionDescriptor{Title: msg, Description: msg, Label: msg})
	assert.Equal(t, "# "+msg+"\n\n", md)
}

func TestChoiceValue(t *testing.T) {
	v, ok := tui.ChoiceValue(domain.LinkedAction{Href: "/f/contact?choice=maybe+later&next=pay"})
	require.True(t, ok)
	assert.Equal(t, "maybe later", v)

	_, ok = tui.ChoiceValue(domain.LinkedAction{Href: "/f/contact?node=q1"})
	assert.False(t, ok)
}

func TestNewRenderer(t *testing.T) {
	out, err := tui.NewRenderer()("# Contact")
	require.NoError(t, err)
	assert.Contains(t, out, "Contact")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
