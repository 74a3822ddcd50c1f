package tui

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return Plain
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Plain returns markdown unchanged.
func Plain(markdown string) (string, error) {
	return markdown, nil
}

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Markdown lays out a descriptor for the terminal. Actions are numbered so a
// participant can answer a choice by its position.
func Markdown(desc domain.ActionDescriptor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", desc.Title)
	if desc.Description != "" && desc.Description != desc.Title {
		fmt.Fprintf(&sb, "%s\n\n", desc.Description)
	}
	if desc.Label != "" && desc.Label != desc.Description {
		fmt.Fprintf(&sb, "**%s**\n\n", desc.Label)
	}
	if desc.Error != nil {
		fmt.Fprintf(&sb, "> ⚠ %s\n\n", desc.Error.Message)
	}
	for i, a := range desc.Links.Actions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, a.Label)
	}
	return sb.String()
}

// ChoiceValue returns the option value carried by an action href, if any.
func ChoiceValue(action domain.LinkedAction) (string, bool) {
	u, err := url.Parse(action.Href)
	if err != nil {
		return "", false
	}
	q := u.Query()
	if !q.Has("choice") {
		return "", false
	}
	return q.Get("choice"), true
}
