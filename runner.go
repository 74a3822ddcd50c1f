package formflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/formflow/internal/presentation/tui"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
)

// ErrNoParticipant is returned by Runner.Run without a participant id.
var ErrNoParticipant = errors.New("formflow: runner needs a participant id")

// Runner fills a form interactively over the provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Renderer ContentRenderer
}

// ContentRenderer transforms the markdown of a step before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Run drives one participant through formID until the flow ends, the input is
// exhausted, or the participant types "exit".
func (r *Runner) Run(ctx context.Context, engine ports.FlowEngine, formID, participantID string) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if participantID == "" {
		return ErrNoParticipant
	}
	lineReader := bufio.NewReader(r.Input)

	resp, err := engine.Handle(ctx, domain.Request{FormID: formID, ParticipantID: participantID})
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}

	for {
		r.print(resp.Descriptor)
		if isFinal(resp) {
			return nil
		}

		fmt.Fprint(r.Output, "> ")
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("input error: %w", err)
			}
			// A last line without newline is still an answer.
			if text == "" {
				return nil
			}
		}
		input := strings.TrimSpace(text)
		if input == "exit" || input == "quit" {
			fmt.Fprintln(r.Output, "Bye!")
			return nil
		}
		input = resolveChoice(resp.Descriptor, input)

		resp, err = engine.Handle(ctx, domain.Request{
			FormID:        formID,
			ParticipantID: participantID,
			Submit:        true,
			Input:         &input,
			NodeID:        resp.NodeID,
		})
		if err != nil {
			return fmt.Errorf("submit error: %w", err)
		}
	}
}

func (r *Runner) print(desc domain.ActionDescriptor) {
	output := tui.Markdown(desc)
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}

// isFinal reports whether resp leaves nothing to answer: the flow ran out of edges,
// or the rendered node is an end node whose only action finishes the form.
func isFinal(resp *domain.Response) bool {
	if resp.State == domain.StateTerminal {
		return true
	}
	actions := resp.Descriptor.Links.Actions
	return len(actions) == 1 && strings.HasSuffix(actions[0].Href, "/complete")
}

// resolveChoice maps "2" to the value of the second option when the step is a choice.
func resolveChoice(desc domain.ActionDescriptor, input string) string {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(desc.Links.Actions) {
		return input
	}
	if value, ok := tui.ChoiceValue(desc.Links.Actions[n-1]); ok {
		return value
	}
	return input
}
