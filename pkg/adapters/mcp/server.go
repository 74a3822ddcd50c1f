package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/formflow/internal/sanitize"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const formsURI = "formflow://forms"

// FlowResponse is the structured result of the form tools.
type FlowResponse struct {
	State      domain.FlowState        `json:"state" jsonschema_description:"Where the participant stands after the call"`
	NodeID     string                  `json:"nodeId" jsonschema_description:"The node the descriptor was rendered for"`
	Descriptor domain.ActionDescriptor `json:"descriptor" jsonschema_description:"The action descriptor to show the participant"`
}

// RenderArgs are the arguments of render_form.
type RenderArgs struct {
	FormID  string `json:"form_id"`
	Account string `json:"account,omitempty"`
}

// SubmitArgs are the arguments of submit_form.
type SubmitArgs struct {
	FormID  string  `json:"form_id"`
	Account string  `json:"account"`
	Input   *string `json:"input,omitempty"`
}

// Lister enumerates stored forms.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Server exposes a FlowEngine as an MCP server.
type Server struct {
	engine    ports.FlowEngine
	lister    Lister
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. lister may be nil, in which
// case the forms resource is not registered.
func NewServer(engine ports.FlowEngine, lister Lister, version string) *Server {
	s := &Server{
		engine:    engine,
		lister:    lister,
		mcpServer: server.NewMCPServer("formflow-mcp", version),
	}
	s.registerTools()
	if lister != nil {
		s.registerResources()
	}
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	renderTool := mcp.NewTool("render_form",
		mcp.WithDescription("Render the current step of a form. Without an account, renders the entry step."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("The form to render")),
		mcp.WithString("account", mcp.Description("Participant identifier (optional)")),
		mcp.WithOutputSchema[FlowResponse](),
	)
	s.mcpServer.AddTool(renderTool, mcp.NewStructuredToolHandler(s.handleRender))

	submitTool := mcp.NewTool("submit_form",
		mcp.WithDescription("Answer the participant's current step and move to the next one when the answer is acceptable."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("The form being filled")),
		mcp.WithString("account", mcp.Required(), mcp.Description("Participant identifier")),
		mcp.WithString("input", mcp.Description("The answer; for choices, the option value")),
		mcp.WithOutputSchema[FlowResponse](),
	)
	s.mcpServer.AddTool(submitTool, mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("get_form",
		mcp.WithDescription("Get the full form definition for introspection."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("The form to inspect")),
	), s.handleGetForm)
}

func (s *Server) handleRender(ctx context.Context, _ mcp.CallToolRequest, args RenderArgs) (FlowResponse, error) {
	resp, err := s.engine.Handle(ctx, domain.Request{
		FormID:        args.FormID,
		ParticipantID: args.Account,
	})
	if err != nil {
		return FlowResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return toFlowResponse(resp), nil
}

func (s *Server) handleSubmit(ctx context.Context, _ mcp.CallToolRequest, args SubmitArgs) (FlowResponse, error) {
	if args.Account == "" {
		return FlowResponse{}, errors.New("account is required to submit")
	}
	if args.Input != nil {
		clean, err := sanitize.Input(*args.Input, sanitize.DefaultMaxInputSize)
		if err != nil {
			slog.Warn("MCP submit: input rejected", "error", err, "size", len(*args.Input))
			return FlowResponse{}, fmt.Errorf("input rejected: %w", err)
		}
		args.Input = &clean
	}

	resp, err := s.engine.Handle(ctx, domain.Request{
		FormID:        args.FormID,
		ParticipantID: args.Account,
		Submit:        true,
		Input:         args.Input,
	})
	if err != nil {
		return FlowResponse{}, fmt.Errorf("submit failed: %w", err)
	}
	return toFlowResponse(resp), nil
}

func (s *Server) handleGetForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := request.RequireString("form_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	form, err := s.engine.Inspect(ctx, formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	b, err := json.Marshal(form)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func toFlowResponse(resp *domain.Response) FlowResponse {
	return FlowResponse{
		State:      resp.State,
		NodeID:     resp.NodeID,
		Descriptor: resp.Descriptor,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(formsURI, "Stored forms",
		mcp.WithResourceDescription("Identifiers of every form that can be rendered"),
		mcp.WithMIMEType("application/json"),
	), s.readForms)
}

func (s *Server) readForms(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formsURI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
