package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/pkg/conversation"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/aretw0/docket/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// CatalogURI is the resource listing the document kinds.
const CatalogURI = "docket://catalog"

// TurnResult is the structured output of the conversation tools.
type TurnResult struct {
	Outcome   conversation.OutcomeKind `json:"outcome" jsonschema_description:"How the turn ended: reply, asked, generated, reset, cancelled or failed"`
	Field     string                   `json:"field,omitempty" jsonschema_description:"The fact the assistant is waiting for"`
	Replies   []string                 `json:"replies" jsonschema_description:"Messages the assistant sent, in order"`
	Artifacts []domain.Artifact        `json:"artifacts,omitempty" jsonschema_description:"Rendered documents; data is base64"`
	Failure   string                   `json:"failure,omitempty" jsonschema_description:"generation, render or delivery when a step failed"`
}

// KindInfo describes one document kind.
type KindInfo struct {
	Number   int                 `json:"number"`
	Kind     domain.DocumentKind `json:"kind"`
	Label    string              `json:"label"`
	Required []string            `json:"required"`
}

// KindList is the output of list_document_kinds.
type KindList struct {
	Kinds []KindInfo `json:"kinds"`
}

// SendMessageArgs are the arguments of send_message.
type SendMessageArgs struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// SessionArgs identify a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// Server exposes an orchestrator as an MCP server.
type Server struct {
	orch      *conversation.Orchestrator
	inspect   ports.SessionStore
	logger    *slog.Logger
	version   string
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the advertised server version.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithInspectStore makes get_session read from store, typically a redacting view.
func WithInspectStore(store ports.SessionStore) Option {
	return func(s *Server) {
		s.inspect = store
	}
}

// NewServer creates a new MCP server instance.
func NewServer(orch *conversation.Orchestrator, opts ...Option) *Server {
	s := &Server{
		orch:    orch,
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("docket-mcp", s.version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send one user message to a document conversation. Start with /start to see the menu."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation id chosen by the caller")),
		mcp.WithString("text", mcp.Required(), mcp.Description("User text or a command (/start, /menu, /cancel, /help)")),
		mcp.WithOutputSchema[TurnResult](),
	), mcp.NewStructuredToolHandler(s.handleSendMessage))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Clear the collected facts of a conversation and return it to the menu."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation id")),
		mcp.WithOutputSchema[TurnResult](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("list_document_kinds",
		mcp.WithDescription("List the document kinds and the facts each one requires."),
		mcp.WithOutputSchema[KindList](),
	), mcp.NewStructuredToolHandler(s.handleListKinds))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Show the stored state of a conversation."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation id")),
	), s.handleGetSession)
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args SendMessageArgs) (TurnResult, error) {
	clean, err := runner.SanitizeInput(strings.TrimSpace(args.Text))
	if err != nil {
		s.logger.Warn("mcp input rejected", "err", err, "size", len(args.Text))
		return TurnResult{}, fmt.Errorf("input rejected: %w", err)
	}
	if clean == "" {
		return TurnResult{}, errors.New("text is required")
	}
	return s.turn(ctx, args.SessionID, clean)
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (TurnResult, error) {
	return s.turn(ctx, args.SessionID, "/menu")
}

func (s *Server) handleListKinds(ctx context.Context, request mcp.CallToolRequest, _ struct{}) (KindList, error) {
	return KindList{Kinds: s.kinds()}, nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var sess *domain.Session
	if s.inspect != nil {
		sess, err = s.inspect.Load(ctx, id)
	} else {
		sess, err = s.orch.Sessions().Load(ctx, id)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load session: %v", err)), nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) turn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	rec := &recorder{}
	out, err := s.orch.HandleTurn(ctx, conversation.Turn{SessionID: sessionID, Text: text}, rec)
	if err != nil {
		return TurnResult{}, err
	}
	res := TurnResult{
		Outcome:   out.Kind,
		Field:     out.Field,
		Replies:   rec.texts(),
		Artifacts: rec.artifacts(),
	}
	if out.Failure != nil {
		res.Failure = string(out.Failure.Kind)
	}
	return res, nil
}

func (s *Server) kinds() []KindInfo {
	cat := s.orch.Machine().Catalog()
	kinds := cat.Kinds()
	out := make([]KindInfo, 0, len(kinds))
	for i, k := range kinds {
		out = append(out, KindInfo{Number: i + 1, Kind: k, Label: cat.Label(k), Required: cat.RequiredFields(k)})
	}
	return out
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Document Kinds",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.kinds())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

// recorder collects what one tool call sent.
type recorder struct {
	mu    sync.Mutex
	sent  []string
	files []domain.Artifact
}

func (r *recorder) SendText(ctx context.Context, sessionID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return nil
}

func (r *recorder) SendArtifact(ctx context.Context, sessionID string, a domain.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, a)
	return nil
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.sent...)
}

func (r *recorder) artifacts() []domain.Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.files) == 0 {
		return nil
	}
	return append([]domain.Artifact(nil), r.files...)
}
