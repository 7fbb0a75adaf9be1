package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"chatwarden/internal/decisionlog"
	"chatwarden/internal/model"
	"chatwarden/internal/review"
	"chatwarden/internal/schema"
	"chatwarden/internal/store"
)

// Config holds MCP server configuration.
type Config struct {
	DBPath          string
	SchemaPath      string
	DecisionLogPath string
}

// Server wraps the MCP SDK server with the reviewer surface: audit a
// stored conversation, resolve its open decision, list incidents.
type Server struct {
	mcpServer *mcpsdk.Server

	mu         sync.Mutex
	sch        *schema.PolicySchema
	schemaHash string
	sessions   map[string]*review.Session
	st         *store.Store
	dlog       *decisionlog.Log
	cfg        Config
}

// New creates an MCP server with a loaded schema and conversation store.
func New(cfg Config) (*Server, error) {
	sch, schemaHash, err := schema.LoadWithHash(cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation store: %w", err)
	}

	var dlog *decisionlog.Log
	if cfg.DecisionLogPath != "" {
		dlog, err = decisionlog.Open(cfg.DecisionLogPath)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to open decision log: %w", err)
		}
	}

	s := &Server{
		sch:        sch,
		schemaHash: schemaHash,
		sessions:   make(map[string]*review.Session),
		st:         st,
		dlog:       dlog,
		cfg:        cfg,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "chatwarden",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close releases the store and decision log.
func (s *Server) Close() error {
	if s.dlog != nil {
		if err := s.dlog.Close(); err != nil {
			s.st.Close()
			return err
		}
	}
	return s.st.Close()
}

// ReloadSchema atomically swaps the schema. Called by the hot-reloader on
// file change. A schema that no longer parses is rejected and the prior
// valid schema stays active.
func (s *Server) ReloadSchema() error {
	sch, schemaHash, err := schema.LoadWithHash(s.cfg.SchemaPath)
	if err != nil {
		return fmt.Errorf("failed to reload schema: %w", err)
	}

	s.mu.Lock()
	s.sch = sch
	s.schemaHash = schemaHash
	for _, sess := range s.sessions {
		sess.ReplaceSchema(sch)
	}
	s.mu.Unlock()

	return nil
}

// session returns the review session for a user, loading the stored
// conversation on first access. Caller must hold s.mu.
func (s *Server) session(user string) (*review.Session, error) {
	if sess, ok := s.sessions[user]; ok {
		return sess, nil
	}
	conv, found, err := s.st.Conversation(user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no conversation stored for %q", user)
	}
	sess := review.NewSession(conv, s.sch)
	s.sessions[user] = sess
	return sess, nil
}

func (s *Server) recordDecision(user string, d model.Decision, resolution string) {
	if s.dlog == nil {
		return
	}
	rules := make([]string, len(d.TriggeredRules))
	for i, r := range d.TriggeredRules {
		rules[i] = r.ID
	}
	s.dlog.Record(decisionlog.Entry{
		Timestamp:    time.Now().UTC().Format(decisionlog.TimestampFormat),
		Conversation: user,
		Outcome:      string(d.Outcome),
		Confidence:   d.Confidence,
		Rules:        rules,
		Resolution:   resolution,
		SchemaHash:   s.schemaHash,
	})
}

// registerTools adds all chatwarden tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "warden_audit",
		Description: "Audit a user's stored conversation against the policy schema. Returns outcome, confidence, rationale, and the suggested compliant reply when an interjection is open.",
	}, s.handleAudit)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "warden_apply",
		Description: "Approve & send modified: supersede the last bot reply with the auditor's suggested compliant reply.",
	}, s.handleApply)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "warden_request_human",
		Description: "Stop & request human: record that the bot was stopped and a human will respond out of band.",
	}, s.handleRequestHuman)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "warden_allow_original",
		Description: "Override & send original: record that the auditor was overridden; the original bot reply stands.",
	}, s.handleAllowOriginal)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "warden_reset",
		Description: "Discard all resolution actions and restore the conversation to its originally loaded sequence.",
	}, s.handleReset)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "warden_incidents",
		Description: "List incidents over all stored conversations (quick-scan profile): message count, violation count, Flagged/Clean status.",
	}, s.handleIncidents)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "warden_pending",
		Description: "List users whose conversations have an open, unresolved decision.",
	}, s.handlePending)
}
