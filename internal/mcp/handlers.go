package mcp

import (
	"context"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"chatwarden/internal/incident"
	"chatwarden/internal/model"
	"chatwarden/internal/review"
)

// --- Input/Output types ---

// AuditInput selects a stored conversation by user.
type AuditInput struct {
	User string `json:"user" jsonschema:"email of the user whose conversation to audit"`
}

// AuditOutput is the decision rendered for the reviewer.
type AuditOutput struct {
	Outcome        string   `json:"outcome"`
	Confidence     float64  `json:"confidence"`
	Rationale      []string `json:"rationale"`
	TriggeredRules []string `json:"triggered_rules"`
	SuggestedReply string   `json:"suggested_reply,omitempty"`
	Pending        bool     `json:"pending"`
}

// ResolveInput selects the conversation whose open decision to resolve.
type ResolveInput struct {
	User string `json:"user" jsonschema:"email of the user whose open decision to resolve"`
}

// ResolveOutput reports the applied action and the transcript tail.
type ResolveOutput struct {
	Outcome  string          `json:"outcome"`
	Appended []model.Message `json:"appended,omitempty"`
	Rejected bool            `json:"rejected,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

// ResetInput selects the conversation to restore.
type ResetInput struct {
	User string `json:"user" jsonschema:"email of the user whose conversation to restore"`
}

// ResetOutput confirms the restore.
type ResetOutput struct {
	User     string `json:"user"`
	Messages int    `json:"messages"`
}

// IncidentsInput is empty — no parameters needed.
type IncidentsInput struct{}

// IncidentsOutput lists one incident per stored conversation.
type IncidentsOutput struct {
	Incidents []IncidentItem `json:"incidents"`
}

// IncidentItem is one row of the incidents table.
type IncidentItem struct {
	User           string `json:"user"`
	ID             string `json:"id"`
	Messages       int    `json:"messages"`
	ViolationCount int    `json:"violation_count"`
	Severity       string `json:"severity"`
	Status         string `json:"status"`
}

// PendingInput is empty — no parameters needed.
type PendingInput struct{}

// PendingOutput lists users with unresolved decisions.
type PendingOutput struct {
	Users []string `json:"users"`
}

// --- Handlers ---

func (s *Server) handleAudit(ctx context.Context, req *mcpsdk.CallToolRequest, input AuditInput) (*mcpsdk.CallToolResult, AuditOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(input.User)
	if err != nil {
		return nil, AuditOutput{}, err
	}

	d := sess.Decision()
	s.recordDecision(input.User, d, "")

	rules := make([]string, len(d.TriggeredRules))
	for i, r := range d.TriggeredRules {
		rules[i] = r.ID
	}

	return nil, AuditOutput{
		Outcome:        string(d.Outcome),
		Confidence:     d.Confidence,
		Rationale:      d.Rationale,
		TriggeredRules: rules,
		SuggestedReply: d.SuggestedReply,
		Pending:        sess.Pending(),
	}, nil
}

func (s *Server) handleApply(ctx context.Context, req *mcpsdk.CallToolRequest, input ResolveInput) (*mcpsdk.CallToolResult, ResolveOutput, error) {
	return s.resolve(input.User, "apply-suggestion", func(sess *review.Session) (model.Decision, error) {
		return sess.ApplySuggestion()
	})
}

func (s *Server) handleRequestHuman(ctx context.Context, req *mcpsdk.CallToolRequest, input ResolveInput) (*mcpsdk.CallToolResult, ResolveOutput, error) {
	return s.resolve(input.User, "request-human", func(sess *review.Session) (model.Decision, error) {
		return sess.RequestHuman()
	})
}

func (s *Server) handleAllowOriginal(ctx context.Context, req *mcpsdk.CallToolRequest, input ResolveInput) (*mcpsdk.CallToolResult, ResolveOutput, error) {
	return s.resolve(input.User, "allow-original", func(sess *review.Session) (model.Decision, error) {
		return sess.AllowOriginal()
	})
}

// resolve runs one resolution action, persists the mutated conversation,
// and records the action in the decision log. A StateError (no open
// decision) is reported as a rejected call, not a transport error.
func (s *Server) resolve(user, action string, fn func(*review.Session) (model.Decision, error)) (*mcpsdk.CallToolResult, ResolveOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(user)
	if err != nil {
		return nil, ResolveOutput{}, err
	}

	before := len(sess.Conversation())
	d, err := fn(sess)
	if err != nil {
		var stateErr *review.StateError
		if errors.As(err, &stateErr) {
			out := ResolveOutput{Rejected: true, Reason: stateErr.Reason}
			return &mcpsdk.CallToolResult{IsError: true}, out, nil
		}
		return nil, ResolveOutput{}, err
	}

	conv := sess.Conversation()
	if err := s.st.Save(user, conv); err != nil {
		return nil, ResolveOutput{}, err
	}
	s.recordDecision(user, d, action)

	appended := make([]model.Message, 0, len(conv)-before)
	for _, m := range conv {
		if m.Role == model.RoleAuditor || (m.Meta != nil && m.Meta.OriginalBotText != "") {
			appended = append(appended, m)
		}
	}

	return nil, ResolveOutput{
		Outcome:  string(d.Outcome),
		Appended: appended,
	}, nil
}

func (s *Server) handleReset(ctx context.Context, req *mcpsdk.CallToolRequest, input ResetInput) (*mcpsdk.CallToolResult, ResetOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(input.User)
	if err != nil {
		return nil, ResetOutput{}, err
	}

	sess.Reset()
	conv := sess.Conversation()
	if err := s.st.Save(input.User, conv); err != nil {
		return nil, ResetOutput{}, err
	}

	return nil, ResetOutput{User: input.User, Messages: len(conv)}, nil
}

func (s *Server) handleIncidents(ctx context.Context, req *mcpsdk.CallToolRequest, input IncidentsInput) (*mcpsdk.CallToolResult, IncidentsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.st.List()
	if err != nil {
		return nil, IncidentsOutput{}, err
	}

	out := IncidentsOutput{Incidents: []IncidentItem{}}
	for i, rec := range records {
		inc, ok := incident.Derive(fmt.Sprintf("incident-%03d", i+1), rec.Conversation, incident.QuickScan{})
		if !ok {
			continue
		}
		out.Incidents = append(out.Incidents, IncidentItem{
			User:           rec.Email,
			ID:             inc.ID,
			Messages:       inc.Messages,
			ViolationCount: inc.ViolationCount,
			Severity:       inc.Severity,
			Status:         string(inc.Status),
		})
	}

	return nil, out, nil
}

func (s *Server) handlePending(ctx context.Context, req *mcpsdk.CallToolRequest, input PendingInput) (*mcpsdk.CallToolResult, PendingOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.st.List()
	if err != nil {
		return nil, PendingOutput{}, err
	}

	out := PendingOutput{Users: []string{}}
	for _, rec := range records {
		sess, err := s.session(rec.Email)
		if err != nil {
			continue
		}
		if sess.Pending() {
			out.Users = append(out.Users, rec.Email)
		}
	}

	return nil, out, nil
}
