package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driving"
)

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// StatusOutput reports the backend and the loaded document.
type StatusOutput struct {
	Status   string                `json:"status"`
	Strategy string                `json:"strategy"`
	Document *driving.DocumentInfo `json:"document,omitempty"`
}

// LoadInput names a file to load, or carries plain text directly.
type LoadInput struct {
	Path string `json:"path,omitempty" jsonschema:"path of a .pdf or .txt file to load"`
	Name string `json:"name,omitempty" jsonschema:"file name for inline text, e.g. notes.txt"`
	Text string `json:"text,omitempty" jsonschema:"inline document text, used when path is empty"`
}

// LoadOutput is the document card and its summary.
type LoadOutput struct {
	Document *driving.DocumentInfo `json:"document"`
	Summary  *domain.Summary       `json:"summary"`
}

// SummaryOutput is the summary of the loaded document.
type SummaryOutput struct {
	Summary *domain.Summary `json:"summary"`
}

// AskInput is a question about the loaded document.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the document"`
}

// AskOutput is one answer.
type AskOutput struct {
	Answer          string `json:"answer"`
	IsComprehensive bool   `json:"is_comprehensive"`
	Confidence      *int   `json:"confidence,omitempty"`
	Band            string `json:"band,omitempty"`
	Context         string `json:"context,omitempty"`
}

// ChallengeOutput lists the questions of a new challenge.
type ChallengeOutput struct {
	Questions []QuestionOutput `json:"questions"`
}

// QuestionOutput is one challenge question without its reference context.
type QuestionOutput struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Question string `json:"question"`
}

// SubmitInput carries one answer per question, in order.
type SubmitInput struct {
	Answers []string `json:"answers" jsonschema:"one answer per challenge question, in question order"`
}

// SubmitOutput is the graded challenge.
type SubmitOutput struct {
	Score   int            `json:"score"`
	Total   int            `json:"total"`
	Results []ResultOutput `json:"results"`
}

// ResultOutput is the verdict on one answer.
type ResultOutput struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
	Reference string `json:"reference"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "status",
		Description: "Show which backend answers questions and which document is loaded",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_document",
		Description: "Load a PDF or text document and summarise it, replacing the current one",
	}, s.handleLoad)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summary",
		Description: "Return the summary of the loaded document",
	}, s.handleSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the loaded document",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_challenge",
		Description: "Generate comprehension questions about the loaded document",
	}, s.handleGenerateChallenge)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_answers",
		Description: "Grade answers to the current challenge questions; every question needs an answer",
	}, s.handleSubmit)
}

func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	snap := s.ports.Session.Snapshot()
	return nil, StatusOutput{Status: snap.Status, Strategy: snap.Strategy, Document: snap.Document}, nil
}

func (s *Server) handleLoad(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadInput,
) (*mcp.CallToolResult, LoadOutput, error) {
	name, data, err := s.readInput(input)
	if err != nil {
		return nil, LoadOutput{}, err
	}

	info, err := s.ports.Session.Load(ctx, name, data)
	if err != nil {
		return nil, LoadOutput{}, err
	}
	return nil, LoadOutput{Document: info, Summary: s.ports.Session.Summary()}, nil
}

func (s *Server) readInput(input LoadInput) (string, []byte, error) {
	if path := strings.TrimSpace(input.Path); path != "" {
		data, err := s.ports.ReadFile(path)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		return path, data, nil
	}
	if input.Text == "" {
		return "", nil, fmt.Errorf("%w: path or text is required", domain.ErrInvalidInput)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "document.txt"
	}
	return name, []byte(input.Text), nil
}

func (s *Server) handleSummary(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	summary := s.ports.Session.Summary()
	if summary == nil {
		return nil, SummaryOutput{}, domain.ErrNoDocument
	}
	return nil, SummaryOutput{Summary: summary}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Session.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	out := AskOutput{
		Answer:          result.Answer,
		IsComprehensive: result.IsComprehensive,
		Confidence:      result.Confidence,
		Context:         result.Context,
	}
	if result.Confidence != nil {
		out.Band = result.Band().String()
	}
	return nil, out, nil
}

func (s *Server) handleGenerateChallenge(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ChallengeOutput, error) {
	set, err := s.ports.Session.GenerateChallenge(ctx)
	if err != nil {
		return nil, ChallengeOutput{}, err
	}

	out := ChallengeOutput{Questions: make([]QuestionOutput, len(set.Questions))}
	for i, q := range set.Questions {
		out.Questions[i] = QuestionOutput{Index: i, ID: q.ID, Question: q.Question}
	}
	return nil, out, nil
}

func (s *Server) handleSubmit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitInput,
) (*mcp.CallToolResult, SubmitOutput, error) {
	graded, err := s.ports.Session.SubmitAnswers(ctx, input.Answers)
	if err != nil {
		return nil, SubmitOutput{}, err
	}

	out := SubmitOutput{Score: graded.Score(), Total: graded.Len(), Results: make([]ResultOutput, graded.Len())}
	for i, q := range graded.Questions {
		r := ResultOutput{Question: q.Question}
		if ua := graded.Answers[i]; ua != nil {
			r.Answer = ua.Answer
			if ev := ua.Evaluation; ev != nil {
				r.IsCorrect = ev.IsCorrect
				r.Feedback = ev.Feedback
				r.Reference = ev.Reference
			}
		}
		out.Results[i] = r
	}
	return nil, out, nil
}
