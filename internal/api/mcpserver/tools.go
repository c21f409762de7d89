package mcpserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/dispatchrag/internal/domain/prediction"
)

// RetrieveInput is the input schema for retrieve_context.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"partial transcript or free text to match against the corpus"`
	K     int    `json:"k,omitempty" jsonschema:"number of neighbours to return (server default when omitted)"`
}

// RetrieveOutput lists neighbours nearest first.
type RetrieveOutput struct {
	Hits  []HitOutput `json:"hits"`
	Count int         `json:"count"`
}

// HitOutput is a single retrieved corpus entry.
type HitOutput struct {
	Position int     `json:"position"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// PredictInput is the input schema for predict_continuation.
type PredictInput struct {
	Transcript         string `json:"transcript" jsonschema:"the partial emergency call transcript"`
	ContextForSeverity string `json:"context_for_severity,omitempty" jsonschema:"full conversation used for severity classification"`
}

// PredictOutput mirrors the /generate response plus provenance.
type PredictOutput struct {
	ID         string   `json:"id"`
	Completion string   `json:"completion"`
	Tier       string   `json:"tier"`
	Provider   string   `json:"provider,omitempty"`
	BLEU       *float64 `json:"bleu_score,omitempty"`
	ROUGE1     *float64 `json:"rouge1,omitempty"`
	ROUGEL     *float64 `json:"rougeL,omitempty"`
	Severity   *int     `json:"severity_level,omitempty"`
	Retrieved  []string `json:"retrieved"`
}

// ClassifyInput is the input schema for classify_severity.
type ClassifyInput struct {
	Transcript  string `json:"transcript" jsonschema:"the transcript to classify"`
	FullContext string `json:"full_context,omitempty" jsonschema:"full conversation; preferred over transcript when set"`
}

// ClassifyOutput carries the severity level (1, 2 or 4).
type ClassifyOutput struct {
	Severity int    `json:"severity"`
	Label    string `json:"label"`
}

var errEmptyInput = errors.New("transcript is required")

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_context",
		Description: "Find the historical emergency call transcripts most similar to the given text",
	}, s.handleRetrieve)

	if s.ports.Predictor != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "predict_continuation",
			Description: "Predict what the caller is most likely saying next, with quality scores and severity",
		}, s.handlePredict)
	}

	if s.ports.Classifier != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "classify_severity",
			Description: "Classify an emergency transcript as mild (1), moderate (2) or severe (4)",
		}, s.handleClassify)
	}
}

func (s *Server) handleRetrieve(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	res := s.ports.Retriever.Retrieve(input.Query, input.K)
	out := RetrieveOutput{Hits: make([]HitOutput, len(res.Hits)), Count: len(res.Hits)}
	for i, h := range res.Hits {
		out.Hits[i] = HitOutput{Position: h.Position, Text: h.Text, Distance: float64(h.Distance)}
	}
	return nil, out, nil
}

func (s *Server) handlePredict(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PredictInput,
) (*mcp.CallToolResult, PredictOutput, error) {
	p, err := s.ports.Predictor.Generate(ctx, prediction.Request{
		Transcript:         input.Transcript,
		ContextForSeverity: input.ContextForSeverity,
	})
	if err != nil {
		return nil, PredictOutput{}, err
	}
	rec := p.Record()
	return nil, PredictOutput{
		ID:         rec.ID,
		Completion: rec.Completion,
		Tier:       rec.Tier,
		Provider:   rec.Provider,
		BLEU:       rec.BLEU,
		ROUGE1:     rec.ROUGE1,
		ROUGEL:     rec.ROUGEL,
		Severity:   rec.Severity,
		Retrieved:  rec.Retrieved,
	}, nil
}

func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	if strings.TrimSpace(input.Transcript) == "" && strings.TrimSpace(input.FullContext) == "" {
		return nil, ClassifyOutput{}, errEmptyInput
	}
	lvl := s.ports.Classifier.Classify(ctx, input.Transcript, input.FullContext)
	return nil, ClassifyOutput{Severity: int(lvl), Label: lvl.String()}, nil
}
