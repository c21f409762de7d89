// Package prediction runs the per-request pipeline
// (retrieve → complete → score → classify), publishes every served
// prediction, and keeps an optional SQLite history of them.
package prediction

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/dispatchrag/internal/domain/completion"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/evaluation"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/retrieval"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/severity"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/eventbus"
	"github.com/matiasleandrokruk/dispatchrag/pkg/uuid"
)

// ErrTranscriptMissing is returned when the request has no transcript.
var ErrTranscriptMissing = errors.New("prediction: transcript not provided")

// Variant selects which stages run after completion.
type Variant string

const (
	// VariantScored adds evaluation scores and a severity level.
	VariantScored Variant = "scored"
	// VariantCompletion returns the completion only.
	VariantCompletion Variant = "completion"
)

// ParseVariant maps a config string to a Variant, defaulting to scored.
func ParseVariant(s string) Variant {
	if strings.EqualFold(strings.TrimSpace(s), string(VariantCompletion)) {
		return VariantCompletion
	}
	return VariantScored
}

// Retriever returns the k nearest corpus entries for a query.
type Retriever interface {
	Retrieve(query string, k int) retrieval.Result
}

// Completer produces a continuation from the query and retrieved context.
type Completer interface {
	Complete(ctx context.Context, query string, contextTexts []string) completion.Result
}

// Classifier grades a transcript; it never fails and falls back to a default level.
type Classifier interface {
	Classify(ctx context.Context, transcript, fullContext string) severity.Level
}

// Request is one /generate call.
type Request struct {
	Transcript         string
	ContextForSeverity string
	// TopK overrides the retrieval default when > 0.
	TopK int
}

// Prediction is the outcome of one pipeline run.
type Prediction struct {
	ID          string
	Transcript  string
	Completion  completion.Result
	Retrieved   []string
	Scores      *evaluation.Scores // nil for VariantCompletion
	Severity    severity.Level     // 0 for VariantCompletion
	ContextUsed bool
	CreatedAt   time.Time
}

// Deps bundles the Service collaborators. Bus and Logger are optional.
type Deps struct {
	Retriever  Retriever
	Completer  Completer
	Classifier Classifier
	Bus        eventbus.EventBus
	Logger     *zap.Logger
}

// Service runs the prediction pipeline. It holds no per-request state.
type Service struct {
	retriever  Retriever
	completer  Completer
	classifier Classifier
	bus        eventbus.EventBus
	variant    Variant
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the pipeline. Nil Bus and Logger are allowed.
func NewService(d Deps, variant Variant) *Service {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		retriever:  d.Retriever,
		completer:  d.Completer,
		classifier: d.Classifier,
		bus:        d.Bus,
		variant:    variant,
		logger:     logger.Named("prediction"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Variant reports which response shape this service produces.
func (s *Service) Variant() Variant { return s.variant }

// Generate runs the pipeline for req. The only error is ErrTranscriptMissing;
// provider failures degrade the result instead.
func (s *Service) Generate(ctx context.Context, req Request) (*Prediction, error) {
	transcript := strings.TrimSpace(req.Transcript)
	if transcript == "" {
		return nil, ErrTranscriptMissing
	}

	hits := s.retriever.Retrieve(transcript, req.TopK)
	texts := hits.Texts()
	res := s.completer.Complete(ctx, transcript, texts)

	p := &Prediction{
		ID:         uuid.NewV7(),
		Transcript: transcript,
		Completion: res,
		Retrieved:  texts,
		CreatedAt:  s.now(),
	}

	if s.variant == VariantScored {
		scores := evaluation.Score(transcript, res.Text)
		p.Scores = &scores
		p.ContextUsed = strings.TrimSpace(req.ContextForSeverity) != ""
		p.Severity = s.classifier.Classify(ctx, transcript, req.ContextForSeverity)
	}

	s.logger.Debug("prediction generated",
		zap.String("id", p.ID),
		zap.Int("retrieved", len(texts)),
		zap.String("tier", string(res.Tier)),
	)
	if s.bus != nil {
		s.bus.Publish(eventbus.TopicPredictionServed, p.Record())
	}
	return p, nil
}
