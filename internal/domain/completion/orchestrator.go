// Package completion turns a partial transcript plus retrieved context into a
// model continuation, walking an ordered provider chain until one succeeds.
package completion

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/dispatchrag/internal/infra/llm"
)

// Unavailable is the text returned when every provider in the chain failed.
const Unavailable = "LLM unavailable"

// Default call parameters.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 150
)

// Tier tags which position in the chain produced a result.
type Tier string

const (
	TierPrimary     Tier = "primary"
	TierSecondary   Tier = "secondary"
	TierUnavailable Tier = "unavailable"
)

// Result is always returned, never an error.
type Result struct {
	Text     string
	Tier     Tier
	Provider string // empty when Tier is unavailable
}

// Served reports whether a provider produced the text.
func (r Result) Served() bool { return r.Tier != TierUnavailable }

// Options tunes each provider call. Zero values take the defaults.
type Options struct {
	Timeout     time.Duration
	Temperature *float64
	MaxTokens   int
}

// Orchestrator walks a fixed provider chain.
type Orchestrator struct {
	chain       []llm.NamedProvider
	timeout     time.Duration
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// NewOrchestrator copies chain; later changes to the slice have no effect.
func NewOrchestrator(chain []llm.NamedProvider, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		chain:       append([]llm.NamedProvider(nil), chain...),
		timeout:     opts.Timeout,
		temperature: DefaultTemperature,
		maxTokens:   opts.MaxTokens,
		logger:      logger.Named("completion"),
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	if opts.Temperature != nil {
		o.temperature = *opts.Temperature
	}
	if o.maxTokens <= 0 {
		o.maxTokens = DefaultMaxTokens
	}
	return o
}

// Providers returns the chain names in order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, len(o.chain))
	for i, np := range o.chain {
		names[i] = np.Name
	}
	return names
}

// Complete asks each provider in turn for a continuation of query, grounded on
// contextTexts. Each provider gets a single attempt bounded by the configured
// timeout. Cancellation of ctx ends the walk with an unavailable result.
func (o *Orchestrator) Complete(ctx context.Context, query string, contextTexts []string) Result {
	start := time.Now()
	req := llm.ChatRequest{
		Messages:    llm.UserPrompt(BuildPrompt(query, contextTexts)),
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}

	for i, np := range o.chain {
		if ctx.Err() != nil {
			break
		}
		text, err := o.call(ctx, np.Provider, req)
		if err != nil {
			o.logger.Warn("provider failed",
				zap.String("provider", np.Name),
				zap.Int("position", i),
				zap.Error(err),
			)
			continue
		}
		res := Result{Text: text, Tier: tierFor(i), Provider: np.Name}
		o.logger.Info("completion served",
			zap.String("tier", string(res.Tier)),
			zap.String("provider", res.Provider),
			zap.Duration("latency", time.Since(start)),
		)
		return res
	}

	o.logger.Info("completion served",
		zap.String("tier", string(TierUnavailable)),
		zap.String("provider", ""),
		zap.Duration("latency", time.Since(start)),
		zap.Bool("cancelled", ctx.Err() != nil),
	)
	return Result{Text: Unavailable, Tier: TierUnavailable}
}

var errBlankCompletion = errors.New("blank completion")

func (o *Orchestrator) call(ctx context.Context, p llm.LLMProvider, req llm.ChatRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := p.ChatCompletion(callCtx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", errBlankCompletion
	}
	return strings.TrimSpace(resp.Content), nil
}

func tierFor(position int) Tier {
	if position == 0 {
		return TierPrimary
	}
	return TierSecondary
}

// BuildPrompt renders the continuation prompt. Context texts are joined one
// per line in rank order.
func BuildPrompt(query string, contextTexts []string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(contextTexts, "\n"))
	b.WriteString("\n\nGiven the partial transcript: '")
	b.WriteString(query)
	b.WriteString("', predict what the speaker is most likely saying.")
	return b.String()
}
