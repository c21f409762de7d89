package severity

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/dispatchrag/internal/infra/llm"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultMaxTokens = 50
)

// Classifier asks one provider for a JSON severity.
type Classifier struct {
	provider  llm.LLMProvider
	timeout   time.Duration
	maxTokens int
	logger    *zap.Logger
}

// NewClassifier builds a Classifier. A nil provider makes every call return
// Default; zero timeout or maxTokens take the package defaults.
func NewClassifier(provider llm.LLMProvider, timeout time.Duration, maxTokens int, logger *zap.Logger) *Classifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		provider:  provider,
		timeout:   timeout,
		maxTokens: maxTokens,
		logger:    logger.Named("severity"),
	}
}

// Classify returns the severity of fullContext, or of transcript when
// fullContext is blank. It never fails: errors are logged and Default returned.
func (c *Classifier) Classify(ctx context.Context, transcript, fullContext string) Level {
	text := transcript
	if strings.TrimSpace(fullContext) != "" {
		text = fullContext
	}
	if c.provider == nil {
		c.logger.Warn("no classifier provider configured, using default")
		return Default
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.provider.ChatCompletion(callCtx, llm.ChatRequest{
		Messages:    llm.UserPrompt(BuildPrompt(text)),
		Temperature: 0,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		c.logger.Warn("severity call failed, using default", zap.Error(err))
		return Default
	}
	if resp == nil {
		c.logger.Warn("severity call returned no response, using default")
		return Default
	}

	lvl, err := Parse(resp.Content)
	if err != nil {
		c.logger.Warn("unparseable severity, using default",
			zap.String("raw", resp.Content),
			zap.Error(err),
		)
		return Default
	}
	c.logger.Debug("severity classified",
		zap.Int("level", int(lvl)),
		zap.Bool("full_context", text != transcript),
	)
	return lvl
}

// BuildPrompt renders the classification prompt for text.
func BuildPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You are an emergency response classification assistant. ")
	b.WriteString("Given the following emergency conversation transcript, determine the severity of the incident on a scale where:\n")
	b.WriteString("1 = Mild emergency (non-threatening disturbances),\n")
	b.WriteString("2 = Moderate emergency (situations needing prompt attention but not life-threatening),\n")
	b.WriteString("4 = Severe emergency (life-threatening or violent incidents).\n\n")
	b.WriteString(`Provide your answer strictly in JSON format, for example: {"severity": 1}.` + "\n\n")
	b.WriteString(`Transcript: "` + text + `"`)
	return b.String()
}
