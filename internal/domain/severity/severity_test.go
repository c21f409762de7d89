package severity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matiasleandrokruk/dispatchrag/internal/infra/llm"
)

type stubProvider struct {
	content string
	err     error
	block   bool
	noResp  bool
	got     llm.ChatRequest
}

func (s *stubProvider) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.got = req
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.noResp {
		return nil, nil
	}
	return &llm.ChatResponse{Content: s.content}, nil
}
func (s *stubProvider) ModelInfo() llm.ModelMeta            { return llm.ModelMeta{ID: "stub", Provider: "stub"} }
func (s *stubProvider) HealthCheck(_ context.Context) error { return nil }

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		want    Level
		wantErr error
	}{
		{"plain", `{"severity": 1}`, Mild, nil},
		{"whitespace", "  \n{\"severity\":4}\n ", Severe, nil},
		{"fenced json", "```json\n{\"severity\": 4}\n```", Severe, nil},
		{"fenced bare", "```\n{\"severity\": 2}\n```", Moderate, nil},
		{"extra fields", `{"severity": 4, "reason": "weapon mentioned"}`, Severe, nil},
		{"three is invalid", `{"severity": 3}`, Default, ErrOutOfRange},
		{"zero", `{"severity": 0}`, Default, ErrOutOfRange},
		{"float", `{"severity": 4.5}`, Default, ErrOutOfRange},
		{"string", `{"severity": "4"}`, Default, ErrOutOfRange},
		{"missing", `{"level": 4}`, Default, ErrMissing},
		{"null", `{"severity": null}`, Default, ErrMissing},
		{"prose", "The severity is 4.", Default, ErrMalformed},
		{"array", `[4]`, Default, ErrMalformed},
		{"trailing", `{"severity": 1} {"severity": 4}`, Default, ErrMalformed},
		{"empty", "", Default, ErrMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
			if tc.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLevel_Valid(t *testing.T) {
	t.Parallel()

	for l := Level(-1); l <= 5; l++ {
		want := l == 1 || l == 2 || l == 4
		if l.Valid() != want {
			t.Errorf("Level(%d).Valid() = %v", l, l.Valid())
		}
	}
	if Severe.String() != "severe" || Level(3).String() != "invalid(3)" {
		t.Error("unexpected String output")
	}
}

func TestClassify_UsesFullContextWhenPresent(t *testing.T) {
	t.Parallel()

	p := &stubProvider{content: `{"severity": 4}`}
	c := NewClassifier(p, 0, 0, zap.NewNop())

	got := c.Classify(context.Background(), "he has a", "caller: he has a gun and is shouting")
	if got != Severe {
		t.Errorf("expected Severe, got %v", got)
	}
	prompt := p.got.Messages[0].Content
	if !strings.HasSuffix(prompt, `Transcript: "caller: he has a gun and is shouting"`) {
		t.Errorf("full context not used in prompt: %q", prompt)
	}
	if p.got.Temperature != 0 || p.got.MaxTokens != DefaultMaxTokens {
		t.Errorf("unexpected call params: %+v", p.got)
	}
}

func TestClassify_FallsBackToTranscript(t *testing.T) {
	t.Parallel()

	p := &stubProvider{content: `{"severity": 1}`}
	c := NewClassifier(p, 0, 0, zap.NewNop())

	if got := c.Classify(context.Background(), "loud music next door", "   "); got != Mild {
		t.Errorf("expected Mild, got %v", got)
	}
	if !strings.Contains(p.got.Messages[0].Content, `"loud music next door"`) {
		t.Error("transcript not used in prompt")
	}
}

func TestClassify_FailuresReturnDefault(t *testing.T) {
	t.Parallel()

	cases := map[string]*stubProvider{
		"malformed":    {content: "I think it's severe"},
		"out of range": {content: `{"severity": 3}`},
		"call error":   {err: errors.New("rate limited")},
		"nil response": {noResp: true},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			c := NewClassifier(p, 0, 0, zap.New(core))
			if got := c.Classify(context.Background(), "help", ""); got != Default {
				t.Errorf("expected Default, got %v", got)
			}
			if logs.Len() != 1 {
				t.Errorf("expected one warn log, got %d", logs.Len())
			}
		})
	}
}

func TestClassify_Timeout(t *testing.T) {
	t.Parallel()

	c := NewClassifier(&stubProvider{block: true}, 20*time.Millisecond, 0, nil)
	if got := c.Classify(context.Background(), "help", ""); got != Default {
		t.Errorf("expected Default, got %v", got)
	}
}

func TestClassify_NilProvider(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil, 0, 0, nil)
	if got := c.Classify(context.Background(), "help", ""); got != Default {
		t.Errorf("expected Default, got %v", got)
	}
}

func TestBuildPrompt_ListsScale(t *testing.T) {
	t.Parallel()

	p := BuildPrompt("x")
	for _, want := range []string{"1 = Mild", "2 = Moderate", "4 = Severe", `{"severity": 1}`} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "3 =") {
		t.Error("prompt must not offer level 3")
	}
}
