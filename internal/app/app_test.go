package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/dispatchrag/internal/domain/completion"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/prediction"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/config"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/llm"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/sqlite"
)

const testCorpus = `call_id,transcript
1,there is a fire in my kitchen and the smoke is everywhere
2,my cat is stuck in a tree and will not come down
3,someone broke into my car last night
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emergency.csv")
	if err := os.WriteFile(path, []byte(testCorpus), 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return path
}

// fakeOpenAI answers classification prompts with a severity JSON and
// everything else with a fixed continuation.
func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		content := "  the fire is spreading to the living room  "
		if len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, "emergency response classification") {
			content = `{"severity": 4}`
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"choices": []map[string]any{{
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.CorpusPath = writeCorpus(t)
	return cfg
}

func postGenerate(t *testing.T, h http.Handler, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /generate: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out map[string]any
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestBuild_MissingCorpus_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CorpusPath = filepath.Join(t.TempDir(), "absent.csv")
	if _, err := Build(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing corpus")
	}
}

func TestBuild_NoProviders_ServesUnavailableWithDefaultSeverity(t *testing.T) {
	t.Parallel()

	a, err := Build(context.Background(), testConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close() //nolint:errcheck

	if got := a.Providers.Names(); len(got) != 0 {
		t.Fatalf("expected empty chain without API keys, got %v", got)
	}
	if a.Engine.CorpusSize() != 3 {
		t.Errorf("CorpusSize = %d, want 3", a.Engine.CorpusSize())
	}

	body := postGenerate(t, a.Handler, `{"transcript":"there is a fire"}`)
	if body["completion"] != completion.Unavailable {
		t.Errorf("completion = %v, want %q", body["completion"], completion.Unavailable)
	}
	if body["severity_level"] != float64(2) {
		t.Errorf("severity_level = %v, want 2", body["severity_level"])
	}
}

func TestBuild_OpenAIChain_ScoresAndRecordsHistory(t *testing.T) {
	t.Parallel()

	srv := fakeOpenAI(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	cfg := testConfig(t)
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = srv.URL
	cfg.DatabasePath = dbPath

	a, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a.Start(context.Background())

	if got := a.Providers.Names(); len(got) != 1 || got[0] != "openai" {
		t.Fatalf("chain = %v, want [openai]", got)
	}

	body := postGenerate(t, a.Handler, `{"transcript":"there is a fire in my kitchen"}`)
	if body["completion"] != "the fire is spreading to the living room" {
		t.Errorf("completion = %v", body["completion"])
	}
	if body["severity_level"] != float64(4) {
		t.Errorf("severity_level = %v, want 4", body["severity_level"])
	}
	rouge, ok := body["rouge_scores"].(map[string]any)
	if !ok || rouge["rouge1"].(float64) <= 0 {
		t.Errorf("expected positive rouge1, got %v", body["rouge_scores"])
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sqlite.NewDB(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close() //nolint:errcheck
	records, err := prediction.NewStore(db).ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 recorded prediction, got %d", len(records))
	}
	if records[0].Tier != string(completion.TierPrimary) || records[0].Provider != "openai" {
		t.Errorf("unexpected record provenance: %+v", records[0])
	}
}

func TestBuild_CompletionVariant(t *testing.T) {
	t.Parallel()

	srv := fakeOpenAI(t)
	cfg := testConfig(t)
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = srv.URL
	cfg.ResponseVariant = "completion"

	a, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close() //nolint:errcheck

	body := postGenerate(t, a.Handler, `{"transcript":"there is a fire"}`)
	if body["provider"] != "primary" {
		t.Errorf("provider = %v, want primary", body["provider"])
	}
	if body["response"] != body["completion"] {
		t.Errorf("response and completion differ: %v", body)
	}
}

func TestBuildProviders_Ordering(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Providers = []string{"anthropic", "bogus", "ollama", "openai"}
	cfg.Anthropic.APIKey = "ak"

	router, err := BuildProviders(cfg, nil)
	if err != nil {
		t.Fatalf("BuildProviders: %v", err)
	}
	got := router.Names()
	want := []string{"anthropic", "ollama"}
	if len(got) != len(want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names = %v, want %v", got, want)
		}
	}
	if router.Available("openai") {
		t.Error("openai must not be registered without an API key")
	}
}

func TestSeverityProvider_Selection(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Providers = []string{"ollama"}
	router, err := BuildProviders(cfg, nil)
	if err != nil {
		t.Fatalf("BuildProviders: %v", err)
	}

	cfg.SeverityProvider = "openai"
	if p := severityProvider(cfg, router, zap.NewNop()); p == nil || p.ModelInfo().Provider != "ollama" {
		t.Errorf("expected fallback to chain head, got %v", p)
	}

	if p := severityProvider(config.Default(), llm.NewRouter(), zap.NewNop()); p != nil {
		t.Errorf("expected nil provider for empty chain, got %v", p)
	}
}

func TestStart_RecordsPredictionsServedAfterCancel(t *testing.T) {
	t.Parallel()

	srv := fakeOpenAI(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	cfg := testConfig(t)
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = srv.URL
	cfg.DatabasePath = dbPath

	a, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)
	cancel()

	// Requests still in flight during graceful shutdown.
	postGenerate(t, a.Handler, `{"transcript":"there is a fire in my kitchen"}`)
	postGenerate(t, a.Handler, `{"transcript":"someone broke into my car"}`)

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sqlite.NewDB(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close() //nolint:errcheck
	records, err := prediction.NewStore(db).ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 recorded predictions, got %d", len(records))
	}
}

func TestBuild_HealthReportsKeyPresence(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Providers = []string{"openai"}
	cfg.Anthropic.APIKey = "ak"

	a, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close() //nolint:errcheck

	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health: expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["openai_available"] != false {
		t.Errorf("openai_available = %v, want false", body["openai_available"])
	}
	// Anthropic is outside the chain but its key is set.
	if body["claude_available"] != true {
		t.Errorf("claude_available = %v, want true", body["claude_available"])
	}
}
