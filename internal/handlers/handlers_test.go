package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/handlers"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/services"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/testkit/fakes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type chainStatus struct {
	configured, connected bool
}

func (s chainStatus) Configured() bool { return s.configured }
func (s chainStatus) Connected(context.Context) bool { return s.connected }

type testEnv struct {
	router    *gin.Engine
	store     *fakes.HistoryStore
	reader    *fakes.StateReader
	generator *fakes.TextGenerator
	hub       *handlers.WebSocketHub
}

type envOptions struct {
	reader    *fakes.StateReader
	generator *fakes.TextGenerator
	origins   []string
	hub       bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	reader := opts.reader
	if reader == nil {
		reader = &fakes.StateReader{Unconfigured: true}
	}
	store := fakes.NewHistoryStore()

	state := services.NewGameStateService(reader, logger)
	history := services.NewHistoryService(store, logger, services.HistoryOptions{
		MaxLimit: services.MaxHistoryLimit,
		WinRate:  0.25,
	})
	var generator services.TextGenerator
	if opts.generator != nil {
		generator = opts.generator
	}
	insight := services.NewInsightService(state, store, generator, logger)

	env := &testEnv{
		store:     store,
		reader:    reader,
		generator: opts.generator,
	}
	if opts.hub {
		env.hub = handlers.NewWebSocketHub(logger)
		t.Cleanup(env.hub.Stop)
	}

	env.router = handlers.NewRouter(handlers.RouterDeps{
		Logger:      logger,
		CORSOrigins: opts.origins,
		Chain:       chainStatus{configured: !reader.Unconfigured, connected: !reader.Unconfigured},
		State:       state,
		History:     history,
		Insight:     insight,
		Hub:         env.hub,
	})
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestRootAndStatus(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/api/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var root map[string]string
	decode(t, w, &root)
	if root["message"] != "PulseChain Plinko Game API" {
		t.Errorf("unexpected root message %q", root["message"])
	}

	w = env.do(http.MethodGet, "/api/status", "")
	var status models.HealthStatus
	decode(t, w, &status)
	if status.Status != "online" || status.Web3Connected || status.ContractConfigured || !status.StoreConnected {
		t.Errorf("unexpected status %+v", status)
	}

	env.store.Err = errors.New("connection refused")
	w = env.do(http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status must stay 200 when the store is down, got %d", w.Code)
	}
	decode(t, w, &status)
	if status.StoreConnected {
		t.Error("store_connected should be false when ping fails")
	}
}

func TestGameStateMock(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/api/game/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got := w.Header().Get(handlers.StateSourceHeader); got != models.StateSourceMock {
		t.Errorf("Expected source mock, got %q", got)
	}

	var body map[string]interface{}
	decode(t, w, &body)
	want := map[string]interface{}{
		"main_jackpot": "52341500000000000000000",
		"mini_jackpot": "8762300000000000000000",
		"play_count":   float64(52341),
		"dao_accrued":  "261710000000000000000",
		"dev_accrued":  "87240000000000000000",
		"entry_price":  "10000000000000000000",
		"finalized":    false,
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %v, want %v", k, body[k], v)
		}
	}
}

func TestGameStateFromChain(t *testing.T) {
	reader := &fakes.StateReader{Tuple: fakes.GameStateTuple(1001, 2002, 3003, 4004, 5005, 6006, true)}
	env := newTestEnv(t, envOptions{reader: reader})

	w := env.do(http.MethodGet, "/api/game/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(handlers.StateSourceHeader); got != models.StateSourceChain {
		t.Errorf("Expected source chain, got %q", got)
	}

	var state models.GameState
	decode(t, w, &state)
	if state.MainJackpot.String() != "1001" || state.MiniJackpot.String() != "2002" ||
		state.PlayCount != 3003 || state.DAOAccrued.String() != "4004" ||
		state.DevAccrued.String() != "5005" || state.EntryPrice.String() != "6006" || !state.Finalized {
		t.Errorf("fields not mapped by position: %+v", state)
	}
}

func TestGameStateChainFailure(t *testing.T) {
	reader := &fakes.StateReader{Err: services.ErrChainRead}
	env := newTestEnv(t, envOptions{reader: reader})

	w := env.do(http.MethodGet, "/api/game/state", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "main_jackpot") {
		t.Errorf("failure must not serve mock data: %s", w.Body.String())
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "Failed to read game state" {
		t.Errorf("unexpected error body %v", body)
	}
}

func TestGetSlots(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/api/game/slots", "")
	var body struct {
		SlotCount int           `json:"slot_count"`
		Slots     []models.Slot `json:"slots"`
	}
	decode(t, w, &body)
	if body.SlotCount != 20 || len(body.Slots) != 20 {
		t.Fatalf("unexpected slot table %+v", body)
	}
	if body.Slots[17].Token != "PROVEX" || body.Slots[17].Multiplier != 5 {
		t.Errorf("slot 17 = %+v", body.Slots[17])
	}
}

func TestRecordThenHistory(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	if w := env.do(http.MethodPost, "/api/game/record",
		`{"id":"play-0","player_address":"0xdef","slot":1,"payout":1.1}`); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// a client timestamp is ignored, so a backdated play is still the newest
	w := env.do(http.MethodPost, "/api/game/record",
		`{"id":"play-1","player_address":"0xabc","slot":9,"payout":20,"is_jackpot":false,"timestamp":"2020-01-01T00:00:00Z"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ok map[string]bool
	decode(t, w, &ok)
	if !ok["success"] {
		t.Fatalf("unexpected record body %s", w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/game/history?limit=1", "")
	var plays []models.GamePlay
	decode(t, w, &plays)
	if len(plays) != 1 {
		t.Fatalf("Expected 1 play, got %d", len(plays))
	}
	p := plays[0]
	if p.ID != "play-1" || p.PlayerAddress != "0xabc" || p.Slot != 9 || p.Payout != 20 || p.IsJackpot {
		t.Errorf("round trip mismatch: %+v", p)
	}
	if p.Timestamp.Equal(mustTime(t, "2020-01-01T00:00:00Z")) {
		t.Errorf("client timestamp should not be stored: %v", p.Timestamp)
	}
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	env.do(http.MethodPost, "/api/game/record", `{"player_address":"0xabc","slot":0,"payout":0}`)

	var plays []models.GamePlay
	decode(t, env.do(http.MethodGet, "/api/game/history", ""), &plays)
	if len(plays) != 1 {
		t.Fatalf("Expected 1 play, got %d", len(plays))
	}
	if plays[0].ID == "" || plays[0].Timestamp.IsZero() {
		t.Errorf("server should fill id and timestamp: %+v", plays[0])
	}
}

func TestHistoryLimit(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	for i := 0; i < 3; i++ {
		env.do(http.MethodPost, "/api/game/record", `{"player_address":"0xabc","slot":1,"payout":1.1}`)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?limit=2", 2},
		{"?limit=1000000", 3},
		{"?limit=0", 0},
	}

	for _, tt := range tests {
		w := env.do(http.MethodGet, "/api/game/history"+tt.query, "")
		if w.Code != http.StatusOK {
			t.Fatalf("history%s: Expected 200, got %d", tt.query, w.Code)
		}
		var plays []models.GamePlay
		decode(t, w, &plays)
		if len(plays) != tt.want {
			t.Errorf("history%s returned %d plays, want %d", tt.query, len(plays), tt.want)
		}
	}
}

func TestHistoryRejectsInvalidLimit(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.do(http.MethodPost, "/api/game/record", `{"player_address":"0xabc","slot":1,"payout":1.1}`)

	for _, query := range []string{"?limit=-5", "?limit=abc", "?limit=1.5"} {
		w := env.do(http.MethodGet, "/api/game/history"+query, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("history%s: Expected 400, got %d", query, w.Code)
		}
	}
}

func TestHistoryEmptyIsArray(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/api/game/history", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected empty array, got %s", w.Body.String())
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	for _, body := range []string{
		`{"player_address":"0xa","slot":0,"payout":10,"is_jackpot":true}`,
		`{"player_address":"0xb","slot":2,"payout":0}`,
		`{"player_address":"0xc","slot":5,"payout":5}`,
	} {
		if w := env.do(http.MethodPost, "/api/game/record", body); w.Code != http.StatusOK {
			t.Fatalf("record %s: %d", body, w.Code)
		}
	}

	var stats models.PlayStats
	decode(t, env.do(http.MethodGet, "/api/stats", ""), &stats)
	if stats.TotalPlays != 3 || stats.TotalPayouts != 15 || stats.JackpotWins != 1 || stats.WinRate != 0.25 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRecordRejectsInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"player_address":`},
		{"missing slot", `{"player_address":"0xabc","payout":1}`},
		{"missing payout", `{"player_address":"0xabc","slot":1}`},
		{"missing player", `{"slot":1,"payout":1}`},
		{"slot out of range", `{"player_address":"0xabc","slot":20,"payout":1}`},
		{"negative payout", `{"player_address":"0xabc","slot":1,"payout":-1}`},
		{"wrong type", `{"player_address":"0xabc","slot":"one","payout":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, envOptions{})

			w := env.do(http.MethodPost, "/api/game/record", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", w.Code)
			}
			if env.store.Len() != 0 {
				t.Error("invalid body must not be written")
			}
		})
	}
}

func TestStoreFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.store.Err = errors.New("dial tcp 10.0.0.5:27017: connection refused")

	for _, req := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/game/history", ""},
		{http.MethodGet, "/api/stats", ""},
		{http.MethodPost, "/api/game/record", `{"player_address":"0xabc","slot":1,"payout":1}`},
	} {
		w := env.do(req.method, req.path, req.body)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s %s: Expected 500, got %d", req.method, req.path, w.Code)
		}
		if strings.Contains(w.Body.String(), "10.0.0.5") {
			t.Errorf("%s %s leaked internal detail: %s", req.method, req.path, w.Body.String())
		}
	}
}

func TestInsight(t *testing.T) {
	t.Run("unavailable without key", func(t *testing.T) {
		env := newTestEnv(t, envOptions{})

		w := env.do(http.MethodPost, "/api/ai/insight", `{"query":"trend?"}`)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected 503, got %d", w.Code)
		}
	})

	t.Run("blank query", func(t *testing.T) {
		env := newTestEnv(t, envOptions{generator: &fakes.TextGenerator{Reply: "x"}})

		for _, body := range []string{`{}`, `{"query":"   "}`} {
			if w := env.do(http.MethodPost, "/api/ai/insight", body); w.Code != http.StatusBadRequest {
				t.Errorf("%s: Expected 400, got %d", body, w.Code)
			}
		}
		if len(env.generator.Prompts) != 0 {
			t.Error("generator called for invalid query")
		}
	})

	t.Run("reply", func(t *testing.T) {
		env := newTestEnv(t, envOptions{generator: &fakes.TextGenerator{Reply: "Main jackpot is growing."}})

		w := env.do(http.MethodPost, "/api/ai/insight", `{"query":"  trend?  "}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp models.InsightResponse
		decode(t, w, &resp)
		if resp.Insight != "Main jackpot is growing." {
			t.Errorf("unexpected insight %q", resp.Insight)
		}
		if !strings.HasSuffix(env.generator.Prompts[0], "User Query: trend?") {
			t.Errorf("query not trimmed in prompt: %q", env.generator.Prompts[0])
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		env := newTestEnv(t, envOptions{generator: &fakes.TextGenerator{Err: errors.New("quota exceeded")}})

		w := env.do(http.MethodPost, "/api/ai/insight", `{"query":"trend?"}`)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("Expected 500, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "quota") {
			t.Errorf("upstream detail leaked: %s", w.Body.String())
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}
