package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/analysis"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/config"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/dataset"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/llm"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/models"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/router"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.HistoryStore) {
	t.Helper()
	return newTestServerWithRouter(t, router.New(dataset.Default()))
}

func newTestServerWithRouter(t *testing.T, r *router.Router) (*httptest.Server, *storage.HistoryStore) {
	t.Helper()
	history, err := storage.OpenHistory(t.TempDir())
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	t.Cleanup(func() { history.Close() })

	svc := analysis.New(
		r,
		llm.New(config.LLMConfig{}, nil),
		history,
		nil,
	)
	srv := New(config.Default().Server, svc, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, history
}

func postForm(t *testing.T, ts *httptest.Server, path string, form url.Values) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	resp, err := http.PostForm(ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestAnalyzeYears(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := postForm(t, ts, "/analyze", url.Values{"query": {"Show mission launch years"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}

	var years []int
	if err := json.Unmarshal(body["data"], &years); err != nil {
		t.Fatalf("data: %v", err)
	}
	if diff := cmp.Diff([]int{1969, 2012, 1990, 1977, 1997}, years); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}

	var spec models.ChartSpec
	if err := json.Unmarshal(body["chart"], &spec); err != nil {
		t.Fatalf("chart: %v", err)
	}
	if spec.Kind != models.ChartScatter {
		t.Errorf("chart kind = %q", spec.Kind)
	}
}

func TestAnalyzeMissionFieldFallback(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := postForm(t, ts, "/analyze", url.Values{"mission": {"Display mission statuses"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var statuses []string
	if err := json.Unmarshal(body["data"], &statuses); err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 5 || statuses[0] != "Completed" {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestAnalyzeJSONBody(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader(`{"query":"list every mission"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAnalyzeEmptyQuery(t *testing.T) {
	ts, history := newTestServer(t)
	for _, form := range []url.Values{{}, {"query": {""}}, {"query": {"   "}}} {
		resp, body := postForm(t, ts, "/analyze", form)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("form %v: status = %d", form, resp.StatusCode)
		}
		if string(body["error"]) != `"Query is required"` {
			t.Errorf("form %v: error = %s", form, body["error"])
		}
	}
	n, err := history.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rejected queries recorded: %d", n)
	}
}

func TestAnalyzeProcessingError(t *testing.T) {
	r := router.New(dataset.Default(), router.Rule{Keyword: "boom", Intent: models.Intent("bogus")})
	ts, history := newTestServerWithRouter(t, r)

	resp, body := postForm(t, ts, "/analyze", url.Values{"query": {"boom"}})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	var msg string
	if err := json.Unmarshal(body["error"], &msg); err != nil {
		t.Fatalf("error field: %v", err)
	}
	if !strings.Contains(msg, "unknown intent") {
		t.Errorf("error = %q", msg)
	}
	if _, ok := body["data"]; ok {
		t.Error("error response should not carry data")
	}

	n, err := history.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("failed query recorded: %d", n)
	}
}

func TestAdvancedNotConfigured(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := postForm(t, ts, "/advanced_analyze", url.Values{"query": {"Explain Apollo 11"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var result string
	if err := json.Unmarshal(body["result"], &result); err != nil {
		t.Fatal(err)
	}
	if result != llm.NotConfiguredMessage {
		t.Errorf("result = %q", result)
	}
}

func TestAdvancedEmptyQuery(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := postForm(t, ts, "/advanced_analyze", url.Values{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, q := range []string{"mission", "year", "status"} {
		postForm(t, ts, "/analyze", url.Values{"query": {q}})
		time.Sleep(2 * time.Millisecond)
	}
	postForm(t, ts, "/advanced_analyze", url.Values{"query": {"freeform"}})

	resp, err := http.Get(ts.URL + "/history?per_page=3")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var entries []models.HistoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Query)
	}
	if diff := cmp.Diff([]string{"freeform", "status", "year"}, got); diff != "" {
		t.Errorf("history order mismatch (-want +got):\n%s", diff)
	}
	if entries[0].Kind != models.EntryAdvanced {
		t.Errorf("kind = %q", entries[0].Kind)
	}
	if got := resp.Header.Get("X-Total-Count"); got != "4" {
		t.Errorf("X-Total-Count = %q, want 4", got)
	}
}

func TestHistoryHugePage(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, q := range []string{"a", "b", "c"} {
		postForm(t, ts, "/analyze", url.Values{"query": {q}})
	}

	resp, err := http.Get(ts.URL + "/history?page=9223372036854775807&per_page=2")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var entries []models.HistoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty page past the end, got %+v", entries)
	}
	if got := resp.Header.Get("X-Total-Count"); got != "3" {
		t.Errorf("X-Total-Count = %q, want 3", got)
	}
}

func TestHistoryEmpty(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/history")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var entries []models.HistoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty array, got %v", entries)
	}
}

func TestHistoryBadParams(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, qs := range []string{"page=0", "page=abc", "per_page=-1", "per_page=x"} {
		resp, err := http.Get(ts.URL + "/history?" + qs)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d", qs, resp.StatusCode)
		}
	}
}

func TestSuggestions(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/suggestions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(llm.Suggestions(), body.Suggestions); diff != "" {
		t.Errorf("suggestions mismatch:\n%s", diff)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/analyze")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"
	svc := analysis.New(router.New(dataset.Default()), llm.New(config.LLMConfig{}, nil), nil, nil)
	srv := New(cfg, svc, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
