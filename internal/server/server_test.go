package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/raysh454/utsushi/internal/app"
	"github.com/raysh454/utsushi/internal/model"
	"github.com/raysh454/utsushi/internal/reportstore"
	"github.com/raysh454/utsushi/internal/server"
	"github.com/raysh454/utsushi/internal/testutil"
)

// borrowedText embeds one verbatim corpus-001 sentence between original prose.
const borrowedText = "The essay below examines how rising temperatures reshape rural livelihoods across several continents. " +
	"Prolonged heat waves reduce agricultural yields, undermine food security, and increase vector-borne diseases." +
	" Communities that invest early in resilient infrastructure tend to recover faster from repeated shocks, according to ten recent field studies conducted by independent researchers worldwide."

var memDSN int

func newTestServer(t *testing.T, withStore bool) *httptest.Server {
	t.Helper()

	logger := &testutil.DummyLogger{}
	var store *reportstore.Store
	if withStore {
		memDSN++
		var err error
		store, err = reportstore.Open(fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", memDSN), logger)
		if err != nil {
			t.Fatalf("reportstore.Open: %v", err)
		}
		t.Cleanup(func() { store.Close() })
	}

	detector := app.NewDetector(nil, nil, store, logger)
	srv, err := server.NewServer(server.Config{Logger: logger}, detector)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func postDetect(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/detect", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /detect: %v", err)
	}
	return resp
}

func decodeResult(t *testing.T, resp *http.Response) model.DetectionResult {
	t.Helper()
	defer resp.Body.Close()
	var res model.DetectionResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return res
}

func TestDetectEndpoint(t *testing.T) {
	ts := newTestServer(t, false)

	payload, _ := json.Marshal(map[string]string{"text": borrowedText})
	resp := postDetect(t, ts, string(payload))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	res := decodeResult(t, resp)
	if res.Similarity != 27 {
		t.Errorf("similarity = %d, want 27", res.Similarity)
	}
	if res.Risk != model.RiskMedium {
		t.Errorf("risk = %q, want medium", res.Risk)
	}
	if len(res.Matches) != 1 || res.Matches[0].SourceID != "corpus-001" {
		t.Errorf("unexpected matches: %+v", res.Matches)
	}
}

func TestDetectEndpoint_BadRequests(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name string
		body string
	}{
		{"blank text", `{"text":"   "}`},
		{"missing text", `{}`},
		{"invalid json", `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postDetect(t, ts, tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestReportsEndpoints(t *testing.T) {
	ts := newTestServer(t, true)

	payload, _ := json.Marshal(map[string]string{"text": borrowedText})
	res := decodeResult(t, postDetect(t, ts, string(payload)))
	if res.ReportID == "" {
		t.Fatal("expected a report id")
	}

	// Listing shows the archived report.
	resp, err := http.Get(ts.URL + "/reports")
	if err != nil {
		t.Fatalf("GET /reports: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	var metas []reportstore.ReportMeta
	if err := json.NewDecoder(resp.Body).Decode(&metas); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(metas) != 1 || metas[0].ReportID != res.ReportID {
		t.Fatalf("unexpected listing: %+v", metas)
	}

	// Fetching by id returns the full result.
	resp2, err := http.Get(ts.URL + "/reports/" + res.ReportID)
	if err != nil {
		t.Fatalf("GET /reports/{id}: %v", err)
	}
	fetched := decodeResult(t, resp2)
	if fetched.Similarity != res.Similarity || len(fetched.Matches) != len(res.Matches) {
		t.Errorf("archived result mismatch: %+v vs %+v", fetched, res)
	}

	// Unknown id is a 404.
	resp3, err := http.Get(ts.URL + "/reports/no-such-report")
	if err != nil {
		t.Fatalf("GET missing report: %v", err)
	}
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusNotFound {
		t.Errorf("missing report status = %d, want 404", resp3.StatusCode)
	}
}

func TestReportsEndpoints_ArchiveDisabled(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/reports")
	if err != nil {
		t.Fatalf("GET /reports: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when archive disabled", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var health server.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestDetectWS(t *testing.T) {
	ts := newTestServer(t, false)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/detect"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"text": borrowedText}); err != nil {
		t.Fatalf("writing request frame: %v", err)
	}

	var phases []string
	for {
		var frame map[string]json.RawMessage
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("reading frame (phases so far %v): %v", phases, err)
		}
		if errMsg, ok := frame["error"]; ok {
			t.Fatalf("error frame: %s", errMsg)
		}
		if raw, ok := frame["result"]; ok {
			var res model.DetectionResult
			if err := json.Unmarshal(raw, &res); err != nil {
				t.Fatalf("decoding result frame: %v", err)
			}
			if res.Similarity != 27 {
				t.Errorf("similarity = %d, want 27", res.Similarity)
			}
			break
		}
		var ev app.ProgressEvent
		if raw, ok := frame["phase"]; ok {
			_ = json.Unmarshal(raw, &ev.Phase)
			phases = append(phases, ev.Phase)
		}
	}

	found := false
	for _, p := range phases {
		if p == "done" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a done progress frame, got %v", phases)
	}
}

func TestDetectWS_EmptyText(t *testing.T) {
	ts := newTestServer(t, false)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/detect"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"text": ""}); err != nil {
		t.Fatalf("writing request frame: %v", err)
	}

	var frame map[string]string
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if frame["error"] == "" {
		t.Errorf("expected an error frame, got %v", frame)
	}
}
