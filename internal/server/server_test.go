package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/waribei/unit-economics/internal/app"
	"github.com/waribei/unit-economics/internal/config"
	"github.com/waribei/unit-economics/internal/store"
	"github.com/waribei/unit-economics/pkg/economics"
	"github.com/waribei/unit-economics/pkg/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (http.Handler, *app.App) {
	t.Helper()
	conf, err := config.LoadConfiguration(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	application, err := app.NewWithStore(context.Background(), conf, store.NewMemoryStore(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewWithStore() error = %v", err)
	}
	return NewHandler(zap.NewNop(), application, 0, []string{"http://localhost:5173"}, "test"), application
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func TestHandleVersion(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := doJSON(t, h, http.MethodGet, "/api/version", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["version"] != "test" {
		t.Fatalf("expected version test, got %q", resp["version"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/version"},
		{http.MethodGet, "/api/inputs"},
		{http.MethodGet, "/api/date"},
		{http.MethodPut, "/api/scenarios"},
		{http.MethodPost, "/api/compare"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := doJSON(t, h, tt.method, tt.path, nil)
			if rr.Code != http.StatusMethodNotAllowed {
				t.Fatalf("expected status 405, got %d", rr.Code)
			}
		})
	}
}

func TestHandleState(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := doJSON(t, h, http.MethodGet, "/api/state", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var st stateView
	decode(t, rr, &st)
	if st.Name != "Test" {
		t.Errorf("Name = %q, expected Test", st.Name)
	}
	testutil.AssertClose(t, "ContributionMarginPct", st.Metrics.ContributionMarginPct, 1.0)
	testutil.AssertClose(t, "MonthlyRevenue", st.Metrics.MonthlyRevenue, 6000)
	if st.PresetState != "NoPresetLoaded" {
		t.Errorf("PresetState = %q, expected NoPresetLoaded", st.PresetState)
	}
}

func TestHandleInputs(t *testing.T) {
	h, _ := newTestHandler(t)

	name := "Edited"
	rates := economics.Assumptions{RevenuePct: 5, PaymentCostPct: 1, LiquidityCostPct: 0.5, DefaultRatePct: 1}
	rr := doJSON(t, h, http.MethodPut, "/api/inputs", inputsRequest{Name: &name, Assumptions: &rates})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var st stateView
	decode(t, rr, &st)
	if st.Name != "Edited" || st.Assumptions != rates {
		t.Errorf("inputs not applied: %+v", st)
	}
	if st.Volume.LoanBookK != 50 {
		t.Errorf("volume must be untouched when omitted, got %+v", st.Volume)
	}
	testutil.AssertClose(t, "ContributionMarginPct", st.Metrics.ContributionMarginPct, 2.5)
}

func TestHandleInputsRejectsInvalid(t *testing.T) {
	h, application := newTestHandler(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"Percentage above 100", map[string]interface{}{"assumptions": map[string]float64{"revenuePct": 120}}},
		{"Negative volume", map[string]interface{}{"volume": map[string]float64{"loanBookK": -1}}},
		{"Malformed JSON", "not an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodPut, "/api/inputs", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rr.Code)
			}
		})
	}

	if application.Session.State().Assumptions.RevenuePct != 4 {
		t.Error("rejected inputs must not reach the session")
	}
}

func TestHandleInputsBodyTooLarge(t *testing.T) {
	h, _ := newTestHandler(t)

	huge := `{"name":"` + strings.Repeat("x", 128*1024) + `"}`
	req := httptest.NewRequest(http.MethodPut, "/api/inputs", strings.NewReader(huge))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
}

func TestHandleDatePresetDebounce(t *testing.T) {
	h, _ := newTestHandler(t)

	var first dateResponse
	decode(t, doJSON(t, h, http.MethodPost, "/api/date", dateRequest{Date: "2025-12-31"}), &first)
	if !first.Applied {
		t.Fatal("expected the Target preset to apply")
	}
	if first.State.Assumptions.RevenuePct != 4.5 || first.State.Volume.LoanBookK != 300 {
		t.Errorf("preset values not loaded: %+v", first.State)
	}
	if first.State.LastPresetDate != "2025-12-31" {
		t.Errorf("LastPresetDate = %q", first.State.LastPresetDate)
	}

	edited := economics.Assumptions{RevenuePct: 4.8, PaymentCostPct: 1.2, LiquidityCostPct: 0.4, DefaultRatePct: 1}
	doJSON(t, h, http.MethodPut, "/api/inputs", inputsRequest{Assumptions: &edited})

	var second dateResponse
	decode(t, doJSON(t, h, http.MethodPost, "/api/date", dateRequest{Date: "2025-12-31"}), &second)
	if second.Applied || second.State.Assumptions != edited {
		t.Errorf("re-selecting the loaded date must keep edits, got %+v", second)
	}

	var forced dateResponse
	decode(t, doJSON(t, h, http.MethodPost, "/api/date", dateRequest{Date: "2025-12-31", Force: true}), &forced)
	if !forced.Applied || forced.State.Assumptions.RevenuePct != 4.5 {
		t.Errorf("forced apply should reload the preset, got %+v", forced)
	}
}

func TestHandleDateInvalid(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := doJSON(t, h, http.MethodPost, "/api/date", dateRequest{Date: "31/12/2025"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleQuickScenarios(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := doJSON(t, h, http.MethodGet, "/api/quick-scenarios", nil)
	var list []map[string]interface{}
	decode(t, rr, &list)
	if len(list) != 1 || list[0]["name"] != "Stress" {
		t.Fatalf("unexpected quick scenarios: %v", list)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/quick-scenarios", quickScenarioRequest{Name: "Stress"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var st stateView
	decode(t, rr, &st)
	if st.Name != "Stress" || st.Assumptions.DefaultRatePct != 3 {
		t.Errorf("quick scenario not loaded: %+v", st)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/quick-scenarios", quickScenarioRequest{Name: "Missing"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleCompute(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := doJSON(t, h, http.MethodPost, "/api/compute", computeRequest{
		Assumptions: testutil.BaselineAssumptions(),
		Volume:      economics.Volume{LoanBookK: 100, CyclesPerMonth: 2.9, AvgLoanValue: 250, TxPerClientPerMonth: 2},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp computeResponse
	decode(t, rr, &resp)
	testutil.AssertClose(t, "ContributionMarginPct", resp.Metrics.ContributionMarginPct, -0.25)
	testutil.AssertClose(t, "MonthlyRevenue", resp.Metrics.MonthlyRevenue, 11020)
	if len(resp.Breakdown) == 0 || len(resp.Waterfall) == 0 {
		t.Fatal("expected breakdown and waterfall in response")
	}
}

func TestScenarioLifecycle(t *testing.T) {
	h, application := newTestHandler(t)
	doJSON(t, h, http.MethodPost, "/api/date", dateRequest{Date: "2025-08-15"})

	if rr := doJSON(t, h, http.MethodGet, "/api/baseline", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected no baseline before the first save, got %d", rr.Code)
	}
	if rr := doJSON(t, h, http.MethodGet, "/api/compare", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected no comparison before the first save, got %d", rr.Code)
	}

	rr := doJSON(t, h, http.MethodPost, "/api/scenarios", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	var saved scenarioView
	decode(t, rr, &saved)
	if saved.Label != "2025-08-15 – Test" {
		t.Errorf("Label = %q", saved.Label)
	}

	var list []scenarioView
	decode(t, doJSON(t, h, http.MethodGet, "/api/scenarios", nil), &list)
	if len(list) != 3 {
		t.Fatalf("expected two history entries plus one save, got %d", len(list))
	}
	if list[0].Name != "FY2024" || list[2].ID != saved.ID {
		t.Errorf("scenarios not sorted by date: %s, %s", list[0].Label, list[2].Label)
	}

	var baseline scenarioView
	decode(t, doJSON(t, h, http.MethodGet, "/api/baseline", nil), &baseline)
	if baseline.ID != saved.ID {
		t.Errorf("baseline = %s, expected %s", baseline.ID, saved.ID)
	}

	rates := economics.Assumptions{RevenuePct: 5, PaymentCostPct: 1, LiquidityCostPct: 0.5, DefaultRatePct: 1.5}
	doJSON(t, h, http.MethodPut, "/api/inputs", inputsRequest{Assumptions: &rates})
	var cmp economics.Comparison
	decode(t, doJSON(t, h, http.MethodGet, "/api/compare", nil), &cmp)
	testutil.AssertClose(t, "RevenuePct delta", cmp.Assumptions.RevenuePct, 1)

	var del deleteResponse
	decode(t, doJSON(t, h, http.MethodDelete, "/api/scenarios", deleteRequest{Labels: []string{saved.Label, "1999-01-01 – Nope"}}), &del)
	if del.Removed != 1 {
		t.Fatalf("Removed = %d, expected 1", del.Removed)
	}

	decode(t, doJSON(t, h, http.MethodGet, "/api/baseline", nil), &baseline)
	if baseline.ID != saved.ID {
		t.Error("baseline must survive deletion of its record")
	}

	snap, err := application.Store.Load(context.Background())
	if err != nil {
		t.Fatalf("expected persisted snapshot, got %v", err)
	}
	if len(snap.Scenarios) != 2 || snap.Baseline == nil {
		t.Errorf("persisted snapshot out of date: %d scenarios, baseline %v", len(snap.Scenarios), snap.Baseline)
	}
}

func TestHandleExport(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := doJSON(t, h, http.MethodGet, "/api/scenarios/export", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
	}
	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected header plus two history rows, got %d", len(records))
	}

	rr = doJSON(t, h, http.MethodGet, "/api/scenarios/export?format=pretty", nil)
	if !strings.Contains(rr.Body.String(), "Q1 2025") {
		t.Errorf("pretty export missing history: %s", rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodGet, "/api/scenarios/export?format=xml", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown format, got %d", rr.Code)
	}
}

func TestHandleTimeSeriesAndPresets(t *testing.T) {
	h, _ := newTestHandler(t)

	var series []scenarioView
	decode(t, doJSON(t, h, http.MethodGet, "/api/timeseries", nil), &series)
	if len(series) != 2 || series[0].Date != "2024-12-31" {
		t.Errorf("unexpected time series: %+v", series)
	}

	var presets []presetView
	decode(t, doJSON(t, h, http.MethodGet, "/api/presets", nil), &presets)
	if len(presets) != 2 || presets[0].Date != "2025-06-30" || presets[1].Volume == nil {
		t.Errorf("unexpected presets: %+v", presets)
	}
}

func TestHandleBreakdown(t *testing.T) {
	h, _ := newTestHandler(t)

	var resp breakdownResponse
	decode(t, doJSON(t, h, http.MethodGet, "/api/breakdown", nil), &resp)
	last := resp.Waterfall[len(resp.Waterfall)-1]
	testutil.AssertClose(t, "waterfall total", last.End, 1.0)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected CORS grant for foreign origin: %q", got)
	}
}
