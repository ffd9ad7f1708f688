package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradevault/journal-backend/internal/api"
	"github.com/tradevault/journal-backend/internal/journal"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
)

func setupTestServer(t *testing.T) (*api.Server, *journal.Store) {
	t.Helper()

	store, err := journal.NewStore(zap.NewNop(), t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	server := api.NewServer(zap.NewNop(), types.DefaultServerConfig(), store, types.DefaultAnalyticsConfig())
	return server, store
}

func doRequest(t *testing.T, server *api.Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := doRequest(t, server, "GET", "/api/v1/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
}

func TestUpsertAndGetEntries(t *testing.T) {
	server, _ := setupTestServer(t)

	entry := &types.JournalEntry{
		UserID:     "user-1",
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		IsComplete: true,
		Notes:      "clean session",
	}

	rec := doRequest(t, server, "PUT", "/api/v1/entries", entry)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on upsert, got %d: %s", rec.Code, rec.Body.String())
	}

	var saved types.JournalEntry
	decodeBody(t, rec, &saved)
	if saved.ID == "" {
		t.Error("Expected an assigned entry ID")
	}

	rec = doRequest(t, server, "GET", "/api/v1/entries/user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on list, got %d", rec.Code)
	}

	var listing struct {
		UserID  string                `json:"userId"`
		Entries []*types.JournalEntry `json:"entries"`
		Count   int                   `json:"count"`
	}
	decodeBody(t, rec, &listing)
	if listing.Count != 1 || len(listing.Entries) != 1 {
		t.Fatalf("Expected one entry, got count=%d", listing.Count)
	}
	if listing.Entries[0].Notes != "clean session" {
		t.Errorf("Unexpected entry notes: %q", listing.Entries[0].Notes)
	}
}

func TestUpsertEntryInvalidBody(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest("PUT", "/api/v1/entries", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid body, got %d", rec.Code)
	}
}

func TestGetAnalytics(t *testing.T) {
	server, store := setupTestServer(t)

	today := time.Now().UTC()
	for i := 0; i < 5; i++ {
		entry := &types.JournalEntry{
			UserID:     "user-1",
			Date:       today.AddDate(0, 0, -i),
			IsComplete: true,
			ProcessMetrics: &types.ProcessMetrics{
				PlanAdherence: 4,
				ProcessScore:  float64(60 + i),
			},
		}
		if _, err := store.UpsertEntry(entry); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	rec := doRequest(t, server, "GET", "/api/v1/analytics/user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var data types.AnalyticsData
	decodeBody(t, rec, &data)
	if data.UserID != "user-1" {
		t.Errorf("Expected userId user-1, got %s", data.UserID)
	}
	if data.Consistency == nil || data.Consistency.CurrentStreak != 5 {
		t.Errorf("Unexpected consistency result: %+v", data.Consistency)
	}
}

func TestGetAnalyticsWithRange(t *testing.T) {
	server, store := setupTestServer(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if _, err := store.UpsertEntry(&types.JournalEntry{UserID: "user-1", Date: day, IsComplete: true}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	path := fmt.Sprintf("/api/v1/analytics/user-1?start=%s&end=%s",
		day.AddDate(0, 0, -7).Format(time.RFC3339),
		day.AddDate(0, 0, 1).Format(time.RFC3339))

	rec := doRequest(t, server, "GET", path, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var data types.AnalyticsData
	decodeBody(t, rec, &data)
	if data.Consistency.TotalEntries != 1 {
		t.Errorf("Expected 1 entry inside the range, got %d", data.Consistency.TotalEntries)
	}
}

func TestStrategyInsightsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body := map[string]interface{}{
		"strategy": &types.ProfessionalStrategy{ID: "s1", Name: "London breakout"},
		"trades":   []*types.Trade{},
	}

	rec := doRequest(t, server, "POST", "/api/v1/strategies/insights", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		StrategyID string                      `json:"strategyId"`
		Insights   []types.PersonalizedInsight `json:"insights"`
	}
	decodeBody(t, rec, &resp)
	if resp.StrategyID != "s1" {
		t.Errorf("Expected strategyId s1, got %s", resp.StrategyID)
	}
	// Below the trade minimum yields the single informational insight
	if len(resp.Insights) != 1 {
		t.Errorf("Expected 1 insight, got %d", len(resp.Insights))
	}
}

func TestStrategyInsightsRequiresStrategy(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := doRequest(t, server, "POST", "/api/v1/strategies/insights", map[string]interface{}{
		"trades": []*types.Trade{},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a strategy, got %d", rec.Code)
	}
}

func TestPatternsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := doRequest(t, server, "POST", "/api/v1/strategies/patterns", map[string]interface{}{
		"strategies": []*types.ProfessionalStrategy{},
		"trades":     []*types.Trade{},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Patterns []types.PerformancePattern `json:"patterns"`
		Count    int                        `json:"count"`
	}
	decodeBody(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("Expected no patterns for empty history, got %d", resp.Count)
	}
}

func TestPerformanceEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	exit := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	body := map[string]interface{}{
		"trades": []*types.Trade{
			{ID: "t1", StrategyID: "s1", PnL: decimal.NewFromInt(50), ExitTime: exit},
			{ID: "t2", StrategyID: "s1", PnL: decimal.NewFromInt(-25), ExitTime: exit.AddDate(0, 0, 1)},
		},
	}

	rec := doRequest(t, server, "POST", "/api/v1/strategies/performance", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var perf types.StrategyPerformance
	decodeBody(t, rec, &perf)
	if perf.TotalTrades != 2 || perf.WinRate != 50 {
		t.Errorf("Unexpected performance: %d trades, %.1f%% win rate", perf.TotalTrades, perf.WinRate)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := doRequest(t, server, "GET", "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from metrics endpoint, got %d", rec.Code)
	}
}
