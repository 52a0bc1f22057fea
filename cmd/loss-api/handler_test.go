package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Go2NetLoss/internal/model"
	"Go2NetLoss/internal/query"
)

type stubQuerier struct {
	groups []*model.GroupSummary
}

func (s *stubQuerier) ListGroups(context.Context) ([]*model.GroupSummary, error) {
	return s.groups, nil
}

func (s *stubQuerier) GetGroup(_ context.Context, errorType, configValue string) (*model.GroupSummary, error) {
	for _, g := range s.groups {
		if g.NetworkErrorType == errorType && g.ConfigValue == configValue {
			return g, nil
		}
	}
	return nil, query.ErrNotFound
}

func newTestRouter() http.Handler {
	return NewRouter(&APIHandler{querier: &stubQuerier{groups: []*model.GroupSummary{{
		NetworkErrorType: "lossrandom",
		ConfigValue:      "5",
		Iterations:       []string{"1"},
		Rows:             []model.SummaryRow{{Label: "Tbit", Technique: "tbit", Values: []float64{25}}},
	}}}})
}

func TestGetResult(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/results/lossrandom/5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		NetworkErrorType string `json:"network_error_type"`
		Rows             []struct {
			Label  string    `json:"label"`
			Values []float64 `json:"values"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.NetworkErrorType != "lossrandom" || len(body.Rows) != 1 || body.Rows[0].Values[0] != 25 {
		t.Errorf("Unexpected response: %s", rec.Body.String())
	}
}

func TestGetResult_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/results/lossgemodel/1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestListResultsAndHealth(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/results", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(body.Results))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected healthz to return 200, got %d", rec.Code)
	}
}
