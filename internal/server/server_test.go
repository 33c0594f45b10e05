package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"procwatch/internal/detector"
	"procwatch/internal/output/alertring"
	"procwatch/internal/rules"
	"procwatch/pkg/models"
)

func TestIntrospectionEndpoints(t *testing.T) {
	det := detector.New()
	ring := alertring.NewRing(10)
	if err := ring.WriteAlerts([]models.Alert{{ID: "a1", RuleName: "High CPU Usage"}}); err != nil {
		t.Fatalf("seed ring: %v", err)
	}

	s := New("127.0.0.1:0", det, ring)

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rules", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/rules returned %d", rec.Code)
	}
	var rs []rules.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &rs); err != nil {
		t.Fatalf("decode rules: %v", err)
	}
	if len(rs) != len(det.Rules()) {
		t.Fatalf("expected %d rules, got %d", len(det.Rules()), len(rs))
	}

	rec = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alerts/recent", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/alerts/recent returned %d", rec.Code)
	}
	var alerts []models.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("decode alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ID != "a1" {
		t.Fatalf("unexpected alerts payload: %+v", alerts)
	}

	rec = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics returned %d", rec.Code)
	}
}
