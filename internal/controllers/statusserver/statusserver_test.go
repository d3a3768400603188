package statusserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/airshed/airshed/internal/types"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	var wg sync.WaitGroup
	c, err := NewController(context.Background(), &wg, "127.0.0.1:0", "node1", zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestHandleStatusEmpty(t *testing.T) {
	c := newTestController(t)

	rec := httptest.NewRecorder()
	c.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.NodeID != "node1" {
		t.Errorf("node_id = %q", resp.NodeID)
	}
	if resp.UpdatedAt != "" {
		t.Error("updated_at should be empty before the first reading")
	}
}

func TestHandleStatusReflectsLatestReading(t *testing.T) {
	c := newTestController(t)
	c.update(types.Reading{
		NodeID:       "node1",
		PMS1Status:   "ok",
		PMS2Status:   "checksum_mismatch",
		SO2Status:    "ok",
		BMEStatus:    "ok",
		PM25PMS1:     types.Float(12),
		PM25Mean:     types.Float(12),
		PM25PairFlag: "PMS2_BAD",
	})

	rec := httptest.NewRecorder()
	c.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Sensors["pms1"].OK {
		t.Error("pms1 should be ok")
	}
	if resp.Sensors["pms2"].OK {
		t.Error("pms2 should not be ok")
	}
	if resp.Sensors["pms2"].Status != "checksum_mismatch" {
		t.Errorf("pms2 status = %q", resp.Sensors["pms2"].Status)
	}
	if resp.PairFlag != "PMS2_BAD" {
		t.Errorf("pair flag = %q", resp.PairFlag)
	}
	if resp.PM25PMS1 == nil || *resp.PM25PMS1 != 12 {
		t.Errorf("pm25_atm_pms1 = %v", resp.PM25PMS1)
	}
	if resp.AgeSeconds == nil {
		t.Error("age_seconds missing after a reading")
	}
}

func TestHandleHealthz(t *testing.T) {
	c := newTestController(t)
	rec := httptest.NewRecorder()
	c.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d", rec.Code)
	}
}
