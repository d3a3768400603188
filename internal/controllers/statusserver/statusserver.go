// Package statusserver serves node health over HTTP: a JSON status
// endpoint with the latest reading, a liveness probe, and Prometheus
// metrics. It consumes the same reading stream as the storage backends.
package statusserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/airshed/airshed/internal/types"
)

// Controller serves the status endpoints and tracks the latest reading
type Controller struct {
	ctx    context.Context
	wg     *sync.WaitGroup
	addr   string
	nodeID string
	logger *zap.SugaredLogger

	server  *http.Server
	metrics *metrics

	mu       sync.RWMutex
	latest   *types.Reading
	latestAt time.Time
}

// NewController creates a status server listening on addr
func NewController(ctx context.Context, wg *sync.WaitGroup, addr, nodeID string, logger *zap.SugaredLogger) (*Controller, error) {
	if addr == "" {
		return nil, fmt.Errorf("status server address must not be empty")
	}
	c := &Controller{
		ctx:     ctx,
		wg:      wg,
		addr:    addr,
		nodeID:  nodeID,
		logger:  logger.Named("statusserver"),
		metrics: newMetrics(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/status", c.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/healthz", c.handleHealthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	c.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return c, nil
}

// StartController starts the HTTP server and the shutdown watcher
func (c *Controller) StartController() error {
	c.logger.Infof("starting status server on %s", c.addr)

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Errorf("status server error: %v", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.server.Shutdown(shutdownCtx); err != nil {
			c.logger.Errorf("status server shutdown: %v", err)
		}
	}()
	return nil
}

// StartStorageEngine subscribes the controller to the reading stream so
// the status endpoint and metrics always reflect the latest tick
func (c *Controller) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	readingChan := make(chan types.Reading, 10)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case r := <-readingChan:
				c.update(r)
			case <-ctx.Done():
				return
			}
		}
	}()
	return readingChan
}

func (c *Controller) update(r types.Reading) {
	c.mu.Lock()
	c.latest = &r
	c.latestAt = time.Now()
	c.mu.Unlock()
	c.metrics.observe(r)
}

type sensorStatus struct {
	Status string `json:"status"`
	OK     bool   `json:"ok"`
}

type statusResponse struct {
	NodeID     string   `json:"node_id"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
	AgeSeconds *float64 `json:"age_seconds,omitempty"`

	Sensors map[string]sensorStatus `json:"sensors"`

	PM25PMS1     *float64 `json:"pm25_atm_pms1"`
	PM25PMS2     *float64 `json:"pm25_atm_pms2"`
	PM25Mean     *float64 `json:"pm25_pms_mean"`
	PM25RPD      *float64 `json:"pm25_pms_rpd"`
	PairFlag     string   `json:"pm25_pair_flag,omitempty"`
	Suspect      string   `json:"pm25_suspect_sensor,omitempty"`
	PM25AQI      *int     `json:"pm25_aqi"`
	SO2PPM       *float64 `json:"so2_ppm"`
	TempC        *float64 `json:"temp_c"`
	RHPct        *float64 `json:"rh_pct"`
	PressureHPa  *float64 `json:"pressure_hpa"`
}

func (c *Controller) handleStatus(w http.ResponseWriter, _ *http.Request) {
	c.mu.RLock()
	latest := c.latest
	latestAt := c.latestAt
	c.mu.RUnlock()

	resp := statusResponse{
		NodeID:  c.nodeID,
		Sensors: map[string]sensorStatus{},
	}
	if latest != nil {
		age := time.Since(latestAt).Seconds()
		resp.UpdatedAt = latestAt.UTC().Format(time.RFC3339)
		resp.AgeSeconds = &age
		resp.Sensors["pms1"] = sensorStatus{Status: latest.PMS1Status, OK: latest.PMS1Status == "ok"}
		resp.Sensors["pms2"] = sensorStatus{Status: latest.PMS2Status, OK: latest.PMS2Status == "ok"}
		resp.Sensors["so2"] = sensorStatus{Status: latest.SO2Status, OK: latest.SO2Status == "ok"}
		resp.Sensors["bme"] = sensorStatus{Status: latest.BMEStatus, OK: latest.BMEStatus == "ok"}
		resp.PM25PMS1 = latest.PM25PMS1
		resp.PM25PMS2 = latest.PM25PMS2
		resp.PM25Mean = latest.PM25Mean
		resp.PM25RPD = latest.PM25RPD
		resp.PairFlag = latest.PM25PairFlag
		resp.Suspect = latest.PM25SuspectSensor
		resp.PM25AQI = latest.PM25AQI
		resp.SO2PPM = latest.SO2PPM
		resp.TempC = latest.TempC
		resp.RHPct = latest.RHPct
		resp.PressureHPa = latest.PressureHPa
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		c.logger.Errorf("encoding status response: %v", err)
	}
}

func (c *Controller) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
