// Package app wires configuration, sensors, storage, and controllers
// into the running daemon.
package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"periph.io/x/periph/host"

	"github.com/airshed/airshed/internal/collector"
	"github.com/airshed/airshed/internal/controllers/statusserver"
	"github.com/airshed/airshed/internal/log"
	"github.com/airshed/airshed/internal/managers"
	"github.com/airshed/airshed/internal/sensors/bme"
	"github.com/airshed/airshed/internal/sensors/pms"
	"github.com/airshed/airshed/internal/sensors/so2"
	"github.com/airshed/airshed/pkg/config"
	"github.com/airshed/airshed/pkg/timeutil"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	loc := timeutil.LoadLocation(cfg.Node.Timezone)

	// Initialize the storage manager and its distributor
	storageManager, err := managers.NewStorageManager(ctx, &wg, cfg, loc)
	if err != nil {
		return err
	}

	// Start the status server, if configured, and subscribe it to the
	// reading stream alongside the storage engines
	if cfg.Controllers.StatusServer != nil {
		sc, err := statusserver.NewController(ctx, &wg, cfg.Controllers.StatusServer.ListenAddr, cfg.Node.NodeID, a.logger)
		if err != nil {
			return err
		}
		if err := sc.StartController(); err != nil {
			return err
		}
		storageManager.Subscribe(ctx, &wg, sc)
	}

	// Bring up the I2C host drivers once, before any bus is opened
	if cfg.Sensors.SO2.Enabled || cfg.Sensors.BME.Enabled {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("initializing periph host: %w", err)
		}
	}

	pms1 := a.openParticulate("pms1", cfg.Sensors.PMS1)
	pms2 := a.openParticulate("pms2", cfg.Sensors.PMS2)
	gas := a.openGas(cfg.Sensors.SO2)
	climate := a.openClimate(cfg.Sensors.BME)

	interval := time.Duration(cfg.Node.TickSeconds * float64(time.Second))
	col := collector.New(cfg.Node.NodeID, interval, pms1, pms2, gas, climate,
		storageManager.GetReadingDistributor(), a.logger)

	wg.Add(1)
	go func() {
		defer wg.Done()
		col.Run(ctx)
	}()

	log.Info("application started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// openParticulate opens a PMS5003 transport. An open failure disables
// the sensor for the process lifetime; every later tick records it as
// failed rather than retrying the open.
func (a *App) openParticulate(name string, dc config.SerialDeviceData) collector.ParticulateSource {
	if !dc.Enabled {
		return nil
	}

	r := pms.New(name, dc, a.logger)
	if err := r.Open(); err != nil {
		a.logger.Errorf("could not open %s (%s): %v; sensor disabled for this run",
			name, describeTransport(dc), err)
		return nil
	}
	return r
}

func describeTransport(dc config.SerialDeviceData) string {
	if dc.SerialDevice != "" {
		return dc.SerialDevice
	}
	return net.JoinHostPort(dc.Hostname, dc.Port)
}

func (a *App) openGas(dc config.I2CDeviceData) collector.GasSource {
	if !dc.Enabled {
		return nil
	}

	s, err := so2.New(dc.Bus, dc.Address, time.Duration(dc.MinIntervalMS)*time.Millisecond, a.logger)
	if err != nil {
		a.logger.Errorf("could not open SO2 sensor on bus %q: %v; sensor disabled for this run", dc.Bus, err)
		return nil
	}
	return s
}

func (a *App) openClimate(dc config.I2CDeviceData) collector.ClimateSource {
	if !dc.Enabled {
		return nil
	}

	s, err := bme.New(dc.Bus, dc.Address, a.logger)
	if err != nil {
		a.logger.Errorf("could not open BME sensor on bus %q: %v; sensor disabled for this run", dc.Bus, err)
		return nil
	}
	return s
}
