// Package managers wires configured backends into the reading pipeline.
package managers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/airshed/airshed/internal/storage"
	"github.com/airshed/airshed/internal/storage/csvfile"
	"github.com/airshed/airshed/internal/storage/timescaledb"
	"github.com/airshed/airshed/internal/types"
	"github.com/airshed/airshed/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines            []StorageEngine
	ReadingDistributor chan types.Reading
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing readings to the engine
type StorageEngine struct {
	Engine storage.StorageEngineInterface
	C      chan<- types.Reading
}

// NewStorageManager creates a StorageManager populated with all
// configured storage engines and starts the reading distributor
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, loc *time.Location) (*StorageManager, error) {
	s := StorageManager{}

	s.ReadingDistributor = make(chan types.Reading, 20)

	go s.startReadingDistributor(ctx, wg)

	if cfg.Storage.CSV != nil {
		dir := cfg.Storage.CSV.Directory
		if dir == "" {
			dir = cfg.Node.DataDir
		}
		engine, err := csvfile.New(dir, cfg.Node.NodeID, loc)
		if err != nil {
			return &s, fmt.Errorf("could not add CSV storage backend: %w", err)
		}
		s.Subscribe(ctx, wg, engine)
	}

	if cfg.Storage.TimescaleDB != nil && cfg.Storage.TimescaleDB.ConnectionString != "" {
		engine, err := timescaledb.New(ctx, cfg.Storage.TimescaleDB.ConnectionString)
		if err != nil {
			return &s, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
		s.Subscribe(ctx, wg, engine)
	}

	return &s, nil
}

// GetReadingDistributor returns the reading distributor channel
func (s *StorageManager) GetReadingDistributor() chan types.Reading {
	return s.ReadingDistributor
}

// Subscribe starts an engine and adds it to the fan-out set. Used for
// the configured storage backends and for controllers that consume the
// reading stream.
func (s *StorageManager) Subscribe(ctx context.Context, wg *sync.WaitGroup, engine storage.StorageEngineInterface) {
	s.Engines = append(s.Engines, StorageEngine{
		Engine: engine,
		C:      engine.StartStorageEngine(ctx, wg),
	})
}

// startReadingDistributor receives readings from the collector and fans
// them out to the storage backends
func (s *StorageManager) startReadingDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-s.ReadingDistributor:
			for _, e := range s.Engines {
				e.C <- r
			}
		case <-ctx.Done():
			return
		}
	}
}
