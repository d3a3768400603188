// Package timescaledb stores readings in a TimescaleDB hypertable.
package timescaledb

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/airshed/airshed/internal/log"
	"github.com/airshed/airshed/internal/types"
)

// Storage holds the connection for a TimescaleDB storage backend
type Storage struct {
	db *gorm.DB
}

// New connects to TimescaleDB and creates the readings hypertable and
// its continuous aggregate if they do not exist
func New(ctx context.Context, connectionString string) (*Storage, error) {
	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to TimescaleDB: %w", err)
	}
	t := &Storage{db: db}

	log.Info("creating readings table...")
	if err := db.WithContext(ctx).Exec(createTableSQL).Error; err != nil {
		return nil, fmt.Errorf("creating readings table: %w", err)
	}

	log.Info("creating TimescaleDB extension...")
	if err := db.WithContext(ctx).Exec(createExtensionSQL).Error; err != nil {
		return nil, fmt.Errorf("creating TimescaleDB extension: %w", err)
	}

	log.Info("creating hypertable...")
	if err := db.WithContext(ctx).Exec(createHypertableSQL).Error; err != nil {
		return nil, fmt.Errorf("creating hypertable: %w", err)
	}

	log.Info("creating 1h continuous aggregate...")
	if err := db.WithContext(ctx).Exec(create1hViewSQL).Error; err != nil {
		return nil, fmt.Errorf("creating 1h view: %w", err)
	}
	if err := db.WithContext(ctx).Exec(addAggregationPolicy1hSQL).Error; err != nil {
		return nil, fmt.Errorf("adding 1h aggregation policy: %w", err)
	}

	return t, nil
}

// StartStorageEngine creates a goroutine loop to receive readings and
// send them off to TimescaleDB
func (t *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting TimescaleDB storage engine...")
	readingChan := make(chan types.Reading, 10)
	go t.processReadings(ctx, wg, readingChan)
	return readingChan
}

func (t *Storage) processReadings(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := t.StoreReading(r); err != nil {
				log.Error("could not store reading:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling readings processor.")
			return
		}
	}
}

// StoreReading inserts one reading row
func (t *Storage) StoreReading(r types.Reading) error {
	return t.db.Create(&r).Error
}
