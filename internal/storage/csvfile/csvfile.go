// Package csvfile stores readings in daily CSV files, one row per tick.
// Files are named <node>_<local-date>.csv under <data_dir>/daily and
// rotate when the local date changes. Absent values are written as the
// NODATA sentinel so every row has the full column set.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/airshed/airshed/internal/log"
	"github.com/airshed/airshed/internal/types"
	"github.com/airshed/airshed/pkg/timeutil"
)

// Storage holds the state of the daily CSV storage backend
type Storage struct {
	dir      string
	nodeID   string
	loc      *time.Location
	file     *os.File
	writer   *csv.Writer
	fileDate string
}

// New creates the daily directory and returns a CSV storage backend.
// Files are opened lazily on the first reading of each local date.
func New(dataDir, nodeID string, loc *time.Location) (*Storage, error) {
	dir := filepath.Join(dataDir, "daily")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating daily directory %q: %w", dir, err)
	}
	return &Storage{
		dir:    dir,
		nodeID: nodeID,
		loc:    loc,
	}, nil
}

// StartStorageEngine creates a goroutine loop to receive readings and
// append them to the current daily file
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting CSV storage engine...")
	readingChan := make(chan types.Reading, 10)
	go s.processReadings(ctx, wg, readingChan)
	return readingChan
}

func (s *Storage) processReadings(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	wg.Add(1)
	defer wg.Done()
	defer s.closeFile()

	for {
		select {
		case r := <-rchan:
			if err := s.StoreReading(r); err != nil {
				log.Error("could not store reading in CSV:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling CSV processor.")
			return
		}
	}
}

// StoreReading appends one reading to the daily file for its local
// date, rotating and writing a header when the date changes
func (s *Storage) StoreReading(r types.Reading) error {
	date := timeutil.LocalDate(r.Timestamp, s.loc)
	if s.file == nil || date != s.fileDate {
		if err := s.rotate(date); err != nil {
			return err
		}
	}

	if err := s.writer.Write(r.CSVRow(s.loc)); err != nil {
		return fmt.Errorf("writing CSV row: %w", err)
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Path returns the daily file path for the given local date
func (s *Storage) Path(date string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", s.nodeID, date))
}

func (s *Storage) rotate(date string) error {
	s.closeFile()

	path := s.Path(date)
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening daily file %q: %w", path, err)
	}
	s.file = f
	s.writer = csv.NewWriter(f)
	s.fileDate = date

	if newFile {
		if err := s.writer.Write(types.CSVHeader()); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
		s.writer.Flush()
		log.Info("created daily file:", path)
	}
	return s.writer.Error()
}

func (s *Storage) closeFile() {
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		s.file.Close()
	}
	s.file = nil
	s.writer = nil
	s.fileDate = ""
}
