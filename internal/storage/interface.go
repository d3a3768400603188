// Package storage defines the interface implemented by reading storage backends.
package storage

import (
	"context"
	"sync"

	"github.com/airshed/airshed/internal/types"
)

// StorageEngineInterface is an interface that provides a standardized
// method for starting storage backends. The returned channel accepts
// readings for the engine to persist.
type StorageEngineInterface interface {
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- types.Reading
}
