package persist

import (
	"context"
	"sync"

	"github.com/jbuehler23/eryndor-mmo/internal/state"
	"github.com/jbuehler23/eryndor-mmo/internal/telemetry"
	"github.com/jbuehler23/eryndor-mmo/logging"
	loglifecycle "github.com/jbuehler23/eryndor-mmo/logging/lifecycle"
)

// SaveResult reports one finished snapshot write. Version is the character
// version at snapshot time; the simulation clears the dirty flag only when
// it still matches.
type SaveResult struct {
	CharacterID string
	Version     uint64
	Err         error
}

type checkpointBatch struct {
	tick      uint64
	snapshots []*state.Character
}

// Checkpointer writes character snapshots off the tick goroutine. A full
// queue drops the batch: the characters stay dirty, so the next checkpoint
// interval retries them.
type Checkpointer struct {
	store    *Store
	pub      logging.Publisher
	logger   telemetry.Logger
	onResult func(SaveResult)

	queue chan checkpointBatch
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// NewCheckpointer starts a single background writer. onResult is invoked on
// the writer goroutine once per character, success or failure.
func NewCheckpointer(store *Store, pub logging.Publisher, logger telemetry.Logger, onResult func(SaveResult)) *Checkpointer {
	if pub == nil {
		pub = logging.NopPublisher{}
	}
	cp := &Checkpointer{
		store:    store,
		pub:      pub,
		logger:   logger,
		onResult: onResult,
		queue:    make(chan checkpointBatch, 32),
	}
	cp.wg.Add(1)
	go cp.run()
	return cp
}

// Submit stages a batch of snapshots for writing. Never blocks the caller;
// returns false when the queue is saturated and the batch was dropped.
func (cp *Checkpointer) Submit(tick uint64, snapshots []*state.Character) bool {
	if cp == nil || len(snapshots) == 0 {
		return true
	}
	select {
	case cp.queue <- checkpointBatch{tick: tick, snapshots: snapshots}:
		return true
	default:
		if cp.logger != nil {
			cp.logger.Printf("[checkpoint] queue full, dropping batch of %d at tick %d", len(snapshots), tick)
		}
		return false
	}
}

// Close stops accepting batches and waits for in-flight writes to finish.
func (cp *Checkpointer) Close() {
	if cp == nil {
		return
	}
	cp.closeOnce.Do(func() {
		close(cp.queue)
	})
	cp.wg.Wait()
}

func (cp *Checkpointer) run() {
	defer cp.wg.Done()
	ctx := context.Background()
	for batch := range cp.queue {
		for _, snapshot := range batch.snapshots {
			err := cp.store.SaveCharacter(ctx, snapshot)
			if err != nil && cp.logger != nil {
				cp.logger.Printf("[checkpoint] save %s failed: %v", snapshot.ID, err)
			}
			if cp.onResult != nil {
				cp.onResult(SaveResult{CharacterID: snapshot.ID, Version: snapshot.Version, Err: err})
			}
		}
		loglifecycle.Checkpoint(ctx, cp.pub, batch.tick, loglifecycle.Payload{Tick: batch.tick})
	}
}
