// Package history archives completed batch runs.
//
// A [Run] records where a batch came from, where its heights went and what
// they were. Runs are kept in a [Store]:
//   - NullStore: discards runs (history disabled)
//   - FileStore: one JSON file per run, for single-machine CLI use
//   - MongoStore: a MongoDB collection shared between machines
//
// Saving history is best effort. Callers log a failed Save and carry on; the
// heights file is the product of a run, not its history entry.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/blockdrop/pkg/batch"
)

// DefaultLimit is the number of runs listed when no limit is given.
const DefaultLimit = 20

// Run records one completed batch run.
type Run struct {
	ID        string      `json:"id" bson:"_id"`
	StartedAt time.Time   `json:"started_at" bson:"started_at"`
	Input     string      `json:"input" bson:"input"`
	Output    string      `json:"output" bson:"output"`
	InputHash string      `json:"input_hash,omitempty" bson:"input_hash,omitempty"`
	Policy    string      `json:"policy" bson:"policy"`
	Workers   int         `json:"workers" bson:"workers"`
	Heights   []int       `json:"heights" bson:"heights"`
	Stats     batch.Stats `json:"stats" bson:"stats"`
}

// NewRun builds a history entry for res with a fresh random ID.
func NewRun(started time.Time, input, output string, r *batch.Runner, res *batch.Result) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: started.UTC(),
		Input:     input,
		Output:    output,
		Policy:    r.Policy.String(),
		Workers:   r.Workers,
	}
	if res != nil {
		run.Heights = res.Heights
		run.Stats = res.Stats
	}
	return run
}

// Store persists runs.
type Store interface {
	// Save stores run. The run's ID must be unique.
	Save(ctx context.Context, run *Run) error

	// Recent returns up to limit runs, newest first. A limit <= 0 uses
	// DefaultLimit.
	Recent(ctx context.Context, limit int) ([]*Run, error)

	// Close releases the store's resources.
	Close(ctx context.Context) error
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// NullStore discards every run.
type NullStore struct{}

// NewNullStore returns a store that keeps nothing.
func NewNullStore() Store { return NullStore{} }

func (NullStore) Save(context.Context, *Run) error            { return nil }
func (NullStore) Recent(context.Context, int) ([]*Run, error) { return nil, nil }
func (NullStore) Close(context.Context) error                 { return nil }

var _ Store = NullStore{}
