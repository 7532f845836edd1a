package models

import (
	"fmt"
	"time"
)

// GenerationStatus is the terminal (or in-flight) state of a generation run.
type GenerationStatus string

const (
	// StatusRunning means the loop is still collecting rows.
	StatusRunning GenerationStatus = "running"
	// StatusSuccess means the result holds exactly the requested row count.
	StatusSuccess GenerationStatus = "success"
	// StatusPartial means the attempt budget ran out before the target was
	// reached; the result holds everything that was collected.
	StatusPartial GenerationStatus = "partial"
	// StatusFailed means the row source failed mid-run. Accumulated rows are
	// still surfaced for callers that choose to accept them.
	StatusFailed GenerationStatus = "failed"
)

// GenerationRequest describes one synthesis run.
type GenerationRequest struct {
	ID          string        `json:"id"`
	TargetCount int           `json:"target_count"`
	MaxAttempts int           `json:"max_attempts,omitempty"`
	Rules       []AnomalyRule `json:"anomalies,omitempty"`
	// Original is the reference table for leakage protection. Nil or empty
	// disables the check entirely ("no privacy check requested").
	Original  *Dataset  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks request invariants. A non-positive target is legal (the
// loop short-circuits to an empty success), a negative budget is not.
func (r *GenerationRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("generation request cannot be nil")
	}
	if r.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts cannot be negative")
	}
	return nil
}

// GenerationState is the loop's cross-iteration bookkeeping. It is owned
// exclusively by the generation loop and discarded when the run terminates.
type GenerationState struct {
	TargetCount   int `json:"target_count"`
	AttemptsMade  int `json:"attempts_made"`
	MaxAttempts   int `json:"max_attempts"`
	RowsCollected int `json:"rows_collected"`
}

// Needed returns how many rows are still missing.
func (s *GenerationState) Needed() int {
	n := s.TargetCount - s.RowsCollected
	if n < 0 {
		return 0
	}
	return n
}

// Exhausted reports whether the attempt budget has run out.
func (s *GenerationState) Exhausted() bool {
	return s.AttemptsMade >= s.MaxAttempts
}

// GenerationResult is the outcome of a run.
type GenerationResult struct {
	RequestID     string           `json:"request_id"`
	Status        GenerationStatus `json:"status"`
	Rows          []Row            `json:"-"`
	Columns       []string         `json:"columns"`
	RowCount      int              `json:"row_count"`
	Shortfall     int              `json:"shortfall"`
	AttemptsMade  int              `json:"attempts_made"`
	LeakedRemoved int              `json:"leaked_removed"`
	Duration      time.Duration    `json:"duration"`
}

// Dataset materializes the result as a dataset artifact.
func (r *GenerationResult) Dataset(name string) *Dataset {
	return &Dataset{
		ID:        r.RequestID,
		Name:      name,
		Columns:   r.Columns,
		Rows:      r.Rows,
		CreatedAt: time.Now(),
	}
}
