// Package assistant defines the optional natural-language service port.
// Everything built on it must keep working when the assistant is absent,
// slow or returning garbage; callers fall back to deterministic
// heuristics on any error.
package assistant

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when no assistant is configured or the
// circuit breaker is open.
var ErrUnavailable = errors.New("assistant unavailable")

// ParsedTask is the structured result of parsing free-form task text.
type ParsedTask struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	EstimateMinutes int        `json:"estimate_minutes"`
	Energy          string     `json:"energy"`
	Deadline        *time.Time `json:"deadline,omitempty"`
}

// PriorityContext carries what the assistant may consider when refining
// a heuristic priority.
type PriorityContext struct {
	Title              string
	Description        string
	Category           string
	Deadline           *time.Time
	HeuristicPriority  int
	ExistingCategories []string
}

// Assistant is the text-to-structure service port.
type Assistant interface {
	ParseTask(ctx context.Context, text string) (*ParsedTask, error)
	RefinePriority(ctx context.Context, pc PriorityContext) (int, error)
}
