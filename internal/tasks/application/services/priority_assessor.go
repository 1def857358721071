// Package services holds task-level domain services, currently the
// priority assessment heuristic and its optional assistant refinement.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tempora/internal/assistant"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/task"
	"github.com/felixgeelhaar/tempora/internal/tasks/domain/value_objects"
)

// Deadline-urgency thresholds in hours.
const (
	deadlineUrgentHours = 4
	deadlineSoonHours   = 24
	deadlineNearHours   = 48
	deadlineWeekHours   = 168
)

// billableCategories mark externally-billable or client-facing work that
// earns a first-of-category boost.
var billableCategories = map[string]struct{}{
	"client":     {},
	"billable":   {},
	"consulting": {},
	"freelance":  {},
}

// AssessInput describes the task being prioritized.
type AssessInput struct {
	Title       string
	Description string
	Category    string
	Deadline    *time.Time
	// ExistingTasks are the user's active tasks, used for the
	// first-of-category boost.
	ExistingTasks []*task.Task
	Now           time.Time
}

// PriorityAssessor computes a 1-5 priority from deadline urgency and
// category signals. When an assistant is configured its answer replaces
// the heuristic; any assistant failure silently keeps the heuristic.
type PriorityAssessor struct {
	assistant assistant.Assistant
	logger    *slog.Logger
}

// NewPriorityAssessor creates an assessor. assistant may be nil.
func NewPriorityAssessor(a assistant.Assistant, logger *slog.Logger) *PriorityAssessor {
	return &PriorityAssessor{assistant: a, logger: logger}
}

// Assess returns the task's priority.
func (a *PriorityAssessor) Assess(ctx context.Context, input AssessInput) value_objects.Priority {
	heuristic := a.heuristic(input)

	if a.assistant == nil {
		return heuristic
	}

	refined, err := a.assistant.RefinePriority(ctx, assistant.PriorityContext{
		Title:              input.Title,
		Description:        input.Description,
		Category:           input.Category,
		Deadline:           input.Deadline,
		HeuristicPriority:  heuristic.Int(),
		ExistingCategories: categoriesOf(input.ExistingTasks),
	})
	if err != nil {
		a.logger.Debug("assistant priority refinement failed, keeping heuristic",
			slog.String("error", err.Error()))
		return heuristic
	}
	if refined < value_objects.PriorityLowest.Int() || refined > value_objects.PriorityUrgent.Int() {
		a.logger.Debug("assistant returned out-of-range priority, keeping heuristic",
			slog.Int("refined", refined))
		return heuristic
	}
	return value_objects.NewPriority(refined)
}

// Heuristic exposes the deterministic baseline without the assistant.
func (a *PriorityAssessor) Heuristic(input AssessInput) value_objects.Priority {
	return a.heuristic(input)
}

func (a *PriorityAssessor) heuristic(input AssessInput) value_objects.Priority {
	priority := value_objects.PriorityMedium.Int()

	if input.Deadline != nil {
		hours := input.Deadline.Sub(input.Now).Hours()
		switch {
		case hours <= deadlineUrgentHours:
			priority = 5
		case hours <= deadlineSoonHours:
			priority = 4
		case hours <= deadlineNearHours:
			priority = 3
		case hours <= deadlineWeekHours:
			priority = 2
		default:
			priority = 1
		}
	}

	if isFirstBillable(input.Category, input.ExistingTasks) {
		priority++
	}

	return value_objects.NewPriority(priority)
}

func isFirstBillable(category string, existing []*task.Task) bool {
	if _, billable := billableCategories[category]; !billable {
		return false
	}
	for _, t := range existing {
		if t.Category() == category {
			return false
		}
	}
	return true
}

func categoriesOf(tasks []*task.Task) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, t := range tasks {
		category := t.Category()
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}
	return categories
}
