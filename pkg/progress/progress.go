// Package progress estimates how far a pipeline run has advanced from the
// step the workflow engine reports.
package progress

import (
	"math"

	"github.com/dukex/hl7autoct/pkg/catalog"
	"github.com/dukex/hl7autoct/pkg/models"
)

const (
	LabelNotStarted = "Not started"
	LabelInProgress = "In progress"
	LabelCompleted  = "Completed"
	LabelFailed     = "Failed"
	LabelTimedOut   = "Timed out"
	LabelAborted    = "Aborted"

	// minimumRunningPercent is the lowest estimate for an execution that has
	// left PENDING. A run cannot fail, time out or be aborted without having
	// run, so the terminal failures share it.
	minimumRunningPercent = 1
)

// Model is stateless. The monotonic floor is recomputed on every call from
// the steps the engine says the run has reached.
type Model struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Model {
	return &Model{catalog: c}
}

func (m *Model) Catalog() *catalog.Catalog {
	return m.catalog
}

// Percent is round(100 * index / total), rounding half away from zero.
func (m *Model) Percent(index int) int {
	return int(math.Round(100 * float64(index) / float64(m.catalog.Len())))
}

// Estimate computes the progress for one poll. reached lists every step the
// run has entered or left so far; the highest of them is the floor below
// which a running execution never drops.
func (m *Model) Estimate(status models.ExecutionStatus, current models.StepRef, reached []models.StepRef) models.ProgressEstimate {
	floor, hasFloor := m.highWater(reached)

	switch status {
	case models.StatusSucceeded:
		return models.ProgressEstimate{Percent: 100, CurrentStep: LabelCompleted}
	case models.StatusFailed:
		return m.stopped(LabelFailed, current, floor, hasFloor)
	case models.StatusTimedOut:
		return m.stopped(LabelTimedOut, current, floor, hasFloor)
	case models.StatusAborted:
		return m.stopped(LabelAborted, current, floor, hasFloor)
	case models.StatusRunning:
		estimate := m.running(current, floor, hasFloor)
		estimate.Percent = max(estimate.Percent, minimumRunningPercent)

		return estimate
	default:
		return models.ProgressEstimate{Percent: 0, CurrentStep: LabelNotStarted}
	}
}

func (m *Model) running(current models.StepRef, floor catalog.Step, hasFloor bool) models.ProgressEstimate {
	step, ok := m.catalog.Lookup(current)

	switch {
	case ok && hasFloor && floor.Index > step.Index:
		// The engine reported an older step than one already reached.
		return models.ProgressEstimate{Percent: m.Percent(floor.Index), CurrentStep: floor.Name}
	case ok:
		return models.ProgressEstimate{Percent: m.Percent(step.Index), CurrentStep: step.Name}
	case hasFloor:
		return models.ProgressEstimate{Percent: m.Percent(floor.Index), CurrentStep: floor.Name}
	default:
		return models.ProgressEstimate{Percent: minimumRunningPercent, CurrentStep: LabelInProgress}
	}
}

// stopped keeps the last position the run held, from either the reached steps
// or the step reported at the time it stopped.
func (m *Model) stopped(label string, current models.StepRef, floor catalog.Step, hasFloor bool) models.ProgressEstimate {
	percent := minimumRunningPercent

	if hasFloor {
		percent = max(percent, m.Percent(floor.Index))
	}

	if step, ok := m.catalog.Lookup(current); ok {
		percent = max(percent, m.Percent(step.Index))
	}

	return models.ProgressEstimate{Percent: percent, CurrentStep: label}
}

func (m *Model) highWater(reached []models.StepRef) (catalog.Step, bool) {
	var (
		best  catalog.Step
		found bool
	)

	for _, ref := range reached {
		step, ok := m.catalog.Lookup(ref)
		if !ok {
			continue
		}

		if !found || step.Index > best.Index {
			best = step
			found = true
		}
	}

	return best, found
}
