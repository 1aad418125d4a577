package models

import "fmt"

// StepLookup tags how a StepRef identifies a catalog entry.
type StepLookup int

const (
	// ByIndex addresses the step by its position in the catalog.
	ByIndex StepLookup = iota + 1
	// ByName addresses the step by its identifier, or by display name as a fallback.
	ByName
)

// StepRef is the step marker reported by the workflow engine. The zero value
// means the engine did not report a step.
type StepRef struct {
	Lookup StepLookup
	Index  int
	Name   string
}

func StepAt(index int) StepRef {
	return StepRef{Lookup: ByIndex, Index: index}
}

func StepNamed(name string) StepRef {
	return StepRef{Lookup: ByName, Name: name}
}

// Reported is false for the zero StepRef.
func (r StepRef) Reported() bool {
	return r.Lookup == ByIndex || r.Lookup == ByName
}

func (r StepRef) String() string {
	switch r.Lookup {
	case ByIndex:
		return fmt.Sprintf("#%d", r.Index)
	case ByName:
		return r.Name
	default:
		return "<none>"
	}
}

// ProgressEstimate is derived on every poll and never stored.
type ProgressEstimate struct {
	Percent     int
	CurrentStep string
}

// Progress renders the percentage the way the report exposes it, e.g. "43%".
func (p ProgressEstimate) Progress() string {
	return fmt.Sprintf("%d%%", p.Percent)
}
