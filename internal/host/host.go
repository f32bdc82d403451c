// Package host defines the narrow capability contract the symbolic-execution
// backend is expected to satisfy. The backend itself -- choice generators,
// stack frames, instruction objects, solver backends -- is an external
// collaborator and out of scope for this module; only the observer protocol
// it must drive is defined here.
//
// The contract is expressed as a pair of closures the host invokes
// synchronously, not as an inheritance hierarchy.
package host

import (
	"context"

	"github.com/janpfeifer/wcanalysis/internal/decision"
)

// HistoryHandle lets an observer walk a run's decision chain backwards from
// the current branching or terminal point, without the host exposing its
// internal stack-frame representation.
type HistoryHandle interface {
	// Decision returns the Decision recorded at this point in the chain.
	Decision() decision.Decision
	// Prev returns the preceding history point. ok is false when this is the
	// first decision of the run (there is no predecessor).
	Prev() (prev HistoryHandle, ok bool)
}

// BranchEvent is delivered when the host is about to resolve a branch
// choice. The observer may restrict which of Available the host explores by
// returning a subset from Hooks.OnBranch.
type BranchEvent struct {
	Branch    decision.BranchInstruction
	Available []decision.Choice
	Context   decision.ContextID
	History   HistoryHandle
}

// TerminalEvent is delivered when the host completes a path (a leaf of the
// execution tree), reporting the resource cost accrued along it.
type TerminalEvent struct {
	Cost    float64
	History HistoryHandle
}

// Hooks is the capability interface a Host accepts. Both callbacks are
// invoked synchronously from the host's own event loop.
type Hooks struct {
	// OnBranch is called once per branch resolution. Returning nil (or the
	// same slice as ev.Available) means "no opinion" -- the host should
	// explore every available choice. Returning a non-nil subset restricts
	// exploration to exactly those choices.
	OnBranch func(ev BranchEvent) []decision.Choice

	// OnTerminal is called once per completed path.
	OnTerminal func(ev TerminalEvent)
}

// Host runs a single exploration -- exhaustive or policy-guided depending on
// how Hooks.OnBranch behaves -- dispatching BranchEvents and TerminalEvents
// in the order it produces them.
type Host interface {
	Run(ctx context.Context, hooks Hooks) error
}
