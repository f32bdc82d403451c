// Package decision defines the identity of a single branch choice taken by
// the host's symbolic-execution engine: a branch site, the edge that was
// taken, and the stack-frame activation it was taken in.
//
// Decisions are plain values -- there is no fallible construction path, so
// the only operations are equality, hashing (via Key) and rendering.
package decision

import "fmt"

// BranchID uniquely identifies a branch site, typically derived from the
// program-counter location of the conditional instruction. The host owns the
// format; the analyzer only ever compares BranchIDs for equality.
type BranchID string

// Choice is the non-negative integer label of an outgoing edge at a branch
// site. 0/1 for binary branches; switches may use a wider range.
type Choice int

// ContextID identifies an enclosing procedure activation (stack frame). It
// is an opaque handle supplied by the host and MUST be compared by reference
// identity: two activations are equal only when they denote the same frame.
// Hosts satisfy this by handing out distinct pointers (or other
// reference-identity values) per activation.
type ContextID any

// BranchInstruction is the host's read-only view of a branch site, supplied
// at the moment a choice is about to be resolved.
type BranchInstruction interface {
	// BranchID returns the identity of this branch site.
	BranchID() BranchID
}

// Decision is the record of one resolved branch choice.
type Decision struct {
	Branch  BranchID
	Choice  Choice
	Context ContextID
}

// New constructs a Decision from the host instruction being resolved, the
// index of the edge actually taken, and the context (stack frame) it was
// taken in.
func New(instr BranchInstruction, chosen Choice, ctx ContextID) Decision {
	return Decision{Branch: instr.BranchID(), Choice: chosen, Context: ctx}
}

// Key is the part of a Decision used for trie keying: equality and hashing
// MUST use only BranchID and Choice, never Context. Context is metadata used
// solely to filter histories (see package history), not to distinguish trie
// edges.
type Key struct {
	Branch BranchID
	Choice Choice
}

// Key strips the Context from d, yielding the comparable value used as a
// PolicyTrie edge label / map key.
func (d Decision) Key() Key {
	return Key{Branch: d.Branch, Choice: d.Choice}
}

// String renders d for logs, e.g. "loop@42#1".
func (d Decision) String() string {
	return fmt.Sprintf("%s#%d", d.Branch, d.Choice)
}

// String renders a bare Key, e.g. "loop@42#1".
func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Branch, k.Choice)
}
