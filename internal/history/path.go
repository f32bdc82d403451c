// Package history builds Paths -- ordered sequences of Decisions -- from a
// host-supplied HistoryHandle chain. A Path is the local, bounded execution
// history used both to build PolicyTrie keys (package policy) and to query
// them.
package history

import (
	"fmt"
	"strings"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/host"
)

// Path is a finite, ordered, immutable sequence of Decisions, indexed from 0
// (oldest) to Len()-1 (most recent).
type Path struct {
	decisions []decision.Decision
}

// Of builds a Path directly from an explicit, already-ordered (oldest
// first) sequence of Decisions, without consulting a host.
func Of(decisions ...decision.Decision) Path {
	return Path{decisions: append([]decision.Decision(nil), decisions...)}
}

// Len returns the number of Decisions in p.
func (p Path) Len() int { return len(p.decisions) }

// At returns the i-th Decision, oldest first.
func (p Path) At(i int) decision.Decision { return p.decisions[i] }

// Last returns the most recent Decision and true, or the zero Decision and
// false if p is empty.
func (p Path) Last() (decision.Decision, bool) {
	if len(p.decisions) == 0 {
		return decision.Decision{}, false
	}
	return p.decisions[len(p.decisions)-1], true
}

// String renders p for logs/debugging, oldest-first.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, d := range p.decisions {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, d)
	}
	sb.WriteByte(']')
	return sb.String()
}

// New walks backward from end through the host's branching-point chain,
// collecting the most recent maxSize Decisions (0 means unbounded) in
// chronological order (oldest first).
//
// If ctxPreserving is true, traversal halts as soon as it reaches a Decision
// whose Context differs from end's own Context -- end itself is the anchor,
// so only Decisions made in the same stack-frame activation are included.
//
// end may be nil, representing an empty history (e.g. the very first
// decision of a run); New then returns an empty Path.
func New(end host.HistoryHandle, ctxPreserving bool, maxSize int) Path {
	if end == nil {
		return Path{}
	}
	anchorCtx := end.Decision().Context

	// Walk backward accumulating in reverse (newest first), then flip.
	var reversed []decision.Decision
	cur, ok := end, true
	for ok {
		d := cur.Decision()
		if ctxPreserving && !sameContext(d.Context, anchorCtx) {
			break
		}
		reversed = append(reversed, d)
		if maxSize > 0 && len(reversed) >= maxSize {
			break
		}
		cur, ok = cur.Prev()
	}
	return Path{decisions: reverseDecisions(reversed)}
}

// CtxPreservingSuffix returns the longest contiguous sub-sequence of p
// ending at fromIdx-1 (i.e. strictly before index fromIdx) whose Decisions
// all share p.At(fromIdx).Context, bounded by maxSize (0 means unbounded).
//
// It is used by PolicyGenerator to build a context-preserving prefix ending
// just before a given Decision on the heaviest discovered path.
func (p Path) CtxPreservingSuffix(fromIdx int, maxSize int) Path {
	if fromIdx < 0 || fromIdx >= len(p.decisions) {
		return Path{}
	}
	anchorCtx := p.decisions[fromIdx].Context
	// Walk backward from fromIdx-1 collecting same-context decisions.
	start := fromIdx
	for start > 0 && sameContext(p.decisions[start-1].Context, anchorCtx) {
		start--
		if maxSize > 0 && fromIdx-start >= maxSize {
			break
		}
	}
	out := make([]decision.Decision, fromIdx-start)
	copy(out, p.decisions[start:fromIdx])
	return Path{decisions: out}
}

func sameContext(a, b decision.ContextID) bool {
	return a == b
}

func reverseDecisions(in []decision.Decision) []decision.Decision {
	out := make([]decision.Decision, len(in))
	for i, d := range in {
		out[len(in)-1-i] = d
	}
	return out
}
