// Package policy implements the PolicyTrie: a persistable trie from reverse
// decision-sequences to sets of recommended choices, with per-choice
// frequency counters. It is the artifact handed from PolicyGenerator
// (package policygen) to HeuristicSearch (package heuristic) between the
// two exploration phases.
//
// Keys are inserted in chronological order (oldest Decision first), so the
// trie encodes decision *prefixes*. Lookup instead matches the *suffix* of a
// live history, walking a terminal upward through parent links -- see
// PolicyTrie.ChoicesForLongestSuffix.
package policy

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/generics"
	"github.com/janpfeifer/wcanalysis/internal/history"
)

// NodeID is an arena index into PolicyTrie.nodes. Modeling the trie this way
// -- rather than with pointer-linked nodes carrying a parent pointer --
// sidesteps the cyclic Node<->parent reference and makes serialization
// trivial.
type NodeID int32

// rootID is always the trie's root node.
const rootID NodeID = 0

// noParent marks the root's (nonexistent) parent.
const noParent NodeID = -1

// node is one trie vertex. The edge leading into it is labelled by
// parentLabel; a node's own incoming decision is recovered by reading its
// own parentLabel, not by searching the parent's edges map.
type node struct {
	parent      NodeID
	parentLabel decision.Key
	edges       map[decision.Key]NodeID
	choices     generics.Set[int] // non-empty iff this node is a terminal
}

func (n *node) isTerminal() bool { return len(n.choices) > 0 }

// endKey indexes PolicyTrie.endIndex. It distinguishes the "no decision yet"
// (empty-history) case from any real Decision key: a zero-length Put key
// terminates at the root itself, which has no incoming edge to key by.
type endKey struct {
	key   decision.Key
	empty bool
}

func lastKeyOf(p history.Path) endKey {
	last, ok := p.Last()
	if !ok {
		return endKey{empty: true}
	}
	return endKey{key: last.Key()}
}

// PolicyTrie is the immutable result of a Builder. Build it with NewBuilder.
type PolicyTrie struct {
	nodes        []node
	endIndex     map[endKey]generics.Set[NodeID]
	choiceCounts map[int]int
}

// Choices returns every distinct choice ever inserted via Put, sorted
// ascending.
func (t *PolicyTrie) Choices() []int {
	choices := make([]int, 0, len(t.choiceCounts))
	for c := range t.choiceCounts {
		choices = append(choices, c)
	}
	sort.Ints(choices)
	return choices
}

// CountForChoice returns how many times choice was inserted across every Put
// call that built this trie, or 0 if it was never inserted.
func (t *PolicyTrie) CountForChoice(choice int) int {
	return t.choiceCounts[choice]
}

// NumTerminals returns the number of terminal nodes in the trie, i.e. the
// number of distinct Decision-sequence suffixes that carry a recommendation.
// Used for the reusePolicy startup report.
func (t *PolicyTrie) NumTerminals() int {
	count := 0
	for i := range t.nodes {
		if t.nodes[i].isTerminal() {
			count++
		}
	}
	return count
}

// ChoiceFrequencies returns, for each choice ever inserted, its share of all
// Put calls as a float32 in [0, 1]. Used by the verbose-mode policy summary
// to show relative weight alongside raw counts; computed in float32 since
// the report has no need for float64 precision over counts this small.
func (t *PolicyTrie) ChoiceFrequencies() map[int]float32 {
	var total int32
	for _, c := range t.choiceCounts {
		total += int32(c)
	}
	freqs := make(map[int]float32, len(t.choiceCounts))
	if total == 0 {
		return freqs
	}
	for choice, c := range t.choiceCounts {
		freqs[choice] = math32.Round(float32(c)/float32(total)*1000) / 1000
	}
	return freqs
}

// ChoicesForLongestSuffix is the central policy query: given a live
// history, it returns the union of recommended choices from every candidate
// terminal with the longest match against the end of history. A terminal's
// match length is the number of edges, walking up from it, that agree with
// history's most recent Decisions before the first mismatch (see
// matchSuffixLength), so a terminal whose full root-to-terminal path is not
// a suffix of history still counts with its shorter match.
//
// Ties (multiple terminals achieving the same longest match) are broken by
// union, not by preference -- all equally-well-matched recommendations are
// kept. An empty history looks up the root's own terminal (registered by a
// zero-length Put) rather than short-circuiting to empty: the root carries
// a real recommendation whenever one was inserted for it. A history whose
// last Decision was never seen as an edge label during Put yields the
// empty set.
func (t *PolicyTrie) ChoicesForLongestSuffix(h history.Path) generics.Set[int] {
	candidates := t.endIndex[lastKeyOf(h)]
	if len(candidates) == 0 {
		return generics.MakeSet[int]()
	}

	bestLen := -1
	result := generics.MakeSet[int]()
	for terminal := range candidates {
		matchLen := t.matchSuffixLength(terminal, h)
		switch {
		case matchLen > bestLen:
			bestLen = matchLen
			result = generics.MakeSet[int]()
			result = result.Union(t.nodes[terminal].choices)
		case matchLen == bestLen:
			result = result.Union(t.nodes[terminal].choices)
		}
	}
	return result
}

// matchSuffixLength walks terminal upward through parent links, pairing each
// ancestor's incoming-edge Decision with h, starting from h's own last
// Decision, and returns the number of edges (i.e. ancestors) that matched
// before the first mismatch, history exhaustion, or the root was reached.
//
// By construction (terminal came from t.endIndex[lastKeyOf(h)]) the first
// pair always matches when terminal != rootID, so the result is >= 1 in
// that case. When terminal == rootID (the zero-length-key terminal), the
// loop breaks immediately and the result is 0 -- the root's own path has no
// incoming edge to match.
func (t *PolicyTrie) matchSuffixLength(terminal NodeID, h history.Path) int {
	n := terminal
	matched := 0
	for i := 0; ; i++ {
		if n == rootID {
			break
		}
		histIdx := h.Len() - 1 - i
		if histIdx < 0 {
			break
		}
		if t.nodes[n].parentLabel != h.At(histIdx).Key() {
			break
		}
		matched++
		n = t.nodes[n].parent
	}
	return matched
}
