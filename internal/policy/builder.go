package policy

import (
	"github.com/gomlx/exceptions"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/generics"
	"github.com/janpfeifer/wcanalysis/internal/history"
)

// Builder incrementally constructs a PolicyTrie. It is not safe for
// concurrent use -- phase 1 (package policygen) drives it from a single
// goroutine.
type Builder struct {
	t *PolicyTrie
}

// NewBuilder returns a Builder with an empty trie (a lone root node).
func NewBuilder() *Builder {
	return &Builder{
		t: &PolicyTrie{
			nodes:        []node{{parent: noParent}},
			endIndex:     make(map[endKey]generics.Set[NodeID]),
			choiceCounts: make(map[int]int),
		},
	}
}

// Put inserts choice at the terminal reached by following key from the root,
// creating intermediate nodes as needed. Only the terminal -- the node
// reached after the *last* Decision of key -- receives choice; intermediate
// nodes along key stay structural, carrying no choices of their own.
//
// Repeated Put calls with an identical (key, choice) leave the trie
// structurally identical but increment choiceCounts[choice] again: the
// counter tracks raw insertions, not distinct terminals.
//
// A zero-length key inserts at the root itself.
func (b *Builder) Put(key history.Path, choice int) {
	cur := rootID
	for i := 0; i < key.Len(); i++ {
		k := key.At(i).Key()
		n := &b.t.nodes[cur]
		next, ok := n.edges[k]
		if !ok {
			next = b.newChild(cur, k)
		}
		cur = next
	}

	term := &b.t.nodes[cur]
	if term.choices == nil {
		term.choices = generics.MakeSet[int]()
	}
	term.choices.Insert(choice)
	b.t.choiceCounts[choice]++

	ek := lastKeyOf(key)
	if b.t.endIndex[ek] == nil {
		b.t.endIndex[ek] = generics.MakeSet[NodeID]()
	}
	b.t.endIndex[ek].Insert(cur)
}

// newChild appends a fresh node labelled label as a child of parent, and
// wires parent's edge map to it.
func (b *Builder) newChild(parent NodeID, label decision.Key) NodeID {
	if parent < 0 || int(parent) >= len(b.t.nodes) {
		exceptions.Panicf("policy.Builder: invalid parent node %d (arena has %d nodes)", parent, len(b.t.nodes))
	}
	id := NodeID(len(b.t.nodes))
	b.t.nodes = append(b.t.nodes, node{parent: parent, parentLabel: label})
	p := &b.t.nodes[parent]
	if p.edges == nil {
		p.edges = make(map[decision.Key]NodeID)
	}
	p.edges[label] = id
	return id
}

// Build returns the finished PolicyTrie. The Builder must not be used again
// afterwards -- the returned trie is meant to be treated as a pure,
// immutable value.
func (b *Builder) Build() *PolicyTrie {
	return b.t
}
