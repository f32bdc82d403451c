package policy

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/pkg/errors"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/generics"
)

// magic identifies a serialized PolicyTrie file; version allows the wire
// format to evolve. There is no cross-version compatibility requirement: a
// version mismatch is simply a read error.
var magic = [4]byte{'W', 'C', 'P', 'T'}

const version byte = 1

// FileMagic and FileVersion expose the wire-format header for diagnostic
// logging, e.g. the reusePolicy startup report.
const (
	FileMagic   = "WCPT"
	FileVersion = version
)

// wireNode is the gob-friendly representation of a node. endIndex is not
// persisted -- it is cheap to rebuild from the node list on Deserialize.
type wireNode struct {
	Parent      NodeID
	ParentLabel decision.Key
	Edges       map[decision.Key]NodeID
	Choices     []int
}

type wireTrie struct {
	Nodes        []wireNode
	ChoiceCounts map[int]int
}

// Serialize writes t to w: a 4-byte magic header, a version byte, then a
// gob-encoded wireTrie.
func (t *PolicyTrie) Serialize(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return errors.Wrap(err, "writing policy file magic")
	}
	if _, err := w.Write([]byte{version}); err != nil {
		return errors.Wrap(err, "writing policy file version")
	}

	wire := wireTrie{
		Nodes:        make([]wireNode, len(t.nodes)),
		ChoiceCounts: t.choiceCounts,
	}
	for i, n := range t.nodes {
		wire.Nodes[i] = wireNode{
			Parent:      n.parent,
			ParentLabel: n.parentLabel,
			Edges:       n.edges,
			Choices:     generics.KeysSlice(n.choices),
		}
	}
	if err := gob.NewEncoder(w).Encode(&wire); err != nil {
		return errors.Wrap(err, "encoding policy trie")
	}
	return nil
}

// Deserialize reads a PolicyTrie previously written by Serialize, rebuilding
// endIndex from the decoded node list.
func Deserialize(r io.Reader) (*PolicyTrie, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "reading policy file header")
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return nil, errors.Errorf("not a policy file: bad magic %x", header[:4])
	}
	if header[4] != version {
		return nil, errors.Errorf("unsupported policy file version %d (want %d)", header[4], version)
	}

	var wire wireTrie
	if err := gob.NewDecoder(r).Decode(&wire); err != nil {
		return nil, errors.Wrap(err, "decoding policy trie")
	}

	t := &PolicyTrie{
		nodes:        make([]node, len(wire.Nodes)),
		endIndex:     make(map[endKey]generics.Set[NodeID]),
		choiceCounts: wire.ChoiceCounts,
	}
	if t.choiceCounts == nil {
		t.choiceCounts = make(map[int]int)
	}
	for i, wn := range wire.Nodes {
		t.nodes[i] = node{
			parent:      wn.Parent,
			parentLabel: wn.ParentLabel,
			edges:       wn.Edges,
			choices:     generics.SetWith(wn.Choices...),
		}
	}
	for id, n := range t.nodes {
		if !n.isTerminal() {
			continue
		}
		ek := endKey{key: n.parentLabel, empty: NodeID(id) == rootID}
		if t.endIndex[ek] == nil {
			t.endIndex[ek] = generics.MakeSet[NodeID]()
		}
		t.endIndex[ek].Insert(NodeID(id))
	}
	return t, nil
}
