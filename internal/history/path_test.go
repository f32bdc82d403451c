package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/janpfeifer/wcanalysis/internal/decision"
	"github.com/janpfeifer/wcanalysis/internal/host"
)

// fakeHandle is a minimal host.HistoryHandle backed by a plain slice, newest
// last, for building test fixtures without a real host.
type fakeHandle struct {
	chain []decision.Decision // oldest first
	idx   int                 // points at chain[idx], the "current" decision
}

func chainOf(decisions ...decision.Decision) host.HistoryHandle {
	if len(decisions) == 0 {
		return nil
	}
	return &fakeHandle{chain: decisions, idx: len(decisions) - 1}
}

func (f *fakeHandle) Decision() decision.Decision { return f.chain[f.idx] }

func (f *fakeHandle) Prev() (host.HistoryHandle, bool) {
	if f.idx == 0 {
		return nil, false
	}
	return &fakeHandle{chain: f.chain, idx: f.idx - 1}, true
}

func ctx(tag string) decision.ContextID { return &tag }

func TestNewContextFree(t *testing.T) {
	c := ctx("frame")
	d0 := decision.Decision{Branch: "a", Choice: 0, Context: c}
	d1 := decision.Decision{Branch: "b", Choice: 1, Context: c}
	d2 := decision.Decision{Branch: "c", Choice: 0, Context: c}
	end := chainOf(d0, d1, d2)

	p := New(end, false, 0)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, d0, p.At(0))
	assert.Equal(t, d1, p.At(1))
	assert.Equal(t, d2, p.At(2))
}

func TestNewBoundedByMaxSize(t *testing.T) {
	c := ctx("frame")
	d0 := decision.Decision{Branch: "a", Choice: 0, Context: c}
	d1 := decision.Decision{Branch: "b", Choice: 1, Context: c}
	d2 := decision.Decision{Branch: "c", Choice: 0, Context: c}
	end := chainOf(d0, d1, d2)

	p := New(end, false, 2)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, d1, p.At(0))
	assert.Equal(t, d2, p.At(1))
}

func TestNewContextPreservingStopsAtForeignFrame(t *testing.T) {
	outer := ctx("outer")
	inner := ctx("inner")
	d0 := decision.Decision{Branch: "a", Choice: 0, Context: outer}
	d1 := decision.Decision{Branch: "b", Choice: 1, Context: inner}
	d2 := decision.Decision{Branch: "c", Choice: 0, Context: inner}
	end := chainOf(d0, d1, d2)

	p := New(end, true, 0)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, d1, p.At(0))
	assert.Equal(t, d2, p.At(1))
}

func TestNewEmptyEnd(t *testing.T) {
	p := New(nil, true, 5)
	assert.Equal(t, 0, p.Len())
	_, ok := p.Last()
	assert.False(t, ok)
}

func TestLast(t *testing.T) {
	c := ctx("frame")
	d0 := decision.Decision{Branch: "a", Choice: 0, Context: c}
	d1 := decision.Decision{Branch: "b", Choice: 1, Context: c}
	p := New(chainOf(d0, d1), false, 0)
	last, ok := p.Last()
	assert.True(t, ok)
	assert.Equal(t, d1, last)
}

func TestCtxPreservingSuffix(t *testing.T) {
	fA := ctx("A")
	fB := ctx("B")
	// entry(A) -> a@A -> call(B) -> x@B -> y@B -> b@B
	decisions := []decision.Decision{
		{Branch: "entry", Choice: 0, Context: fA},
		{Branch: "a", Choice: 1, Context: fA},
		{Branch: "call", Choice: 0, Context: fA},
		{Branch: "x", Choice: 0, Context: fB},
		{Branch: "y", Choice: 1, Context: fB},
		{Branch: "b", Choice: 0, Context: fB},
	}
	p := Path{decisions: decisions}

	// Suffix ending just before index 5 ("b"), sharing its context (fB),
	// unbounded: should include indices 3,4 (x,y) but not the fA decisions.
	suf := p.CtxPreservingSuffix(5, 0)
	assert.Equal(t, 2, suf.Len())
	assert.Equal(t, decisions[3], suf.At(0))
	assert.Equal(t, decisions[4], suf.At(1))

	// Bounded to 1: only the immediately preceding decision.
	bounded := p.CtxPreservingSuffix(5, 1)
	assert.Equal(t, 1, bounded.Len())
	assert.Equal(t, decisions[4], bounded.At(0))

	// At index 0 there is nothing before it.
	empty := p.CtxPreservingSuffix(0, 0)
	assert.Equal(t, 0, empty.Len())
}

func TestCtxPreservingSuffixOutOfRange(t *testing.T) {
	p := Path{}
	assert.Equal(t, 0, p.CtxPreservingSuffix(0, 0).Len())
	assert.Equal(t, 0, p.CtxPreservingSuffix(-1, 0).Len())
}
