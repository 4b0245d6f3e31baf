package loop

import (
	"fmt"

	"github.com/taigrr/loopsub/pkg/diredge"
)

// Each old face f splits into four children stored in four blocks of the new
// edge array. Block b holds child f at edges b·E + 3f + {0,1,2}, where E is
// the old edge count. Block 0 holds the center triangle, blocks 1-3 the
// corners at fv0, fv1 and fv2.
//
// Within face f, fv_k = EdgeTarget[3f+k] and ve_k is the vertex inserted on
// old edge 3f+k, so ve0 splits fv2→fv0, ve1 splits fv0→fv1 and ve2 splits
// fv1→fv2.

// vref names a vertex of an old face: a corner fv_k or an edge vertex ve_k.
type vref struct {
	mid bool
	k   int
}

func corner(k int) vref { return vref{k: k} }
func mid(k int) vref    { return vref{mid: true, k: k} }

// childFaces lists the targets of the three edges of each child block.
var childFaces = [4][3]vref{
	{mid(0), mid(1), mid(2)},
	{corner(0), mid(1), mid(0)},
	{corner(1), mid(2), mid(1)},
	{corner(2), mid(0), mid(2)},
}

// slot addresses one edge of a child face.
type slot struct {
	block, local int
}

// splitHalves gives, for old edge 3f+k running a→b, the child edges that
// replace it: first runs a→ve_k, second runs ve_k→b.
var splitHalves = [3]struct{ first, second slot }{
	{first: slot{3, 1}, second: slot{1, 0}},
	{first: slot{1, 1}, second: slot{2, 0}},
	{first: slot{2, 1}, second: slot{3, 0}},
}

// midpointOutgoing gives the center-face edge that leaves ve_k.
var midpointOutgoing = [3]int{1, 2, 0}

// layout maps child slots of a pass over a given number of old faces to edge indices.
type layout struct {
	faces int
}

func (l layout) oldEdges() int { return 3 * l.faces }

func (l layout) childEdge(block, f, local int) int {
	return block*l.oldEdges() + 3*f + local
}

func (l layout) slotEdge(f int, s slot) int {
	return l.childEdge(s.block, f, s.local)
}

// optEdge is an edge index that may not have been assigned yet.
type optEdge struct {
	e  int
	ok bool
}

// connectivity is the rebuilt face structure of one pass.
type connectivity struct {
	edgeTarget    []int
	firstOutgoing []int
	firstHalf     []int // per old edge: child edge from its source to its edge vertex
	secondHalf    []int // per old edge: child edge from its edge vertex to its target
}

// rebuildConnectivity emits the four children of every old face and
// reassigns an outgoing edge to every vertex of the refined surface.
// s is not modified.
func rebuildConnectivity(s *diredge.Surface, ev edgeVertices) (*connectivity, error) {
	l := layout{faces: s.FaceCount()}
	ne := l.oldEdges()
	nv := len(s.Positions)
	total := nv + len(ev.positions)

	c := &connectivity{
		edgeTarget:    make([]int, 4*ne),
		firstOutgoing: make([]int, total),
		firstHalf:     make([]int, ne),
		secondHalf:    make([]int, ne),
	}
	midOut := make([]optEdge, len(ev.positions))

	for f := range l.faces {
		var fv, ve [3]int
		for k := range 3 {
			fv[k] = s.EdgeTarget[3*f+k]
			ve[k] = ev.midpoint[3*f+k]
		}
		for b, child := range childFaces {
			for local, ref := range child {
				v := fv[ref.k]
				if ref.mid {
					v = ve[ref.k]
				}
				c.edgeTarget[l.childEdge(b, f, local)] = v
			}
		}
		for k, h := range splitHalves {
			c.firstHalf[3*f+k] = l.slotEdge(f, h.first)
			c.secondHalf[3*f+k] = l.slotEdge(f, h.second)
		}
		for k, local := range midpointOutgoing {
			if o := &midOut[ve[k]-nv]; !o.ok {
				*o = optEdge{e: l.childEdge(0, f, local), ok: true}
			}
		}
	}

	for v, e := range s.FirstOutgoing {
		c.firstOutgoing[v] = c.firstHalf[e]
	}
	for i, o := range midOut {
		if !o.ok {
			return nil, fmt.Errorf("%w: edge vertex %d belongs to no face", diredge.ErrInvalidMesh, nv+i)
		}
		c.firstOutgoing[nv+i] = o.e
	}
	return c, nil
}
