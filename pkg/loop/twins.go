package loop

// centerTwin gives, for local edge k of a center child, the corner-child
// edge running the other way between the same two edge vertices.
var centerTwin = [3]slot{
	{block: 3, local: 2},
	{block: 1, local: 2},
	{block: 2, local: 2},
}

// rebuildTwins pairs the edges of the refined surface. A split edge pairs
// with the opposite half of its old twin; center edges pair by centerTwin.
func rebuildTwins(oldTwin []int, c *connectivity) []int {
	l := layout{faces: len(oldTwin) / 3}
	twin := make([]int, len(c.edgeTarget))
	for i, j := range oldTwin {
		twin[c.firstHalf[i]] = c.secondHalf[j]
		twin[c.secondHalf[i]] = c.firstHalf[j]
	}
	for f := range l.faces {
		for k, s := range centerTwin {
			e := l.childEdge(0, f, k)
			o := l.slotEdge(f, s)
			twin[e] = o
			twin[o] = e
		}
	}
	return twin
}
