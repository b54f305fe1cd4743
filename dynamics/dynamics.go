// Package dynamics implements the composite-rigid-body mass matrix,
// recursive Newton-Euler inverse dynamics, and constrained forward
// dynamics algorithms of spec §4.5-4.7, layered on top of the cached
// kinematic quantities exposed by package state.
package dynamics

import (
	"go.viam.com/rbd/mechanism"
)

// buildParentJoint returns, for each body index, the tree-edge index
// whose Successor is that body, or -1 for the root. Mirrors the
// equivalent private bookkeeping in package state; duplicated here
// rather than exported from state so the two packages stay decoupled.
func buildParentJoint(mech *mechanism.Mechanism) []int {
	p := make([]int, mech.NumBodies())
	p[mechanism.RootIndex] = -1
	for i, e := range mech.TreeEdges() {
		p[e.Successor] = i
	}
	return p
}

// ancestorJointsInclusive returns the tree-joint indices on the path from
// jointIdx to the root, including jointIdx itself, in leaf-to-root order.
func ancestorJointsInclusive(mech *mechanism.Mechanism, parentJoint []int, jointIdx int) []int {
	edges := mech.TreeEdges()
	result := []int{jointIdx}
	body := edges[jointIdx].Predecessor
	for parentJoint[body] >= 0 {
		j := parentJoint[body]
		result = append(result, j)
		body = edges[j].Predecessor
	}
	return result
}
