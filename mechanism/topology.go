package mechanism

import (
	"fmt"

	"go.viam.com/rbd/joint"
	"go.viam.com/rbd/rbderrors"
	"go.viam.com/rbd/spatialmath"
)

// RemoveFixedJoints merges every fixed tree joint into its predecessor,
// aggregating the successor's inertia and auxiliary frames into the
// predecessor and rewriting any joint whose predecessor or successor was
// removed to point at the surviving body, with the composed fixed
// transform folded into its JointPose/SuccessorPose. Dynamics computed
// before and after agree to roundoff (spec §8 property 6). Bumps
// Version.
func (m *Mechanism) RemoveFixedJoints() error {
	survivor := make([]BodyIndex, len(m.bodies))
	toSurvivor := make([]spatialmath.Transform, len(m.bodies)) // body.Frame -> survivor.Frame
	removed := make([]bool, len(m.bodies))
	for i := range m.bodies {
		survivor[i] = BodyIndex(i)
		toSurvivor[i] = spatialmath.Identity(m.bodies[i].Frame)
	}

	for _, e := range m.treeEdges {
		if e.Joint.Variant != joint.Fixed {
			continue
		}
		predSurvivor := survivor[e.Predecessor]
		predTransform := toSurvivor[e.Predecessor]

		jointTransform, err := e.Joint.Transform(nil)
		if err != nil {
			return err
		}
		step, err := spatialmath.Compose(jointTransform, e.SuccessorPose.Inverse())
		if err != nil {
			return err
		}
		localPose, err := spatialmath.Compose(e.JointPose, step)
		if err != nil {
			return err
		}
		total, err := spatialmath.Compose(predTransform, localPose)
		if err != nil {
			return err
		}

		removed[e.Successor] = true
		survivor[e.Successor] = predSurvivor
		toSurvivor[e.Successor] = total

		successorBody := m.bodies[e.Successor]
		survivorBody := m.bodies[predSurvivor]
		transformedInertia, err := successorBody.Inertia.Transform(total)
		if err != nil {
			return err
		}
		merged, err := survivorBody.Inertia.Add(transformedInertia)
		if err != nil {
			return err
		}
		survivorBody.Inertia = merged
		for f, t := range successorBody.AuxFrames {
			composed, err := spatialmath.Compose(total, t)
			if err != nil {
				return err
			}
			survivorBody.AuxFrames[f] = composed
		}
	}

	rebase := func(idx BodyIndex, pose spatialmath.Transform) (BodyIndex, spatialmath.Transform, error) {
		if !removed[idx] {
			return idx, pose, nil
		}
		composed, err := spatialmath.Compose(toSurvivor[idx], pose)
		return survivor[idx], composed, err
	}

	newTreeEdges := make([]TreeEdge, 0, len(m.treeEdges))
	for _, e := range m.treeEdges {
		if e.Joint.Variant == joint.Fixed {
			continue
		}
		newPred, newJointPose, err := rebase(e.Predecessor, e.JointPose)
		if err != nil {
			return err
		}
		e.Predecessor = newPred
		e.JointPose = newJointPose
		newTreeEdges = append(newTreeEdges, e)
	}

	newLoopEdges := make([]LoopEdge, 0, len(m.loopEdges))
	for _, e := range m.loopEdges {
		newPred, newJointPose, err := rebase(e.Predecessor, e.JointPose)
		if err != nil {
			return err
		}
		newSucc, newSuccessorPose, err := rebase(e.Successor, e.SuccessorPose)
		if err != nil {
			return err
		}
		e.Predecessor, e.JointPose = newPred, newJointPose
		e.Successor, e.SuccessorPose = newSucc, newSuccessorPose
		newLoopEdges = append(newLoopEdges, e)
	}

	newBodies := make([]*Body, 0, len(m.bodies))
	oldToNew := make([]BodyIndex, len(m.bodies))
	for i, b := range m.bodies {
		if removed[i] {
			continue
		}
		oldToNew[i] = BodyIndex(len(newBodies))
		newBodies = append(newBodies, b)
	}
	for i := range newTreeEdges {
		newTreeEdges[i].Predecessor = oldToNew[newTreeEdges[i].Predecessor]
		newTreeEdges[i].Successor = oldToNew[newTreeEdges[i].Successor]
	}
	for i := range newLoopEdges {
		newLoopEdges[i].Predecessor = oldToNew[newLoopEdges[i].Predecessor]
		newLoopEdges[i].Successor = oldToNew[newLoopEdges[i].Successor]
	}

	frameIndex := make(map[*spatialmath.Frame]BodyIndex, len(newBodies))
	for i, b := range newBodies {
		frameIndex[b.Frame] = BodyIndex(i)
	}

	m.bodies = newBodies
	m.treeEdges = newTreeEdges
	m.loopEdges = newLoopEdges
	m.frameIndex = frameIndex
	m.version++
	return nil
}

// ChangeJointType replaces the variant of the tree joint at jointIndex,
// preserving its name, axis, and frames. Configuration/velocity offsets
// for every tree joint are reassigned and Version is bumped, so any
// MechanismState built against the old version becomes stale (spec
// §4.3, §4.8).
func (m *Mechanism) ChangeJointType(jointIndex JointIndex, newVariant joint.Variant) error {
	idx := int(jointIndex)
	if idx < 0 || idx >= len(m.treeEdges) {
		return rbderrors.Topology(fmt.Sprintf("ChangeJointType: joint index %d out of range", jointIndex))
	}
	old := m.treeEdges[idx].Joint
	m.treeEdges[idx].Joint = &joint.Joint{
		Name:        old.Name,
		Variant:     newVariant,
		Axis:        old.Axis,
		PlaneNormal: old.PlaneNormal,
		FrameBefore: old.FrameBefore,
		FrameAfter:  old.FrameAfter,
	}

	nq, nv := 0, 0
	for i := range m.treeEdges {
		m.treeEdges[i].QOffset = nq
		m.treeEdges[i].VOffset = nv
		nq += m.treeEdges[i].Joint.NQ()
		nv += m.treeEdges[i].Joint.NV()
	}
	m.nq, m.nv = nq, nv
	m.version++
	return nil
}
