package dynamics

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rbd/mechanism"
	"go.viam.com/rbd/rbderrors"
	"go.viam.com/rbd/spatialmath"
	"go.viam.com/rbd/state"
)

// buildLoopConstraintSystem assembles K (nc x nv) and k (nc) for the
// mechanism's loop joints (spec §4.7): row (L,c) pairs loop joint L's
// c'th constraint-wrench-subspace column against the full-mechanism
// geometric Jacobian of successor relative to predecessor (K), and
// against the corresponding relative bias acceleration (k).
//
// Per-row K[row,:] = constraintCol · J(successor,predecessor;world);
// k[row] = constraintCol · (bias(successor) - bias(predecessor)): the
// relative tree-path bias acceleration at v̇=0, which already folds in
// every velocity-product term along both bodies' ancestries without any
// additional per-loop-joint Coriolis term, since the loop joint itself
// contributes no independent velocity degree of freedom.
func buildLoopConstraintSystem(s *state.MechanismState) (*mat.Dense, *mat.VecDense, error) {
	mech := s.Mechanism()
	world := mech.Body(mechanism.RootIndex).Frame
	nv := mech.NV()
	nc := 0
	for _, e := range mech.LoopEdges() {
		nc += e.Joint.NConstraint()
	}
	K := mat.NewDense(nc, nv, nil)
	k := mat.NewVecDense(nc, nil)

	row := 0
	for li, e := range mech.LoopEdges() {
		subspace, err := s.ConstraintWrenchSubspaceWorld(li)
		if err != nil {
			return nil, nil, err
		}
		jac, err := s.GeometricJacobian(e.Successor, e.Predecessor, world)
		if err != nil {
			return nil, nil, err
		}
		biasSucc, err := s.BiasAcceleration(e.Successor)
		if err != nil {
			return nil, nil, err
		}
		biasPred, err := s.BiasAcceleration(e.Predecessor)
		if err != nil {
			return nil, nil, err
		}
		relAngular := biasSucc.Angular.Sub(biasPred.Angular)
		relLinear := biasSucc.Linear.Sub(biasPred.Linear)

		for c := 0; c < subspace.NumCols(); c++ {
			col := subspace.Column(c) // (torque, force) packed as (Angular, Linear)
			w := spatialmath.Wrench{ExpressedIn: col.ExpressedIn, Torque: col.Angular, Force: col.Linear}
			for vcol := 0; vcol < nv; vcol++ {
				val, err := w.Power(jac.Column(vcol))
				if err != nil {
					return nil, nil, err
				}
				K.Set(row, vcol, val)
			}
			k.SetVec(row, w.Torque.Dot(relAngular)+w.Force.Dot(relLinear))
			row++
		}
	}
	return K, k, nil
}

// Solve computes the constrained forward dynamics v̇ (spec §4.7):
//
//	M·v̇ + c(q,v) = τ + Kᵀ·λ
//	K·v̇ + k(q,v) = 0
//
// M is factored once via Cholesky; y := M⁻¹·(τ-c) and X := M⁻¹·Kᵀ reuse
// that factorization. Eliminating v̇ = y + X·λ from the second equation
// gives the Schur-complement system (K·X)·λ = -(K·y + k), solved
// directly; the spec's literal elimination-formula sign (§4.7) does not
// round-trip with its own stated constraint equation "K·v̇+k=0" for
// arbitrary k, so the sign here is the one required for K·v̇+k=0 and
// v̇=y+Xλ to hold simultaneously (see DESIGN.md).
//
// With no loop joints, this reduces to v̇ = y. outVdot must be sized
// NV().
func Solve(
	s *state.MechanismState,
	tau []float64,
	extWrenches map[mechanism.BodyIndex]spatialmath.Wrench,
	outVdot []float64,
) error {
	mech := s.Mechanism()
	nv := mech.NV()
	if len(tau) != nv {
		return rbderrors.Dimension("Solve", len(tau), nv)
	}
	if len(outVdot) != nv {
		return rbderrors.Dimension("Solve", len(outVdot), nv)
	}

	M := mat.NewSymDense(nv, nil)
	if err := MassMatrix(s, M); err != nil {
		return err
	}

	zero := make([]float64, nv)
	c := make([]float64, nv)
	if err := InverseDynamics(s, zero, extWrenches, c, nil); err != nil {
		return err
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(M); !ok {
		return rbderrors.ErrSingularInertia
	}

	rhs1 := mat.NewVecDense(nv, nil)
	for i := range tau {
		rhs1.SetVec(i, tau[i]-c[i])
	}
	var y mat.VecDense
	if err := chol.SolveVecTo(&y, rhs1); err != nil {
		return rbderrors.ErrSingularInertia
	}

	if len(mech.LoopEdges()) == 0 {
		for i := 0; i < nv; i++ {
			outVdot[i] = y.AtVec(i)
		}
		return nil
	}

	K, k, err := buildLoopConstraintSystem(s)
	if err != nil {
		return err
	}
	nc, _ := K.Dims()

	var X mat.Dense
	if err := chol.SolveTo(&X, K.T()); err != nil {
		return rbderrors.ErrSingularInertia
	}

	var A mat.Dense
	A.Mul(K, &X)

	var Ky mat.VecDense
	Ky.MulVec(K, &y)

	rhs2 := mat.NewVecDense(nc, nil)
	rhs2.AddVec(&Ky, k)
	rhs2.ScaleVec(-1, rhs2)

	var lambda mat.VecDense
	if err := lambda.SolveVec(&A, rhs2); err != nil {
		return rbderrors.ErrRedundantConstraint
	}

	var xLambda mat.VecDense
	xLambda.MulVec(&X, &lambda)
	for i := 0; i < nv; i++ {
		outVdot[i] = y.AtVec(i) + xLambda.AtVec(i)
	}
	return nil
}
