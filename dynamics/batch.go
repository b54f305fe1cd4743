package dynamics

import (
	"sync"

	"go.viam.com/utils"

	"go.viam.com/rbd/rbderrors"
	"go.viam.com/rbd/state"
	"gonum.org/v1/gonum/mat"
)

// MassMatrixBatch computes the mass matrix for every state in states,
// one call to MassMatrix per state, each in its own goroutine, all
// running concurrently. outs[i] receives the result for states[i] and must
// already be sized NV()xNV(); the per-state Mechanism need not be
// shared. Per spec §5, a MechanismState's own operations are sequential
// and single-threaded, but distinct states share no mutable memory and
// may safely be driven from different goroutines at once.
//
// errs[i] holds the error, if any, from computing outs[i]; the call
// itself only fails if len(states) != len(outs).
func MassMatrixBatch(states []*state.MechanismState, outs []*mat.SymDense) []error {
	errs := make([]error, len(states))
	if len(outs) != len(states) {
		err := rbderrors.Dimension("MassMatrixBatch", len(outs), len(states))
		for i := range errs {
			errs[i] = err
		}
		return errs
	}

	var wg sync.WaitGroup
	wg.Add(len(states))
	for i := range states {
		i := i
		utils.PanicCapturingGo(func() {
			defer wg.Done()
			errs[i] = MassMatrix(states[i], outs[i])
		})
	}
	wg.Wait()
	return errs
}
