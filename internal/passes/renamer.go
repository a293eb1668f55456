package passes

import (
	"github.com/google/uuid"

	"mechc/internal/ast"
)

// GhostName synthesises a collision-free name for a ghost-tagged
// variable. Repeated optimisation runs over the same module (e.g. in a
// cached-compile loop, internal/cache) must not collide on the name, so
// the suffix is derived from the run's UUID rather than a counter.
func GhostName(base string, runID uuid.UUID) string {
	return base + "_ghost_" + runID.String()[:8]
}

// TagGhost marks sym as a ghost variable (§4.9 step 2): a point-process
// local that appears in an API method's output list, distinct enough
// that a printer can allocate it a per-thread scratch slot. A
// LocalVariable alias tags through to its external Variable.
func TagGhost(sym ast.Symbol) {
	switch s := sym.(type) {
	case *ast.Variable:
		s.IsGhost = true
	case *ast.LocalVariable:
		if v, ok := s.External.(*ast.Variable); ok {
			v.IsGhost = true
		}
	}
}
