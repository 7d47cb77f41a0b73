package program

import (
	"fmt"
	"sort"

	"github.com/gnolang/tspec/internal/assertion"
	"github.com/gnolang/tspec/internal/tsast"
	"github.com/gnolang/tspec/internal/types"
)

// Tactic is the proof hint attached after a statement that assigns
// variables: the state of every assigned variable once the statement ran.
type Tactic struct {
	Stmt     *tsast.Node
	Function *types.Function
	Assert   assertion.Assertion
}

// Branches renders the DNF branches of the asserted state.
func (t Tactic) Branches() ([]string, error) {
	return assertion.RenderBranches(t.Assert)
}

// Tactics returns one tactic per assigning statement in source order.
// Parameters are described directly, any other variable through its scope
// binding.
func (p *Program) Tactics() ([]Tactic, error) {
	if err := p.freeze(); err != nil {
		return nil, err
	}
	tactics := make([]Tactic, 0, len(p.assigns))
	for _, sa := range p.assigns {
		conjuncts := make([]assertion.Assertion, 0, len(sa.Vars))
		for _, av := range sa.Vars {
			var (
				a   assertion.Assertion
				err error
			)
			if av.Param {
				a, err = types.VariableAssertion(av.Var, p)
			} else {
				a, err = types.ScopedAssertion(av.Var, p)
			}
			if err != nil {
				return nil, fmt.Errorf("%s: assigned %s: %w", sa.Stmt, av.Var.Name, err)
			}
			conjuncts = append(conjuncts, a)
		}
		tactics = append(tactics, Tactic{Stmt: sa.Stmt, Function: sa.Fn, Assert: assertion.SCL(conjuncts...)})
	}
	sort.SliceStable(tactics, func(i, j int) bool {
		return p.position[tactics[i].Stmt] < p.position[tactics[j].Stmt]
	})
	return tactics, nil
}
