package scope

import (
	"fmt"

	"github.com/gnolang/tspec/internal/tsast"
	"github.com/gnolang/tspec/internal/types"
)

// Assignment is a variable written by a statement. Param marks parameters of
// the enclosing function, which are described directly rather than through
// their scope binding.
type Assignment struct {
	Var   *types.Variable
	Param bool
}

// StatementAssignments lists the variables one statement assigns, in order
// of first assignment. Fn is the function whose body holds the statement, or
// nil at top level.
type StatementAssignments struct {
	Stmt *tsast.Node
	Fn   *types.Function
	Vars []Assignment
}

// Assignments walks the top-level statements of f, whose declared variables
// are gamma, and every function body below them. Statements that assign
// nothing are left out.
func (a *Analyzer) Assignments(f *tsast.File, gamma []*types.Variable) ([]StatementAssignments, error) {
	w := &assignWalker{
		a:       a,
		params:  NewSet(),
		outer:   NewSet(),
		current: NewSet(gamma...),
		out:     new([]StatementAssignments),
	}
	if err := w.stmts(f.Statements); err != nil {
		return nil, err
	}
	return *w.out, nil
}

type assignWalker struct {
	a       *Analyzer
	fn      *types.Function
	params  *Set
	outer   *Set
	current *Set
	out     *[]StatementAssignments
}

// function returns the walker for the body of fn declared by n.
func (w *assignWalker) function(fn *types.Function, n *tsast.Node, outer *Set) (*assignWalker, error) {
	locals, err := w.a.DeclaredVars(n.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	current := NewSet(fn.Params...)
	current.Add(locals...)
	return &assignWalker{
		a:       w.a,
		fn:      fn,
		params:  NewSet(fn.Params...),
		outer:   outer,
		current: current,
		out:     w.out,
	}, nil
}

func (w *assignWalker) body(fn *types.Function, n *tsast.Node, outer *Set) error {
	inner, err := w.function(fn, n, outer)
	if err != nil {
		return err
	}
	if err := inner.stmts(n.Body); err != nil {
		return fmt.Errorf("%s: %w", fn.Name, err)
	}
	return nil
}

func (w *assignWalker) stmts(list []*tsast.Node) error {
	for _, s := range list {
		if err := w.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

// record collects the assignments of the expressions of one statement.
func (w *assignWalker) record(stmt *tsast.Node, exprs ...*tsast.Node) error {
	set := &assignSet{}
	for _, e := range exprs {
		if err := w.expr(e, set); err != nil {
			return err
		}
	}
	if len(set.vars) > 0 {
		*w.out = append(*w.out, StatementAssignments{Stmt: stmt, Fn: w.fn, Vars: set.vars})
	}
	return nil
}

func (w *assignWalker) stmt(n *tsast.Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case tsast.KindInterface:
		return nil
	case tsast.KindVar:
		inits := make([]*tsast.Node, 0, len(n.Decls))
		for _, d := range n.Decls {
			inits = append(inits, d.Init)
		}
		return w.record(n, inits...)
	case tsast.KindReturn, tsast.KindExpr:
		return w.record(n, n.X)
	case tsast.KindFunction:
		fn, err := w.a.res.Function(n)
		if err != nil {
			return err
		}
		return w.body(fn, n, w.current.Union(w.outer))
	case tsast.KindIf:
		if err := w.record(n, n.Cond); err != nil {
			return err
		}
		if err := w.stmt(n.Then); err != nil {
			return err
		}
		return w.stmt(n.Else)
	case tsast.KindWhile:
		if err := w.record(n, n.Cond); err != nil {
			return err
		}
		return w.stmts(n.Body)
	case tsast.KindBlock:
		return w.stmts(n.Body)
	case tsast.KindClass:
		outer := w.current.Union(w.outer)
		for _, m := range n.Members {
			if m.Kind != tsast.KindConstructor && m.Kind != tsast.KindMethod {
				continue
			}
			fn, err := w.a.res.Function(m)
			if err != nil {
				return err
			}
			if err := w.body(fn, m, outer); err != nil {
				return fmt.Errorf("class %s: %w", n.Name, err)
			}
		}
		return nil
	default:
		return tsast.Unexpected(n, "assignment scan")
	}
}

func (w *assignWalker) expr(n *tsast.Node, set *assignSet) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case tsast.KindIdent, tsast.KindString, tsast.KindNumber, tsast.KindTrue, tsast.KindFalse,
		tsast.KindNull, tsast.KindUndefined, tsast.KindThis, tsast.KindSuper:
		return nil
	case tsast.KindProp, tsast.KindParen, tsast.KindAs, tsast.KindUnary:
		return w.expr(n.X, set)
	case tsast.KindElem, tsast.KindBinary:
		if err := w.expr(n.X, set); err != nil {
			return err
		}
		if err := w.expr(n.Index, set); err != nil {
			return err
		}
		return w.expr(n.Y, set)
	case tsast.KindAssign:
		if obj := assignedObject(n.X); obj != nil {
			if err := w.assigned(obj, set); err != nil {
				return err
			}
		}
		if err := w.expr(n.Y, set); err != nil {
			return err
		}
		return w.expr(n.X, set)
	case tsast.KindObject:
		for _, p := range n.Props {
			if p.Kind != tsast.KindProperty {
				return tsast.Unexpected(p, "object literal")
			}
			if err := w.expr(p.Init, set); err != nil {
				return err
			}
		}
		return nil
	case tsast.KindCall, tsast.KindNew:
		if err := w.expr(n.X, set); err != nil {
			return err
		}
		for _, arg := range n.Args {
			if err := w.expr(arg, set); err != nil {
				return err
			}
		}
		return nil
	case tsast.KindFunction:
		fn, err := w.a.res.Function(n)
		if err != nil {
			return err
		}
		return w.body(fn, n, w.current.Union(w.outer))
	default:
		return tsast.Unexpected(n, "expression")
	}
}

// assignedObject returns the identifier whose binding an assignment to target
// writes: the target itself, or the object of a property or element target.
func assignedObject(target *tsast.Node) *tsast.Node {
	if target == nil {
		return nil
	}
	switch target.Kind {
	case tsast.KindIdent:
		return target
	case tsast.KindProp, tsast.KindElem:
		if target.X != nil && target.X.Kind == tsast.KindIdent {
			return target.X
		}
	}
	return nil
}

// assigned resolves id against the parameters, then the current scope, then
// the outer scope. Configured globals have no binding to describe.
func (w *assignWalker) assigned(id *tsast.Node, set *assignSet) error {
	if v, ok := w.params.Get(id.Name); ok {
		set.add(Assignment{Var: v, Param: true})
		return nil
	}
	if v, ok := w.current.Get(id.Name); ok {
		set.add(Assignment{Var: v})
		return nil
	}
	if v, ok := w.outer.Get(id.Name); ok {
		set.add(Assignment{Var: v})
		return nil
	}
	if w.a.globals[id.Name] {
		return nil
	}
	return fmt.Errorf("assignment to %s: %w", id, ErrUnresolvedIdentifier)
}

type assignSet struct {
	vars []Assignment
}

func (s *assignSet) add(a Assignment) {
	for _, v := range s.vars {
		if v.Var == a.Var {
			return
		}
	}
	s.vars = append(s.vars, a)
}
