// Package scope computes the variables each lexical scope declares and the
// variables each function captures from its enclosing scopes.
//
// Analysis runs in two passes per block. The first collects the names the
// block declares, without entering nested function bodies. The second walks
// statements and expressions and resolves every identifier against the current
// scope, then the outer scope, then the configured globals; anything else is
// an error. Nested functions are analysed recursively with the enclosing
// current and outer scopes as their outer scope, and their captured set is
// recorded on the function once.
//
// A third pass records, per statement, the variables the statement assigns.
package scope

import (
	"errors"
	"fmt"

	"github.com/gnolang/tspec/internal/tsast"
	"github.com/gnolang/tspec/internal/types"
)

var (
	ErrUnresolvedIdentifier = errors.New("identifier not present in current or outer scope")
	ErrFunctionNotInScope   = errors.New("function declaration not found in current scope")
)

// Resolver supplies the typed declarations behind syntax nodes. Function
// must return the same *types.Function every time it is called with a node.
type Resolver interface {
	Variable(decl *tsast.Node) (*types.Variable, error)
	Function(n *tsast.Node) (*types.Function, error)
}

// Analyzer runs capture analysis over one file.
type Analyzer struct {
	res     Resolver
	globals map[string]bool
}

// New returns an analyzer. Identifiers listed in globals resolve without
// being declared or captured.
func New(res Resolver, globals ...string) *Analyzer {
	a := &Analyzer{res: res, globals: make(map[string]bool, len(globals))}
	for _, g := range globals {
		a.globals[g] = true
	}
	return a
}

// AnalyzeProgram analyses the top-level statements of f and every function
// nested in them. It returns the variables declared at top level.
func (a *Analyzer) AnalyzeProgram(f *tsast.File) ([]*types.Variable, error) {
	gamma, err := a.DeclaredVars(f.Statements)
	if err != nil {
		return nil, err
	}
	current := NewSet(gamma...)
	if _, err := a.CapturedVars(f.Statements, NewSet(), current); err != nil {
		return nil, err
	}
	return gamma, nil
}

// DeclaredVars returns the variables stmts introduce in their own scope, in
// source order. Nested function bodies are not entered.
func (a *Analyzer) DeclaredVars(stmts []*tsast.Node) ([]*types.Variable, error) {
	set := NewSet()
	for _, s := range stmts {
		if err := a.declared(s, set); err != nil {
			return nil, err
		}
	}
	return set.Vars(), nil
}

func (a *Analyzer) declared(n *tsast.Node, out *Set) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case tsast.KindClass, tsast.KindInterface, tsast.KindReturn, tsast.KindExpr:
		return nil
	case tsast.KindVar:
		for _, d := range n.Decls {
			v, err := a.res.Variable(d)
			if err != nil {
				return err
			}
			out.Add(v)
		}
		return nil
	case tsast.KindFunction:
		fn, err := a.res.Function(n)
		if err != nil {
			return err
		}
		out.Add(&fn.Variable)
		return nil
	case tsast.KindIf:
		if err := a.declared(n.Then, out); err != nil {
			return err
		}
		return a.declared(n.Else, out)
	case tsast.KindWhile, tsast.KindBlock:
		for _, s := range n.Body {
			if err := a.declared(s, out); err != nil {
				return err
			}
		}
		return nil
	default:
		return tsast.Unexpected(n, "declaration scan")
	}
}

// CapturedVars returns the variables of outer that stmts reference, in order
// of first reference. Nested functions found on the way are analysed and
// their captured sets recorded. Nothing is returned on error.
func (a *Analyzer) CapturedVars(stmts []*tsast.Node, outer, current *Set) ([]*types.Variable, error) {
	w := &walker{a: a, outer: outer, current: current, captured: NewSet()}
	for _, s := range stmts {
		if err := w.stmt(s); err != nil {
			return nil, err
		}
	}
	return w.captured.Vars(), nil
}

// AnalyzeFunction computes and records the captured set of fn declared by n
// within the given outer scope.
func (a *Analyzer) AnalyzeFunction(fn *types.Function, n *tsast.Node, outer *Set) ([]*types.Variable, error) {
	locals, err := a.DeclaredVars(n.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	current := NewSet(fn.Params...)
	current.Add(locals...)

	captured, err := a.CapturedVars(n.Body, outer, current)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	if err := fn.SetCaptured(captured); err != nil {
		return nil, err
	}
	return captured, nil
}

type walker struct {
	a        *Analyzer
	outer    *Set
	current  *Set
	captured *Set
}

// nested is the outer scope of functions declared in this block.
func (w *walker) nested() *Set {
	return w.current.Union(w.outer)
}

// bubble adds the captures of a nested function that are not bound in the
// current scope.
func (w *walker) bubble(vars []*types.Variable) {
	for _, v := range vars {
		if !w.current.Has(v.Name) {
			w.captured.Add(v)
		}
	}
}

func (w *walker) stmts(list []*tsast.Node) error {
	for _, s := range list {
		if err := w.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) stmt(n *tsast.Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case tsast.KindInterface:
		return nil
	case tsast.KindVar:
		for _, d := range n.Decls {
			if err := w.expr(d.Init); err != nil {
				return err
			}
		}
		return nil
	case tsast.KindFunction:
		fn, err := w.a.res.Function(n)
		if err != nil {
			return err
		}
		if v, ok := w.current.Get(fn.Name); !ok || v != &fn.Variable {
			return fmt.Errorf("%s: %w", n, ErrFunctionNotInScope)
		}
		captured, err := w.a.AnalyzeFunction(fn, n, w.nested())
		if err != nil {
			return err
		}
		w.bubble(captured)
		return nil
	case tsast.KindIf:
		if err := w.expr(n.Cond); err != nil {
			return err
		}
		if err := w.stmt(n.Then); err != nil {
			return err
		}
		return w.stmt(n.Else)
	case tsast.KindWhile:
		if err := w.expr(n.Cond); err != nil {
			return err
		}
		return w.stmts(n.Body)
	case tsast.KindBlock:
		return w.stmts(n.Body)
	case tsast.KindReturn, tsast.KindExpr:
		return w.expr(n.X)
	case tsast.KindClass:
		return w.class(n)
	default:
		return tsast.Unexpected(n, "statement")
	}
}

// class analyses members with the enclosing scopes as their outer scope.
func (w *walker) class(n *tsast.Node) error {
	outer := w.nested()
	for _, m := range n.Members {
		switch m.Kind {
		case tsast.KindConstructor, tsast.KindMethod:
			fn, err := w.a.res.Function(m)
			if err != nil {
				return err
			}
			captured, err := w.a.AnalyzeFunction(fn, m, outer)
			if err != nil {
				return fmt.Errorf("class %s: %w", n.Name, err)
			}
			w.bubble(captured)
		case tsast.KindProperty:
			if m.Init == nil {
				continue
			}
			inner := &walker{a: w.a, outer: outer, current: NewSet(), captured: NewSet()}
			if err := inner.expr(m.Init); err != nil {
				return fmt.Errorf("class %s: %w", n.Name, err)
			}
			w.bubble(inner.captured.Vars())
		default:
			return tsast.Unexpected(m, "class "+n.Name)
		}
	}
	return nil
}

func (w *walker) exprs(list []*tsast.Node) error {
	for _, e := range list {
		if err := w.expr(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) expr(n *tsast.Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case tsast.KindString, tsast.KindNumber, tsast.KindTrue, tsast.KindFalse,
		tsast.KindNull, tsast.KindUndefined, tsast.KindThis, tsast.KindSuper:
		return nil
	case tsast.KindIdent:
		return w.ident(n)
	case tsast.KindProp, tsast.KindParen, tsast.KindAs, tsast.KindUnary:
		return w.expr(n.X)
	case tsast.KindElem:
		if err := w.expr(n.X); err != nil {
			return err
		}
		return w.expr(n.Index)
	case tsast.KindBinary, tsast.KindAssign:
		if err := w.expr(n.X); err != nil {
			return err
		}
		return w.expr(n.Y)
	case tsast.KindObject:
		for _, p := range n.Props {
			if p.Kind != tsast.KindProperty {
				return tsast.Unexpected(p, "object literal")
			}
			if err := w.expr(p.Init); err != nil {
				return err
			}
		}
		return nil
	case tsast.KindCall:
		if err := w.expr(n.X); err != nil {
			return err
		}
		return w.exprs(n.Args)
	case tsast.KindNew:
		return w.exprs(n.Args)
	case tsast.KindFunction:
		fn, err := w.a.res.Function(n)
		if err != nil {
			return err
		}
		captured, err := w.a.AnalyzeFunction(fn, n, w.nested())
		if err != nil {
			return err
		}
		w.bubble(captured)
		return nil
	default:
		return tsast.Unexpected(n, "expression")
	}
}

// ident resolves n against the current scope, then the outer scope, then the
// configured globals.
func (w *walker) ident(n *tsast.Node) error {
	if w.current.Has(n.Name) {
		return nil
	}
	if v, ok := w.outer.Get(n.Name); ok {
		w.captured.Add(v)
		return nil
	}
	if w.a.globals[n.Name] {
		return nil
	}
	return fmt.Errorf("%s: %w", n, ErrUnresolvedIdentifier)
}
