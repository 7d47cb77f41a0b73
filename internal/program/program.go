// Package program holds the state of one generator run over a typed file and
// drives its phases: declare, link, close, analyse, then synthesize.
package program

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/gnolang/tspec/internal/assertion"
	"github.com/gnolang/tspec/internal/funcspec"
	"github.com/gnolang/tspec/internal/hierarchy"
	"github.com/gnolang/tspec/internal/scope"
	"github.com/gnolang/tspec/internal/tsast"
	"github.com/gnolang/tspec/internal/types"
)

var (
	ErrUnnamedDeclaration      = errors.New("declaration has no name")
	ErrDuplicateIndexSignature = errors.New("object type declares more than one index signature")
	ErrDuplicateInterface      = errors.New("interface declared more than once")
	ErrMissingType             = errors.New("no resolved type")
	ErrUnknownClass            = hierarchy.ErrUnknownClass
	ErrPhase                   = errors.New("phase run out of order")
)

const (
	// CurrentScope is the program variable holding the executing scope.
	CurrentScope = "$$scope"
)

type Phase int

const (
	PhaseNew Phase = iota
	PhaseDeclared
	PhaseLinked
	PhaseClosed
	PhaseAnalyzed
	PhaseFrozen
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "new"
	case PhaseDeclared:
		return "declared"
	case PhaseLinked:
		return "linked"
	case PhaseClosed:
		return "closed"
	case PhaseAnalyzed:
		return "analyzed"
	case PhaseFrozen:
		return "frozen"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Interface is a declared interface and its resolved shape.
type Interface struct {
	Name  string
	Shape types.ObjectLiteral
}

// Program is the context of one run. Registries are populated in order by
// the phase methods and are read-only once the program is frozen.
type Program struct {
	File    *tsast.File
	Classes *hierarchy.Registry

	logger  *zap.Logger
	globals []string
	phase   Phase

	interfaces map[string]*Interface
	ifaceOrder []*Interface
	indexSigs  []*types.IndexSignature

	position  map[*tsast.Node]int
	owner     map[*tsast.Node]*hierarchy.Class
	vars      map[*tsast.Node]*types.Variable
	functions map[*tsast.Node]*types.Function
	gamma     []*types.Variable
	assigns   []scope.StatementAssignments
}

type Option func(*Program)

func WithLogger(l *zap.Logger) Option {
	return func(p *Program) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithGlobals lists identifiers that resolve without a declaration.
func WithGlobals(names ...string) Option {
	return func(p *Program) {
		p.globals = append(p.globals, names...)
	}
}

func New(f *tsast.File, opts ...Option) *Program {
	p := &Program{
		File:       f,
		Classes:    hierarchy.New(),
		logger:     zap.NewNop(),
		interfaces: make(map[string]*Interface),
		position:   make(map[*tsast.Node]int),
		owner:      make(map[*tsast.Node]*hierarchy.Class),
		vars:       make(map[*tsast.Node]*types.Variable),
		functions:  make(map[*tsast.Node]*types.Function),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build runs every phase up to capture analysis.
func Build(f *tsast.File, opts ...Option) (*Program, error) {
	p := New(f, opts...)
	for _, step := range []func() error{p.Declare, p.Link, p.Close, p.Analyze} {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Program) Phase() Phase { return p.phase }

func (p *Program) advance(from, to Phase) error {
	if p.phase != from {
		return fmt.Errorf("%s requires phase %s, program is %s: %w", to, from, p.phase, ErrPhase)
	}
	p.phase = to
	p.logger.Debug("phase complete", zap.String("file", p.File.Path), zap.Stringer("phase", to))
	return nil
}

func (p *Program) expect(phase Phase) error {
	if p.phase != phase {
		return fmt.Errorf("requires phase %s, program is %s: %w", phase, p.phase, ErrPhase)
	}
	return nil
}

// Declare discovers every class and interface, including classes nested in
// function bodies, then resolves interface shapes and class members.
func (p *Program) Declare() error {
	if err := p.expect(PhaseNew); err != nil {
		return err
	}

	var classNodes, ifaceNodes []*tsast.Node
	var err error
	tsast.InspectAll(p.File.Statements, func(n *tsast.Node) bool {
		if err != nil {
			return false
		}
		p.position[n] = len(p.position)
		switch n.Kind {
		case tsast.KindClass:
			if n.Name == "" {
				err = fmt.Errorf("%s: %w", n, ErrUnnamedDeclaration)
				return false
			}
			if _, err = p.Classes.Declare(n.Name, n.Extends...); err != nil {
				return false
			}
			classNodes = append(classNodes, n)
		case tsast.KindInterface:
			if n.Name == "" {
				err = fmt.Errorf("%s: %w", n, ErrUnnamedDeclaration)
				return false
			}
			if _, ok := p.interfaces[n.Name]; ok {
				err = fmt.Errorf("%s: %w", n.Name, ErrDuplicateInterface)
				return false
			}
			iface := &Interface{Name: n.Name}
			p.interfaces[n.Name] = iface
			p.ifaceOrder = append(p.ifaceOrder, iface)
			ifaceNodes = append(ifaceNodes, n)
		}
		return true
	})
	if err != nil {
		return err
	}

	for _, n := range ifaceNodes {
		if err := p.resolveInterface(n); err != nil {
			return err
		}
	}
	for _, n := range classNodes {
		if err := p.declareMembers(n); err != nil {
			return err
		}
	}
	return p.advance(PhaseNew, PhaseDeclared)
}

func (p *Program) resolveInterface(n *tsast.Node) error {
	if n.Type == nil {
		return fmt.Errorf("interface %s: %w", n.Name, ErrMissingType)
	}
	if n.Type.Kind != tsast.TypeObject {
		return fmt.Errorf("interface %s: shape of kind %q: %w", n.Name, n.Type.Kind, types.ErrUnsupportedType)
	}
	t, err := p.ResolveType(n.Type)
	if err != nil {
		return fmt.Errorf("interface %s: %w", n.Name, err)
	}
	p.interfaces[n.Name].Shape = t.(types.ObjectLiteral)
	return nil
}

func (p *Program) declareMembers(n *tsast.Node) error {
	cls, _ := p.Classes.Get(n.Name)
	for _, m := range n.Members {
		p.owner[m] = cls
		switch m.Kind {
		case tsast.KindProperty:
			v, err := p.Variable(m)
			if err != nil {
				return fmt.Errorf("class %s: %w", cls.Name, err)
			}
			if err := cls.AddField(v); err != nil {
				return err
			}
		case tsast.KindMethod:
			fn, err := p.Function(m)
			if err != nil {
				return fmt.Errorf("class %s: %w", cls.Name, err)
			}
			if err := cls.AddMethod(fn); err != nil {
				return err
			}
		case tsast.KindConstructor:
			fn, err := p.Function(m)
			if err != nil {
				return fmt.Errorf("class %s: %w", cls.Name, err)
			}
			if err := cls.SetConstructor(fn); err != nil {
				return err
			}
		default:
			return tsast.Unexpected(m, "class "+cls.Name)
		}
	}
	return nil
}

// Link resolves parent classes.
func (p *Program) Link() error {
	if err := p.expect(PhaseDeclared); err != nil {
		return err
	}
	if err := p.Classes.Link(); err != nil {
		return err
	}
	return p.advance(PhaseDeclared, PhaseLinked)
}

// Close computes the ancestor and descendant closure of every class.
func (p *Program) Close() error {
	if err := p.expect(PhaseLinked); err != nil {
		return err
	}
	if err := p.Classes.Close(); err != nil {
		return err
	}
	return p.advance(PhaseLinked, PhaseClosed)
}

// Analyze runs capture analysis over the whole file.
func (p *Program) Analyze() error {
	if err := p.expect(PhaseClosed); err != nil {
		return err
	}
	a := scope.New(p, p.globals...)
	gamma, err := a.AnalyzeProgram(p.File)
	if err != nil {
		return err
	}
	assigns, err := a.Assignments(p.File, gamma)
	if err != nil {
		return err
	}
	p.gamma = gamma
	p.assigns = assigns
	return p.advance(PhaseClosed, PhaseAnalyzed)
}

// Gamma returns the variables declared at top level.
func (p *Program) Gamma() []*types.Variable {
	return append([]*types.Variable(nil), p.gamma...)
}

// Interfaces returns the declared interfaces in discovery order.
func (p *Program) Interfaces() []*Interface {
	return append([]*Interface(nil), p.ifaceOrder...)
}

// Functions returns every registered function in source order.
func (p *Program) Functions() []*types.Function {
	type entry struct {
		pos int
		fn  *types.Function
	}
	entries := make([]entry, 0, len(p.functions))
	for n, fn := range p.functions {
		entries = append(entries, entry{p.position[n], fn})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })

	out := make([]*types.Function, len(entries))
	for i, e := range entries {
		out[i] = e.fn
	}
	return out
}

// freeze ends mutation of the registries. It is a no-op once frozen.
func (p *Program) freeze() error {
	switch p.phase {
	case PhaseFrozen:
		return nil
	case PhaseAnalyzed:
		return p.advance(PhaseAnalyzed, PhaseFrozen)
	default:
		return fmt.Errorf("requires phase %s, program is %s: %w", PhaseAnalyzed, p.phase, ErrPhase)
	}
}

// Specs synthesizes the spec blocks of every function in source order.
// omit maps function ids to the names left out of their post-conditions.
func (p *Program) Specs(omit map[string][]string) ([]funcspec.Result, error) {
	if err := p.freeze(); err != nil {
		return nil, err
	}
	fns := p.Functions()
	results := make([]funcspec.Result, 0, len(fns))
	for _, fn := range fns {
		res, err := funcspec.Generate(p, fn, omit[fn.ID])
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// ClassAssertion implements types.Env.
func (p *Program) ClassAssertion(class, subject string) (assertion.Assertion, error) {
	return p.Classes.ClassAssertion(class, subject)
}

// GlobalFacts returns the registry facts for the scope fn is defined in.
// Class members additionally pin the current scope to the class scope.
func (p *Program) GlobalFacts(fn *types.Function) (assertion.Assertion, error) {
	all, err := p.Classes.AllProtosAssertion(fn.Owner)
	if err != nil {
		return nil, err
	}
	if !fn.IsMethod() {
		return all, nil
	}
	return assertion.SCL(
		assertion.Text("(%s == %s)", CurrentScope, hierarchy.ScopeLogical),
		all,
	), nil
}

func (p *Program) Class(name string) (*hierarchy.Class, error) {
	return p.Classes.Lookup(name)
}

func (p *Program) ClassByProto(proto string) (*hierarchy.Class, bool) {
	return p.Classes.ClassByProto(proto)
}
