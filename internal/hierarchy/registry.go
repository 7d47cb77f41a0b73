package hierarchy

import (
	"errors"
	"fmt"

	"github.com/gnolang/tspec/internal/types"
)

var (
	ErrMultipleInheritance = errors.New("a class may extend at most one class")
	ErrUnknownParent       = errors.New("parent class is not declared")
	ErrInheritanceCycle    = errors.New("inheritance cycle")
	ErrDuplicateClass      = errors.New("class declared more than once")
	ErrUnknownClass        = errors.New("no such class")
	ErrNotLinked           = errors.New("parent links not resolved")
	ErrNotClosed           = errors.New("class hierarchy closure not computed")
	ErrSealed              = errors.New("class registry no longer accepts declarations")
)

// Class is a declared class. Ancestors and descendants always contain the
// class itself and are only available once the registry is closed.
type Class struct {
	Name        string
	Extends     []string
	Parent      *Class
	Fields      []*types.Variable
	Methods     []*types.Function
	Constructor *types.Function

	reg         *Registry
	ancestors   []*Class
	descendants []*Class
	fPlus       []string
	nPlus       []string
}

// Registry holds every class of a program keyed by name. It is populated in
// declaration order, linked, then closed; it is read-only afterwards.
type Registry struct {
	classes map[string]*Class
	order   []*Class
	linked  bool
	closed  bool
}

func New() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Declare registers a class with its declared parent names.
func (r *Registry) Declare(name string, extends ...string) (*Class, error) {
	if r.linked {
		return nil, fmt.Errorf("declare %s: %w", name, ErrSealed)
	}
	if _, ok := r.classes[name]; ok {
		return nil, fmt.Errorf("%s: %w", name, ErrDuplicateClass)
	}
	c := &Class{
		Name:    name,
		Extends: append([]string(nil), extends...),
		reg:     r,
	}
	c.ancestors = []*Class{c}
	c.descendants = []*Class{c}
	r.classes[name] = c
	r.order = append(r.order, c)
	return c, nil
}

func (r *Registry) Get(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Lookup is Get returning ErrUnknownClass for a missing class.
func (r *Registry) Lookup(name string) (*Class, error) {
	c, ok := r.classes[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownClass)
	}
	return c, nil
}

// Classes returns every class in declaration order.
func (r *Registry) Classes() []*Class {
	return append([]*Class(nil), r.order...)
}

func (r *Registry) Len() int { return len(r.order) }

func (r *Registry) Closed() bool { return r.closed }

// Link resolves every declared parent name to its class.
func (r *Registry) Link() error {
	if r.linked {
		return nil
	}
	for _, c := range r.order {
		switch len(c.Extends) {
		case 0:
			continue
		case 1:
		default:
			return fmt.Errorf("%s extends %v: %w", c.Name, c.Extends, ErrMultipleInheritance)
		}
		parent, ok := r.classes[c.Extends[0]]
		if !ok {
			return fmt.Errorf("%s extends %s: %w", c.Name, c.Extends[0], ErrUnknownParent)
		}
		c.Parent = parent
	}
	for _, c := range r.order {
		seen := map[*Class]bool{}
		for p := c; p != nil; p = p.Parent {
			if seen[p] {
				return fmt.Errorf("%s: %w", c.Name, ErrInheritanceCycle)
			}
			seen[p] = true
		}
	}
	r.linked = true
	return nil
}

// Close propagates ancestor and descendant sets along parent links until a
// full pass changes nothing, then derives F+ and N+ for every class.
func (r *Registry) Close() error {
	if !r.linked {
		return ErrNotLinked
	}
	if r.closed {
		return nil
	}
	for changed := true; changed; {
		changed = false
		for _, c := range r.order {
			p := c.Parent
			if p == nil {
				continue
			}
			if union(&c.ancestors, append([]*Class{p}, p.ancestors...)) {
				changed = true
			}
			if union(&p.descendants, append([]*Class{c}, c.descendants...)) {
				changed = true
			}
		}
	}
	for _, c := range r.order {
		c.fPlus = fieldNames(c.descendants)
		c.nPlus = methodNames(c.ancestors)
	}
	r.closed = true
	return nil
}

// union appends the members of add missing from set, reporting whether set grew.
func union(set *[]*Class, add []*Class) bool {
	grew := false
	for _, a := range add {
		if !contains(*set, a) {
			*set = append(*set, a)
			grew = true
		}
	}
	return grew
}

func contains(set []*Class, c *Class) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

func fieldNames(classes []*Class) []string {
	var names []string
	seen := map[string]bool{}
	for _, c := range classes {
		for _, f := range c.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
		}
	}
	return names
}

func methodNames(classes []*Class) []string {
	var names []string
	seen := map[string]bool{}
	for _, c := range classes {
		for _, m := range c.Methods {
			if !seen[m.Name] {
				seen[m.Name] = true
				names = append(names, m.Name)
			}
		}
	}
	return names
}

func (c *Class) sealed() error {
	if c.reg != nil && c.reg.closed {
		return fmt.Errorf("class %s: %w", c.Name, ErrSealed)
	}
	return nil
}

func (c *Class) AddField(v *types.Variable) error {
	if err := c.sealed(); err != nil {
		return err
	}
	c.Fields = append(c.Fields, v)
	return nil
}

func (c *Class) AddMethod(f *types.Function) error {
	if err := c.sealed(); err != nil {
		return err
	}
	f.Owner = c.Name
	c.Methods = append(c.Methods, f)
	return nil
}

// SetConstructor records the class constructor. It may be called once.
func (c *Class) SetConstructor(f *types.Function) error {
	if err := c.sealed(); err != nil {
		return err
	}
	if c.Constructor != nil {
		return fmt.Errorf("class %s: constructor already set", c.Name)
	}
	f.Owner = c.Name
	f.Constructor = true
	c.Constructor = f
	return nil
}

// Method returns the method with the given name declared on c itself.
func (c *Class) Method(name string) (*types.Function, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Inherits reports whether c has a parent class.
func (c *Class) Inherits() bool { return c.Parent != nil || len(c.Extends) > 0 }

func (c *Class) closure() error {
	if c.reg == nil || !c.reg.closed {
		return fmt.Errorf("class %s: %w", c.Name, ErrNotClosed)
	}
	return nil
}

// Ancestors returns c followed by its ancestors, nearest first.
func (c *Class) Ancestors() ([]*Class, error) {
	if err := c.closure(); err != nil {
		return nil, err
	}
	return append([]*Class(nil), c.ancestors...), nil
}

// Descendants returns c followed by every class extending it directly or
// indirectly.
func (c *Class) Descendants() ([]*Class, error) {
	if err := c.closure(); err != nil {
		return nil, err
	}
	return append([]*Class(nil), c.descendants...), nil
}

// FPlus returns the field names declared on c or any of its descendants.
func (c *Class) FPlus() ([]string, error) {
	if err := c.closure(); err != nil {
		return nil, err
	}
	return append([]string(nil), c.fPlus...), nil
}

// NPlus returns the method names declared on c or any of its ancestors.
func (c *Class) NPlus() ([]string, error) {
	if err := c.closure(); err != nil {
		return nil, err
	}
	return append([]string(nil), c.nPlus...), nil
}

// InstanceFields returns the fields an instance of c owns: those of c and its
// ancestors, the first declaration of each name winning.
func (c *Class) InstanceFields() ([]*types.Variable, error) {
	if err := c.closure(); err != nil {
		return nil, err
	}
	var fields []*types.Variable
	seen := map[string]bool{}
	for _, a := range c.ancestors {
		for _, f := range a.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				fields = append(fields, f)
			}
		}
	}
	return fields, nil
}

// Names returns the names of classes in order.
func Names(classes []*Class) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = c.Name
	}
	return out
}
