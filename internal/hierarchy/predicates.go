package hierarchy

import (
	"fmt"

	"github.com/gnolang/tspec/internal/assertion"
	"github.com/gnolang/tspec/internal/types"
)

const (
	// ObjectProto is the location of the root object prototype.
	ObjectProto = "$lobj_proto"
	// ScopeLogical is the scope argument of the class owning the current function.
	ScopeLogical = "#sc"
	// AllProtosPred ties together the prototypes and constructors of every class.
	AllProtosPred = "AllProtosAndConstructors"
)

func (c *Class) ProtoPredName() string       { return c.Name + "Proto" }
func (c *Class) ConstructorPredName() string { return c.Name + "Constructor" }
func (c *Class) CompositePredName() string   { return c.Name + "ProtoAndConstructor" }

// Logical variables standing for the constructor, prototype and defining scope of c.
func (c *Class) ConstructorLogical() string { return "#" + c.Name }
func (c *Class) ProtoLogical() string       { return "#" + c.Name + "proto" }
func (c *Class) ScopeLogical() string       { return "#" + c.Name + "scope" }

// ConstructorID returns the identifier of the constructor function object.
func (c *Class) ConstructorID() string {
	if c.Constructor != nil {
		return c.Constructor.ID
	}
	return c.Name + "_constructor"
}

func (c *Class) parentProto() string {
	if c.Parent == nil {
		return ObjectProto
	}
	return c.Parent.ProtoLogical()
}

// ExactAssertion applies the instance predicate of c to subject with the given
// prototype. An empty proto means the prototype of c.
func (c *Class) ExactAssertion(subject, proto string) assertion.Assertion {
	if proto == "" {
		proto = c.ProtoLogical()
	}
	return assertion.Pred(c.Name, subject, proto)
}

// ClassAssertion is the disjunction over the exact instance predicates of
// every descendant of class.
func (r *Registry) ClassAssertion(class, subject string) (assertion.Assertion, error) {
	c, err := r.Lookup(class)
	if err != nil {
		return nil, err
	}
	desc, err := c.Descendants()
	if err != nil {
		return nil, err
	}
	branches := make([]assertion.Assertion, len(desc))
	for i, d := range desc {
		branches[i] = d.ExactAssertion(subject, "")
	}
	return assertion.Or(branches...), nil
}

// DescendantProtos returns the prototype logical variables of c and its descendants.
func (c *Class) DescendantProtos() ([]string, error) {
	desc, err := c.Descendants()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(desc))
	for i, d := range desc {
		out[i] = d.ProtoLogical()
	}
	return out, nil
}

// ClassByProto returns the class whose prototype logical variable is proto.
func (r *Registry) ClassByProto(proto string) (*Class, bool) {
	for _, c := range r.order {
		if c.ProtoLogical() == proto {
			return c, true
		}
	}
	return nil, false
}

// InstancePredicate describes an object created by the constructor of c
// exactly: it owns the instance fields and none of the inherited method names.
//
//	C(+o, proto)
func (c *Class) InstancePredicate() (assertion.Predicate, error) {
	const o, proto = "o", "proto"

	nPlus, err := c.NPlus()
	if err != nil {
		return assertion.Predicate{}, err
	}
	fields, err := c.InstanceFields()
	if err != nil {
		return assertion.Predicate{}, err
	}

	conjuncts := []assertion.Assertion{assertion.JSObject{Obj: o, Proto: proto}}
	for _, m := range nPlus {
		conjuncts = append(conjuncts, assertion.Absent(o, m))
	}
	for _, f := range fields {
		logical := types.Logical(f.Name)
		value, err := types.VariableAssertion(&types.Variable{Name: logical, Type: f.Type}, c.reg)
		if err != nil {
			return assertion.Predicate{}, fmt.Errorf("class %s field %s: %w", c.Name, f.Name, err)
		}
		conjuncts = append(conjuncts, assertion.Prop(o, f.Name, logical), value)
	}
	return assertion.NewPredicate(c.Name, []string{"+" + o, proto}, assertion.SCL(conjuncts...)), nil
}

// ProtoPredicate describes the prototype object of c: it holds the methods of
// c and shadows none of the fields of c or its descendants.
//
//	CProto(+proto, parentProto)
func (c *Class) ProtoPredicate() (assertion.Predicate, error) {
	const proto, parent = "proto", "parentProto"

	fPlus, err := c.FPlus()
	if err != nil {
		return assertion.Predicate{}, err
	}

	conjuncts := []assertion.Assertion{assertion.JSObject{Obj: proto, Proto: parent}}
	for _, f := range fPlus {
		conjuncts = append(conjuncts, assertion.Absent(proto, f))
	}
	for _, m := range c.Methods {
		logical := types.Logical(m.Name)
		conjuncts = append(conjuncts,
			assertion.Prop(proto, m.Name, logical),
			assertion.FunctionObject{Obj: logical, ID: m.ID},
		)
	}
	return assertion.NewPredicate(c.ProtoPredName(), []string{"+" + proto, parent}, assertion.SCL(conjuncts...)), nil
}

// ConstructorPredicate describes the constructor function object of c.
//
//	CConstructor(+c, proto, sc)
func (c *Class) ConstructorPredicate() assertion.Predicate {
	const ctor, proto, sc = "c", "proto", "sc"
	body := assertion.SCL(
		assertion.FunctionObject{Obj: ctor, ID: c.ConstructorID(), ScopeVar: sc},
		assertion.Prop(ctor, "prototype", proto),
	)
	return assertion.NewPredicate(c.ConstructorPredName(), []string{"+" + ctor, proto, sc}, body)
}

// CompositePredicate ties the prototype and constructor of c to the ones of
// its ancestors.
//
//	CProtoAndConstructor(c, proto, sc)
func (c *Class) CompositePredicate() (assertion.Predicate, error) {
	if err := c.closure(); err != nil {
		return assertion.Predicate{}, err
	}
	const ctor, proto, sc = "c", "proto", "sc"
	conjuncts := []assertion.Assertion{
		assertion.Pred(c.ProtoPredName(), proto, c.parentProto()),
		assertion.Pred(c.ConstructorPredName(), ctor, proto, sc),
	}
	if p := c.Parent; p != nil {
		conjuncts = append(conjuncts,
			assertion.Pred(p.CompositePredName(), p.ConstructorLogical(), p.ProtoLogical(), p.ScopeLogical()))
	}
	return assertion.NewPredicate(c.CompositePredName(), []string{ctor, proto, sc}, assertion.SCL(conjuncts...)), nil
}

// Predicates returns the instance, prototype, constructor and composite
// predicates of c.
func (c *Class) Predicates() ([]assertion.Predicate, error) {
	inst, err := c.InstancePredicate()
	if err != nil {
		return nil, err
	}
	proto, err := c.ProtoPredicate()
	if err != nil {
		return nil, err
	}
	comp, err := c.CompositePredicate()
	if err != nil {
		return nil, err
	}
	return []assertion.Predicate{inst, proto, c.ConstructorPredicate(), comp}, nil
}

// AllProtosPredicate binds every class constructor as a global and lays out
// every prototype and constructor next to the built-in objects.
func (r *Registry) AllProtosPredicate() (assertion.Predicate, error) {
	if !r.closed {
		return assertion.Predicate{}, ErrNotClosed
	}
	var params []string
	var conjuncts []assertion.Assertion
	for _, c := range r.order {
		ctor, proto, sc := c.Name, c.Name+"proto", c.Name+"scope"
		parent := ObjectProto
		if c.Parent != nil {
			parent = c.Parent.Name + "proto"
		}
		params = append(params, ctor, proto, sc)
		conjuncts = append(conjuncts,
			assertion.Pred(c.ProtoPredName(), proto, parent),
			assertion.Pred(c.ConstructorPredName(), ctor, proto, sc),
			assertion.GlobalVar{Name: c.Name, Logical: ctor},
		)
	}
	conjuncts = append(conjuncts,
		assertion.Pred("ObjectPrototype"),
		assertion.Pred("FunctionPrototype"),
		assertion.Pred("GlobalObject"),
	)
	return assertion.NewPredicate(AllProtosPred, params, assertion.SCL(conjuncts...)), nil
}

// AllProtosAssertion applies AllProtosAndConstructors to the logical
// variables of every class. The scope argument of owner, if any, is ScopeLogical.
func (r *Registry) AllProtosAssertion(owner string) (assertion.Assertion, error) {
	if !r.closed {
		return nil, ErrNotClosed
	}
	args := make([]string, 0, 3*len(r.order))
	for _, c := range r.order {
		sc := c.ScopeLogical()
		if c.Name == owner {
			sc = ScopeLogical
		}
		args = append(args, c.ConstructorLogical(), c.ProtoLogical(), sc)
	}
	return assertion.Pred(AllProtosPred, args...), nil
}
