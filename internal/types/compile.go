package types

import (
	"errors"
	"fmt"

	"github.com/gnolang/tspec/internal/assertion"
)

var ErrUnsupportedType = errors.New("cannot convert type to assertion")

// AbsentFieldsPred forbids reserved names as own fields of indexed objects.
const AbsentFieldsPred = "AbsentFields"

// Env resolves class references while compiling types.
type Env interface {
	// ClassAssertion returns the assertion that subject is an instance of
	// class or of any of its descendants.
	ClassAssertion(class, subject string) (assertion.Assertion, error)
}

// ToAssertion compiles t into an assertion about the value named name.
func ToAssertion(name string, t Type, env Env) (assertion.Assertion, error) {
	switch t := t.(type) {
	case Primitive:
		return assertion.TypeOf(name, t.Tag), nil
	case StringLiteral:
		return assertion.Text("(%s == %q)", name, t.Value), nil
	case Any:
		return assertion.Emp{}, nil
	case InterfaceRef:
		return assertion.Pred(t.Name, name), nil
	case ObjectLiteral:
		return objectAssertion(name, t, env)
	case ClassRef:
		if env == nil {
			return nil, fmt.Errorf("class %s: %w", t.Name, ErrUnsupportedType)
		}
		return env.ClassAssertion(t.Name, name)
	case Union:
		if len(t.Members) == 0 {
			return nil, fmt.Errorf("%s: empty union: %w", name, ErrUnsupportedType)
		}
		branches := make([]assertion.Assertion, 0, len(t.Members))
		for _, m := range t.Members {
			a, err := ToAssertion(name, m, env)
			if err != nil {
				return nil, err
			}
			branches = append(branches, a)
		}
		return assertion.Or(branches...), nil
	case FunctionSig:
		return assertion.FunctionObject{Obj: name}, nil
	case This:
		return assertion.Text("(%s == %s)", name, assertion.Receiver), nil
	case nil:
		return nil, fmt.Errorf("%s has no type: %w", name, ErrUnsupportedType)
	default:
		return nil, fmt.Errorf("%s: %T: %w", name, t, ErrUnsupportedType)
	}
}

func objectAssertion(name string, o ObjectLiteral, env Env) (assertion.Assertion, error) {
	conjuncts := make([]assertion.Assertion, 0, len(o.Fields)+2)
	if o.Callable {
		conjuncts = append(conjuncts, assertion.FunctionObject{Obj: name})
	} else {
		conjuncts = append(conjuncts, assertion.JSObject{Obj: name, Proto: FieldLogical(name, "proto")})
	}
	if o.Index != nil {
		conjuncts = append(conjuncts,
			assertion.Pred(o.Index.Pred, name, FieldLogical(name, "fields")),
			assertion.Pred(AbsentFieldsPred, name),
		)
	}
	for _, f := range o.Fields {
		logical := FieldLogical(name, f.Name)
		value, err := VariableAssertion(&Variable{Name: logical, Type: f.Type, fn: f.fn}, env)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		conjuncts = append(conjuncts, assertion.Prop(name, f.Name, logical), value)
	}
	return assertion.SCL(conjuncts...), nil
}

// VariableAssertion compiles the type of v. Function declarations are
// described by their function object.
func VariableAssertion(v *Variable, env Env) (assertion.Assertion, error) {
	if fn, ok := v.Function(); ok {
		return assertion.FunctionObject{Obj: v.Name, ID: fn.ID}, nil
	}
	return ToAssertion(v.Name, v.Type, env)
}

// LogicalAssertion compiles the type of v onto its logical variable.
func LogicalAssertion(v *Variable, env Env) (assertion.Assertion, error) {
	return VariableAssertion(&Variable{Name: Logical(v.Name), Type: v.Type, fn: v.fn}, env)
}

// ScopedAssertion describes a variable read from an enclosing scope: the
// scope binding to its logical variable and the type of that logical value.
func ScopedAssertion(v *Variable, env Env) (assertion.Assertion, error) {
	value, err := LogicalAssertion(v, env)
	if err != nil {
		return nil, err
	}
	return assertion.SCL(assertion.Scope{Var: v.Name, Logical: Logical(v.Name)}, value), nil
}
