package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCapturesNotSet     = errors.New("captured variables read before capture analysis")
	ErrCapturesAlreadySet = errors.New("captured variables already set")
)

// Variable is a named program variable with its static type.
type Variable struct {
	Name string
	Type Type

	fn *Function
}

func NewVariable(name string, t Type) *Variable {
	return &Variable{Name: name, Type: t}
}

// Function returns the function this variable denotes, if any.
func (v *Variable) Function() (*Function, bool) {
	return v.fn, v.fn != nil
}

// Function is a function, method or constructor declaration.
type Function struct {
	Variable

	Params []*Variable
	Return Type
	ID     string

	// Owner is the enclosing class name for methods and constructors.
	Owner       string
	Constructor bool

	captured    []*Variable
	capturedSet bool
}

func NewFunction(name, id string, params []*Variable, ret Type) *Function {
	f := &Function{
		Params: params,
		Return: ret,
		ID:     id,
	}
	f.Variable = Variable{
		Name: name,
		Type: FunctionSig{Params: params, Return: ret},
		fn:   f,
	}
	return f
}

// IsMethod reports whether f belongs to a class.
func (f *Function) IsMethod() bool { return f.Owner != "" }

// SetCaptured records the variables f captures from enclosing scopes. It may
// be called once.
func (f *Function) SetCaptured(vars []*Variable) error {
	if f.capturedSet {
		return fmt.Errorf("%s: %w", f.Name, ErrCapturesAlreadySet)
	}
	f.captured = append([]*Variable(nil), vars...)
	f.capturedSet = true
	return nil
}

// Captured returns the variables set by SetCaptured.
func (f *Function) Captured() ([]*Variable, error) {
	if !f.capturedSet {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrCapturesNotSet)
	}
	return append([]*Variable(nil), f.captured...), nil
}

// CapturesSet reports whether capture analysis has run for f.
func (f *Function) CapturesSet() bool { return f.capturedSet }

// Param returns the parameter with the given name.
func (f *Function) Param(name string) (*Variable, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Logical returns the logical variable standing for the value of name.
func Logical(name string) string {
	return "#" + strings.TrimPrefix(name, "#")
}

// FieldLogical returns the logical variable holding field of obj.
func FieldLogical(obj, field string) string {
	return Logical(obj) + "_" + field
}
