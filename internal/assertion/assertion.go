package assertion

import (
	"fmt"
	"strings"
)

// Receiver is the reserved name of the method receiver.
const Receiver = "this"

// Kind identifies the variant of an Assertion.
type Kind int

const (
	_ Kind = iota
	KindTypes
	KindDataProp
	KindEmp
	KindScope
	KindJSObject
	KindFunctionObject
	KindNone
	KindCustom
	KindRaw
	KindEmptyFields
	KindGlobalVar
	KindSeparatingConjunction
	KindDisjunction
)

func (k Kind) String() string {
	switch k {
	case KindTypes:
		return "Types"
	case KindDataProp:
		return "DataProp"
	case KindEmp:
		return "Emp"
	case KindScope:
		return "Scope"
	case KindJSObject:
		return "JSObject"
	case KindFunctionObject:
		return "FunctionObject"
	case KindNone:
		return "None"
	case KindCustom:
		return "Custom"
	case KindRaw:
		return "Raw"
	case KindEmptyFields:
		return "EmptyFields"
	case KindGlobalVar:
		return "GlobalVar"
	case KindSeparatingConjunction:
		return "SeparatingConjunction"
	case KindDisjunction:
		return "Disjunction"
	default:
		return "?"
	}
}

// Assertion is a logic formula constraining program state.
type Assertion interface {
	isAssertion()
	Kind() Kind
	// Subject returns the variable the assertion is about, or "" if there is none.
	Subject() string
}

// Atom is an assertion with a direct textual form.
type Atom interface {
	Assertion
	String() string
}

// TypeTag names a primitive type in the verifier's logic.
type TypeTag string

const (
	TagNum       TypeTag = "Num"
	TagBool      TypeTag = "Bool"
	TagStr       TypeTag = "Str"
	TagUndefined TypeTag = "Undefined"
	TagNull      TypeTag = "Null"
	TagEmpty     TypeTag = "Empty"
)

// Types asserts that Name holds a value of the primitive type Tag.
type Types struct {
	Name string
	Tag  TypeTag
}

func (Types) isAssertion()      {}
func (Types) Kind() Kind        { return KindTypes }
func (a Types) Subject() string { return a.Name }
func (a Types) String() string {
	return fmt.Sprintf("types(%s: %s)", a.Name, a.Tag)
}

// DataProp asserts that Obj owns the data property Field holding Value.
// A logical field name is printed without quotes.
type DataProp struct {
	Obj          string
	Field        string
	Value        string
	LogicalField bool
}

func (DataProp) isAssertion()      {}
func (DataProp) Kind() Kind        { return KindDataProp }
func (a DataProp) Subject() string { return a.Obj }
func (a DataProp) String() string {
	field := quote(a.Field)
	if a.LogicalField {
		field = a.Field
	}
	return fmt.Sprintf("DataProp(%s, %s, %s)", a.Obj, field, a.Value)
}

// Emp is the identity of the separating conjunction.
type Emp struct{}

func (Emp) isAssertion()    {}
func (Emp) Kind() Kind      { return KindEmp }
func (Emp) Subject() string { return "" }
func (Emp) String() string  { return "emp" }

// Scope asserts that the program variable Var is bound to Logical in the
// enclosing scope.
type Scope struct {
	Var     string
	Logical string
}

func (Scope) isAssertion()      {}
func (Scope) Kind() Kind        { return KindScope }
func (a Scope) Subject() string { return a.Var }
func (a Scope) String() string {
	return fmt.Sprintf("Scope(%s, %s)", a.Var, a.Logical)
}

// JSObject asserts that Obj is an object whose prototype is Proto.
type JSObject struct {
	Obj   string
	Proto string
}

func (JSObject) isAssertion()      {}
func (JSObject) Kind() Kind        { return KindJSObject }
func (a JSObject) Subject() string { return a.Obj }
func (a JSObject) String() string {
	return fmt.Sprintf("JSObjWithProto(%s, %s)", a.Obj, a.Proto)
}

// FunctionObject asserts that Obj is a function object. Empty ID or ScopeVar
// are printed as the wildcard.
type FunctionObject struct {
	Obj      string
	ID       string
	ScopeVar string
}

func (FunctionObject) isAssertion()      {}
func (FunctionObject) Kind() Kind        { return KindFunctionObject }
func (a FunctionObject) Subject() string { return a.Obj }
func (a FunctionObject) String() string {
	return fmt.Sprintf("FunctionObject(%s, %s, %s)", a.Obj, orWildcard(a.ID), orWildcard(a.ScopeVar))
}

// None asserts that Obj does not own the property Field.
type None struct {
	Obj   string
	Field string
}

func (None) isAssertion()      {}
func (None) Kind() Kind        { return KindNone }
func (a None) Subject() string { return a.Obj }
func (a None) String() string {
	return fmt.Sprintf("((%s, %s) -> none)", a.Obj, quote(a.Field))
}

// Custom applies the named predicate to Args. The first argument is the subject.
type Custom struct {
	Pred string
	Args []string
}

func (Custom) isAssertion() {}
func (Custom) Kind() Kind   { return KindCustom }
func (a Custom) Subject() string {
	if len(a.Args) == 0 {
		return ""
	}
	return a.Args[0]
}
func (a Custom) String() string {
	return a.Pred + "(" + strings.Join(a.Args, ", ") + ")"
}

// Raw is pre-rendered assertion text.
type Raw struct {
	Text string
}

func (Raw) isAssertion()     {}
func (Raw) Kind() Kind       { return KindRaw }
func (Raw) Subject() string  { return "" }
func (a Raw) String() string { return a.Text }

// EmptyFields asserts that Obj owns no properties outside Fields.
type EmptyFields struct {
	Obj    string
	Fields []string
}

func (EmptyFields) isAssertion()      {}
func (EmptyFields) Kind() Kind        { return KindEmptyFields }
func (a EmptyFields) Subject() string { return a.Obj }
func (a EmptyFields) String() string {
	quoted := make([]string, len(a.Fields))
	for i, f := range a.Fields {
		quoted[i] = quote(f)
	}
	return fmt.Sprintf("empty_fields(%s : -{ %s }-)", a.Obj, strings.Join(quoted, ", "))
}

// GlobalVar asserts that the global variable Name is bound to Logical.
type GlobalVar struct {
	Name    string
	Logical string
}

func (GlobalVar) isAssertion()      {}
func (GlobalVar) Kind() Kind        { return KindGlobalVar }
func (a GlobalVar) Subject() string { return a.Name }
func (a GlobalVar) String() string {
	return fmt.Sprintf("GlobalVar(%s, %s)", quote(a.Name), a.Logical)
}

func quote(s string) string {
	return `"` + s + `"`
}

func orWildcard(s string) string {
	if s == "" {
		return "_"
	}
	return s
}

// Helper functions to construct atoms

// TypeOf creates a type tag assertion.
func TypeOf(name string, tag TypeTag) Assertion {
	return Types{Name: name, Tag: tag}
}

// Prop creates a data property assertion with a literal field name.
func Prop(obj, field, value string) Assertion {
	return DataProp{Obj: obj, Field: field, Value: value}
}

// Pred creates a custom predicate application.
func Pred(name string, args ...string) Assertion {
	return Custom{Pred: name, Args: args}
}

// Text creates a raw assertion.
func Text(format string, args ...any) Assertion {
	return Raw{Text: fmt.Sprintf(format, args...)}
}

// Absent creates an absence assertion.
func Absent(obj, field string) Assertion {
	return None{Obj: obj, Field: field}
}
