package types

import (
	"strings"

	"github.com/gnolang/tspec/internal/assertion"
)

// Type is a resolved static type.
type Type interface {
	isType()
	String() string
}

type (
	// Primitive is number, string, boolean, undefined, null or void.
	Primitive struct {
		Tag assertion.TypeTag
	}

	// Any places no constraint on its values.
	Any struct{}

	// StringLiteral is the type of exactly one string.
	StringLiteral struct {
		Value string
	}

	// InterfaceRef names a declared interface.
	InterfaceRef struct {
		Name string
	}

	// ClassRef names a declared class. Values may be instances of any descendant.
	ClassRef struct {
		Name string
	}

	// ObjectLiteral is an anonymous object shape.
	ObjectLiteral struct {
		Fields   []*Variable
		Callable bool // has a call or construct signature
		Index    *IndexSignature
	}

	// Union is a choice between member types.
	Union struct {
		Members []Type
	}

	// FunctionSig is the type of a function value.
	FunctionSig struct {
		Params []*Variable
		Return Type
	}

	// This is the polymorphic receiver type returned by derived constructors.
	This struct{}
)

// IndexSignature is a registered index signature. Pred names the predicate
// describing every field's value.
type IndexSignature struct {
	Pred  string
	Value Type
}

func (Primitive) isType()     {}
func (Any) isType()           {}
func (StringLiteral) isType() {}
func (InterfaceRef) isType()  {}
func (ClassRef) isType()      {}
func (ObjectLiteral) isType() {}
func (Union) isType()         {}
func (FunctionSig) isType()   {}
func (This) isType()          {}

var (
	Number    = Primitive{Tag: assertion.TagNum}
	String    = Primitive{Tag: assertion.TagStr}
	Boolean   = Primitive{Tag: assertion.TagBool}
	Undefined = Primitive{Tag: assertion.TagUndefined}
	Null      = Primitive{Tag: assertion.TagNull}
	Void      = Primitive{Tag: assertion.TagEmpty}
)

var primitiveNames = map[string]Primitive{
	"number":    Number,
	"string":    String,
	"boolean":   Boolean,
	"undefined": Undefined,
	"null":      Null,
	"void":      Void,
}

// LookupPrimitive returns the primitive type with the given keyword.
func LookupPrimitive(keyword string) (Primitive, bool) {
	p, ok := primitiveNames[keyword]
	return p, ok
}

func (p Primitive) String() string {
	for name, q := range primitiveNames {
		if q == p {
			return name
		}
	}
	return string(p.Tag)
}

func (Any) String() string             { return "any" }
func (s StringLiteral) String() string { return `"` + s.Value + `"` }
func (i InterfaceRef) String() string  { return i.Name }
func (c ClassRef) String() string      { return c.Name }
func (This) String() string            { return "this" }

func (o ObjectLiteral) String() string {
	var parts []string
	if o.Callable {
		parts = append(parts, "(...)")
	}
	if o.Index != nil {
		parts = append(parts, "[key: string]: "+o.Index.Value.String())
	}
	for _, f := range o.Fields {
		parts = append(parts, f.Name+": "+f.Type.String())
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func (u Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

func (f FunctionSig) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + ": " + p.Type.String()
	}
	ret := "void"
	if f.Return != nil {
		ret = f.Return.String()
	}
	return "(" + strings.Join(params, ", ") + ") => " + ret
}
