// Package tsast defines the typed syntax tree consumed by the generator.
//
// The tree is produced by an external TypeScript frontend that has already
// resolved names and static types, and is exchanged as YAML or JSON.
package tsast

import (
	"errors"
	"fmt"
)

var ErrUnexpectedNode = errors.New("unexpected node")

// Statement kinds.
const (
	KindVar       = "var"
	KindFunction  = "function"
	KindClass     = "class"
	KindInterface = "interface"
	KindIf        = "if"
	KindWhile     = "while"
	KindBlock     = "block"
	KindReturn    = "return"
	KindExpr      = "expr"
)

// Class member kinds.
const (
	KindConstructor = "constructor"
	KindMethod      = "method"
	KindProperty    = "property"
)

// Expression kinds. Function expressions use KindFunction.
const (
	KindIdent     = "ident"
	KindString    = "string"
	KindNumber    = "number"
	KindTrue      = "true"
	KindFalse     = "false"
	KindNull      = "null"
	KindUndefined = "undefined"
	KindThis      = "this"
	KindSuper     = "super"
	KindProp      = "prop"
	KindElem      = "elem"
	KindBinary    = "binary"
	KindAssign    = "assign"
	KindUnary     = "unary"
	KindObject    = "object"
	KindCall      = "call"
	KindNew       = "new"
	KindParen     = "paren"
	KindAs        = "as"
)

// File is one analysed source file.
type File struct {
	Path       string  `yaml:"path"`
	Statements []*Node `yaml:"statements"`
}

// Node is a statement, expression, class member or variable declarator.
// Which fields are meaningful depends on Kind.
type Node struct {
	Kind string `yaml:"kind"`
	// ID is the frontend identity of a function node, if it supplies one.
	ID   string `yaml:"id,omitempty"`
	Name string `yaml:"name,omitempty"`
	Line int    `yaml:"line,omitempty"`

	Type    *TypeNode `yaml:"type,omitempty"`
	Extends []string  `yaml:"extends,omitempty"`
	Params  []*Node   `yaml:"params,omitempty"`
	Returns *TypeNode `yaml:"returns,omitempty"`
	Body    []*Node   `yaml:"body,omitempty"`
	Members []*Node   `yaml:"members,omitempty"`

	// Decls holds the declarators of a var statement.
	Decls []*Node `yaml:"decls,omitempty"`
	Init  *Node   `yaml:"init,omitempty"`

	Cond *Node `yaml:"cond,omitempty"`
	Then *Node `yaml:"then,omitempty"`
	Else *Node `yaml:"else,omitempty"`

	// X is the operand, object, callee or returned value; Y the right operand.
	X     *Node   `yaml:"x,omitempty"`
	Y     *Node   `yaml:"y,omitempty"`
	Index *Node   `yaml:"index,omitempty"`
	Args  []*Node `yaml:"args,omitempty"`
	Props []*Node `yaml:"props,omitempty"`
	Op    string  `yaml:"op,omitempty"`
	Value string  `yaml:"value,omitempty"`
}

// Type kinds.
const (
	TypeNumber    = "number"
	TypeString    = "string"
	TypeBoolean   = "boolean"
	TypeUndefined = "undefined"
	TypeNull      = "null"
	TypeVoid      = "void"
	TypeAny       = "any"
	TypeLiteral   = "literal"
	TypeInterface = "interface"
	TypeClass     = "class"
	TypeRef       = "ref"
	TypeObject    = "object"
	TypeUnion     = "union"
	TypeFunction  = "function"
	TypeThis      = "this"
)

// TypeNode is a resolved static type.
type TypeNode struct {
	Kind string `yaml:"kind"`
	// Name of the referenced interface or class.
	Name string `yaml:"name,omitempty"`
	// Value of a string literal type.
	Value string `yaml:"value,omitempty"`

	Members   []*TypeNode `yaml:"members,omitempty"`
	Fields    []*Field    `yaml:"fields,omitempty"`
	Call      bool        `yaml:"call,omitempty"`
	Construct bool        `yaml:"construct,omitempty"`
	Index     []*TypeNode `yaml:"index,omitempty"`
	Params    []*Field    `yaml:"params,omitempty"`
	Returns   *TypeNode   `yaml:"returns,omitempty"`
}

// Field is a named member of an object type or a signature parameter.
type Field struct {
	Name string    `yaml:"name"`
	Type *TypeNode `yaml:"type"`
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	s := n.Kind
	if n.Name != "" {
		s += " " + n.Name
	}
	if n.Line > 0 {
		s += fmt.Sprintf(" (line %d)", n.Line)
	}
	return s
}

// Unexpected reports n as invalid where it was found.
func Unexpected(n *Node, where string) error {
	return fmt.Errorf("%s in %s: %w", n, where, ErrUnexpectedNode)
}

// IsFunction reports whether n declares or evaluates to a function body.
func (n *Node) IsFunction() bool {
	switch n.Kind {
	case KindFunction, KindMethod, KindConstructor:
		return true
	}
	return false
}
