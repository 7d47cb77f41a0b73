// Package assertion implements the separation-logic assertion algebra used to
// describe program state at function boundaries.
//
// Assertions are immutable values. Two constructors normalize at build time:
//
//   - SCL (separating conjunction list) drops Emp conjuncts and inlines nested
//     lists, preserving the relative order of the remaining conjuncts.
//   - Or (disjunction) inlines nested disjunctions, preserving branch order.
//
// A disjunction has no textual form. Formulas that may contain disjunctions must
// be converted with DNF and rendered branch by branch; Render reports
// ErrUnresolvedDisjunction otherwise.
//
// Atomic kinds:
//   - Types: primitive type tag of a variable
//   - DataProp: own data property of an object
//   - Emp: identity of the separating conjunction
//   - Scope: binding of a program variable in the enclosing scope
//   - JSObject: object with a given prototype
//   - FunctionObject: function object with an identifier and scope
//   - None: absence of a property
//   - Custom: application of a named predicate
//   - Raw: pre-rendered text
//   - EmptyFields: object owning no properties other than the listed ones
//   - GlobalVar: binding of a global variable
package assertion
