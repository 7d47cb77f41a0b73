package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tspec/internal/assertion"
)

type fakeEnv map[string][]string

func (e fakeEnv) ClassAssertion(class, subject string) (assertion.Assertion, error) {
	var branches []assertion.Assertion
	for _, d := range e[class] {
		branches = append(branches, assertion.Pred(d, subject, "#"+d+"proto"))
	}
	return assertion.Or(branches...), nil
}

func render(t *testing.T, a assertion.Assertion) []string {
	t.Helper()
	out, err := assertion.RenderBranches(a)
	require.NoError(t, err)
	return out
}

func TestToAssertion(t *testing.T) {
	t.Parallel()

	env := fakeEnv{"Animal": {"Animal", "Cat"}}

	tests := []struct {
		name string
		typ  Type
		want []string
	}{
		{"number", Number, []string{"types(x: Num)"}},
		{"void", Void, []string{"types(x: Empty)"}},
		{"string literal", StringLiteral{Value: "on"}, []string{`(x == "on")`}},
		{"any", Any{}, []string{"emp"}},
		{"interface", InterfaceRef{Name: "Shape"}, []string{"Shape(x)"}},
		{"function signature", FunctionSig{Return: Number}, []string{"FunctionObject(x, _, _)"}},
		{"this", This{}, []string{"(x == this)"}},
		{
			name: "union",
			typ:  Union{Members: []Type{Number, Undefined}},
			want: []string{"types(x: Num)", "types(x: Undefined)"},
		},
		{
			name: "class reference",
			typ:  ClassRef{Name: "Animal"},
			want: []string{"Animal(x, #Animalproto)", "Cat(x, #Catproto)"},
		},
		{
			name: "object literal",
			typ: ObjectLiteral{Fields: []*Variable{
				NewVariable("a", Number),
				NewVariable("b", Union{Members: []Type{String, Null}}),
			}},
			want: []string{
				`JSObjWithProto(x, #x_proto) * DataProp(x, "a", #x_a) * types(#x_a: Num) * DataProp(x, "b", #x_b) * types(#x_b: Str)`,
				`JSObjWithProto(x, #x_proto) * DataProp(x, "a", #x_a) * types(#x_a: Num) * DataProp(x, "b", #x_b) * types(#x_b: Null)`,
			},
		},
		{
			name: "callable object literal with index signature",
			typ: ObjectLiteral{
				Callable: true,
				Index:    &IndexSignature{Pred: "IndexSig0", Value: Number},
			},
			want: []string{"FunctionObject(x, _, _) * IndexSig0(x, #x_fields) * AbsentFields(x)"},
		},
		{
			name: "nested object literal",
			typ: ObjectLiteral{Fields: []*Variable{
				NewVariable("p", ObjectLiteral{Fields: []*Variable{NewVariable("q", Boolean)}}),
			}},
			want: []string{
				`JSObjWithProto(x, #x_proto) * DataProp(x, "p", #x_p) * JSObjWithProto(#x_p, #x_p_proto) * DataProp(#x_p, "q", #x_p_q) * types(#x_p_q: Bool)`,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, err := ToAssertion("x", tt.typ, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, render(t, a))
		})
	}
}

func TestToAssertionUnsupported(t *testing.T) {
	t.Parallel()

	_, err := ToAssertion("x", nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ToAssertion("x", ClassRef{Name: "A"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ToAssertion("x", Union{Members: []Type{Number, nil}}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ToAssertion("x", Union{}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFunctionCaptures(t *testing.T) {
	t.Parallel()

	f := NewFunction("f", "f_id", []*Variable{NewVariable("x", Number)}, Number)
	assert.False(t, f.CapturesSet())

	_, err := f.Captured()
	require.ErrorIs(t, err, ErrCapturesNotSet)

	y := NewVariable("y", String)
	require.NoError(t, f.SetCaptured([]*Variable{y}))
	assert.ErrorIs(t, f.SetCaptured(nil), ErrCapturesAlreadySet)

	got, err := f.Captured()
	require.NoError(t, err)
	assert.Equal(t, []*Variable{y}, got)

	fn, ok := f.Variable.Function()
	require.True(t, ok)
	assert.Same(t, f, fn)

	_, ok = y.Function()
	assert.False(t, ok)
}

func TestVariableAndScopedAssertion(t *testing.T) {
	t.Parallel()

	f := NewFunction("g", "g_id", nil, Void)
	a, err := VariableAssertion(&f.Variable, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"FunctionObject(g, g_id, _)"}, render(t, a))

	a, err = ScopedAssertion(&f.Variable, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Scope(g, #g) * FunctionObject(#g, g_id, _)"}, render(t, a))

	a, err = ScopedAssertion(NewVariable("n", Number), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Scope(n, #n) * types(#n: Num)"}, render(t, a))
}

func TestTypeString(t *testing.T) {
	t.Parallel()

	obj := ObjectLiteral{Fields: []*Variable{NewVariable("a", Number)}}
	assert.Equal(t, "{ a: number }", obj.String())
	assert.Equal(t, "number | undefined", Union{Members: []Type{Number, Undefined}}.String())
	assert.Equal(t, "(x: string) => boolean", FunctionSig{Params: []*Variable{NewVariable("x", String)}, Return: Boolean}.String())

	p, ok := LookupPrimitive("boolean")
	require.True(t, ok)
	assert.Equal(t, Boolean, p)
	_, ok = LookupPrimitive("bigint")
	assert.False(t, ok)
}
