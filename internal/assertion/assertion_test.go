package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	a = TypeOf("a", TagNum)
	b = TypeOf("b", TagStr)
	c = TypeOf("c", TagBool)
	d = TypeOf("d", TagNull)
)

func TestSCLFlattening(t *testing.T) {
	t.Parallel()

	nested := SCL(SCL(a, b), c)
	flat := SCL(a, b, c)
	assert.Equal(t, flat, nested)

	deep := SCL(SCL(SCL(a), SCL(b, SCL(c))))
	assert.Equal(t, flat, deep)
}

func TestSCLIdentityElimination(t *testing.T) {
	t.Parallel()

	got := SCL(Emp{}, a, Emp{}, Emp{}, b, nil, Emp{})
	assert.Equal(t, SCL(a, b), got)
	assert.Len(t, got.Conjuncts, 2)

	onlyEmp := SCL(Emp{}, Emp{}, SCL(Emp{}))
	assert.Empty(t, onlyEmp.Conjuncts)

	s, err := Render(onlyEmp)
	require.NoError(t, err)
	assert.Equal(t, "emp", s)
}

func TestDisjunctionFlattening(t *testing.T) {
	t.Parallel()

	got := Or(Or(a, b), c)
	assert.Equal(t, []Assertion{a, b, c}, got.Branches)

	got = Or(a, Or(b, Or(c, d)))
	assert.Equal(t, []Assertion{a, b, c, d}, got.Branches)
}

func TestDNF(t *testing.T) {
	t.Parallel()

	x := TypeOf("x", TagNum)
	y := TypeOf("y", TagNum)

	tests := []struct {
		name string
		in   Assertion
		want []string
	}{
		{
			name: "no disjunction",
			in:   SCL(a, b),
			want: []string{"types(a: Num) * types(b: Str)"},
		},
		{
			name: "single disjunction",
			in:   SCL(x, Or(a, b), y),
			want: []string{
				"types(x: Num) * types(a: Num) * types(y: Num)",
				"types(x: Num) * types(b: Str) * types(y: Num)",
			},
		},
		{
			name: "two disjunctions",
			in:   SCL(Or(a, b), x, Or(c, d)),
			want: []string{
				"types(a: Num) * types(x: Num) * types(c: Bool)",
				"types(b: Str) * types(x: Num) * types(c: Bool)",
				"types(a: Num) * types(x: Num) * types(d: Null)",
				"types(b: Str) * types(x: Num) * types(d: Null)",
			},
		},
		{
			name: "branch is a conjunction",
			in:   SCL(Or(SCL(a, b), c)),
			want: []string{
				"types(a: Num) * types(b: Str)",
				"types(c: Bool)",
			},
		},
		{
			name: "nested disjunction inside branch",
			in:   Or(SCL(x, Or(a, b)), c),
			want: []string{
				"types(x: Num) * types(a: Num)",
				"types(x: Num) * types(b: Str)",
				"types(c: Bool)",
			},
		},
		{
			name: "emp branch",
			in:   SCL(x, Or(Emp{}, a)),
			want: []string{
				"types(x: Num)",
				"types(x: Num) * types(a: Num)",
			},
		},
		{
			name: "empty",
			in:   SCL(),
			want: []string{"emp"},
		},
		{
			name: "atom",
			in:   a,
			want: []string{"types(a: Num)"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := RenderBranches(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDNFSize(t *testing.T) {
	t.Parallel()

	fixed := []Assertion{Text("p"), Text("q")}
	sizes := []int{3, 1, 2, 4}

	conjuncts := []Assertion{fixed[0]}
	want := 1
	for i, n := range sizes {
		branches := make([]Assertion, n)
		for j := range branches {
			branches[j] = Text("d%d_%d", i, j)
		}
		conjuncts = append(conjuncts, Or(branches...))
		want *= n
	}
	conjuncts = append(conjuncts, fixed[1])

	dnf := DNF(SCL(conjuncts...))
	require.Len(t, dnf.Branches, want)

	for _, br := range dnf.Branches {
		scl, ok := br.(*SeparatingConjunction)
		require.True(t, ok)
		require.Len(t, scl.Conjuncts, len(sizes)+2)
		assert.Equal(t, fixed[0], scl.Conjuncts[0])
		assert.Equal(t, fixed[1], scl.Conjuncts[len(scl.Conjuncts)-1])
		for i := range sizes {
			raw := scl.Conjuncts[i+1].(Raw)
			assert.Regexp(t, `^d`+string(rune('0'+i))+`_\d$`, raw.Text)
		}
	}
}

func TestRenderDisjunctionFails(t *testing.T) {
	t.Parallel()

	_, err := Render(Or(a, b))
	assert.ErrorIs(t, err, ErrUnresolvedDisjunction)

	_, err = Render(SCL(a, Or(b, c)))
	assert.ErrorIs(t, err, ErrUnresolvedDisjunction)
}

func TestThisAssertion(t *testing.T) {
	t.Parallel()

	shape := JSObject{Obj: Receiver, Proto: "#Catproto"}
	branch := SCL(Text("(x == y)"), TypeOf(Receiver, TagNum), Pred("Other", "x"), shape, Pred("Cat", Receiver, "#p"))

	got, ok, err := ThisAssertion(branch)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, shape, got)

	_, ok, err = ThisAssertion(SCL(a, b))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ThisAssertion(Or(shape, a))
	assert.ErrorIs(t, err, ErrUnresolvedDisjunction)

	_, _, err = ThisAssertion(SCL(a, Or(shape, b)))
	assert.ErrorIs(t, err, ErrUnresolvedDisjunction)
}

func TestAtomRendering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Atom
		want string
	}{
		{Types{Name: "x", Tag: TagUndefined}, "types(x: Undefined)"},
		{DataProp{Obj: "o", Field: "f", Value: "#f"}, `DataProp(o, "f", #f)`},
		{DataProp{Obj: "o", Field: "#f", Value: "#v", LogicalField: true}, "DataProp(o, #f, #v)"},
		{Scope{Var: "x", Logical: "#x"}, "Scope(x, #x)"},
		{JSObject{Obj: "this", Proto: "#Aproto"}, "JSObjWithProto(this, #Aproto)"},
		{FunctionObject{Obj: "f"}, "FunctionObject(f, _, _)"},
		{FunctionObject{Obj: "c", ID: "A_constructor", ScopeVar: "#sc"}, "FunctionObject(c, A_constructor, #sc)"},
		{None{Obj: "o", Field: "m"}, `((o, "m") -> none)`},
		{Custom{Pred: "GlobalObject"}, "GlobalObject()"},
		{Custom{Pred: "A", Args: []string{"o", "#p"}}, "A(o, #p)"},
		{EmptyFields{Obj: "this"}, "empty_fields(this : -{  }-)"},
		{EmptyFields{Obj: "o", Fields: []string{"a", "b"}}, `empty_fields(o : -{ "a", "b" }-)`},
		{GlobalVar{Name: "A", Logical: "#A"}, `GlobalVar("A", #A)`},
		{Emp{}, "emp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

func TestPredicateRender(t *testing.T) {
	t.Parallel()

	single := NewPredicate("AbsentFields", []string{"o"}, SCL(Absent("o", "hasOwnProperty")))
	s, err := single.Render()
	require.NoError(t, err)
	assert.Equal(t, `AbsentFields(o): ((o, "hasOwnProperty") -> none);`, s)

	multi := NewPredicate("I", []string{"+o"}, SCL(JSObject{Obj: "o", Proto: "#p"}, Or(a, b)))
	s, err = multi.Render()
	require.NoError(t, err)
	assert.Equal(t, "I(+o):\n    JSObjWithProto(o, #p) * types(a: Num),\n    JSObjWithProto(o, #p) * types(b: Str);", s)

	labelled := Predicate{
		Name:   "IndexSig0",
		Params: []string{"o", "fields"},
		Cases: []Case{
			{Label: "base", Body: Text("(fields == -{ }-)")},
			{Label: "rec", Body: SCL(Text("(x)"), a)},
		},
	}
	s, err = labelled.Render()
	require.NoError(t, err)
	assert.Equal(t, "IndexSig0(o, fields):\n    [base] (fields == -{ }-),\n    [rec] (x) * types(a: Num);", s)

	bad := Predicate{Name: "P", Cases: []Case{{Body: Or(a, b)}}}
	_, err = bad.Render()
	assert.ErrorIs(t, err, ErrUnresolvedDisjunction)
}
