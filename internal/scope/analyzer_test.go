package scope

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tspec/internal/tsast"
	"github.com/gnolang/tspec/internal/types"
)

type fakeResolver struct {
	fns    map[*tsast.Node]*types.Function
	byName map[string]*types.Function
	anon   int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		fns:    make(map[*tsast.Node]*types.Function),
		byName: make(map[string]*types.Function),
	}
}

func typeOf(n *tsast.TypeNode) types.Type {
	if n == nil {
		return types.Any{}
	}
	if p, ok := types.LookupPrimitive(n.Kind); ok {
		return p
	}
	return types.Any{}
}

func (r *fakeResolver) Variable(d *tsast.Node) (*types.Variable, error) {
	return types.NewVariable(d.Name, typeOf(d.Type)), nil
}

func (r *fakeResolver) Function(n *tsast.Node) (*types.Function, error) {
	if fn, ok := r.fns[n]; ok {
		return fn, nil
	}
	params := make([]*types.Variable, len(n.Params))
	for i, p := range n.Params {
		params[i] = types.NewVariable(p.Name, typeOf(p.Type))
	}
	name := n.Name
	if n.Kind == tsast.KindConstructor {
		name = "constructor"
	}
	if name == "" {
		r.anon++
		name = fmt.Sprintf("anon%d", r.anon)
	}
	fn := types.NewFunction(name, name, params, types.Void)
	r.fns[n] = fn
	r.byName[name] = fn
	return fn, nil
}

func parse(t *testing.T, src string) *tsast.File {
	t.Helper()
	f, err := tsast.Parse("test.yaml", []byte(src))
	require.NoError(t, err)
	return f
}

func names(vars []*types.Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

func capturedNames(t *testing.T, r *fakeResolver, fn string) []string {
	t.Helper()
	f, ok := r.byName[fn]
	require.True(t, ok, "function %s not registered", fn)
	vars, err := f.Captured()
	require.NoError(t, err)
	return names(vars)
}

const nestedSrc = `
statements:
  - kind: var
    decls: [{name: x, type: {kind: number}}]
  - kind: function
    name: g
    params: [{name: a, type: {kind: number}}]
    body:
      - kind: var
        decls: [{name: y, type: {kind: string}}]
      - kind: function
        name: h
        body:
          - kind: return
            x:
              kind: binary
              x: {kind: binary, x: {kind: ident, name: x}, y: {kind: ident, name: y}}
              y: {kind: ident, name: a}
      - kind: return
        x: {kind: ident, name: h}
`

func TestNestedFunctions(t *testing.T) {
	t.Parallel()

	r := newFakeResolver()
	gamma, err := New(r).AnalyzeProgram(parse(t, nestedSrc))
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "g"}, names(gamma))
	assert.Equal(t, []string{"x", "y", "a"}, capturedNames(t, r, "h"))
	assert.Equal(t, []string{"x"}, capturedNames(t, r, "g"))
}

func TestDeclaredVarsSkipsNestedBodies(t *testing.T) {
	t.Parallel()

	src := `
statements:
  - kind: if
    cond: {kind: true}
    then:
      kind: block
      body:
        - kind: var
          decls: [{name: a}, {name: b}]
    else:
      kind: while
      cond: {kind: false}
      body:
        - kind: var
          decls: [{name: c}]
  - kind: function
    name: f
    body:
      - kind: var
        decls: [{name: hidden}]
  - kind: class
    name: K
  - kind: var
    decls: [{name: a}]
`
	r := newFakeResolver()
	vars, err := New(r).DeclaredVars(parse(t, src).Statements)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "f"}, names(vars))
}

func TestShadowing(t *testing.T) {
	t.Parallel()

	r := newFakeResolver()
	a := New(r)
	body := parse(t, `
statements:
  - kind: expr
    x: {kind: call, x: {kind: ident, name: x}, args: [{kind: ident, name: z}]}
`).Statements

	outer := NewSet(types.NewVariable("x", types.Number), types.NewVariable("z", types.String))
	current := NewSet(types.NewVariable("x", types.Boolean))

	got, err := a.CapturedVars(body, outer, current)
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, names(got))
}

func TestUnresolvedIdentifier(t *testing.T) {
	t.Parallel()

	src := `
statements:
  - kind: var
    decls: [{name: x, type: {kind: number}}]
  - kind: function
    name: f
    body:
      - kind: expr
        x: {kind: ident, name: x}
      - kind: expr
        x: {kind: ident, name: missing}
`
	r := newFakeResolver()
	_, err := New(r).AnalyzeProgram(parse(t, src))
	require.ErrorIs(t, err, ErrUnresolvedIdentifier)
	assert.Contains(t, err.Error(), "missing")

	f := r.byName["f"]
	require.NotNil(t, f)
	assert.False(t, f.CapturesSet())

	body := parse(t, `
statements:
  - kind: expr
    x: {kind: ident, name: nope}
`).Statements
	got, err := New(r).CapturedVars(body, NewSet(), NewSet())
	assert.ErrorIs(t, err, ErrUnresolvedIdentifier)
	assert.Nil(t, got)
}

func TestCaptureOrdering(t *testing.T) {
	t.Parallel()

	src := `
statements:
  - kind: var
    decls: [{name: a}, {name: b}, {name: c}]
  - kind: function
    name: f
    body:
      - kind: if
        cond: {kind: ident, name: c}
        then:
          kind: block
          body:
            - {kind: expr, x: {kind: ident, name: b}}
            - {kind: expr, x: {kind: ident, name: a}}
        else:
          kind: block
          body:
            - {kind: expr, x: {kind: ident, name: a}}
            - {kind: expr, x: {kind: ident, name: c}}
`
	for i := 0; i < 3; i++ {
		r := newFakeResolver()
		_, err := New(r).AnalyzeProgram(parse(t, src))
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"c", "b", "a"}, capturedNames(t, r, "f")); diff != "" {
			t.Fatalf("capture order mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestClassMembers(t *testing.T) {
	t.Parallel()

	src := `
statements:
  - kind: var
    decls: [{name: count, type: {kind: number}}, {name: unused}]
  - kind: class
    name: Counter
    members:
      - kind: property
        name: step
        type: {kind: number}
        init:
          kind: function
          body:
            - {kind: return, x: {kind: ident, name: count}}
      - kind: constructor
        params: [{name: n, type: {kind: number}}]
        body:
          - kind: expr
            x: {kind: assign, x: {kind: prop, x: {kind: this}, name: n}, y: {kind: ident, name: n}}
      - kind: method
        name: inc
        body:
          - kind: expr
            x:
              kind: assign
              x: {kind: ident, name: count}
              y: {kind: binary, x: {kind: ident, name: count}, y: {kind: number, value: "1"}}
          - kind: return
            x: {kind: new, name: Counter, args: [{kind: ident, name: count}]}
`
	r := newFakeResolver()
	_, err := New(r).AnalyzeProgram(parse(t, src))
	require.NoError(t, err)

	assert.Empty(t, capturedNames(t, r, "constructor"))
	assert.Equal(t, []string{"count"}, capturedNames(t, r, "inc"))
	assert.Equal(t, []string{"count"}, capturedNames(t, r, "anon1"))
}

func TestGlobals(t *testing.T) {
	t.Parallel()

	src := `
statements:
  - kind: expr
    x: {kind: call, x: {kind: prop, x: {kind: ident, name: console}, name: log}, args: [{kind: string, value: hi}]}
`
	_, err := New(newFakeResolver()).AnalyzeProgram(parse(t, src))
	require.ErrorIs(t, err, ErrUnresolvedIdentifier)

	_, err = New(newFakeResolver(), "console").AnalyzeProgram(parse(t, src))
	require.NoError(t, err)
}

func TestGlobalDoesNotHideOuterVariable(t *testing.T) {
	t.Parallel()

	src := `
statements:
  - kind: var
    decls: [{name: console, type: {kind: number}}]
  - kind: function
    name: f
    body:
      - kind: return
        x: {kind: ident, name: console}
`
	r := newFakeResolver()
	_, err := New(r, "console").AnalyzeProgram(parse(t, src))
	require.NoError(t, err)
	assert.Equal(t, []string{"console"}, capturedNames(t, r, "f"))
}

func TestUnexpectedNode(t *testing.T) {
	t.Parallel()

	_, err := New(newFakeResolver()).AnalyzeProgram(parse(t, "statements:\n  - kind: for\n"))
	assert.ErrorIs(t, err, tsast.ErrUnexpectedNode)

	src := `
statements:
  - kind: expr
    x: {kind: yield}
`
	_, err = New(newFakeResolver()).AnalyzeProgram(parse(t, src))
	assert.ErrorIs(t, err, tsast.ErrUnexpectedNode)
}

func TestSet(t *testing.T) {
	t.Parallel()

	x1 := types.NewVariable("x", types.Number)
	x2 := types.NewVariable("x", types.String)
	y := types.NewVariable("y", types.Number)

	s := NewSet(x1, y, x2)
	assert.Equal(t, 2, s.Len())
	got, ok := s.Get("x")
	require.True(t, ok)
	assert.Same(t, x1, got)

	u := NewSet(x2).Union(s)
	assert.Equal(t, []string{"x", "y"}, u.Names())
	got, _ = u.Get("x")
	assert.Same(t, x2, got)
}

func assignedNames(vars []Assignment) []string {
	out := make([]string, len(vars))
	for i, a := range vars {
		out[i] = a.Var.Name
		if a.Param {
			out[i] += " (param)"
		}
	}
	return out
}

func TestAssignments(t *testing.T) {
	t.Parallel()

	src := `
statements:
  - kind: var
    decls: [{name: g, type: {kind: number}}]
  - kind: function
    name: f
    params: [{name: p, type: {kind: number}}]
    body:
      - kind: var
        decls:
          - name: l
            type: {kind: string}
            init: {kind: assign, x: {kind: ident, name: g}, y: {kind: number, value: "1"}}
      - kind: expr
        x:
          kind: assign
          x: {kind: prop, x: {kind: ident, name: p}, name: a}
          y: {kind: assign, x: {kind: ident, name: l}, y: {kind: ident, name: g}}
      - kind: expr
        x: {kind: call, x: {kind: ident, name: f}, args: [{kind: number, value: "1"}]}
`
	r := newFakeResolver()
	file := parse(t, src)
	a := New(r)
	gamma, err := a.AnalyzeProgram(file)
	require.NoError(t, err)

	got, err := a.Assignments(file, gamma)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, tsast.KindVar, got[0].Stmt.Kind)
	assert.Same(t, r.byName["f"], got[0].Fn)
	if diff := cmp.Diff([]string{"g"}, assignedNames(got[0].Vars)); diff != "" {
		t.Errorf("var statement mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, tsast.KindExpr, got[1].Stmt.Kind)
	if diff := cmp.Diff([]string{"p (param)", "l"}, assignedNames(got[1].Vars)); diff != "" {
		t.Errorf("expr statement mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignmentsTopLevel(t *testing.T) {
	t.Parallel()

	src := `
statements:
  - kind: expr
    x: {kind: assign, x: {kind: elem, x: {kind: ident, name: window}, index: {kind: string, value: k}}, y: {kind: number, value: "1"}}
  - kind: expr
    x: {kind: assign, x: {kind: ident, name: x}, y: {kind: ident, name: x}}
`
	file := parse(t, src)

	_, err := New(newFakeResolver(), "window").Assignments(file, nil)
	require.ErrorIs(t, err, ErrUnresolvedIdentifier)

	x := types.NewVariable("x", types.Number)
	got, err := New(newFakeResolver(), "window").Assignments(file, []*types.Variable{x})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Fn)
	require.Len(t, got[0].Vars, 1)
	assert.Same(t, x, got[0].Vars[0].Var)
	assert.False(t, got[0].Vars[0].Param)
}
