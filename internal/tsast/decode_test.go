package tsast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
path: add.ts
statements:
  - kind: function
    name: add
    line: 1
    params:
      - {name: x, type: {kind: number}}
      - {name: y, type: {kind: number}}
    returns: {kind: number}
    body:
      - kind: return
        x:
          kind: binary
          op: "+"
          x: {kind: ident, name: x}
          y: {kind: ident, name: y}
`

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	f, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, "add.ts", f.Path)
	require.Len(t, f.Statements, 1)

	fn := f.Statements[0]
	assert.Equal(t, KindFunction, fn.Kind)
	assert.True(t, fn.IsFunction())
	assert.Equal(t, "function add (line 1)", fn.String())
	require.Len(t, fn.Params, 2)
	assert.Equal(t, TypeNumber, fn.Params[1].Type.Kind)
	assert.Equal(t, TypeNumber, fn.Returns.Kind)
	require.Len(t, fn.Body, 1)
	assert.Equal(t, "+", fn.Body[0].X.Op)
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	src := `{"statements": [{"kind": "var", "decls": [{"name": "s", "type": {"kind": "union", "members": [{"kind": "string"}, {"kind": "literal", "value": "x"}]}}]}]}`
	f, err := Parse("in.json", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "in.json", f.Path)

	decl := f.Statements[0].Decls[0]
	assert.Equal(t, "s", decl.Name)
	require.Len(t, decl.Type.Members, 2)
	assert.Equal(t, "x", decl.Type.Members[1].Value)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Decode(strings.NewReader("statements:\n  - kind: var\n    bogus: 1\n"))
	assert.Error(t, err)

	err = Unexpected(&Node{Kind: "with", Line: 3}, "statement")
	assert.ErrorIs(t, err, ErrUnexpectedNode)
	assert.Contains(t, err.Error(), "with (line 3)")
}

func TestInspect(t *testing.T) {
	t.Parallel()

	f, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	var kinds []string
	InspectAll(f.Statements, func(n *Node) bool {
		kinds = append(kinds, n.Kind+":"+n.Name)
		return true
	})
	assert.Equal(t, []string{
		"function:add", ":x", ":y", "return:", "binary:", "ident:x", "ident:y",
	}, kinds)

	var visited int
	InspectAll(f.Statements, func(n *Node) bool {
		visited++
		return n.Kind != KindFunction
	})
	assert.Equal(t, 1, visited)
}
